package session

import (
	"context"
	"sync"
)

// Locker provides one mutex per session id. Acquisition honours context
// cancellation, and ids never contend with each other. Slots are released
// once nobody holds or waits on them. The zero value is ready to use.
type Locker struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

// Lock blocks until id is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, id string) (func(), error) {
	l.mu.Lock()
	if l.slots == nil {
		l.slots = make(map[string]*slot)
	}
	s, ok := l.slots[id]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[id] = s
	}
	s.refs++
	l.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(id, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-s.ch
			l.release(id, s)
		})
	}, nil
}

// Busy reports whether id is held or waited on.
func (l *Locker) Busy(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[id]
	return ok && s.refs > 0
}

func (l *Locker) release(id string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, id)
	}
}
