package session

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/tailored-agentic-units/webagent/core/protocol"
)

// MemoryOptions bounds an in-memory store. Zero values disable eviction.
type MemoryOptions struct {
	// MaxSessions caps the number of stored sessions. When a new session
	// would exceed it, the least recently used idle session is evicted.
	MaxSessions int

	// IdleTTL evicts sessions untouched for longer than this on the next
	// store access.
	IdleTTL time.Duration

	// Append to an evicted session fails with *UnknownSessionError until
	// GetOrCreate starts it again with an empty history.

	// Now overrides the clock. Defaults to time.Now.
	Now func() time.Time
}

type record struct {
	id       string
	messages []protocol.Message
	created  time.Time
	updated  time.Time
}

func (r *record) session() *Session {
	return &Session{
		ID:        r.id,
		Messages:  protocol.CloneMessages(r.messages),
		CreatedAt: r.created,
		UpdatedAt: r.updated,
	}
}

// MemoryStore keeps sessions in process memory. History is lost when the
// process exits.
type MemoryStore struct {
	opts    MemoryOptions
	locker  Locker
	mu      sync.Mutex
	records map[string]*record
	evicted map[string]bool
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts MemoryOptions) *MemoryStore {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &MemoryStore{
		opts:    opts,
		records: make(map[string]*record),
		evicted: make(map[string]bool),
	}
}

func (s *MemoryStore) GetOrCreate(id string) (*Session, error) {
	if id == "" {
		return nil, ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.evicted, id)
	r := s.touch(id)
	return r.session(), nil
}

func (s *MemoryStore) Append(id string, msgs ...protocol.Message) error {
	if id == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire(s.opts.Now())
	if _, ok := s.records[id]; !ok && s.evicted[id] {
		return &UnknownSessionError{ID: id}
	}

	r := s.touch(id)
	r.messages = append(r.messages, protocol.CloneMessages(msgs)...)
	return nil
}

func (s *MemoryStore) Snapshot(id string) ([]protocol.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expire(s.opts.Now())
	r, ok := s.records[id]
	if !ok {
		return nil, &UnknownSessionError{ID: id}
	}
	return protocol.CloneMessages(r.messages), nil
}

func (s *MemoryStore) IDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make([]string, 0, len(s.records))
	for id := range s.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, id)
	return nil
}

func (s *MemoryStore) Lock(ctx context.Context, id string) (func(), error) {
	return s.locker.Lock(ctx, id)
}

// Len returns the number of stored sessions.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// touch returns the record for id, creating it if needed, and marks it as
// recently used. Caller holds s.mu.
func (s *MemoryStore) touch(id string) *record {
	now := s.opts.Now()
	s.expire(now)

	r, ok := s.records[id]
	if !ok {
		s.makeRoom()
		r = &record{id: id, created: now}
		s.records[id] = r
	}
	r.updated = now
	return r
}

func (s *MemoryStore) expire(now time.Time) {
	if s.opts.IdleTTL <= 0 {
		return
	}
	for id, r := range s.records {
		if now.Sub(r.updated) > s.opts.IdleTTL && !s.locker.Busy(id) {
			s.evict(id)
		}
	}
}

func (s *MemoryStore) evict(id string) {
	delete(s.records, id)
	s.evicted[id] = true
}

// makeRoom evicts least recently used idle sessions until a new one fits.
// If every session is busy the store grows past MaxSessions.
func (s *MemoryStore) makeRoom() {
	if s.opts.MaxSessions <= 0 {
		return
	}

	for len(s.records) >= s.opts.MaxSessions {
		candidates := make([]*record, 0, len(s.records))
		for id, r := range s.records {
			if !s.locker.Busy(id) {
				candidates = append(candidates, r)
			}
		}
		if len(candidates) == 0 {
			return
		}
		oldest := slices.MinFunc(candidates, func(a, b *record) int {
			return a.updated.Compare(b.updated)
		})
		s.evict(oldest.id)
	}
}
