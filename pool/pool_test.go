package pool_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/tailored-agentic-units/webagent/pool"
)

func TestMap_PreservesOrder(t *testing.T) {
	items := []int{5, 1, 4, 2, 3}
	square := func(_ context.Context, n int) int {
		time.Sleep(time.Duration(n) * time.Millisecond)
		return n * n
	}

	got := pool.Map(context.Background(), 3, items, square)

	want := []int{25, 1, 16, 4, 9}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Map() = %v, want %v", got, want)
		}
	}
}

func TestMap_Empty(t *testing.T) {
	got := pool.Map(context.Background(), 4, nil, func(context.Context, int) int { return 1 })
	if len(got) != 0 {
		t.Errorf("got %v, want empty", got)
	}
}

func TestMap_RunsConcurrently(t *testing.T) {
	var started sync.WaitGroup
	started.Add(3)
	ready := make(chan struct{})
	go func() {
		started.Wait()
		close(ready)
	}()

	task := func(_ context.Context, _ int) bool {
		started.Done()
		select {
		case <-ready:
			return true
		case <-time.After(2 * time.Second):
			return false
		}
	}

	for i, ok := range pool.Map(context.Background(), 3, []int{1, 2, 3}, task) {
		if !ok {
			t.Errorf("task %d did not see its peers start", i)
		}
	}
}

func TestMap_BoundsWorkers(t *testing.T) {
	var inFlight, peak atomic.Int32
	task := func(_ context.Context, _ int) int {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return 0
	}

	pool.Map(context.Background(), 2, make([]int, 10), task)

	if peak.Load() > 2 {
		t.Errorf("peak concurrency = %d, want at most 2", peak.Load())
	}
}

func TestMap_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var ran atomic.Int32

	task := func(ctx context.Context, _ int) int {
		ran.Add(1)
		cancel()
		return 1
	}

	got := pool.Map(ctx, 1, make([]int, 5), task)

	if ran.Load() != 1 {
		t.Errorf("ran %d tasks after cancellation, want 1", ran.Load())
	}
	if got[0] != 1 || got[4] != 0 {
		t.Errorf("results = %v", got)
	}
}
