package graph_test

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/tailored-agentic-units/webagent/graph"
	"github.com/tailored-agentic-units/webagent/observability"
)

type recorder struct {
	mu     sync.Mutex
	events []observability.Event
}

func (r *recorder) OnEvent(_ context.Context, e observability.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []observability.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]observability.EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func add(n int) graph.Node[int] {
	return graph.NodeFunc[int](func(_ context.Context, s int) (int, error) {
		return s + n, nil
	})
}

func mustBuild(t *testing.T, steps ...func(*graph.Graph[int]) error) *graph.Graph[int] {
	t.Helper()
	g := graph.New[int](graph.DefaultConfig("test"), nil)
	for _, step := range steps {
		if err := step(g); err != nil {
			t.Fatalf("build failed: %v", err)
		}
	}
	return g
}

func TestGraph_LinearToEnd(t *testing.T) {
	g := mustBuild(t,
		func(g *graph.Graph[int]) error { return g.AddNode("a", add(1)) },
		func(g *graph.Graph[int]) error { return g.AddNode("b", add(10)) },
		func(g *graph.Graph[int]) error { return g.AddEdge("a", "b", nil) },
		func(g *graph.Graph[int]) error { return g.AddEdge("b", graph.End, nil) },
		func(g *graph.Graph[int]) error { return g.SetEntryPoint("a") },
	)

	got, err := g.Execute(context.Background(), 0)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != 11 {
		t.Errorf("got %d, want 11", got)
	}
}

func TestGraph_ConditionalLoop(t *testing.T) {
	g := mustBuild(t,
		func(g *graph.Graph[int]) error { return g.AddNode("inc", add(1)) },
		func(g *graph.Graph[int]) error {
			return g.AddConditionalEdges("inc", func(s int) string {
				if s < 5 {
					return "inc"
				}
				return graph.End
			})
		},
		func(g *graph.Graph[int]) error { return g.SetEntryPoint("inc") },
	)

	got, err := g.Execute(context.Background(), 0)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if got != 5 {
		t.Errorf("got %d, want 5", got)
	}
}

func TestGraph_PredicateOrder(t *testing.T) {
	g := mustBuild(t,
		func(g *graph.Graph[int]) error { return g.AddNode("start", add(0)) },
		func(g *graph.Graph[int]) error { return g.AddNode("small", add(100)) },
		func(g *graph.Graph[int]) error { return g.AddNode("large", add(1000)) },
		func(g *graph.Graph[int]) error {
			return g.AddEdge("start", "small", func(s int) bool { return s < 10 })
		},
		func(g *graph.Graph[int]) error { return g.AddEdge("start", "large", graph.Always[int]()) },
		func(g *graph.Graph[int]) error { return g.AddEdge("small", graph.End, nil) },
		func(g *graph.Graph[int]) error { return g.AddEdge("large", graph.End, nil) },
		func(g *graph.Graph[int]) error { return g.SetEntryPoint("start") },
	)

	tests := []struct {
		in, want int
	}{
		{in: 1, want: 101},
		{in: 50, want: 1050},
	}
	for _, tt := range tests {
		got, err := g.Execute(context.Background(), tt.in)
		if err != nil {
			t.Fatalf("Execute(%d) failed: %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Execute(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestGraph_MaxIterations(t *testing.T) {
	g := graph.New[int](graph.Config{Name: "loop", MaxIterations: 3}, nil)
	_ = g.AddNode("spin", add(1))
	_ = g.AddEdge("spin", "spin", nil)
	_ = g.SetEntryPoint("spin")

	got, err := g.Execute(context.Background(), 0)
	if !errors.Is(err, graph.ErrMaxIterations) {
		t.Fatalf("error = %v, want ErrMaxIterations", err)
	}

	var execErr *graph.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("error %T is not *ExecutionError", err)
	}
	if len(execErr.Path) != 3 {
		t.Errorf("path = %v, want 3 entries", execErr.Path)
	}
	if got != 3 {
		t.Errorf("state = %d, want 3", got)
	}
}

func TestGraph_NodeError(t *testing.T) {
	sentinel := errors.New("boom")
	g := mustBuild(t,
		func(g *graph.Graph[int]) error { return g.AddNode("ok", add(1)) },
		func(g *graph.Graph[int]) error {
			return g.AddNode("fail", graph.NodeFunc[int](func(context.Context, int) (int, error) {
				return 0, sentinel
			}))
		},
		func(g *graph.Graph[int]) error { return g.AddEdge("ok", "fail", nil) },
		func(g *graph.Graph[int]) error { return g.AddEdge("fail", graph.End, nil) },
		func(g *graph.Graph[int]) error { return g.SetEntryPoint("ok") },
	)

	got, err := g.Execute(context.Background(), 0)
	if !errors.Is(err, sentinel) {
		t.Fatalf("error = %v, want wrapped sentinel", err)
	}

	var execErr *graph.ExecutionError
	if !errors.As(err, &execErr) {
		t.Fatalf("error %T is not *ExecutionError", err)
	}
	if execErr.Node != "fail" {
		t.Errorf("Node = %q, want fail", execErr.Node)
	}
	if !slices.Equal(execErr.Path, []string{"ok", "fail"}) {
		t.Errorf("Path = %v, want [ok fail]", execErr.Path)
	}
	if got != 1 {
		t.Errorf("state = %d, want last good state 1", got)
	}
}

func TestGraph_NoTransition(t *testing.T) {
	g := mustBuild(t,
		func(g *graph.Graph[int]) error { return g.AddNode("a", add(1)) },
		func(g *graph.Graph[int]) error {
			return g.AddEdge("a", graph.End, func(int) bool { return false })
		},
		func(g *graph.Graph[int]) error { return g.SetEntryPoint("a") },
	)

	if _, err := g.Execute(context.Background(), 0); !errors.Is(err, graph.ErrNoTransition) {
		t.Errorf("error = %v, want ErrNoTransition", err)
	}
}

func TestGraph_RouterUnknownTarget(t *testing.T) {
	g := mustBuild(t,
		func(g *graph.Graph[int]) error { return g.AddNode("a", add(1)) },
		func(g *graph.Graph[int]) error {
			return g.AddConditionalEdges("a", func(int) string { return "nowhere" })
		},
		func(g *graph.Graph[int]) error { return g.SetEntryPoint("a") },
	)

	if _, err := g.Execute(context.Background(), 0); !errors.Is(err, graph.ErrNoTransition) {
		t.Errorf("error = %v, want ErrNoTransition", err)
	}
}

func TestGraph_CancelledBeforeNode(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	g := mustBuild(t,
		func(g *graph.Graph[int]) error {
			return g.AddNode("a", graph.NodeFunc[int](func(_ context.Context, s int) (int, error) {
				cancel()
				return s + 1, nil
			}))
		},
		func(g *graph.Graph[int]) error { return g.AddNode("b", add(100)) },
		func(g *graph.Graph[int]) error { return g.AddEdge("a", "b", nil) },
		func(g *graph.Graph[int]) error { return g.AddEdge("b", graph.End, nil) },
		func(g *graph.Graph[int]) error { return g.SetEntryPoint("a") },
	)

	got, err := g.Execute(ctx, 0)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if got != 1 {
		t.Errorf("state = %d, want 1 (node b must not run)", got)
	}
}

func TestGraph_BuildErrors(t *testing.T) {
	g := graph.New[int](graph.DefaultConfig("build"), nil)
	_ = g.AddNode("a", add(1))

	tests := []struct {
		name string
		err  error
	}{
		{"empty node name", g.AddNode("", add(1))},
		{"reserved node name", g.AddNode(graph.End, add(1))},
		{"nil node", g.AddNode("nil", nil)},
		{"duplicate node", g.AddNode("a", add(1))},
		{"edge from unknown", g.AddEdge("x", "a", nil)},
		{"edge to unknown", g.AddEdge("a", "x", nil)},
		{"router on unknown", g.AddConditionalEdges("x", func(int) string { return graph.End })},
		{"nil router", g.AddConditionalEdges("a", nil)},
		{"entry unknown", g.SetEntryPoint("x")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestGraph_EdgesAndRouterExclusive(t *testing.T) {
	g := graph.New[int](graph.DefaultConfig("mix"), nil)
	_ = g.AddNode("a", add(1))
	_ = g.AddEdge("a", graph.End, nil)

	if err := g.AddConditionalEdges("a", func(int) string { return graph.End }); err == nil {
		t.Error("expected error adding router to node with edges")
	}

	_ = g.AddNode("b", add(1))
	_ = g.AddConditionalEdges("b", func(int) string { return graph.End })
	if err := g.AddEdge("b", graph.End, nil); err == nil {
		t.Error("expected error adding edge to routed node")
	}
}

func TestGraph_Validate(t *testing.T) {
	empty := graph.New[int](graph.DefaultConfig("empty"), nil)
	if err := empty.Validate(); err == nil {
		t.Error("expected error for graph without nodes")
	}

	noEntry := graph.New[int](graph.DefaultConfig("no-entry"), nil)
	_ = noEntry.AddNode("a", add(1))
	_ = noEntry.AddEdge("a", graph.End, nil)
	if err := noEntry.Validate(); err == nil {
		t.Error("expected error for missing entry point")
	}

	dangling := graph.New[int](graph.DefaultConfig("dangling"), nil)
	_ = dangling.AddNode("a", add(1))
	_ = dangling.SetEntryPoint("a")
	if _, err := dangling.Execute(context.Background(), 0); err == nil {
		t.Error("expected error for node without outgoing edges")
	}
}

func TestGraph_Events(t *testing.T) {
	rec := &recorder{}
	g := graph.New[int](graph.DefaultConfig("events"), rec)
	_ = g.AddNode("a", add(1))
	_ = g.AddConditionalEdges("a", func(s int) string {
		if s < 2 {
			return "a"
		}
		return graph.End
	})
	_ = g.SetEntryPoint("a")

	if _, err := g.Execute(context.Background(), 0); err != nil {
		t.Fatalf("Execute failed: %v", err)
	}

	want := []observability.EventType{
		graph.EventGraphStart,
		graph.EventNodeStart, graph.EventNodeComplete, graph.EventEdgeTransition,
		graph.EventCycleDetected,
		graph.EventNodeStart, graph.EventNodeComplete, graph.EventEdgeTransition,
		graph.EventGraphComplete,
	}
	if got := rec.types(); !slices.Equal(got, want) {
		t.Errorf("events = %v\nwant %v", got, want)
	}
	for _, e := range rec.events {
		if e.Source != "events" {
			t.Errorf("event %s source = %q, want events", e.Type, e.Source)
		}
	}
}

func TestNewFromConfig(t *testing.T) {
	if _, err := graph.NewFromConfig[int](graph.Config{Name: "x", Observer: "noop"}); err != nil {
		t.Errorf("noop observer: %v", err)
	}
	if _, err := graph.NewFromConfig[int](graph.Config{Name: "x", Observer: "missing"}); err == nil {
		t.Error("expected error for unknown observer")
	}
}

func TestPredicates(t *testing.T) {
	even := graph.Predicate[int](func(s int) bool { return s%2 == 0 })
	positive := graph.Predicate[int](func(s int) bool { return s > 0 })

	tests := []struct {
		name string
		p    graph.Predicate[int]
		in   int
		want bool
	}{
		{"always", graph.Always[int](), -1, true},
		{"not even on odd", graph.Not(even), 3, true},
		{"and both", graph.And(even, positive), 4, true},
		{"and one", graph.And(even, positive), -4, false},
		{"or one", graph.Or(even, positive), 3, true},
		{"or none", graph.Or(even, positive), -3, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p(tt.in); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := graph.DefaultConfig("base")
	cfg.Merge(&graph.Config{MaxIterations: 7})

	if cfg.Name != "base" || cfg.Observer != "slog" || cfg.MaxIterations != 7 {
		t.Errorf("merged config = %+v", cfg)
	}
}
