package graph

import (
	"context"
	"errors"
	"fmt"

	"github.com/tailored-agentic-units/webagent/observability"
)

// Graph is a directed graph of nodes over state type S. Build it once, then
// Execute it any number of times, concurrently if the nodes allow.
type Graph[S any] struct {
	name          string
	nodes         map[string]Node[S]
	edges         map[string][]Edge[S]
	routers       map[string]Router[S]
	entryPoint    string
	maxIterations int
	observer      observability.Observer
}

// New creates an empty graph. A nil observer discards events.
func New[S any](cfg Config, observer observability.Observer) *Graph[S] {
	if observer == nil {
		observer = observability.NoOpObserver{}
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultConfig(cfg.Name).MaxIterations
	}

	return &Graph[S]{
		name:          cfg.Name,
		nodes:         make(map[string]Node[S]),
		edges:         make(map[string][]Edge[S]),
		routers:       make(map[string]Router[S]),
		maxIterations: cfg.MaxIterations,
		observer:      observer,
	}
}

// NewFromConfig creates a graph whose observer is resolved by name from the
// observability registry.
func NewFromConfig[S any](cfg Config) (*Graph[S], error) {
	observer, err := observability.GetObserver(cfg.Observer)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve observer: %w", err)
	}
	return New[S](cfg, observer), nil
}

// Name returns the graph identifier used in events.
func (g *Graph[S]) Name() string {
	return g.name
}

// AddNode registers a node. Names must be unique and may not be End.
func (g *Graph[S]) AddNode(name string, node Node[S]) error {
	if name == "" {
		return fmt.Errorf("node name cannot be empty")
	}

	if name == End {
		return fmt.Errorf("node name %s is reserved", End)
	}

	if node == nil {
		return fmt.Errorf("node cannot be nil")
	}

	if _, exists := g.nodes[name]; exists {
		return fmt.Errorf("node %s already exists", name)
	}

	g.nodes[name] = node
	return nil
}

// AddEdge adds a transition from one node to another node or End. Edges
// from a node are evaluated in the order they were added and the first
// matching one is taken. A nil predicate always matches.
func (g *Graph[S]) AddEdge(from, to string, predicate Predicate[S]) error {
	if _, exists := g.nodes[from]; !exists {
		return fmt.Errorf("from node %s does not exist", from)
	}

	if _, exists := g.nodes[to]; !exists && to != End {
		return fmt.Errorf("to node %s does not exist", to)
	}

	if _, routed := g.routers[from]; routed {
		return fmt.Errorf("node %s already has conditional edges", from)
	}

	g.edges[from] = append(g.edges[from], Edge[S]{From: from, To: to, Predicate: predicate})
	return nil
}

// AddConditionalEdges makes router the sole transition out of from. The
// router's result must name a node or End.
func (g *Graph[S]) AddConditionalEdges(from string, router Router[S]) error {
	if _, exists := g.nodes[from]; !exists {
		return fmt.Errorf("from node %s does not exist", from)
	}

	if router == nil {
		return fmt.Errorf("router cannot be nil")
	}

	if len(g.edges[from]) > 0 {
		return fmt.Errorf("node %s already has edges", from)
	}

	if _, exists := g.routers[from]; exists {
		return fmt.Errorf("node %s already has conditional edges", from)
	}

	g.routers[from] = router
	return nil
}

// SetEntryPoint defines the starting node. Only one entry point is allowed.
func (g *Graph[S]) SetEntryPoint(node string) error {
	if g.entryPoint != "" {
		return fmt.Errorf("entry point already set to %s", g.entryPoint)
	}

	if _, exists := g.nodes[node]; !exists {
		return fmt.Errorf("entry point node %s does not exist", node)
	}

	g.entryPoint = node
	return nil
}

// Validate checks the graph structure. Execute calls it before every run.
func (g *Graph[S]) Validate() error {
	if len(g.nodes) == 0 {
		return errors.New("graph has no nodes")
	}

	if g.entryPoint == "" {
		return errors.New("entry point not set")
	}

	for name := range g.nodes {
		if len(g.edges[name]) == 0 && g.routers[name] == nil {
			return fmt.Errorf("node %s has no outgoing edges", name)
		}
	}

	return nil
}

// Execute runs the graph from the entry point until a transition reaches
// End. On failure the returned state is the last state produced before the
// failing step.
func (g *Graph[S]) Execute(ctx context.Context, initial S) (S, error) {
	if err := g.Validate(); err != nil {
		return initial, fmt.Errorf("graph validation failed: %w", err)
	}

	observability.Emit(ctx, g.observer, EventGraphStart, observability.LevelVerbose, g.name, map[string]any{
		"entry_point": g.entryPoint,
	})

	current := g.entryPoint
	state := initial
	visited := make(map[string]int)
	path := make([]string, 0, 8)

	for iterations := 1; ; iterations++ {
		if err := ctx.Err(); err != nil {
			return state, &ExecutionError{
				Node: current,
				Path: path,
				Err:  fmt.Errorf("execution cancelled: %w", err),
			}
		}

		if iterations > g.maxIterations {
			return state, &ExecutionError{
				Node: current,
				Path: path,
				Err:  fmt.Errorf("%w (%d)", ErrMaxIterations, g.maxIterations),
			}
		}

		visited[current]++
		path = append(path, current)

		if visited[current] > 1 {
			observability.Emit(ctx, g.observer, EventCycleDetected, observability.LevelVerbose, g.name, map[string]any{
				"node":        current,
				"visit_count": visited[current],
				"iteration":   iterations,
			})
		}

		observability.Emit(ctx, g.observer, EventNodeStart, observability.LevelVerbose, g.name, map[string]any{
			"node":      current,
			"iteration": iterations,
		})

		next, err := g.nodes[current].Execute(ctx, state)

		observability.Emit(ctx, g.observer, EventNodeComplete, observability.LevelVerbose, g.name, map[string]any{
			"node":      current,
			"iteration": iterations,
			"error":     err != nil,
		})

		if err != nil {
			return state, &ExecutionError{
				Node: current,
				Path: path,
				Err:  fmt.Errorf("node execution failed: %w", err),
			}
		}
		state = next

		to, err := g.transition(current, state)
		if err != nil {
			return state, &ExecutionError{Node: current, Path: path, Err: err}
		}

		observability.Emit(ctx, g.observer, EventEdgeTransition, observability.LevelVerbose, g.name, map[string]any{
			"from": current,
			"to":   to,
		})

		if to == End {
			observability.Emit(ctx, g.observer, EventGraphComplete, observability.LevelVerbose, g.name, map[string]any{
				"exit_point": current,
				"iterations": iterations,
			})
			return state, nil
		}

		current = to
	}
}

func (g *Graph[S]) transition(from string, state S) (string, error) {
	if router, ok := g.routers[from]; ok {
		to := router(state)
		if _, exists := g.nodes[to]; !exists && to != End {
			return "", fmt.Errorf("%w: router on %s chose unknown node %q", ErrNoTransition, from, to)
		}
		return to, nil
	}

	for _, edge := range g.edges[from] {
		if edge.Predicate == nil || edge.Predicate(state) {
			return edge.To, nil
		}
	}

	return "", fmt.Errorf("%w from node %s", ErrNoTransition, from)
}
