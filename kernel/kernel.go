// Package kernel implements the agent graph engine: a turn appends the user
// message, then alternates reasoning and tool execution until the reasoner
// answers without tool calls.
//
// The kernel initializes from configuration via New, creating the
// subsystems that functional options did not supply.
//
//	k, err := kernel.New(&cfg)
//	reply, err := k.RunTurn(ctx, "local_session", "browse example.com")
package kernel

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tailored-agentic-units/webagent/agent"
	"github.com/tailored-agentic-units/webagent/core/protocol"
	"github.com/tailored-agentic-units/webagent/graph"
	"github.com/tailored-agentic-units/webagent/observability"
	"github.com/tailored-agentic-units/webagent/pool"
	"github.com/tailored-agentic-units/webagent/session"
	"github.com/tailored-agentic-units/webagent/tools"
	"github.com/tailored-agentic-units/webagent/tools/notify"
)

const (
	nodeReasoning = "reasoning"
	nodeTools     = "tools"
)

// Result holds the outcome of a turn.
type Result struct {
	SessionID  string           // Session the turn ran on; generated when the caller passed "".
	Response   string           // Content of the final assistant message.
	RoundTrips int              // Completed reasoning to tool round trips.
	ToolCalls  []ToolCallRecord // Log of all tool invocations in request order.
}

// ToolCallRecord logs one tool invocation.
type ToolCallRecord struct {
	protocol.ToolCall
	RoundTrip int           // Round trip in which the call ran, starting at 1.
	Result    string        // Content of the tool message.
	IsError   bool          // Whether the content is an error description.
	Duration  time.Duration // Wall time of the invocation.
}

// Option configures a Kernel. Options run before config-driven
// initialization, and subsystems they supply are not created from config.
type Option func(*Kernel)

// WithReasoner overrides the config-created reasoner.
func WithReasoner(r agent.Reasoner) Option {
	return func(k *Kernel) { k.reasoner = r }
}

// WithRegistry overrides the built-in tool registry.
func WithRegistry(r *tools.Registry) Option {
	return func(k *Kernel) { k.registry = r }
}

// WithStore overrides the config-created session store.
func WithStore(s session.Store) Option {
	return func(k *Kernel) { k.store = s }
}

// WithObserver overrides the configured observer. Repeated options fan out
// to every observer given.
func WithObserver(o observability.Observer) Option {
	return func(k *Kernel) {
		if k.observer == nil {
			k.observer = o
			return
		}
		k.observer = observability.NewMultiObserver(k.observer, o)
	}
}

// Kernel runs turns. It is safe for concurrent use; turns on one session
// are serialized and turns on different sessions run independently.
type Kernel struct {
	reasoner agent.Reasoner
	provider string
	registry *tools.Registry
	notifier *notify.Notifier
	store    session.Store
	observer observability.Observer
	graph    *graph.Graph[*turn]

	capabilities     []protocol.Tool
	maxRoundTrips    int
	reasoningTimeout time.Duration
	toolTimeout      time.Duration
	parallelTools    bool
	toolWorkers      int
	systemPrompt     string
}

// New creates a Kernel from configuration. A nil cfg uses DefaultConfig.
func New(cfg *Config, opts ...Option) (*Kernel, error) {
	if cfg == nil {
		d := DefaultConfig()
		cfg = &d
	}

	k := &Kernel{
		provider:         cfg.Agent.Provider,
		maxRoundTrips:    cfg.MaxRoundTrips,
		reasoningTimeout: cfg.ReasoningTimeout(),
		toolTimeout:      cfg.ToolTimeout(),
		parallelTools:    cfg.ParallelTools,
		toolWorkers:      cfg.ToolWorkers,
		systemPrompt:     cfg.SystemPrompt,
	}
	if k.maxRoundTrips <= 0 {
		k.maxRoundTrips = defaultMaxRoundTrips
	}

	for _, opt := range opts {
		opt(k)
	}

	if k.observer == nil {
		name := cfg.Observer
		if name == "" {
			name = "slog"
		}
		obs, err := observability.GetObserver(name)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve observer: %w", err)
		}
		k.observer = obs
	}

	if k.reasoner == nil {
		r, err := agent.New(&cfg.Agent)
		if err != nil {
			return nil, fmt.Errorf("failed to create reasoner: %w", err)
		}
		k.reasoner = r
	}

	if k.registry == nil {
		reg, notifier, err := BuiltinTools(cfg, nil)
		if err != nil {
			return nil, err
		}
		k.registry = reg
		k.notifier = notifier
	}
	k.registry.Seal()
	k.capabilities = k.registry.Capabilities()

	if k.store == nil {
		store, err := session.New(&cfg.Session)
		if err != nil {
			return nil, fmt.Errorf("failed to create session store: %w", err)
		}
		k.store = store
	}

	g, err := k.buildGraph()
	if err != nil {
		return nil, fmt.Errorf("failed to build agent graph: %w", err)
	}
	k.graph = g

	return k, nil
}

// buildGraph wires reasoning -> (Decide) -> tools | End, tools -> reasoning.
// The iteration cap sits above the round-trip budget so the budget error is
// the one a runaway reasoner hits.
func (k *Kernel) buildGraph() (*graph.Graph[*turn], error) {
	g := graph.New[*turn](graph.Config{
		Name:          "kernel.graph",
		MaxIterations: 2*k.maxRoundTrips + 2,
	}, k.observer)

	if err := g.AddNode(nodeReasoning, graph.NodeFunc[*turn](k.reason)); err != nil {
		return nil, err
	}
	if err := g.AddNode(nodeTools, graph.NodeFunc[*turn](k.runTools)); err != nil {
		return nil, err
	}
	if err := g.AddConditionalEdges(nodeReasoning, k.route); err != nil {
		return nil, err
	}
	if err := g.AddEdge(nodeTools, nodeReasoning, nil); err != nil {
		return nil, err
	}
	if err := g.SetEntryPoint(nodeReasoning); err != nil {
		return nil, err
	}
	return g, nil
}

// Store returns the session store.
func (k *Kernel) Store() session.Store {
	return k.store
}

// Tools returns the capabilities advertised to the reasoner.
func (k *Kernel) Tools() []protocol.Tool {
	return append([]protocol.Tool(nil), k.capabilities...)
}

// Notifier returns the push notifier of the built-in registry, or nil when
// the registry was supplied by WithRegistry.
func (k *Kernel) Notifier() *notify.Notifier {
	return k.notifier
}

// History returns a copy of a session's messages.
func (k *Kernel) History(sessionID string) ([]protocol.Message, error) {
	return k.store.Snapshot(sessionID)
}

// RunTurn runs one turn and returns the final assistant text.
func (k *Kernel) RunTurn(ctx context.Context, sessionID, text string) (string, error) {
	result, err := k.Run(ctx, sessionID, text)
	if err != nil {
		return "", err
	}
	return result.Response, nil
}

// Run executes one turn on sessionID, creating the session on first use. An
// empty sessionID gets a fresh UUIDv7 id, reported in Result.SessionID.
//
// Failures: *agent.ReasoningServiceError when the reasoner fails or times
// out, *TurnBudgetExceededError when the round-trip cap is hit, the context
// error on cancellation, and *session.UnknownSessionError from read-only
// stores. Tool failures never fail a turn. On failure the returned Result
// still reports the work done before it.
func (k *Kernel) Run(ctx context.Context, sessionID, text string) (*Result, error) {
	if sessionID == "" {
		sessionID = uuid.Must(uuid.NewV7()).String()
	}
	result := &Result{SessionID: sessionID}

	unlock, err := k.store.Lock(ctx, sessionID)
	if err != nil {
		return result, err
	}
	defer unlock()

	if _, err := k.store.GetOrCreate(sessionID); err != nil {
		return result, err
	}

	observability.Emit(ctx, k.observer, EventTurnStart, observability.LevelInfo, "kernel.Run", map[string]any{
		"session_id":      sessionID,
		"input_length":    len(text),
		"max_round_trips": k.maxRoundTrips,
		"tools":           len(k.capabilities),
	})

	if err := k.store.Append(sessionID, protocol.NewMessage(protocol.RoleUser, text)); err != nil {
		return result, err
	}

	t := &turn{sessionID: sessionID, ids: make(map[string]bool)}
	_, err = k.graph.Execute(ctx, t)

	result.RoundTrips = t.roundTrips
	result.ToolCalls = t.records

	if err != nil {
		switch {
		case t.err != nil:
			err = t.err
		case ctx.Err() != nil:
			err = ctx.Err()
		}
		observability.Emit(ctx, k.observer, EventError, observability.LevelError, "kernel.Run", map[string]any{
			"session_id":  sessionID,
			"round_trips": t.roundTrips,
			"error":       err.Error(),
		})
		return result, err
	}

	result.Response = t.last.Content

	observability.Emit(ctx, k.observer, EventTurnComplete, observability.LevelInfo, "kernel.Run", map[string]any{
		"session_id":      sessionID,
		"round_trips":     t.roundTrips,
		"tool_calls":      len(t.records),
		"response_length": len(result.Response),
	})

	return result, nil
}

// turn is the graph state for one Run.
type turn struct {
	sessionID  string
	last       protocol.Message
	roundTrips int
	ids        map[string]bool
	records    []ToolCallRecord
	err        error
}

// fail records err as the turn's outcome and hands it to the graph.
func (t *turn) fail(err error) (*turn, error) {
	t.err = err
	return t, err
}

// claimIDs gives every tool call an id unique within the turn. Providers
// normally do this; the kernel relies on it to match results to requests.
func (t *turn) claimIDs(msg *protocol.Message) {
	for i := range msg.ToolCalls {
		id := msg.ToolCalls[i].ID
		if id == "" || t.ids[id] {
			id = agent.CallID("")
		}
		t.ids[id] = true
		msg.ToolCalls[i].ID = id
	}
}

func (k *Kernel) reason(ctx context.Context, t *turn) (*turn, error) {
	history, err := k.store.Snapshot(t.sessionID)
	if err != nil {
		return t.fail(err)
	}
	history = agent.WithSystemPrompt(k.systemPrompt, agent.Sanitize(history))

	stepCtx, cancel := withTimeout(ctx, k.reasoningTimeout)
	defer cancel()

	start := time.Now()
	msg, err := k.reasoner.Infer(stepCtx, history, k.capabilities)

	if ctx.Err() != nil {
		return t.fail(ctx.Err())
	}
	if err != nil {
		return t.fail(&agent.ReasoningServiceError{Provider: k.provider, Err: err})
	}

	msg.Role = protocol.RoleAssistant
	msg.ToolCallID = ""
	t.claimIDs(&msg)

	if err := k.store.Append(t.sessionID, msg); err != nil {
		return t.fail(err)
	}
	t.last = msg

	observability.Emit(ctx, k.observer, EventReasoning, observability.LevelVerbose, "kernel.reason", map[string]any{
		"session_id":      t.sessionID,
		"round_trip":      t.roundTrips,
		"history":         len(history),
		"tool_calls":      len(msg.ToolCalls),
		"response_length": len(msg.Content),
		"duration_ms":     time.Since(start).Milliseconds(),
	})

	return t, nil
}

func (k *Kernel) route(t *turn) string {
	r := Decide(t.last)

	observability.Emit(context.Background(), k.observer, EventRoute, observability.LevelVerbose, "kernel.route", map[string]any{
		"session_id": t.sessionID,
		"route":      r.String(),
	})

	if r == RouteTools {
		return nodeTools
	}
	return graph.End
}

// runTools executes every call of the last assistant message and appends
// the results in request order, all at once, so a cancelled step leaves no
// partial set behind.
func (k *Kernel) runTools(ctx context.Context, t *turn) (*turn, error) {
	if t.roundTrips >= k.maxRoundTrips {
		return t.fail(&TurnBudgetExceededError{SessionID: t.sessionID, Limit: k.maxRoundTrips})
	}
	t.roundTrips++

	calls := t.last.ToolCalls
	workers := 1
	if k.parallelTools {
		workers = len(calls)
		if k.toolWorkers > 0 {
			workers = k.toolWorkers
		}
	}

	outcomes := pool.Map(ctx, workers, calls, func(ctx context.Context, call protocol.ToolCall) toolOutcome {
		msg, rec := k.invoke(ctx, t, call)
		return toolOutcome{msg, rec}
	})

	if ctx.Err() != nil {
		return t.fail(ctx.Err())
	}

	messages := make([]protocol.Message, len(outcomes))
	records := make([]ToolCallRecord, len(outcomes))
	for i, o := range outcomes {
		messages[i], records[i] = o.message, o.record
	}

	if err := k.store.Append(t.sessionID, messages...); err != nil {
		return t.fail(err)
	}
	t.records = append(t.records, records...)

	return t, nil
}

type toolOutcome struct {
	message protocol.Message
	record  ToolCallRecord
}

// invoke runs one tool call. Failures, including unknown tools and
// timeouts, become the content of the tool message.
func (k *Kernel) invoke(ctx context.Context, t *turn, call protocol.ToolCall) (protocol.Message, ToolCallRecord) {
	observability.Emit(ctx, k.observer, EventToolCall, observability.LevelVerbose, "kernel.invoke", map[string]any{
		"session_id": t.sessionID,
		"round_trip": t.roundTrips,
		"name":       call.Name,
		"call_id":    call.ID,
	})

	start := time.Now()
	out, err := k.callTool(ctx, call)

	record := ToolCallRecord{
		ToolCall:  call,
		RoundTrip: t.roundTrips,
		Result:    out,
		Duration:  time.Since(start),
	}
	if err != nil {
		invErr := &ToolInvocationError{Tool: call.Name, CallID: call.ID, Err: err}
		record.Result = invErr.Error()
		record.IsError = true
	}

	observability.Emit(ctx, k.observer, EventToolComplete, observability.LevelVerbose, "kernel.invoke", map[string]any{
		"session_id":  t.sessionID,
		"round_trip":  t.roundTrips,
		"name":        call.Name,
		"call_id":     call.ID,
		"error":       record.IsError,
		"duration_ms": record.Duration.Milliseconds(),
	})

	return protocol.NewToolResult(call.ID, record.Result), record
}

// callTool enforces the tool timeout even for tools that ignore their
// context. An abandoned call finishes in the background.
func (k *Kernel) callTool(ctx context.Context, call protocol.ToolCall) (string, error) {
	stepCtx, cancel := withTimeout(ctx, k.toolTimeout)
	defer cancel()

	type outcome struct {
		out string
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		out, err := k.registry.Invoke(stepCtx, call.Name, call.Arguments)
		done <- outcome{out, err}
	}()

	select {
	case o := <-done:
		return o.out, o.err
	case <-stepCtx.Done():
		if errors.Is(stepCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", fmt.Errorf("timed out after %s: %w", k.toolTimeout, stepCtx.Err())
		}
		return "", stepCtx.Err()
	}
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
