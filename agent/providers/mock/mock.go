// Package mock provides a scripted Reasoner for tests and offline runs.
package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tailored-agentic-units/webagent/agent"
	"github.com/tailored-agentic-units/webagent/core/protocol"
)

func init() {
	agent.RegisterProvider("mock", FromConfig)
}

// Step is one scripted reasoner response.
type Step struct {
	Message protocol.Message
	Err     error

	// Delay holds the response back; a context that ends first wins.
	Delay time.Duration
}

// Reply scripts a final text answer.
func Reply(text string) Step {
	return Step{Message: protocol.NewMessage(protocol.RoleAssistant, text)}
}

// CallTool scripts a single tool call whose argument is {"input": input}.
func CallTool(id, name, input string) Step {
	return CallTools(protocol.NewToolCall(id, name, agent.EncodeArguments(map[string]any{"input": input})))
}

// CallTools scripts one assistant message carrying several tool calls.
func CallTools(calls ...protocol.ToolCall) Step {
	return Step{Message: protocol.Message{Role: protocol.RoleAssistant, ToolCalls: calls}}
}

// Fail scripts a reasoner failure.
func Fail(err error) Step {
	return Step{Err: err}
}

// Call records one Infer invocation.
type Call struct {
	History []protocol.Message
	Tools   []protocol.Tool
}

// Reasoner replays steps in order. Once the script is exhausted it echoes
// the latest user message.
type Reasoner struct {
	mu    sync.Mutex
	steps []Step
	next  int
	calls []Call
}

// New creates a Reasoner that replays steps.
func New(steps ...Step) *Reasoner {
	return &Reasoner{steps: steps}
}

// Infer returns the next scripted step.
func (r *Reasoner) Infer(ctx context.Context, history []protocol.Message, tools []protocol.Tool) (protocol.Message, error) {
	r.mu.Lock()
	r.calls = append(r.calls, Call{
		History: protocol.CloneMessages(history),
		Tools:   append([]protocol.Tool(nil), tools...),
	})
	var step Step
	if r.next < len(r.steps) {
		step = r.steps[r.next]
		r.next++
	} else {
		step = Reply(echo(history))
	}
	r.mu.Unlock()

	if step.Delay > 0 {
		timer := time.NewTimer(step.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return protocol.Message{}, ctx.Err()
		}
	}

	if step.Err != nil {
		return protocol.Message{}, step.Err
	}
	return step.Message.Clone(), nil
}

// Calls returns the recorded invocations.
func (r *Reasoner) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// Remaining reports how many scripted steps have not been consumed.
func (r *Reasoner) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.steps) - r.next
}

func echo(history []protocol.Message) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].Role == protocol.RoleUser {
			return fmt.Sprintf("echo: %s", history[i].Content)
		}
	}
	return "echo:"
}

// FromConfig builds a Reasoner whose script is Options["replies"], a list
// of strings returned in order.
func FromConfig(cfg *agent.Config) (agent.Reasoner, error) {
	var steps []Step
	if raw, ok := cfg.Options["replies"]; ok {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("mock: replies must be a list, got %T", raw)
		}
		for _, item := range list {
			text, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("mock: reply must be a string, got %T", item)
			}
			steps = append(steps, Reply(text))
		}
	}
	return New(steps...), nil
}
