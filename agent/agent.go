// Package agent defines the reasoning adapter contract: given the
// conversation so far and the tools on offer, a Reasoner produces the next
// assistant message. Concrete providers live under agent/providers and
// register themselves by name.
package agent

import (
	"context"

	"github.com/tailored-agentic-units/webagent/core/protocol"
)

// Reasoner produces the next assistant message for a history. The returned
// message has RoleAssistant and either text content, tool calls, or both.
// Every tool call carries a non-empty ID unique within the message.
type Reasoner interface {
	Infer(ctx context.Context, history []protocol.Message, tools []protocol.Tool) (protocol.Message, error)
}

// ReasonerFunc adapts a function to Reasoner.
type ReasonerFunc func(ctx context.Context, history []protocol.Message, tools []protocol.Tool) (protocol.Message, error)

// Infer calls f.
func (f ReasonerFunc) Infer(ctx context.Context, history []protocol.Message, tools []protocol.Tool) (protocol.Message, error) {
	return f(ctx, history, tools)
}
