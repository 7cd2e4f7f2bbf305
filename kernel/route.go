package kernel

import "github.com/tailored-agentic-units/webagent/core/protocol"

// Route is the outcome of Decide.
type Route int

const (
	// RouteEnd terminates the turn.
	RouteEnd Route = iota
	// RouteTools runs the requested tools and reasons again.
	RouteTools
)

func (r Route) String() string {
	if r == RouteTools {
		return "tools"
	}
	return "end"
}

// Decide routes on the most recent message: RouteTools if and only if it is
// an assistant message carrying tool calls. Anything else ends the turn.
func Decide(last protocol.Message) Route {
	if last.Role == protocol.RoleAssistant && len(last.ToolCalls) > 0 {
		return RouteTools
	}
	return RouteEnd
}
