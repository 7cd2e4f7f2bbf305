package kernel

import "github.com/tailored-agentic-units/webagent/observability"

// Kernel event types emitted during a turn.
const (
	EventTurnStart    observability.EventType = "kernel.turn.start"
	EventReasoning    observability.EventType = "kernel.reasoning"
	EventRoute        observability.EventType = "kernel.route"
	EventToolCall     observability.EventType = "kernel.tool.call"
	EventToolComplete observability.EventType = "kernel.tool.complete"
	EventTurnComplete observability.EventType = "kernel.turn.complete"
	EventError        observability.EventType = "kernel.error"
)
