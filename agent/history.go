package agent

import (
	"strings"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/tailored-agentic-units/webagent/core/protocol"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Sanitize returns a copy of history that providers will accept. Each
// assistant message with tool calls is matched against the run of tool
// results directly after it. Calls with no result in that run are dropped,
// along with any assistant message left with neither text nor calls. Tool
// results that answer no call of the preceding assistant message are
// dropped as well. Such gaps appear when a turn is cancelled or fails
// between appending an assistant message and its results. Matching by
// position keeps an id reused in a later turn from being treated as
// answered by an earlier result.
func Sanitize(history []protocol.Message) []protocol.Message {
	out := make([]protocol.Message, 0, len(history))
	for i := 0; i < len(history); i++ {
		m := history[i]
		switch {
		case m.Role == protocol.RoleAssistant && m.HasToolCalls():
			end := i + 1
			for end < len(history) && history[end].Role == protocol.RoleTool {
				end++
			}
			out = append(out, answeredBlock(m, history[i+1:end])...)
			i = end - 1
		case m.Role == protocol.RoleTool:
			continue
		default:
			out = append(out, m.Clone())
		}
	}
	return out
}

// answeredBlock keeps the calls of m answered in results, followed by the
// first result for each kept call.
func answeredBlock(m protocol.Message, results []protocol.Message) []protocol.Message {
	answered := make(map[string]bool, len(results))
	for _, r := range results {
		if r.ToolCallID != "" {
			answered[r.ToolCallID] = true
		}
	}

	m = m.Clone()
	kept := m.ToolCalls[:0]
	requested := make(map[string]bool, len(m.ToolCalls))
	for _, tc := range m.ToolCalls {
		if answered[tc.ID] && !requested[tc.ID] {
			kept = append(kept, tc)
			requested[tc.ID] = true
		}
	}

	out := make([]protocol.Message, 0, len(results)+1)
	if len(kept) == 0 {
		m.ToolCalls = nil
		if m.Content == "" {
			return out
		}
		return append(out, m)
	}
	m.ToolCalls = kept
	out = append(out, m)

	for _, r := range results {
		if requested[r.ToolCallID] {
			out = append(out, r.Clone())
			delete(requested, r.ToolCallID)
		}
	}
	return out
}

// WithSystemPrompt prepends a system message when prompt is non-empty.
func WithSystemPrompt(prompt string, history []protocol.Message) []protocol.Message {
	if prompt == "" {
		return history
	}
	out := make([]protocol.Message, 0, len(history)+1)
	out = append(out, protocol.NewMessage(protocol.RoleSystem, prompt))
	return append(out, history...)
}

// CallID returns id, or a fresh UUID when the backend omitted one.
func CallID(id string) string {
	if id != "" {
		return id
	}
	return "call_" + uuid.NewString()
}

// DecodeArguments parses tool call arguments into an object. Arguments that
// are not a JSON object are wrapped as {"input": <text>}.
func DecodeArguments(arguments string) map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(arguments), &args); err == nil && args != nil {
		return args
	}

	var text string
	if err := json.Unmarshal([]byte(arguments), &text); err != nil {
		text = strings.TrimSpace(arguments)
	}
	return map[string]any{"input": text}
}

// EncodeArguments renders decoded arguments back to JSON text.
func EncodeArguments(args map[string]any) string {
	if len(args) == 0 {
		return "{}"
	}
	data, err := json.Marshal(args)
	if err != nil {
		return "{}"
	}
	return string(data)
}
