// Package ollama implements agent.Reasoner over a local or remote Ollama
// server. Without Config.BaseURL the client honours OLLAMA_HOST.
package ollama

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	jsoniter "github.com/json-iterator/go"

	"github.com/tailored-agentic-units/webagent/agent"
	"github.com/tailored-agentic-units/webagent/core/protocol"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func init() {
	agent.RegisterProvider("ollama", func(cfg *agent.Config) (agent.Reasoner, error) {
		return New(cfg, nil)
	})
}

// Reasoner sends one non-streaming chat request per inference.
type Reasoner struct {
	client  *api.Client
	model   string
	options map[string]any
}

// New creates a Reasoner. httpClient may be nil when BaseURL is set, in
// which case http.DefaultClient is used.
func New(cfg *agent.Config, httpClient *http.Client) (*Reasoner, error) {
	if cfg.Model == "" {
		return nil, agent.ErrMissingModel
	}

	var client *api.Client
	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid base URL: %w", err)
		}
		if httpClient == nil {
			httpClient = http.DefaultClient
		}
		client = api.NewClient(u, httpClient)
	} else {
		var err error
		client, err = api.ClientFromEnvironment()
		if err != nil {
			return nil, err
		}
	}

	return &Reasoner{client: client, model: cfg.Model, options: cfg.Options}, nil
}

// Infer runs the chat request and folds the response into one message.
func (r *Reasoner) Infer(ctx context.Context, history []protocol.Message, tools []protocol.Tool) (protocol.Message, error) {
	apiTools, err := convertTools(tools)
	if err != nil {
		return protocol.Message{}, err
	}

	stream := false
	req := &api.ChatRequest{
		Model:    r.model,
		Messages: convertHistory(history),
		Tools:    apiTools,
		Stream:   &stream,
		Options:  r.options,
	}

	msg := protocol.Message{Role: protocol.RoleAssistant}
	var content strings.Builder
	err = r.client.Chat(ctx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		for _, tc := range resp.Message.ToolCalls {
			args, err := json.Marshal(tc.Function.Arguments)
			if err != nil {
				slog.Warn("Failed to marshal tool call arguments", "provider", "ollama", "error", err)
				args = []byte("{}")
			}
			msg.ToolCalls = append(msg.ToolCalls, protocol.NewToolCall(agent.CallID(tc.ID), tc.Function.Name, string(args)))
		}
		return nil
	})
	if err != nil {
		return protocol.Message{}, err
	}

	msg.Content = content.String()
	return msg, nil
}

func convertHistory(history []protocol.Message) []api.Message {
	out := make([]api.Message, 0, len(history))

	for _, m := range history {
		msg := api.Message{
			Role:    string(m.Role),
			Content: m.Content,
		}

		for _, tc := range m.ToolCalls {
			var args api.ToolCallFunctionArguments
			encoded := agent.EncodeArguments(agent.DecodeArguments(tc.Arguments))
			if err := json.Unmarshal([]byte(encoded), &args); err != nil {
				slog.Warn("Failed to unmarshal to api.ToolCallFunctionArguments", "provider", "ollama", "error", err)
			}
			msg.ToolCalls = append(msg.ToolCalls, api.ToolCall{
				ID: tc.ID,
				Function: api.ToolCallFunction{
					Name:      tc.Name,
					Arguments: args,
				},
			})
		}

		if m.Role == protocol.RoleTool {
			msg.ToolCallID = m.ToolCallID
		}

		out = append(out, msg)
	}

	return out
}

// convertTools goes through JSON because api.Tool's parameter types do not
// line up with a plain JSON schema map.
func convertTools(tools []protocol.Tool) ([]api.Tool, error) {
	if len(tools) == 0 {
		return nil, nil
	}

	wire := make([]map[string]any, 0, len(tools))
	for _, t := range tools {
		wire = append(wire, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        t.Name,
				"description": t.Description,
				"parameters":  t.Parameters,
			},
		})
	}

	data, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("encode tools: %w", err)
	}

	var out []api.Tool
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode tools: %w", err)
	}
	return out, nil
}
