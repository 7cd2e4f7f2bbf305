// Package openai implements agent.Reasoner over the OpenAI Responses API.
// Any OpenAI-compatible endpoint works through Config.BaseURL.
package openai

import (
	"context"

	oai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"

	"github.com/tailored-agentic-units/webagent/agent"
	"github.com/tailored-agentic-units/webagent/core/protocol"
)

func init() {
	agent.RegisterProvider("openai", func(cfg *agent.Config) (agent.Reasoner, error) {
		return New(cfg)
	})
}

// Reasoner calls client.Responses.New once per inference.
type Reasoner struct {
	client oai.Client
	model  string
	opts   []option.RequestOption
}

// New creates a Reasoner. Extra request options are applied to every call.
func New(cfg *agent.Config, extra ...option.RequestOption) (*Reasoner, error) {
	if cfg.Model == "" {
		return nil, agent.ErrMissingModel
	}

	clientOpts := []option.RequestOption{option.WithAPIKey(cfg.APIKey())}
	if cfg.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(cfg.BaseURL))
	}
	clientOpts = append(clientOpts, extra...)

	var reqOpts []option.RequestOption
	if t, ok := cfg.Float("temperature"); ok {
		reqOpts = append(reqOpts, option.WithJSONSet("temperature", t))
	}
	if p, ok := cfg.Float("top_p"); ok {
		reqOpts = append(reqOpts, option.WithJSONSet("top_p", p))
	}
	if n, ok := cfg.Float("max_tokens"); ok {
		reqOpts = append(reqOpts, option.WithJSONSet("max_output_tokens", int(n)))
	}

	return &Reasoner{
		client: oai.NewClient(clientOpts...),
		model:  cfg.Model,
		opts:   reqOpts,
	}, nil
}

// Infer sends the history and tool set, then maps output text and
// function_call items back to an assistant message.
func (r *Reasoner) Infer(ctx context.Context, history []protocol.Message, tools []protocol.Tool) (protocol.Message, error) {
	params := responses.ResponseNewParams{
		Model: r.model,
		Input: responses.ResponseNewParamsInputUnion{
			OfInputItemList: inputItems(history),
		},
	}
	if len(tools) > 0 {
		params.Tools = toolParams(tools)
	}

	resp, err := r.client.Responses.New(ctx, params, r.opts...)
	if err != nil {
		return protocol.Message{}, err
	}

	msg := protocol.Message{
		Role:    protocol.RoleAssistant,
		Content: resp.OutputText(),
	}
	for _, item := range resp.Output {
		if item.Type != "function_call" {
			continue
		}
		fc := item.AsFunctionCall()
		msg.ToolCalls = append(msg.ToolCalls, protocol.NewToolCall(agent.CallID(fc.CallID), fc.Name, fc.Arguments))
	}
	return msg, nil
}

func inputItems(history []protocol.Message) []responses.ResponseInputItemUnionParam {
	items := make([]responses.ResponseInputItemUnionParam, 0, len(history))

	for _, m := range history {
		switch m.Role {
		case protocol.RoleSystem:
			items = append(items, responses.ResponseInputItemParamOfMessage(m.Content, responses.EasyInputMessageRoleSystem))
		case protocol.RoleUser:
			items = append(items, responses.ResponseInputItemParamOfMessage(m.Content, responses.EasyInputMessageRoleUser))
		case protocol.RoleAssistant:
			if m.Content != "" {
				items = append(items, responses.ResponseInputItemParamOfMessage(m.Content, responses.EasyInputMessageRoleAssistant))
			}
			for _, tc := range m.ToolCalls {
				items = append(items, responses.ResponseInputItemParamOfFunctionCall(tc.Arguments, tc.ID, tc.Name))
			}
		case protocol.RoleTool:
			items = append(items, responses.ResponseInputItemParamOfFunctionCallOutput(m.ToolCallID, m.Content))
		}
	}

	return items
}

func toolParams(tools []protocol.Tool) []responses.ToolUnionParam {
	out := make([]responses.ToolUnionParam, 0, len(tools))
	for _, t := range tools {
		out = append(out, responses.ToolUnionParam{
			OfFunction: &responses.FunctionToolParam{
				Name:        t.Name,
				Description: oai.String(t.Description),
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}
