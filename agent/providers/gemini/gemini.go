// Package gemini implements agent.Reasoner over the Gemini API via
// google.golang.org/genai.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/tailored-agentic-units/webagent/agent"
	"github.com/tailored-agentic-units/webagent/core/protocol"
)

func init() {
	agent.RegisterProvider("gemini", func(cfg *agent.Config) (agent.Reasoner, error) {
		return New(context.Background(), cfg, nil)
	})
}

// ErrNoCandidates is returned when the API answers without a candidate.
var ErrNoCandidates = errors.New("gemini returned no candidates")

// Reasoner calls Models.GenerateContent once per inference.
type Reasoner struct {
	client *genai.Client
	model  string
	config genai.GenerateContentConfig
}

// New creates a Reasoner. httpClient may be nil.
func New(ctx context.Context, cfg *agent.Config, httpClient *http.Client) (*Reasoner, error) {
	if cfg.Model == "" {
		return nil, agent.ErrMissingModel
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey(),
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	r := &Reasoner{client: client, model: cfg.Model}
	if t, ok := cfg.Float("temperature"); ok {
		r.config.Temperature = genai.Ptr(float32(t))
	}
	if p, ok := cfg.Float("top_p"); ok {
		r.config.TopP = genai.Ptr(float32(p))
	}
	if n, ok := cfg.Float("max_tokens"); ok {
		r.config.MaxOutputTokens = int32(n)
	}
	return r, nil
}

// Infer converts the history to Gemini contents, sends it with the tool
// declarations and maps the first candidate back to an assistant message.
func (r *Reasoner) Infer(ctx context.Context, history []protocol.Message, tools []protocol.Tool) (protocol.Message, error) {
	contents, system := convertHistory(history)

	config := r.config
	config.SystemInstruction = system
	if len(tools) > 0 {
		config.Tools = []*genai.Tool{{FunctionDeclarations: declarations(tools)}}
	}

	resp, err := r.client.Models.GenerateContent(ctx, r.model, contents, &config)
	if err != nil {
		return protocol.Message{}, err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return protocol.Message{}, ErrNoCandidates
	}

	msg := protocol.Message{Role: protocol.RoleAssistant}
	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		switch {
		case part.FunctionCall != nil:
			fc := part.FunctionCall
			msg.ToolCalls = append(msg.ToolCalls, protocol.NewToolCall(agent.CallID(fc.ID), fc.Name, agent.EncodeArguments(fc.Args)))
		case part.Text != "" && !part.Thought:
			text.WriteString(part.Text)
		}
	}
	msg.Content = text.String()
	return msg, nil
}

// convertHistory maps messages to contents. System messages become the
// system instruction. Tool results need the function name, which Gemini
// keys responses by, so it is recovered from the originating call.
func convertHistory(history []protocol.Message) ([]*genai.Content, *genai.Content) {
	var (
		contents []*genai.Content
		system   *genai.Content
		names    = make(map[string]string)
	)

	for _, m := range history {
		switch m.Role {
		case protocol.RoleSystem:
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, &genai.Part{Text: m.Content})

		case protocol.RoleUser:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))

		case protocol.RoleAssistant:
			var parts []*genai.Part
			if m.Content != "" {
				parts = append(parts, &genai.Part{Text: m.Content})
			}
			for _, tc := range m.ToolCalls {
				names[tc.ID] = tc.Name
				parts = append(parts, &genai.Part{FunctionCall: &genai.FunctionCall{
					ID:   tc.ID,
					Name: tc.Name,
					Args: agent.DecodeArguments(tc.Arguments),
				}})
			}
			if len(parts) > 0 {
				contents = append(contents, &genai.Content{Role: "model", Parts: parts})
			}

		case protocol.RoleTool:
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []*genai.Part{{FunctionResponse: &genai.FunctionResponse{
					ID:       m.ToolCallID,
					Name:     names[m.ToolCallID],
					Response: map[string]any{"result": m.Content},
				}}},
			})
		}
	}

	return contents, system
}

func declarations(tools []protocol.Tool) []*genai.FunctionDeclaration {
	out := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		out = append(out, &genai.FunctionDeclaration{
			Name:                 t.Name,
			Description:          t.Description,
			ParametersJsonSchema: t.Parameters,
		})
	}
	return out
}
