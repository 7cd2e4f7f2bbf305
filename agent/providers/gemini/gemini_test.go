package gemini_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/webagent/agent"
	"github.com/tailored-agentic-units/webagent/agent/providers/gemini"
	"github.com/tailored-agentic-units/webagent/core/protocol"
)

func newReasoner(t *testing.T, body string, captured *string) *gemini.Reasoner {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			http.NotFound(w, r)
			return
		}
		data, _ := io.ReadAll(r.Body)
		*captured = string(data)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("WEBAGENT_GEMINI_TEST_KEY", "test-key")
	r, err := gemini.New(context.Background(), &agent.Config{
		Model:     "gemini-2.0-flash",
		BaseURL:   srv.URL,
		APIKeyEnv: "WEBAGENT_GEMINI_TEST_KEY",
	}, srv.Client())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return r
}

func TestReasoner_FunctionCallWithoutID(t *testing.T) {
	var request string
	r := newReasoner(t, `{
  "candidates": [{
    "content": {
      "role": "model",
      "parts": [{"functionCall": {"name": "extract_links", "args": {"input": "https://example.com"}}}]
    },
    "finishReason": "STOP"
  }]
}`, &request)

	history := []protocol.Message{
		protocol.NewMessage(protocol.RoleSystem, "you browse"),
		protocol.NewMessage(protocol.RoleUser, "links on example.com"),
	}
	tools := []protocol.Tool{{Name: "extract_links", Description: "Links", Parameters: protocol.TextParameters("url")}}

	msg, err := r.Infer(context.Background(), history, tools)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if len(msg.ToolCalls) != 1 {
		t.Fatalf("got %d tool calls, want 1", len(msg.ToolCalls))
	}
	tc := msg.ToolCalls[0]
	if tc.ID == "" {
		t.Error("missing call id should be generated")
	}
	if tc.Name != "extract_links" || tc.Arguments != `{"input":"https://example.com"}` {
		t.Errorf("tool call = %+v", tc)
	}

	for _, fragment := range []string{"systemInstruction", "you browse", "extract_links", "links on example.com"} {
		if !strings.Contains(request, fragment) {
			t.Errorf("request missing %q: %s", fragment, request)
		}
	}
}

func TestReasoner_TextAndToolResponse(t *testing.T) {
	var request string
	r := newReasoner(t, `{
  "candidates": [{
    "content": {"role": "model", "parts": [{"text": "Found "}, {"text": "two links."}]},
    "finishReason": "STOP"
  }]
}`, &request)

	history := []protocol.Message{
		protocol.NewMessage(protocol.RoleUser, "links?"),
		{Role: protocol.RoleAssistant, ToolCalls: []protocol.ToolCall{protocol.NewToolCall("c1", "extract_links", `{"input":"example.com"}`)}},
		protocol.NewToolResult("c1", "Links found on example.com"),
	}

	msg, err := r.Infer(context.Background(), history, nil)
	if err != nil {
		t.Fatalf("Infer failed: %v", err)
	}
	if msg.Content != "Found two links." || msg.HasToolCalls() {
		t.Errorf("msg = %+v", msg)
	}
	if !strings.Contains(request, "functionResponse") || !strings.Contains(request, "Links found on example.com") {
		t.Errorf("request missing function response: %s", request)
	}
}

func TestReasoner_NoCandidates(t *testing.T) {
	var request string
	r := newReasoner(t, `{"candidates": []}`, &request)

	if _, err := r.Infer(context.Background(), []protocol.Message{protocol.NewMessage(protocol.RoleUser, "x")}, nil); err == nil {
		t.Error("expected error for empty candidates")
	}
}
