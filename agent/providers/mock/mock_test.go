package mock_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tailored-agentic-units/webagent/agent"
	"github.com/tailored-agentic-units/webagent/agent/providers/mock"
	"github.com/tailored-agentic-units/webagent/core/protocol"
)

func TestReasoner_Script(t *testing.T) {
	boom := errors.New("boom")
	r := mock.New(
		mock.CallTool("c1", "browse_website", "example.com"),
		mock.Fail(boom),
		mock.Reply("done"),
	)

	history := []protocol.Message{protocol.NewMessage(protocol.RoleUser, "hi")}

	first, err := r.Infer(context.Background(), history, nil)
	if err != nil {
		t.Fatalf("step 1: %v", err)
	}
	if len(first.ToolCalls) != 1 || first.ToolCalls[0].ID != "c1" || first.ToolCalls[0].Arguments != `{"input":"example.com"}` {
		t.Errorf("step 1 = %+v", first)
	}

	if _, err := r.Infer(context.Background(), history, nil); !errors.Is(err, boom) {
		t.Errorf("step 2 error = %v, want boom", err)
	}

	third, _ := r.Infer(context.Background(), history, nil)
	if third.Content != "done" || third.Role != protocol.RoleAssistant {
		t.Errorf("step 3 = %+v", third)
	}

	fourth, _ := r.Infer(context.Background(), history, nil)
	if fourth.Content != "echo: hi" {
		t.Errorf("exhausted script = %q, want echo", fourth.Content)
	}

	if len(r.Calls()) != 4 || r.Remaining() != 0 {
		t.Errorf("calls = %d, remaining = %d", len(r.Calls()), r.Remaining())
	}
}

func TestReasoner_DelayHonoursContext(t *testing.T) {
	r := mock.New(mock.Step{Message: protocol.NewMessage(protocol.RoleAssistant, "late"), Delay: time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if _, err := r.Infer(ctx, nil, nil); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want DeadlineExceeded", err)
	}
}

func TestReasoner_RecordsCopies(t *testing.T) {
	r := mock.New()
	history := []protocol.Message{protocol.NewMessage(protocol.RoleUser, "original")}
	tools := []protocol.Tool{{Name: "search_web"}}

	_, _ = r.Infer(context.Background(), history, tools)
	history[0].Content = "changed"

	call := r.Calls()[0]
	if call.History[0].Content != "original" {
		t.Error("recorded history aliases caller slice")
	}
	if len(call.Tools) != 1 || call.Tools[0].Name != "search_web" {
		t.Errorf("recorded tools = %+v", call.Tools)
	}
}

func TestFromConfig(t *testing.T) {
	r, err := agent.New(&agent.Config{
		Provider: "mock",
		Options:  map[string]any{"replies": []any{"one", "two"}},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for _, want := range []string{"one", "two"} {
		msg, err := r.Infer(context.Background(), nil, nil)
		if err != nil {
			t.Fatalf("Infer failed: %v", err)
		}
		if msg.Content != want {
			t.Errorf("got %q, want %q", msg.Content, want)
		}
	}

	if _, err := agent.New(&agent.Config{Provider: "mock", Options: map[string]any{"replies": "x"}}); err == nil {
		t.Error("expected error for non-list replies")
	}
}
