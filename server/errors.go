package server

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/tailored-agentic-units/webagent/agent"
	"github.com/tailored-agentic-units/webagent/kernel"
	"github.com/tailored-agentic-units/webagent/session"
)

var (
	ErrMissingText    = errors.New("text is required")
	ErrMissingSession = errors.New("session_id is required")
)

// ErrorCode maps a turn failure to the Connect code reported to clients.
// A reasoning timeout is a reasoning service failure and maps to
// CodeUnavailable; CodeDeadlineExceeded is reserved for the caller's own
// deadline.
func ErrorCode(err error) connect.Code {
	switch {
	case errors.Is(err, ErrMissingText), errors.Is(err, ErrMissingSession):
		return connect.CodeInvalidArgument
	case errors.Is(err, kernel.ErrTurnBudgetExceeded):
		return connect.CodeResourceExhausted
	case errors.Is(err, session.ErrUnknownSession):
		return connect.CodeNotFound
	case errors.Is(err, agent.ErrReasoningService):
		return connect.CodeUnavailable
	case errors.Is(err, context.DeadlineExceeded):
		return connect.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return connect.CodeCanceled
	default:
		return connect.CodeInternal
	}
}

func toConnectError(err error) error {
	var ce *connect.Error
	if errors.As(err, &ce) {
		return ce
	}
	return connect.NewError(ErrorCode(err), err)
}
