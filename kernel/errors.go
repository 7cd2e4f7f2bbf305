package kernel

import (
	"errors"
	"fmt"
)

var (
	// ErrTurnBudgetExceeded matches every *TurnBudgetExceededError.
	ErrTurnBudgetExceeded = errors.New("turn budget exceeded")

	// ErrToolInvocation matches every *ToolInvocationError.
	ErrToolInvocation = errors.New("tool invocation failed")
)

// TurnBudgetExceededError is returned when the reasoner keeps requesting
// tools after Limit round trips. Messages appended before the failure stay
// in the session.
type TurnBudgetExceededError struct {
	SessionID string
	Limit     int
}

func (e *TurnBudgetExceededError) Error() string {
	return fmt.Sprintf("%s: session %s exceeded %d round trips", ErrTurnBudgetExceeded, e.SessionID, e.Limit)
}

func (e *TurnBudgetExceededError) Is(target error) bool { return target == ErrTurnBudgetExceeded }

// ToolInvocationError describes a tool that could not be resolved, failed,
// or timed out. It never fails a turn; its text becomes the tool message
// the reasoner sees next.
type ToolInvocationError struct {
	Tool   string
	CallID string
	Err    error
}

func (e *ToolInvocationError) Error() string {
	return fmt.Sprintf("Error invoking tool %s: %v", e.Tool, e.Err)
}

func (e *ToolInvocationError) Unwrap() error { return e.Err }

func (e *ToolInvocationError) Is(target error) bool { return target == ErrToolInvocation }
