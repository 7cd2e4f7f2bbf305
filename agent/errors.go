package agent

import (
	"errors"
	"fmt"
)

var (
	// ErrReasoningService matches every *ReasoningServiceError.
	ErrReasoningService = errors.New("reasoning service failed")
	ErrUnknownProvider  = errors.New("unknown provider")
	ErrMissingModel     = errors.New("model is required")
)

// ReasoningServiceError reports that the external reasoner failed or timed
// out. errors.Is matches both ErrReasoningService and the underlying cause.
type ReasoningServiceError struct {
	Provider string
	Err      error
}

func (e *ReasoningServiceError) Error() string {
	if e.Provider == "" {
		return fmt.Sprintf("%s: %v", ErrReasoningService, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", ErrReasoningService, e.Provider, e.Err)
}

func (e *ReasoningServiceError) Unwrap() error { return e.Err }

func (e *ReasoningServiceError) Is(target error) bool { return target == ErrReasoningService }
