package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by ExecutionError.
var (
	ErrMaxIterations = errors.New("max iterations exceeded")
	ErrNoTransition  = errors.New("no valid transition")
)

// ExecutionError reports where a run failed and the node path leading there.
type ExecutionError struct {
	Node string
	Path []string
	Err  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution failed at node %s: %v", e.Node, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}
