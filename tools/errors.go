package tools

import (
	"errors"
	"fmt"
)

// Sentinel errors for the tool registry.
var (
	ErrEmptyName     = errors.New("tool name is empty")
	ErrNilFunc       = errors.New("tool function is nil")
	ErrDuplicateTool = errors.New("tool already registered")
	ErrUnknownTool   = errors.New("tool not found")
	ErrSealed        = errors.New("tool registry is sealed")
)

// DuplicateToolError reports a second registration under an existing name.
type DuplicateToolError struct {
	Name string
}

func (e *DuplicateToolError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicateTool, e.Name)
}

func (e *DuplicateToolError) Unwrap() error { return ErrDuplicateTool }

// UnknownToolError reports a lookup of a name that was never registered.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownTool, e.Name)
}

func (e *UnknownToolError) Unwrap() error { return ErrUnknownTool }
