package session

import (
	"errors"
	"fmt"
)

// Sentinel errors for session stores.
var (
	ErrEmptyID        = errors.New("session id is empty")
	ErrUnknownSession = errors.New("unknown session")
	ErrReadOnly       = errors.New("session store is read-only")
	ErrUnknownBackend = errors.New("unknown session backend")
)

// UnknownSessionError is returned by a read-only store for ids it was not
// seeded with, and by Snapshot for ids that were never created.
type UnknownSessionError struct {
	ID string
}

func (e *UnknownSessionError) Error() string {
	return fmt.Sprintf("%s: %s", ErrUnknownSession, e.ID)
}

func (e *UnknownSessionError) Unwrap() error { return ErrUnknownSession }
