// Package session stores conversation history per session (thread) id so a
// conversation resumes across turns. Stores also provide the per-session
// exclusion the kernel uses to serialize turns on one id.
package session

import (
	"context"
	"time"

	"github.com/tailored-agentic-units/webagent/core/protocol"
)

// Session is a snapshot of one conversation. Messages is a copy; mutating it
// does not affect the store.
type Session struct {
	ID        string             `json:"id"`
	Messages  []protocol.Message `json:"messages"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// Store holds sessions keyed by id. Message history is append-only.
// Implementations must be safe for concurrent use.
type Store interface {
	// GetOrCreate returns the session for id, creating an empty one on first
	// reference. Repeated calls refer to the same record.
	GetOrCreate(id string) (*Session, error)

	// Append adds messages to the tail of the session's history.
	Append(id string, msgs ...protocol.Message) error

	// Snapshot returns a copy of the session's history.
	Snapshot(id string) ([]protocol.Message, error)

	// IDs lists the stored session ids in sorted order.
	IDs() []string

	// Delete removes a session. Missing ids are ignored.
	Delete(id string) error

	// Lock acquires exclusive use of the session id, blocking until it is
	// free or ctx is done. The returned func releases it and is idempotent.
	Lock(ctx context.Context, id string) (unlock func(), err error)
}
