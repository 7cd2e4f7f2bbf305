package session_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tailored-agentic-units/webagent/core/protocol"
	"github.com/tailored-agentic-units/webagent/session"
)

func TestDefaultConfig(t *testing.T) {
	cfg := session.DefaultConfig()

	if cfg.Backend != session.BackendMemory {
		t.Errorf("Backend = %q, want %q", cfg.Backend, session.BackendMemory)
	}
	if cfg.MaxSessions != 0 || cfg.IdleTTLMs != 0 {
		t.Errorf("eviction should be off by default, got %+v", cfg)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := session.DefaultConfig()
	cfg.Merge(&session.Config{Backend: session.BackendFile, Path: "/tmp/s", IdleTTLMs: 1500})

	if cfg.Backend != session.BackendFile || cfg.Path != "/tmp/s" {
		t.Errorf("merge did not apply backend/path: %+v", cfg)
	}
	if cfg.IdleTTL() != 1500*time.Millisecond {
		t.Errorf("IdleTTL() = %v, want 1.5s", cfg.IdleTTL())
	}

	cfg.Merge(&session.Config{})
	if cfg.Backend != session.BackendFile {
		t.Error("zero-value merge should not reset fields")
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     session.Config
		wantErr error
	}{
		{name: "default", cfg: session.DefaultConfig()},
		{name: "empty backend", cfg: session.Config{}},
		{name: "file", cfg: session.Config{Backend: session.BackendFile, Path: "unused"}},
		{name: "unknown", cfg: session.Config{Backend: "redis"}, wantErr: session.ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := session.New(&tt.cfg)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("New failed: %v", err)
			}
			if store == nil {
				t.Fatal("New returned nil store")
			}
		})
	}
}

func TestNew_FileRequiresPath(t *testing.T) {
	if _, err := session.New(&session.Config{Backend: session.BackendFile}); err == nil {
		t.Error("expected error for file backend without path")
	}
}

func TestReadOnly(t *testing.T) {
	seed := session.NewMemoryStore(session.MemoryOptions{})
	_ = seed.Append("known", protocol.NewMessage(protocol.RoleUser, "seeded"))

	store := session.ReadOnly(seed)

	t.Run("append to unknown", func(t *testing.T) {
		err := store.Append("other", protocol.NewMessage(protocol.RoleUser, "x"))
		var unknown *session.UnknownSessionError
		if !errors.As(err, &unknown) || unknown.ID != "other" {
			t.Fatalf("error = %v, want *UnknownSessionError{other}", err)
		}
		if seed.Len() != 1 {
			t.Error("read-only store created a session")
		}
	})

	t.Run("get unknown", func(t *testing.T) {
		if _, err := store.GetOrCreate("other"); !errors.Is(err, session.ErrUnknownSession) {
			t.Errorf("error = %v, want ErrUnknownSession", err)
		}
	})

	t.Run("append to known", func(t *testing.T) {
		if err := store.Append("known", protocol.NewMessage(protocol.RoleAssistant, "reply")); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
		snap, err := store.Snapshot("known")
		if err != nil {
			t.Fatalf("Snapshot failed: %v", err)
		}
		if len(snap) != 2 {
			t.Errorf("got %d messages, want 2", len(snap))
		}
	})

	t.Run("delete refused", func(t *testing.T) {
		if err := store.Delete("known"); !errors.Is(err, session.ErrReadOnly) {
			t.Errorf("error = %v, want ErrReadOnly", err)
		}
	})

	t.Run("lock delegates", func(t *testing.T) {
		unlock, err := store.Lock(context.Background(), "known")
		if err != nil {
			t.Fatalf("Lock failed: %v", err)
		}
		unlock()
	})
}
