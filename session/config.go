package session

import (
	"errors"
	"fmt"
	"time"
)

// Backends accepted by Config.Backend.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
)

// Config selects and bounds the session store.
type Config struct {
	Backend     string `json:"backend,omitempty"`
	Path        string `json:"path,omitempty"`
	MaxSessions int    `json:"max_sessions,omitempty"`
	IdleTTLMs   int    `json:"idle_ttl_ms,omitempty"`
	ReadOnly    bool   `json:"read_only,omitempty"`
}

// DefaultConfig returns an unbounded in-memory store configuration.
func DefaultConfig() Config {
	return Config{
		Backend: BackendMemory,
		Path:    "sessions",
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.Path != "" {
		c.Path = source.Path
	}
	if source.MaxSessions > 0 {
		c.MaxSessions = source.MaxSessions
	}
	if source.IdleTTLMs > 0 {
		c.IdleTTLMs = source.IdleTTLMs
	}
	if source.ReadOnly {
		c.ReadOnly = true
	}
}

// IdleTTL returns the idle eviction threshold as a duration.
func (c *Config) IdleTTL() time.Duration {
	return time.Duration(c.IdleTTLMs) * time.Millisecond
}

// New creates a Store from configuration.
func New(cfg *Config) (Store, error) {
	var store Store
	switch cfg.Backend {
	case "", BackendMemory:
		store = NewMemoryStore(MemoryOptions{
			MaxSessions: cfg.MaxSessions,
			IdleTTL:     cfg.IdleTTL(),
		})
	case BackendFile:
		if cfg.Path == "" {
			return nil, errors.New("file session backend requires a path")
		}
		store = NewFileStore(cfg.Path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, cfg.Backend)
	}

	if cfg.ReadOnly {
		store = ReadOnly(store)
	}
	return store, nil
}
