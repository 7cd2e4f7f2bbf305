package kernel

import (
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/tailored-agentic-units/webagent/agent"
	"github.com/tailored-agentic-units/webagent/session"
	"github.com/tailored-agentic-units/webagent/tools/notify"
	"github.com/tailored-agentic-units/webagent/tools/web"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const defaultMaxRoundTrips = 10

// Config holds initialization parameters for all kernel subsystems.
// Each subsystem section delegates to that subsystem's constructor.
type Config struct {
	Agent   agent.Config   `json:"agent"`
	Session session.Config `json:"session"`
	Web     web.Config     `json:"web"`
	Notify  notify.Config  `json:"notify"`

	// Observer names a registered observer ("slog", "noop").
	Observer string `json:"observer,omitempty"`

	// MaxRoundTrips caps reasoning to tool round trips per turn.
	MaxRoundTrips int `json:"max_round_trips,omitempty"`

	// Per-call timeouts in milliseconds. Zero disables the timeout.
	ReasoningTimeoutMs int `json:"reasoning_timeout_ms,omitempty"`
	ToolTimeoutMs      int `json:"tool_timeout_ms,omitempty"`

	// ParallelTools runs the tool calls of one assistant message
	// concurrently. Results are appended in request order either way.
	ParallelTools bool `json:"parallel_tools,omitempty"`

	// ToolWorkers caps concurrent tool calls when ParallelTools is set.
	// Zero runs every call of a step at once.
	ToolWorkers int `json:"tool_workers,omitempty"`

	// SystemPrompt is sent ahead of the history on every reasoning call. It
	// is never stored in the session.
	SystemPrompt string `json:"system_prompt,omitempty"`
}

// DefaultConfig returns a Config with defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Agent:         agent.DefaultConfig(),
		Session:       session.DefaultConfig(),
		Web:           web.DefaultConfig(),
		Notify:        notify.DefaultConfig(),
		Observer:      "slog",
		MaxRoundTrips: defaultMaxRoundTrips,
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	c.Agent.Merge(&source.Agent)
	c.Session.Merge(&source.Session)
	c.Web.Merge(&source.Web)
	c.Notify.Merge(&source.Notify)

	if source.Observer != "" {
		c.Observer = source.Observer
	}
	if source.MaxRoundTrips > 0 {
		c.MaxRoundTrips = source.MaxRoundTrips
	}
	if source.ReasoningTimeoutMs > 0 {
		c.ReasoningTimeoutMs = source.ReasoningTimeoutMs
	}
	if source.ToolTimeoutMs > 0 {
		c.ToolTimeoutMs = source.ToolTimeoutMs
	}
	if source.ParallelTools {
		c.ParallelTools = true
	}
	if source.ToolWorkers > 0 {
		c.ToolWorkers = source.ToolWorkers
	}
	if source.SystemPrompt != "" {
		c.SystemPrompt = source.SystemPrompt
	}
}

// ReasoningTimeout returns the per-call reasoning timeout.
func (c *Config) ReasoningTimeout() time.Duration {
	return time.Duration(c.ReasoningTimeoutMs) * time.Millisecond
}

// ToolTimeout returns the per-call tool timeout.
func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.ToolTimeoutMs) * time.Millisecond
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
