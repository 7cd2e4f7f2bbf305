// Package notify implements the send_push_notification tool. Two backends
// are available: Pushover (the default) and a Telegram bot. Missing
// credentials never fail a turn; the tool reports that it is not configured.
package notify

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/tailored-agentic-units/webagent/tools"
)

const (
	BackendPushover = "pushover"
	BackendTelegram = "telegram"

	// PushoverURL is the Pushover message endpoint.
	PushoverURL = "https://api.pushover.net/1/messages.json"

	defaultTimeout = 10 * time.Second
)

// Config selects a backend and carries its credentials. Credentials are
// normally filled from the environment by FromEnv rather than the config file.
type Config struct {
	Backend        string `json:"backend,omitempty"`
	PushoverToken  string `json:"-"`
	PushoverUser   string `json:"-"`
	PushoverURL    string `json:"pushover_url,omitempty"`
	TelegramToken  string `json:"-"`
	TelegramChatID int64  `json:"-"`
}

// DefaultConfig selects Pushover with no credentials.
func DefaultConfig() Config {
	return Config{
		Backend:     BackendPushover,
		PushoverURL: PushoverURL,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Backend != "" {
		c.Backend = source.Backend
	}
	if source.PushoverToken != "" {
		c.PushoverToken = source.PushoverToken
	}
	if source.PushoverUser != "" {
		c.PushoverUser = source.PushoverUser
	}
	if source.PushoverURL != "" {
		c.PushoverURL = source.PushoverURL
	}
	if source.TelegramToken != "" {
		c.TelegramToken = source.TelegramToken
	}
	if source.TelegramChatID != 0 {
		c.TelegramChatID = source.TelegramChatID
	}
}

// FromEnv overlays credentials from PUSHOVER_TOKEN, PUSHOVER_USER,
// TELEGRAM_BOT_TOKEN, and TELEGRAM_CHAT_ID onto c.
func (c Config) FromEnv() Config {
	c.Merge(&Config{
		PushoverToken: os.Getenv("PUSHOVER_TOKEN"),
		PushoverUser:  os.Getenv("PUSHOVER_USER"),
		TelegramToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
	})
	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			c.TelegramChatID = id
		}
	}
	return c
}

// Configured reports whether the selected backend has its credentials.
func (c Config) Configured() bool {
	switch c.Backend {
	case BackendTelegram:
		return c.TelegramToken != "" && c.TelegramChatID != 0
	default:
		return c.PushoverToken != "" && c.PushoverUser != ""
	}
}

// NotConfiguredMessage is the tool output when credentials are missing.
func (c Config) NotConfiguredMessage() string {
	if c.Backend == BackendTelegram {
		return "Push notification not configured (missing TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_ID)"
	}
	return "Push notification not configured (missing PUSHOVER_TOKEN or PUSHOVER_USER)"
}

// Notifier sends push notifications. Credentials may be swapped at runtime
// with Update; in-flight sends keep the credentials they started with.
type Notifier struct {
	mu       sync.RWMutex
	cfg      Config
	client   *http.Client
	telegram *telegramSender
}

// New creates a Notifier. A nil client gets a default with a 10s timeout.
func New(cfg Config, client *http.Client) *Notifier {
	merged := DefaultConfig()
	merged.Merge(&cfg)

	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Notifier{cfg: merged, client: client}
}

// Update replaces the notifier's configuration.
func (n *Notifier) Update(cfg Config) {
	merged := DefaultConfig()
	merged.Merge(&cfg)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.cfg = merged
	if n.telegram != nil && n.telegram.token != merged.TelegramToken {
		n.telegram = nil
	}
}

// Config returns the current configuration.
func (n *Notifier) Config() Config {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cfg
}

// Descriptor returns the send_push_notification tool.
func (n *Notifier) Descriptor() tools.Descriptor {
	return tools.Descriptor{
		Name:        "send_push_notification",
		Description: "useful for when you want to send a push notification to the user's device",
		Parameters: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"input": map[string]any{
					"type":        "string",
					"description": "The notification text.",
				},
			},
			"required": []string{"input"},
		},
		Invoke: n.Push,
	}
}

// Push sends text through the configured backend. Without credentials it
// returns the not-configured explanation and no error.
func (n *Notifier) Push(ctx context.Context, text string) (string, error) {
	cfg := n.Config()
	if !cfg.Configured() {
		return cfg.NotConfiguredMessage(), nil
	}

	var err error
	switch cfg.Backend {
	case BackendPushover:
		err = n.pushover(ctx, cfg, text)
	case BackendTelegram:
		err = n.sendTelegram(ctx, cfg, text)
	default:
		return "", fmt.Errorf("unknown notification backend: %s", cfg.Backend)
	}
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("Push notification sent: %s", text), nil
}
