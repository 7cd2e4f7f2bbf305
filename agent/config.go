package agent

import (
	"maps"
	"os"
)

// Config selects a provider and model.
type Config struct {
	Provider  string         `json:"provider"`
	Model     string         `json:"model"`
	BaseURL   string         `json:"base_url,omitempty"`
	APIKeyEnv string         `json:"api_key_env,omitempty"`
	Options   map[string]any `json:"options,omitempty"`
}

// DefaultConfig returns the OpenAI gpt-4o-mini configuration.
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Model:     "gpt-4o-mini",
		APIKeyEnv: "OPENAI_API_KEY",
	}
}

// Merge applies non-zero values from source into c. Options are merged key
// by key.
func (c *Config) Merge(source *Config) {
	if source.Provider != "" {
		c.Provider = source.Provider
	}
	if source.Model != "" {
		c.Model = source.Model
	}
	if source.BaseURL != "" {
		c.BaseURL = source.BaseURL
	}
	if source.APIKeyEnv != "" {
		c.APIKeyEnv = source.APIKeyEnv
	}
	if len(source.Options) > 0 {
		if c.Options == nil {
			c.Options = make(map[string]any, len(source.Options))
		}
		maps.Copy(c.Options, source.Options)
	}
}

// APIKey reads the key from the environment variable named by APIKeyEnv.
func (c *Config) APIKey() string {
	if c.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.APIKeyEnv)
}

// Float reads a numeric option. JSON numbers decode as float64; ints are
// accepted for configs built in code.
func (c *Config) Float(key string) (float64, bool) {
	switch v := c.Options[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}
