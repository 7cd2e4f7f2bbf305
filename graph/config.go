package graph

// Config defines graph identity and execution limits.
type Config struct {
	// Name identifies the graph in observer events.
	Name string `json:"name"`

	// Observer names a registered observability.Observer ("noop", "slog").
	// Only consulted by NewFromConfig.
	Observer string `json:"observer"`

	// MaxIterations caps node executions per run.
	MaxIterations int `json:"max_iterations"`
}

// DefaultConfig returns a config with a 1000 node execution cap.
func DefaultConfig(name string) Config {
	return Config{
		Name:          name,
		Observer:      "slog",
		MaxIterations: 1000,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Name != "" {
		c.Name = source.Name
	}

	if source.Observer != "" {
		c.Observer = source.Observer
	}

	if source.MaxIterations > 0 {
		c.MaxIterations = source.MaxIterations
	}
}
