package agent

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a Reasoner from configuration.
type Factory func(cfg *Config) (Reasoner, error)

var (
	providers = make(map[string]Factory)
	mu        sync.RWMutex
)

// RegisterProvider makes a provider available to New. Providers call it
// from init; registering a name twice replaces the factory.
func RegisterProvider(name string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	providers[name] = factory
}

// Providers lists registered provider names in sorted order.
func Providers() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(providers))
	for name := range providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// New creates a Reasoner for cfg.Provider.
func New(cfg *Config) (Reasoner, error) {
	mu.RLock()
	factory, ok := providers[cfg.Provider]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}

	r, err := factory(cfg)
	if err != nil {
		return nil, fmt.Errorf("create %s reasoner: %w", cfg.Provider, err)
	}
	return r, nil
}
