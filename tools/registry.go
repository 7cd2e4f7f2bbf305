// Package tools holds the tool registry the kernel dispatches tool calls
// through. A registry is populated at startup, optionally sealed, and read
// concurrently by every turn afterwards.
package tools

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/tailored-agentic-units/webagent/core/protocol"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Func is a tool capability: text in, text out, or a failure.
type Func func(ctx context.Context, input string) (string, error)

// Descriptor describes one registered tool. Parameters is optional; tools
// that take a single text argument get protocol.TextParameters.
type Descriptor struct {
	Name        string
	Description string
	Parameters  map[string]any
	Invoke      Func
}

// Tool returns the capability advertised to the reasoning step.
func (d Descriptor) Tool() protocol.Tool {
	params := d.Parameters
	if params == nil {
		params = protocol.TextParameters("Input text for " + d.Name + ".")
	}
	return protocol.Tool{
		Name:        d.Name,
		Description: d.Description,
		Parameters:  params,
	}
}

// Registry maps tool names to descriptors, preserving registration order.
// Safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Descriptor
	order   []string
	sealed  bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{entries: make(map[string]Descriptor)}
}

// Register adds a tool. Returns *DuplicateToolError if the name is taken and
// ErrSealed once Seal has been called.
func (r *Registry) Register(d Descriptor) error {
	if d.Name == "" {
		return ErrEmptyName
	}
	if d.Invoke == nil {
		return fmt.Errorf("%w: %s", ErrNilFunc, d.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return fmt.Errorf("%w: cannot register %s", ErrSealed, d.Name)
	}
	if _, exists := r.entries[d.Name]; exists {
		return &DuplicateToolError{Name: d.Name}
	}

	r.entries[d.Name] = d
	r.order = append(r.order, d.Name)
	return nil
}

// MustRegister is Register for startup wiring; it panics on error.
func (r *Registry) MustRegister(descriptors ...Descriptor) {
	for _, d := range descriptors {
		if err := r.Register(d); err != nil {
			panic(fmt.Sprintf("failed to register tool: %v", err))
		}
	}
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Resolve looks up a tool by name.
func (r *Registry) Resolve(name string) (Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, exists := r.entries[name]
	if !exists {
		return Descriptor{}, &UnknownToolError{Name: name}
	}
	return d, nil
}

// List returns every descriptor in registration order.
func (r *Registry) List() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		list = append(list, r.entries[name])
	}
	return list
}

// Capabilities returns the advertised form of List.
func (r *Registry) Capabilities() []protocol.Tool {
	list := r.List()
	caps := make([]protocol.Tool, len(list))
	for i, d := range list {
		caps[i] = d.Tool()
	}
	return caps
}

// Invoke resolves name and calls the tool with the text extracted from
// arguments. Failures are wrapped with the tool name.
func (r *Registry) Invoke(ctx context.Context, name, arguments string) (string, error) {
	d, err := r.Resolve(name)
	if err != nil {
		return "", err
	}

	out, err := d.Invoke(ctx, ArgumentText(arguments))
	if err != nil {
		return "", fmt.Errorf("tool %s execution failed: %w", name, err)
	}
	return out, nil
}

// ArgumentText extracts the single text argument from a tool call's argument
// string. Providers send either a JSON object ({"input": "..."} or any object
// with one string property) or the bare text; JSON string literals are
// unquoted. Anything else is returned trimmed and unchanged.
func ArgumentText(arguments string) string {
	trimmed := strings.TrimSpace(arguments)
	if trimmed == "" {
		return ""
	}

	switch trimmed[0] {
	case '{':
		var obj map[string]any
		if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
			return trimmed
		}
		if s, ok := obj["input"].(string); ok {
			return s
		}
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		// Deterministic pick when a provider renames the property.
		sort.Strings(keys)
		for _, k := range keys {
			if s, ok := obj[k].(string); ok {
				return s
			}
		}
		return trimmed
	case '"':
		var s string
		if err := json.Unmarshal([]byte(trimmed), &s); err == nil {
			return s
		}
	}
	return trimmed
}
