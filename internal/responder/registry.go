package responder

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ErrUnknownProvider is returned when neither the requested nor the default
// provider is registered.
var ErrUnknownProvider = errors.New("responder: unknown provider") //nolint:gochecknoglobals // sentinel error

// Registry selects engines by provider name.
type Registry struct {
	mu          sync.RWMutex
	engines     map[string]Engine
	defaultName string
}

// NewRegistry creates a registry that falls back to defaultName.
func NewRegistry(defaultName string) *Registry {
	return &Registry{
		engines:     make(map[string]Engine),
		defaultName: defaultName,
	}
}

// NewDefaultRegistry registers the built-in echo and rule engines.
func NewDefaultRegistry(defaultName string) *Registry {
	r := NewRegistry(defaultName)
	r.Register(NewEchoEngine())
	r.Register(NewRuleEngine(nil))
	return r
}

// Register adds an engine under its name, replacing any previous one.
func (r *Registry) Register(e Engine) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.engines[e.Name()] = e
}

// Select returns the engine registered under name. An empty or unknown name
// selects the default engine.
func (r *Registry) Select(name string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if e, ok := r.engines[name]; ok {
		return e, nil
	}
	if e, ok := r.engines[r.defaultName]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("responder.Registry.Select(%q): default %q: %w", name, r.defaultName, ErrUnknownProvider)
}

// Available returns registered provider names in sorted order.
func (r *Registry) Available() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.engines))
}

// Default returns the configured default provider name.
func (r *Registry) Default() string {
	return r.defaultName
}
