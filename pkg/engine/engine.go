// Package engine defines the toxicity scoring capability consumed by the
// detector, plus the concrete engines shipped with the library.
package engine

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Engine scores text for toxicity. Implementations must be safe for
// concurrent use.
type Engine interface {
	// Type returns the stable engine identifier used in cache keys and
	// metrics labels.
	Type() string
	// Analyze returns a toxicity score in [0.0, 1.0].
	Analyze(ctx context.Context, text string) (float64, error)
}

// Error wraps a failure from a specific engine so callers can attribute it.
type Error struct {
	EngineType string
	Err        error
}

func (e *Error) Error() string {
	return fmt.Sprintf("engine %s: %v", e.EngineType, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Factory constructs an engine instance.
type Factory func() (Engine, error)

// Registry maps engine identifiers to factories. Registration happens at
// startup; no runtime discovery is involved.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds an identifier to a factory, replacing any prior binding.
func (r *Registry) Register(engineType string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[engineType] = factory
}

// Create instantiates the engine registered under engineType.
func (r *Registry) Create(engineType string) (Engine, error) {
	r.mu.RLock()
	factory, ok := r.factories[engineType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown engine type %q (registered: %v)", engineType, r.Types())
	}
	return factory()
}

// Types returns the registered identifiers in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.factories))
	for engineType := range r.factories {
		types = append(types, engineType)
	}
	sort.Strings(types)
	return types
}
