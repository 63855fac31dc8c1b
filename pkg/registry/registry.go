// Package registry is the static registration table for natively implemented
// recipes. It stands in for runtime discovery: implementations register a
// zero-argument factory at init time, and loaders only ever see the resulting
// factory set, never the discovery mechanism.
package registry

import (
	"maps"
	"slices"
	"sync"

	"github.com/recast-dev/recast/pkg/recipe"
)

// Factory constructs a fresh recipe instance. Factories must be zero-argument
// and side-effect free; the catalog may call one any number of times.
type Factory func() recipe.Recipe

// Source enumerates candidate native implementations. Registry implements
// it; alternative discovery mechanisms (a manifest scan, say) can too.
type Source interface {
	Factories() map[string]Factory
}

// Registry maps recipe names to factories. Safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func New() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under the recipe's dotted name. Re-registering a
// name replaces the previous factory.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Lookup returns the factory for a name, if one was registered.
func (r *Registry) Lookup(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	return f, ok
}

func (r *Registry) Factories() map[string]Factory {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.factories)
}

// Names returns every registered name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// Default is the process-wide registry that native recipe packages register
// with from init functions.
var Default = New()

// Register adds a factory to the Default registry.
func Register(name string, f Factory) {
	Default.Register(name, f)
}
