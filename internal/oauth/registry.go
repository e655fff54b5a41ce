package oauth

import (
	"sort"
	"sync"
)

// Registry maps provider names to descriptors and adapter factories.
type Registry struct {
	mu        sync.RWMutex
	sources   map[string]Source
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sources:   make(map[string]Source),
		factories: make(map[string]Factory),
	}
}

// Register adds (or replaces) a provider. Its scopes stay on the descriptor;
// the process-wide default-scope table is only written by RegisterDefaultScopes.
func (r *Registry) Register(src Source, f Factory) {
	name := NormalizeName(src.Name)
	src.Name = name

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources[name] = src
	if f != nil {
		r.factories[name] = f
	}
}

// Source returns the descriptor registered under name.
func (r *Registry) Source(name string) (Source, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sources[NormalizeName(name)]
	return s, ok
}

// Factory returns the adapter factory registered under name.
func (r *Registry) Factory(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[NormalizeName(name)]
	return f, ok
}

// Names lists registered providers, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.sources))
	for n := range r.sources {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
