// Package transforms turns catalog definitions into transformation specs.
// Renderer kinds are resolved through a Registry so new kinds can be added
// without touching the catalog format.
package transforms

import (
	"fmt"
	"sort"

	"github.com/custodia-labs/rework/internal/core/domain"
)

// BuilderFunc creates a Renderer from a catalog definition.
type BuilderFunc func(def domain.TransformationDefinition) (domain.Renderer, error)

// Registry maps renderer kinds to their builders.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry creates an empty renderer registry.
func NewRegistry() *Registry {
	return &Registry{
		builders: make(map[string]BuilderFunc),
	}
}

// Register adds a renderer builder. A later registration replaces an earlier one.
func (r *Registry) Register(kind string, builder BuilderFunc) {
	r.builders[kind] = builder
}

// Build creates a renderer for def using its declared kind.
func (r *Registry) Build(kind string, def domain.TransformationDefinition) (domain.Renderer, error) {
	builder, ok := r.builders[kind]
	if !ok {
		return nil, fmt.Errorf("%w: renderer %q", domain.ErrUnsupportedType, kind)
	}
	return builder(def)
}

// Has returns true if a renderer kind is registered.
func (r *Registry) Has(kind string) bool {
	_, ok := r.builders[kind]
	return ok
}

// Names returns the registered kinds, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
