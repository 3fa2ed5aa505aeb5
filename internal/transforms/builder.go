package transforms

import (
	"fmt"

	"github.com/custodia-labs/rework/internal/core/domain"
)

// Builder converts catalog definitions into validated specs.
type Builder struct {
	registry *Registry
}

// NewBuilder creates a builder backed by registry.
func NewBuilder(registry *Registry) *Builder {
	return &Builder{registry: registry}
}

// Build converts one definition. Version defaults to 1 and the renderer
// kind to "template".
func (b *Builder) Build(def domain.TransformationDefinition) (domain.TransformationSpec, error) {
	kind := def.Renderer
	if kind == "" {
		kind = KindTemplate
	}
	renderer, err := b.registry.Build(kind, def)
	if err != nil {
		return domain.TransformationSpec{}, fmt.Errorf("transformation %s: %w", def.Name, err)
	}

	version := def.Version
	if version == 0 {
		version = 1
	}

	spec := domain.TransformationSpec{
		Name:      def.Name,
		Version:   version,
		Tag:       def.Tag,
		Markers:   patterns(def.Markers),
		Anchors:   patterns(def.Anchors),
		Placement: domain.Placement(def.Placement),
		Renderer:  renderer,
	}
	if err := spec.Validate(); err != nil {
		return domain.TransformationSpec{}, err
	}
	return spec, nil
}

// BuildAll converts definitions in order, rejecting duplicate names.
func (b *Builder) BuildAll(defs []domain.TransformationDefinition) ([]domain.TransformationSpec, error) {
	specs := make([]domain.TransformationSpec, 0, len(defs))
	seen := make(map[string]bool, len(defs))
	for _, def := range defs {
		if seen[def.Name] {
			return nil, fmt.Errorf("%w: duplicate transformation %s", domain.ErrInvalidInput, def.Name)
		}
		seen[def.Name] = true

		spec, err := b.Build(def)
		if err != nil {
			return nil, err
		}
		specs = append(specs, spec)
	}
	return specs, nil
}

func patterns(defs []domain.PatternDefinition) []domain.Pattern {
	out := make([]domain.Pattern, 0, len(defs))
	for _, d := range defs {
		out = append(out, domain.Pattern{Expr: d.Pattern, Regex: d.Regex})
	}
	return out
}
