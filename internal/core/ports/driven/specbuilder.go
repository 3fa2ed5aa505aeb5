package driven

import "github.com/custodia-labs/rework/internal/core/domain"

// SpecBuilder turns catalog definitions into validated specs, resolving
// each definition's renderer by kind.
type SpecBuilder interface {
	// BuildAll converts definitions in order. Duplicate names are an error.
	BuildAll(defs []domain.TransformationDefinition) ([]domain.TransformationSpec, error)
}
