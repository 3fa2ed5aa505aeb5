package driving

import (
	"context"

	"github.com/custodia-labs/rework/internal/core/domain"
)

// PlanRequest describes a dry run over the corpus.
type PlanRequest struct {
	Selector domain.Selector
	Specs    []domain.TransformationSpec
	Contexts ContextBuilder
}

// PlanService previews a batch without touching the corpus.
type PlanService interface {
	// Plan returns one preview per (artifact, spec) pair in run order.
	// Each spec is previewed against the text produced by the earlier
	// specs of the same artifact.
	Plan(ctx context.Context, req PlanRequest) ([]Preview, error)
}
