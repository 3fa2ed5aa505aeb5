package driving

import (
	"context"

	"github.com/custodia-labs/rework/internal/core/domain"
)

// ContextBuilder assembles the render context for an artifact.
type ContextBuilder interface {
	Build(ctx context.Context, key string) (domain.RenderContext, error)
}

// ContextBuilderFunc adapts a plain function to the ContextBuilder interface.
type ContextBuilderFunc func(ctx context.Context, key string) (domain.RenderContext, error)

// Build calls f(ctx, key).
func (f ContextBuilderFunc) Build(ctx context.Context, key string) (domain.RenderContext, error) {
	return f(ctx, key)
}

// RunRequest describes one batch run.
type RunRequest struct {
	// Selector picks the artifacts of the corpus.
	Selector domain.Selector

	// Specs are applied to every artifact in this order.
	Specs []domain.TransformationSpec

	// Contexts builds the per-artifact render context. Nil uses a context
	// holding only key-derived fields.
	Contexts ContextBuilder

	// Regenerate rebuilds derived outputs of artifacts patched in this run.
	Regenerate bool

	// Workers bounds concurrent artifact processing. Values below 2 run
	// sequentially.
	Workers int

	// OnArtifact, if set, is called once per artifact as it finishes.
	// Calls may come from several goroutines when Workers > 1.
	OnArtifact func(domain.ArtifactReport)
}

// BatchRunner drives the patch engine across a corpus.
type BatchRunner interface {
	// Run returns an error only when the corpus cannot be enumerated or the
	// request is invalid. Everything per-artifact lands in the report.
	Run(ctx context.Context, req RunRequest) (*domain.BatchReport, error)
}
