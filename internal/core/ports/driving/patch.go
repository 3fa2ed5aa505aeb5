package driving

import (
	"context"

	"github.com/custodia-labs/rework/internal/core/domain"
)

// PatchEngine applies one transformation to one artifact.
type PatchEngine interface {
	// Apply runs check, backup, splice and write. It never returns an error;
	// every failure is reported through the record's status.
	Apply(ctx context.Context, key string, spec domain.TransformationSpec, rctx domain.RenderContext) domain.ApplicationRecord

	// Preview classifies the artifact and computes the text Apply would write,
	// without any side effects.
	Preview(ctx context.Context, key string, spec domain.TransformationSpec, rctx domain.RenderContext) (*Preview, error)
}

// Preview is the dry-run view of a single application.
type Preview struct {
	ArtifactKey    string
	Transformation string
	Classification domain.Classification

	// Before and After are the current and proposed texts. After equals
	// Before unless Classification.Kind is MatchAnchored.
	Before string
	After  string

	// Patch is a textual patch from Before to After.
	Patch string
}

// WouldChange reports whether Apply would rewrite the artifact.
func (p *Preview) WouldChange() bool {
	return p.Classification.Kind == domain.MatchAnchored && p.Before != p.After
}
