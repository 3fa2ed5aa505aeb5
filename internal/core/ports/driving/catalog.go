package driving

import (
	"context"

	"github.com/custodia-labs/rework/internal/core/domain"
)

// CatalogService exposes the transformation catalog.
type CatalogService interface {
	// Catalog returns the raw definitions in pipeline order.
	Catalog(ctx context.Context) (domain.Catalog, error)

	// Specs builds the named transformations, in catalog order.
	// No names selects the whole catalog.
	Specs(ctx context.Context, names []string) ([]domain.TransformationSpec, error)
}
