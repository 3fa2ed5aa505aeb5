package driven

import (
	"context"

	"github.com/custodia-labs/rework/internal/core/domain"
)

// CatalogSource loads transformation definitions.
type CatalogSource interface {
	Load(ctx context.Context) (domain.Catalog, error)
}
