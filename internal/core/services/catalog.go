package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driven"
	"github.com/custodia-labs/rework/internal/core/ports/driving"
)

// Ensure CatalogService implements the interface.
var _ driving.CatalogService = (*CatalogService)(nil)

// CatalogService loads the catalog and builds specs from it.
type CatalogService struct {
	source  driven.CatalogSource
	builder driven.SpecBuilder
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(source driven.CatalogSource, builder driven.SpecBuilder) *CatalogService {
	return &CatalogService{
		source:  source,
		builder: builder,
	}
}

// Catalog returns the raw definitions.
func (s *CatalogService) Catalog(ctx context.Context) (domain.Catalog, error) {
	return s.source.Load(ctx)
}

// Specs builds the named transformations in catalog order.
func (s *CatalogService) Specs(ctx context.Context, names []string) ([]domain.TransformationSpec, error) {
	catalog, err := s.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	defs, err := catalog.Select(names)
	if err != nil {
		return nil, err
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: catalog has no transformations", domain.ErrInvalidInput)
	}
	return s.builder.BuildAll(defs)
}
