package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rework/internal/core/domain"
)

type stubCatalog struct {
	catalog domain.Catalog
	err     error
}

func (s stubCatalog) Load(context.Context) (domain.Catalog, error) {
	return s.catalog, s.err
}

// literalBuilder builds every definition as a static fragment.
type literalBuilder struct{}

func (literalBuilder) BuildAll(defs []domain.TransformationDefinition) ([]domain.TransformationSpec, error) {
	specs := make([]domain.TransformationSpec, 0, len(defs))
	for _, d := range defs {
		specs = append(specs, domain.TransformationSpec{
			Name:      d.Name,
			Version:   1,
			Anchors:   []domain.Pattern{domain.Literal("X")},
			Placement: domain.PlacementInsertAfter,
			Renderer:  domain.StaticFragment(d.Template),
		})
	}
	return specs, nil
}

func threeDefs() domain.Catalog {
	return domain.Catalog{Transformations: []domain.TransformationDefinition{
		{Name: "logo", Template: "L"},
		{Name: "qr", Template: "Q"},
		{Name: "url", Template: "U"},
	}}
}

func TestCatalogService_Specs(t *testing.T) {
	svc := NewCatalogService(stubCatalog{catalog: threeDefs()}, literalBuilder{})

	all, err := svc.Specs(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	picked, err := svc.Specs(context.Background(), []string{"url", "logo"})
	require.NoError(t, err)
	require.Len(t, picked, 2)
	assert.Equal(t, "logo", picked[0].Name, "catalog order wins over request order")
	assert.Equal(t, "url", picked[1].Name)
}

func TestCatalogService_Errors(t *testing.T) {
	ctx := context.Background()

	_, err := NewCatalogService(stubCatalog{catalog: threeDefs()}, literalBuilder{}).Specs(ctx, []string{"nope"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = NewCatalogService(stubCatalog{}, literalBuilder{}).Specs(ctx, nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewCatalogService(stubCatalog{err: errors.New("gone")}, literalBuilder{}).Specs(ctx, nil)
	assert.ErrorContains(t, err, "load catalog")
}
