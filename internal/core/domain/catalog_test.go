package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalog_Select(t *testing.T) {
	catalog := Catalog{Transformations: []TransformationDefinition{
		{Name: "metadata"}, {Name: "logo"}, {Name: "qr"},
	}}

	t.Run("empty selects all", func(t *testing.T) {
		defs, err := catalog.Select(nil)
		require.NoError(t, err)
		assert.Len(t, defs, 3)
	})

	t.Run("keeps catalog order", func(t *testing.T) {
		defs, err := catalog.Select([]string{"qr", "metadata"})
		require.NoError(t, err)
		require.Len(t, defs, 2)
		assert.Equal(t, "metadata", defs[0].Name)
		assert.Equal(t, "qr", defs[1].Name)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := catalog.Select([]string{"missing"})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNotFound))
		assert.Contains(t, err.Error(), "missing")
	})
}

func TestCatalog_Names(t *testing.T) {
	catalog := Catalog{Transformations: []TransformationDefinition{{Name: "a"}, {Name: "b"}}}
	assert.Equal(t, []string{"a", "b"}, catalog.Names())
}
