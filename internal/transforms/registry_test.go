package transforms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rework/internal/core/domain"
)

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	assert.False(t, r.Has(KindTemplate))

	RegisterDefaults(r, Options{})

	assert.Equal(t, []string{KindLiteral, KindMetadata, KindTemplate}, r.Names())
	assert.True(t, r.Has(KindLiteral))

	_, err := r.Build("qr-bitmap", domain.TransformationDefinition{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestRegistry_RegisterReplaces(t *testing.T) {
	r := NewRegistry()
	r.Register("custom", func(domain.TransformationDefinition) (domain.Renderer, error) {
		return domain.StaticFragment("a"), nil
	})
	r.Register("custom", func(domain.TransformationDefinition) (domain.Renderer, error) {
		return domain.StaticFragment("b"), nil
	})

	renderer, err := r.Build("custom", domain.TransformationDefinition{})
	require.NoError(t, err)
	out, err := renderer.Render(domain.RenderContext{})
	require.NoError(t, err)
	assert.Equal(t, "b", out)
}
