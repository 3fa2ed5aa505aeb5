package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rework/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/rework/internal/core/domain"
)

func TestContextBuilder_Build(t *testing.T) {
	store := memory.NewArtifactStore()
	store.Put("04_methods/chart.py", "CHART_METADATA = {\n    'url': 'https://slides.example/04/',\n    'title': 'Methods',\n}\n")
	store.Put("05_results/chart.py", "import matplotlib\n")

	settings := domain.ContextSettings{
		URLBase:       "https://slides.example/",
		MetadataBlock: domain.DefaultMetadataBlock,
		Params:        map[string]string{"logo": "logo.png"},
	}
	builder := NewContextBuilder(store, settings)

	tests := []struct {
		key     string
		wantURL string
		title   string
	}{
		{"04_methods/chart.py", "https://slides.example/04/", "Methods"},
		{"05_results/chart.py", "https://slides.example/05_results/", ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			rctx, err := builder.Build(context.Background(), tt.key)

			require.NoError(t, err)
			assert.Equal(t, tt.wantURL, rctx.URL)
			assert.Equal(t, tt.title, rctx.Metadata["title"])
			assert.Equal(t, "chart.py", rctx.Name)
			assert.Equal(t, "chart", rctx.Stem)
			assert.Equal(t, "logo.png", rctx.Params["logo"])
		})
	}

	rctx, _ := builder.Build(context.Background(), "05_results/chart.py")
	rctx.Params["logo"] = "changed"
	assert.Equal(t, "logo.png", settings.Params["logo"])
}

func TestContextBuilder_BuildMissingArtifact(t *testing.T) {
	builder := NewContextBuilder(memory.NewArtifactStore(), domain.ContextSettings{})

	_, err := builder.Build(context.Background(), "missing.py")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestKeyContext(t *testing.T) {
	rctx := KeyContext("module1/charts/03_intro/plot.py")

	assert.Equal(t, "03_intro", rctx.Folder)
	assert.Equal(t, "plot.py", rctx.Name)
	assert.Equal(t, "plot", rctx.Stem)
	assert.NotNil(t, rctx.Metadata)
	assert.NotNil(t, rctx.Params)
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base, folder, want string
	}{
		{"https://a.example/", "01_x", "https://a.example/01_x/"},
		{"https://a.example", "01_x", "https://a.example/01_x"},
		{"https://a.example/", "", "https://a.example/"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, JoinURL(tt.base, tt.folder))
	}
}
