package transforms

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rework/internal/core/domain"
)

func sampleContext() domain.RenderContext {
	return domain.RenderContext{
		Key:      "06_backprop/chart.py",
		Folder:   "06_backprop",
		Name:     "chart.py",
		Stem:     "chart",
		URL:      "https://course.example/06_backprop/",
		Metadata: map[string]string{"title": "Backprop"},
		Params:   map[string]string{"size": "0.08"},
	}
}

func TestTemplateRenderer(t *testing.T) {
	r, err := buildTemplate(domain.TransformationDefinition{
		Name:     "qr",
		Template: "\nadd_qr({{quote .URL}}, size={{.Params.size}})  # {{title (trimSuffix \"/\" .Folder)}}\n",
	})
	require.NoError(t, err)

	out, err := r.Render(sampleContext())

	require.NoError(t, err)
	assert.Equal(t, "\nadd_qr(\"https://course.example/06_backprop/\", size=0.08)  # 06 Backprop\n", out)
}

func TestTemplateRenderer_IsDeterministic(t *testing.T) {
	r, err := buildTemplate(domain.TransformationDefinition{Name: "t", Template: "{{.Metadata.title}}|{{.Stem}}"})
	require.NoError(t, err)

	a, err := r.Render(sampleContext())
	require.NoError(t, err)
	b, err := r.Render(sampleContext())
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestTemplateRenderer_MissingKeyIsError(t *testing.T) {
	r, err := buildTemplate(domain.TransformationDefinition{Name: "t", Template: "{{.Metadata.url}}"})
	require.NoError(t, err)

	_, err = r.Render(sampleContext())

	assert.Error(t, err)
}

func TestTemplateRenderer_BadTemplates(t *testing.T) {
	_, err := buildTemplate(domain.TransformationDefinition{Name: "t"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = buildTemplate(domain.TransformationDefinition{Name: "t", Template: "{{.URL"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLiteralRenderer(t *testing.T) {
	r, err := buildLiteral(domain.TransformationDefinition{Template: "{{not a template}}"})
	require.NoError(t, err)

	out, err := r.Render(sampleContext())

	require.NoError(t, err)
	assert.Equal(t, "{{not a template}}", out)
}

func TestMetadataRenderer(t *testing.T) {
	r, err := buildMetadata("CHART_METADATA", domain.TransformationDefinition{
		Name:     "header",
		Template: "# generated\ntitle: {{title .Folder}}\nurl: {{.URL}}\n",
	})
	require.NoError(t, err)

	out, err := r.Render(sampleContext())

	require.NoError(t, err)
	assert.Equal(t, "CHART_METADATA = {\n"+
		"    'title': '06 Backprop',\n"+
		"    'url': 'https://course.example/06_backprop/'\n"+
		"}\n\n", out)
}

func TestMetadataRenderer_Errors(t *testing.T) {
	_, err := buildMetadata("M", domain.TransformationDefinition{Name: "h", Template: "no separator"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = buildMetadata("M", domain.TransformationDefinition{Name: "h", Template: "# only comments\n"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
