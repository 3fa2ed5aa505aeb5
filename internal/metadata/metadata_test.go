package metadata

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const chartScript = `import matplotlib.pyplot as plt

CHART_METADATA = {
    'name': 'Activation Functions',
    'url': 'https://github.com/org/repo/tree/main/03_activation_functions/',
    'author': 'Digital-AI-Finance',
}

plt.savefig('chart.pdf')
`

func TestExtract(t *testing.T) {
	t.Run("reads dictionary pairs", func(t *testing.T) {
		got := Extract(chartScript, "CHART_METADATA")

		assert.Equal(t, "Activation Functions", got["name"])
		assert.Equal(t, "https://github.com/org/repo/tree/main/03_activation_functions/", got["url"])
		assert.Equal(t, "Digital-AI-Finance", got["author"])
	})

	t.Run("reads assignments with double quotes", func(t *testing.T) {
		text := "META = {\n  url = \"https://example.org/x\"\n}\n"

		got := Extract(text, "META")

		assert.Equal(t, "https://example.org/x", got["url"])
	})

	t.Run("missing block yields empty map", func(t *testing.T) {
		got := Extract("print('hi')", "CHART_METADATA")

		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("empty block name yields empty map", func(t *testing.T) {
		assert.Empty(t, Extract(chartScript, ""))
	})

	t.Run("ignores pairs outside the block", func(t *testing.T) {
		text := "'url': 'outside'\nCHART_METADATA = {'name': 'x'}\n"

		got := Extract(text, "CHART_METADATA")

		assert.Equal(t, map[string]string{"name": "x"}, got)
	})
}

func TestFormat_RoundTrip(t *testing.T) {
	pairs := []Pair{
		{Key: "name", Value: "Gradient Descent"},
		{Key: "url", Value: "https://example.org/09_gradient_descent/"},
	}

	block := Format("CHART_METADATA", pairs)

	assert.Equal(t, "CHART_METADATA = {\n"+
		"    'name': 'Gradient Descent',\n"+
		"    'url': 'https://example.org/09_gradient_descent/'\n"+
		"}\n", block)
	assert.Equal(t, "Gradient Descent", Extract(block, "CHART_METADATA")["name"])
}
