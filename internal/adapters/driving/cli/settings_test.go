package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsCmd_HasSubcommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range settingsCmd.Commands() {
		names = append(names, cmd.Name())
	}

	assert.Contains(t, names, "show")
	assert.Contains(t, names, "set")
}

func TestSettingsShow(t *testing.T) {
	env := setupTestServices(t)
	require.NoError(t, env.config.Set("context.params.logo_zoom", "0.08"))

	out, _, err := execute(t, "settings")
	require.NoError(t, err)

	assert.Contains(t, out, "Current Settings")
	assert.Contains(t, out, "Root: /corpus")
	assert.Contains(t, out, "Selector: digits:2:*.py")
	assert.Contains(t, out, "URL base: https://example.org/deck/")
	assert.Contains(t, out, "logo_zoom = 0.08")
	assert.Contains(t, out, "Workers: 1")
}

func TestSettingsSet(t *testing.T) {
	env := setupTestServices(t)

	out, _, err := execute(t, "settings", "set", "batch.workers", "4")
	require.NoError(t, err)
	assert.Contains(t, out, "batch.workers = 4")
	assert.Equal(t, 4, env.config.GetInt("batch.workers"))

	_, _, err = execute(t, "settings", "set", "regenerate.warning_patterns", "Warning:, Overfull", "--list")
	require.NoError(t, err)
	assert.Equal(t, []string{"Warning:", "Overfull"}, env.config.GetStringSlice("regenerate.warning_patterns"))

	_, _, err = execute(t, "settings", "set", "regenerate.enabled", "true")
	require.NoError(t, err)
	assert.True(t, env.config.GetBool("regenerate.enabled"))
}

func TestSettingsSet_WarnsOnInvalidResult(t *testing.T) {
	setupTestServices(t)

	_, stderr, err := execute(t, "settings", "set", "batch.workers", "0")

	require.NoError(t, err)
	assert.Contains(t, stderr, "settings are now invalid")
}

func TestSettingsSet_RequiresTwoArgs(t *testing.T) {
	setupTestServices(t)

	_, _, err := execute(t, "settings", "set", "corpus.root")

	assert.ErrorContains(t, err, "accepts 2 arg(s)")
}

func TestParseValue(t *testing.T) {
	assert.Equal(t, true, parseValue("true"))
	assert.Equal(t, false, parseValue("false"))
	assert.Equal(t, 30, parseValue("30"))
	assert.Equal(t, 2.5, parseValue("2.5"))
	assert.Equal(t, "python {{.Name}}", parseValue("python {{.Name}}"))
	assert.Equal(t, 1, parseValue("1"), "only true and false are booleans")
}
