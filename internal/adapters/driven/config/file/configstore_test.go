package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T) (*ConfigStore, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	return store, dir
}

func TestNewConfigStore_Path(t *testing.T) {
	store, dir := newStore(t)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())
}

func TestNewConfigStore_Errors(t *testing.T) {
	_, err := NewConfigStore("/dev/null/cannot/create")
	assert.Error(t, err)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("corpus = [[{"), 0600))
	_, err = NewConfigStore(dir)
	assert.Error(t, err)
}

func TestConfigStore_TypedGetters(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Set("corpus.root", "/slides"))
	require.NoError(t, store.Set("batch.workers", 4))
	require.NoError(t, store.Set("regenerate.launches_per_second", 2.5))
	require.NoError(t, store.Set("regenerate.enabled", true))
	require.NoError(t, store.Set("regenerate.warning_patterns", []string{"Warning:", "Overfull"}))

	assert.Equal(t, "/slides", store.GetString("corpus.root"))
	assert.Equal(t, 4, store.GetInt("batch.workers"))
	assert.Equal(t, 4.0, store.GetFloat("batch.workers"))
	assert.Equal(t, 2.5, store.GetFloat("regenerate.launches_per_second"))
	assert.True(t, store.GetBool("regenerate.enabled"))
	assert.Equal(t, []string{"Warning:", "Overfull"}, store.GetStringSlice("regenerate.warning_patterns"))

	// Wrong types and missing keys read as zero values
	assert.Empty(t, store.GetString("batch.workers"))
	assert.Zero(t, store.GetInt("corpus.root"))
	assert.Zero(t, store.GetFloat("corpus.root"))
	assert.False(t, store.GetBool("corpus.root"))
	assert.Nil(t, store.GetStringSlice("missing"))
	_, ok := store.Get("missing")
	assert.False(t, ok)
}

func TestConfigStore_PersistsAsTables(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, store.Set("corpus.root", "/slides"))
	require.NoError(t, store.Set("context.params.logo_size", "0.08"))
	require.NoError(t, store.Set("batch.workers", 2))
	require.NoError(t, store.Set("regenerate.timeout_seconds", 30))
	require.NoError(t, store.Set("regenerate.warning_patterns", []string{"Warning:"}))

	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.Contains(t, string(raw), "[corpus]")
	assert.Contains(t, string(raw), "[context.params]")
	assert.NotContains(t, string(raw), `"corpus.root"`)

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "/slides", reloaded.GetString("corpus.root"))
	assert.Equal(t, 2, reloaded.GetInt("batch.workers"))
	assert.Equal(t, 30.0, reloaded.GetFloat("regenerate.timeout_seconds"))
	assert.Equal(t, []string{"Warning:"}, reloaded.GetStringSlice("regenerate.warning_patterns"))
	assert.Equal(t, map[string]string{"logo_size": "0.08"}, reloaded.GetStringMap("context.params"))
}

func TestConfigStore_ScalarAndTableClash(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, store.Set("context", "flat"))
	require.NoError(t, store.Set("context.url_base", "https://example.org"))

	reloaded, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, "flat", reloaded.GetString("context"))
	assert.Equal(t, "https://example.org", reloaded.GetString("context.url_base"))
}

func TestConfigStore_GetStringMap(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Set("context.params.a", "1"))
	require.NoError(t, store.Set("context.params.b", "2"))
	require.NoError(t, store.Set("context.params.n", 3))
	require.NoError(t, store.Set("context.paramsx", "no"))

	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, store.GetStringMap("context.params"))
	assert.Empty(t, store.GetStringMap("nothing"))
}

func TestConfigStore_HandEditedFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[corpus]
root = "/decks"
selector = "digits:2:*.py"

[regenerate]
enabled = true
timeout_seconds = 45
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	assert.Equal(t, "/decks", store.GetString("corpus.root"))
	assert.Equal(t, "digits:2:*.py", store.GetString("corpus.selector"))
	assert.True(t, store.GetBool("regenerate.enabled"))
	assert.Equal(t, 45, store.GetInt("regenerate.timeout_seconds"))
}

func TestConfigStore_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), nil, 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	_, ok := store.Get("corpus.root")
	assert.False(t, ok)
}

func TestConfigStore_FilePermissions(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Set("corpus.root", "/slides"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestConfigStore_SaveErrors(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Set("corpus.root", "/slides"))
	require.NoError(t, os.Remove(store.Path()))
	require.NoError(t, os.Mkdir(store.Path(), 0700))

	assert.Error(t, store.Set("corpus.root", "/other"))
	assert.Error(t, store.Save())
}

func TestConfigStore_LoadRejectsInvalidTOML(t *testing.T) {
	store, _ := newStore(t)
	require.NoError(t, store.Set("corpus.root", "/slides"))
	require.NoError(t, os.WriteFile(store.Path(), []byte("invalid ][}{"), 0600))

	assert.Error(t, store.Load())
}

func TestConfigStore_WriteLeavesNoTempFiles(t *testing.T) {
	store, dir := newStore(t)
	require.NoError(t, store.Set("corpus.root", "/slides"))
	require.NoError(t, store.Set("batch.workers", 2))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "config.toml", entries[0].Name())
}

func TestConfigStore_Concurrency(t *testing.T) {
	store, _ := newStore(t)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := "batch.worker" + string(rune('0'+id))
			_ = store.Set(key, id)
			_ = store.GetInt(key)
			_ = store.GetStringMap("batch")
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
