package cli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rework/internal/core/domain"
)

func TestRootCmd_HasCommands(t *testing.T) {
	names := make([]string, 0)
	for _, cmd := range rootCmd.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"run", "plan", "backups", "rollback", "watch", "transformations", "settings", "version"} {
		assert.Contains(t, names, want)
	}
}

func TestRootCmd_InitializerReceivesFlags(t *testing.T) {
	var got Options
	SetInitializer(func(opts Options) (*Services, error) {
		got = opts
		return &Services{CorpusErr: assert.AnError}, nil
	})
	defer SetInitializer(nil)
	t.Cleanup(func() { app = nil })

	_, _, err := execute(t, "--config-dir", "/tmp/cfg", "--root", "/slides", "--catalog", "c.yaml", "run")

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, Options{ConfigDir: "/tmp/cfg", Root: "/slides", CatalogPath: "c.yaml"}, got)
}

func TestRootCmd_InitializerError(t *testing.T) {
	SetInitializer(func(Options) (*Services, error) {
		return nil, assert.AnError
	})
	defer SetInitializer(nil)

	_, _, err := execute(t, "backups")

	assert.ErrorIs(t, err, assert.AnError)
	assert.ErrorContains(t, err, "initialise")
}

func TestRootCmd_InvalidLogLevel(t *testing.T) {
	setupTestServices(t)

	_, _, err := execute(t, "--log-level", "loud", "backups")

	assert.ErrorContains(t, err, "unknown log level")
}

func TestRequireServices_NotConfigured(t *testing.T) {
	_, err := requireServices()
	assert.Error(t, err)

	_, err = requireCorpus()
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitList(" a, ,b,"))
	assert.Nil(t, splitList(""))
}

func TestTransformationsCmd(t *testing.T) {
	setupTestServices(t, markerDef(), urlDef())

	out, _, err := execute(t, "transformations")
	require.NoError(t, err)

	assert.Regexp(t, `add-marker\s+1\s+literal\s+insert_after\s+"X"`, out)
	assert.Regexp(t, `add-url\s+1\s+template\s+append\s+-`, out)
}

func TestTransformationsCmd_InvalidCatalog(t *testing.T) {
	bad := markerDef()
	bad.Placement = "sideways"
	setupTestServices(t, bad)

	_, _, err := execute(t, "catalog")

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestDebounce_BatchesDistinctKeys(t *testing.T) {
	events := make(chan string)
	batches := make(chan []string, 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		debounce(ctx, events, 50*time.Millisecond, func(keys []string) { batches <- keys })
		close(done)
	}()

	events <- "b.py"
	events <- "a.py"
	events <- "b.py"

	select {
	case keys := <-batches:
		assert.Equal(t, []string{"a.py", "b.py"}, keys)
	case <-time.After(5 * time.Second):
		t.Fatal("no batch")
	}

	events <- "c.py"
	close(events)
	<-done

	select {
	case keys := <-batches:
		assert.Equal(t, []string{"c.py"}, keys, "pending keys flush on close")
	default:
		t.Fatal("pending keys were dropped")
	}
}

func TestDebounce_StopsOnCancel(t *testing.T) {
	events := make(chan string)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		debounce(ctx, events, time.Hour, func([]string) { t.Error("unexpected flush") })
		close(done)
	}()
	events <- "a.py"
	cancel()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("debounce did not stop")
	}
}

func TestWatchCmd_RequiresWatcher(t *testing.T) {
	setupTestServices(t)

	_, _, err := execute(t, "watch")

	assert.ErrorContains(t, err, "watching is not supported")
}
