package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func capture(t *testing.T, l Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(l)
	t.Cleanup(func() {
		SetLevel(LevelWarn)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestDefaultLevelShowsWarnings(t *testing.T) {
	buf := capture(t, LevelWarn)

	Debug("hidden %d", 1)
	Info("hidden")
	Section("hidden")
	Warn("backup dir %s missing", "previous")
	Error("ledger locked")

	assert.Equal(t, "[WARN] backup dir previous missing\n[ERROR] ledger locked\n", buf.String())
}

func TestVerboseShowsEverything(t *testing.T) {
	buf := capture(t, LevelWarn)
	SetVerbose(true)

	assert.True(t, IsVerbose())
	Section("Batch")
	Debug("%s: %s", "01_intro/chart.py", "applied")
	Info("done")

	assert.Equal(t, "\n=== Batch ===\n[DEBUG] 01_intro/chart.py: applied\n[INFO] done\n", buf.String())

	SetVerbose(false)
	assert.False(t, IsVerbose())
	assert.Equal(t, LevelWarn, GetLevel())
}

func TestErrorLevelIsQuiet(t *testing.T) {
	buf := capture(t, LevelError)

	Warn("hidden")
	Error("shown")

	assert.Equal(t, "[ERROR] shown\n", buf.String())
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		"INFO":    LevelInfo,
		"warning": LevelWarn,
		" warn ":  LevelWarn,
		"error":   LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
	assert.Equal(t, "LEVEL(9)", Level(9).String())
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, LevelDebug)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			SetVerbose(i%2 == 0)
			Debug("message %d", i)
			Warn("warning %d", i)
			_ = IsVerbose()
		}(i)
	}
	wg.Wait()
}
