package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rework/internal/core/domain"
)

func TestBackupsCmd_ListsEntries(t *testing.T) {
	env := setupTestServices(t)

	out, _, err := execute(t, "backups")
	require.NoError(t, err)
	assert.Contains(t, out, "No backups recorded.")

	env.store.Put("01_intro/chart.py", "X")
	env.store.Put("02_results/chart.py", "X")
	_, _, err = execute(t, "run")
	require.NoError(t, err)

	out, _, err = execute(t, "backups")
	require.NoError(t, err)
	assert.Contains(t, out, "ARTIFACT")
	assert.Contains(t, out, "01_intro/chart.py")
	assert.Contains(t, out, "add-marker v1")
	assert.Contains(t, out, "previous/01_intro_chart.py.backup_add-marker_")

	out, _, err = execute(t, "backups", "--artifact", "02_results/chart.py")
	require.NoError(t, err)
	assert.NotContains(t, out, "01_intro/chart.py")
	assert.Contains(t, out, "02_results/chart.py")
}

func TestBackupsCmd_MarksVoidEntries(t *testing.T) {
	env := setupTestServices(t)
	env.store.Put("01_intro/chart.py", "X")
	env.store.FailWrites("01_intro/chart.py", errors.New("disk full"))

	_, _, err := execute(t, "run")
	require.ErrorIs(t, err, ErrRunFailed)
	require.Equal(t, 2, env.ledger.Len())

	entries, err := env.ledger.List(context.Background(), domain.LedgerFilter{})
	require.NoError(t, err)

	out, _, err := execute(t, "backups")
	require.NoError(t, err)
	assert.Contains(t, out, "voids "+entries[0].ID)
}

func TestRollbackCmd_ByArtifact(t *testing.T) {
	env := setupTestServices(t)
	env.store.Put("01_intro/chart.py", "X")
	_, _, err := execute(t, "run")
	require.NoError(t, err)

	out, _, err := execute(t, "rollback", "--artifact", "01_intro/chart.py")
	require.NoError(t, err)

	assert.Contains(t, out, "restored 01_intro/chart.py")
	assert.Equal(t, "X", env.store.Content("01_intro/chart.py"))
	assert.Equal(t, 2, env.ledger.Len(), "the restore is itself backed up")
}

func TestRollbackCmd_ByRun(t *testing.T) {
	env := setupTestServices(t, markerDef(), urlDef())
	env.store.Put("01_intro/chart.py", "X")
	env.store.Put("02_results/chart.py", "X")
	_, _, err := execute(t, "run")
	require.NoError(t, err)

	entries, err := env.ledger.List(context.Background(), domain.LedgerFilter{})
	require.NoError(t, err)
	require.Len(t, entries, 4)

	_, _, err = execute(t, "rollback", "--run", entries[0].RunID)
	require.NoError(t, err)

	assert.Equal(t, "X", env.store.Content("01_intro/chart.py"))
	assert.Equal(t, "X", env.store.Content("02_results/chart.py"))
}

func TestRollbackCmd_ByID(t *testing.T) {
	env := setupTestServices(t)
	env.store.Put("01_intro/chart.py", "X")
	_, _, err := execute(t, "run")
	require.NoError(t, err)
	entries, err := env.ledger.List(context.Background(), domain.LedgerFilter{})
	require.NoError(t, err)

	_, _, err = execute(t, "rollback", entries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "X", env.store.Content("01_intro/chart.py"))

	_, stderr, err := execute(t, "rollback", "no-such-entry")
	assert.ErrorIs(t, err, ErrRunFailed)
	assert.Contains(t, stderr, "failed no-such-entry")
}

func TestRollbackCmd_Errors(t *testing.T) {
	setupTestServices(t)

	_, _, err := execute(t, "rollback")
	assert.ErrorContains(t, err, "specify an entry ID")

	_, _, err = execute(t, "rollback", "--artifact", "01_intro/chart.py")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = execute(t, "rollback", "--run", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFirstPerArtifact(t *testing.T) {
	entries := []domain.BackupEntry{
		{ID: "1", ArtifactKey: "a"},
		{ID: "2", ArtifactKey: "b"},
		{ID: "3", ArtifactKey: "a"},
	}

	assert.Equal(t, []string{"1", "2"}, firstPerArtifact(entries))
}
