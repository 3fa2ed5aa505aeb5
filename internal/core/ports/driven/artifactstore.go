package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/rework/internal/core/domain"
)

// ArtifactStore provides access to the corpus.
type ArtifactStore interface {
	// List returns the keys accepted by selector, in a deterministic order.
	// An error here is the only condition that aborts a batch.
	List(ctx context.Context, selector domain.Selector) ([]string, error)

	// Read returns the artifact. Missing keys return domain.ErrNotFound.
	Read(ctx context.Context, key string) (domain.Artifact, error)

	// Write replaces the artifact content atomically: either the full new
	// content lands or the prior content remains. Failures wrap domain.ErrIO.
	Write(ctx context.Context, key string, content string) error

	// Backup copies the current content to a tagged, timestamped location
	// without altering the original and returns that location.
	Backup(ctx context.Context, key string, tag string, at time.Time) (string, error)

	// ReadBackup returns the bytes stored at a backup location.
	ReadBackup(ctx context.Context, location string) (string, error)
}

// ArtifactWatcher reports artifacts changed on disk.
type ArtifactWatcher interface {
	// Watch emits selected keys as they change until ctx is cancelled.
	Watch(ctx context.Context, selector domain.Selector) (<-chan string, error)
}
