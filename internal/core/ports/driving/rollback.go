package driving

import (
	"context"

	"github.com/custodia-labs/rework/internal/core/domain"
)

// RollbackService restores artifacts from the backup ledger.
type RollbackService interface {
	// Entries lists ledger entries matching filter, oldest first.
	Entries(ctx context.Context, filter domain.LedgerFilter) ([]domain.BackupEntry, error)

	// Latest returns the newest entry for an artifact, optionally narrowed to
	// one transformation.
	Latest(ctx context.Context, key, transformation string) (*domain.BackupEntry, error)

	// Restore writes the entry's backup bytes back over the artifact after
	// verifying their hash. The current content is backed up first and
	// recorded under the "rollback" transformation.
	Restore(ctx context.Context, entryID string) (*domain.BackupEntry, error)
}
