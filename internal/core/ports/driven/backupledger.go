package driven

import (
	"context"

	"github.com/custodia-labs/rework/internal/core/domain"
)

// BackupLedger is the append-only log of backups.
// Entries are never updated or deleted. Implementations must be safe
// for concurrent Record calls.
type BackupLedger interface {
	// Record appends an entry.
	Record(ctx context.Context, entry domain.BackupEntry) error

	// List returns entries matching filter, oldest first.
	List(ctx context.Context, filter domain.LedgerFilter) ([]domain.BackupEntry, error)

	// Get retrieves an entry by ID. Missing IDs return domain.ErrNotFound.
	Get(ctx context.Context, id string) (*domain.BackupEntry, error)
}
