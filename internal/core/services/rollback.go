package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driven"
	"github.com/custodia-labs/rework/internal/core/ports/driving"
	"github.com/custodia-labs/rework/internal/logger"
)

// RollbackTransformation is the ledger name used for pre-restore backups.
const RollbackTransformation = "rollback"

// Ensure RollbackService implements the interface.
var _ driving.RollbackService = (*RollbackService)(nil)

// RollbackService restores artifacts from ledger entries.
type RollbackService struct {
	store  driven.ArtifactStore
	ledger driven.BackupLedger
	now    func() time.Time
}

// NewRollbackService creates a new rollback service.
func NewRollbackService(store driven.ArtifactStore, ledger driven.BackupLedger) *RollbackService {
	return &RollbackService{
		store:  store,
		ledger: ledger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Entries lists ledger entries matching filter.
func (s *RollbackService) Entries(ctx context.Context, filter domain.LedgerFilter) ([]domain.BackupEntry, error) {
	return s.ledger.List(ctx, filter)
}

// Latest returns the newest entry for key, optionally for one transformation.
// Void entries and the entries they void are skipped.
func (s *RollbackService) Latest(ctx context.Context, key, transformation string) (*domain.BackupEntry, error) {
	entries, err := s.ledger.List(ctx, domain.LedgerFilter{ArtifactKey: key, Transformation: transformation})
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	voided := make(map[string]bool)
	for _, e := range entries {
		if e.IsVoid() {
			voided[e.Voids] = true
		}
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if latest := entries[i]; !latest.IsVoid() && !voided[latest.ID] {
			return &latest, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Restore writes an entry's backup over its artifact. The backup is
// verified against the recorded hash and the current content is backed
// up and recorded before the write. It returns the new ledger entry.
func (s *RollbackService) Restore(ctx context.Context, entryID string) (*domain.BackupEntry, error) {
	entry, err := s.ledger.Get(ctx, entryID)
	if err != nil {
		return nil, fmt.Errorf("get entry: %w", err)
	}

	original, err := s.store.ReadBackup(ctx, entry.Location)
	if err != nil {
		return nil, fmt.Errorf("read backup: %w", err)
	}
	if HashContent(original) != entry.ContentHash {
		return nil, fmt.Errorf("%w: %s", domain.ErrHashMismatch, entry.Location)
	}

	current, err := s.store.Read(ctx, entry.ArtifactKey)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	at := s.now()
	location, err := s.store.Backup(ctx, entry.ArtifactKey, RollbackTransformation, at)
	if err != nil {
		return nil, fmt.Errorf("backup current content: %w", err)
	}
	undo := domain.BackupEntry{
		ID:             uuid.New().String(),
		ArtifactKey:    entry.ArtifactKey,
		Transformation: RollbackTransformation,
		RunID:          entry.ID,
		Timestamp:      at,
		Location:       location,
		ContentHash:    HashContent(current.Content),
		Size:           int64(len(current.Content)),
	}
	if err := s.ledger.Record(ctx, undo); err != nil {
		return nil, fmt.Errorf("record backup: %w", err)
	}

	if err := s.store.Write(ctx, entry.ArtifactKey, original); err != nil {
		return nil, fmt.Errorf("write artifact: %w", err)
	}

	logger.Info("Restored %s from %s (undo backup %s)", entry.ArtifactKey, entry.Location, location)
	return &undo, nil
}
