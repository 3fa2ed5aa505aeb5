package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driven"
)

// Ensure BackupLedger implements the interface.
var _ driven.BackupLedger = (*BackupLedger)(nil)

// BackupLedger is an in-memory implementation of driven.BackupLedger.
type BackupLedger struct {
	mu      sync.RWMutex
	entries []domain.BackupEntry
	failErr error
}

// NewBackupLedger creates a new in-memory backup ledger.
func NewBackupLedger() *BackupLedger {
	return &BackupLedger{}
}

// FailRecords makes Record fail with err. A nil err clears it.
func (l *BackupLedger) FailRecords(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failErr = err
}

// Len returns the number of recorded entries.
func (l *BackupLedger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Record appends an entry.
func (l *BackupLedger) Record(ctx context.Context, entry domain.BackupEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("%w: entry id is required", domain.ErrInvalidInput)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.failErr != nil {
		return l.failErr
	}
	for _, e := range l.entries {
		if e.ID == entry.ID {
			return fmt.Errorf("%w: duplicate entry id %s", domain.ErrInvalidInput, entry.ID)
		}
	}
	l.entries = append(l.entries, entry)
	return nil
}

// List returns matching entries, oldest first.
func (l *BackupLedger) List(ctx context.Context, filter domain.LedgerFilter) ([]domain.BackupEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make([]domain.BackupEntry, 0)
	for _, e := range l.entries {
		if filter.Matches(e) {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Timestamp.Before(result[j].Timestamp)
	})
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[len(result)-filter.Limit:]
	}
	return result, nil
}

// Get retrieves an entry by ID.
func (l *BackupLedger) Get(ctx context.Context, id string) (*domain.BackupEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, e := range l.entries {
		if e.ID == id {
			entry := e
			return &entry, nil
		}
	}
	return nil, domain.ErrNotFound
}
