package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/rework/internal/core/domain"
	"github.com/custodia-labs/rework/internal/core/ports/driven"
)

// Verify interface compliance.
var _ driven.BackupLedger = (*backupLedger)(nil)

// backupLedger implements driven.BackupLedger. It only ever inserts.
type backupLedger struct {
	db *sql.DB
}

const entryColumns = `id, artifact_key, transformation, version, run_id, timestamp_ns, location, content_hash, size, voids`

// Record appends an entry.
func (l *backupLedger) Record(ctx context.Context, entry domain.BackupEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("%w: entry id is required", domain.ErrInvalidInput)
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO backup_entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		entry.ID,
		entry.ArtifactKey,
		entry.Transformation,
		entry.Version,
		entry.RunID,
		entry.Timestamp.UnixNano(),
		entry.Location,
		entry.ContentHash,
		entry.Size,
		entry.Voids,
	)
	if err != nil {
		return fmt.Errorf("%w: record backup entry: %w", domain.ErrIO, err)
	}
	return nil
}

// List returns matching entries, oldest first. With a limit, only the
// newest entries are returned.
func (l *backupLedger) List(ctx context.Context, filter domain.LedgerFilter) ([]domain.BackupEntry, error) {
	var (
		where []string
		args  []any
	)
	if filter.ArtifactKey != "" {
		where = append(where, "artifact_key = ?")
		args = append(args, filter.ArtifactKey)
	}
	if filter.Transformation != "" {
		where = append(where, "transformation = ?")
		args = append(args, filter.Transformation)
	}
	if filter.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, filter.RunID)
	}

	query := "SELECT seq, " + entryColumns + " FROM backup_entries"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY timestamp_ns DESC, seq DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}
	query = "SELECT " + entryColumns + " FROM (" + query + ") ORDER BY timestamp_ns, seq"

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list backup entries: %w", domain.ErrIO, err)
	}
	defer rows.Close()

	entries := make([]domain.BackupEntry, 0)
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list backup entries: %w", domain.ErrIO, err)
	}
	return entries, nil
}

// Get retrieves an entry by ID.
func (l *backupLedger) Get(ctx context.Context, id string) (*domain.BackupEntry, error) {
	row := l.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM backup_entries WHERE id = ?", id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	return entry, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (*domain.BackupEntry, error) {
	var (
		e  domain.BackupEntry
		ns int64
	)
	err := row.Scan(
		&e.ID,
		&e.ArtifactKey,
		&e.Transformation,
		&e.Version,
		&e.RunID,
		&ns,
		&e.Location,
		&e.ContentHash,
		&e.Size,
		&e.Voids,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("%w: scan backup entry: %w", domain.ErrIO, err)
	}
	e.Timestamp = time.Unix(0, ns).UTC()
	return &e, nil
}
