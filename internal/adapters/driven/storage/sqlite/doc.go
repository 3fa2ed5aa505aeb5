// Package sqlite provides the SQLite-backed BackupLedger.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files. The
// backup_entries table carries triggers that abort any UPDATE or DELETE, so
// the ledger can only grow.
//
// # Data Location
//
// By default, the database is stored at ~/.rework/data/ledger.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Appends from several workers
// are serialised by SQLite in WAL mode with a busy timeout.
package sqlite
