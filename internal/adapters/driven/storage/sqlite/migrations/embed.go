// Package migrations holds the ledger schema as numbered SQL scripts.
// Scripts are named NNN_description.up.sql (and .down.sql for reference);
// the store applies every up script newer than PRAGMA user_version.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
