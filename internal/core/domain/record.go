package domain

import "time"

// ApplicationStatus is the outcome of applying one spec to one artifact.
type ApplicationStatus string

// Application outcomes.
const (
	// StatusApplied means the artifact was backed up and rewritten.
	StatusApplied ApplicationStatus = "applied"

	// StatusAlreadyApplied means the marker was present; nothing changed.
	StatusAlreadyApplied ApplicationStatus = "already_applied"

	// StatusAnchorNotFound means no unambiguous anchor exists; nothing changed.
	StatusAnchorNotFound ApplicationStatus = "anchor_not_found"

	// StatusIOError means a read, render, backup or write step failed.
	StatusIOError ApplicationStatus = "io_error"
)

// AllStatuses lists the application outcomes in report order.
var AllStatuses = []ApplicationStatus{
	StatusApplied,
	StatusAlreadyApplied,
	StatusAnchorNotFound,
	StatusIOError,
}

// IsFailure returns true for outcomes an operator must look at.
func (s ApplicationStatus) IsFailure() bool {
	return s == StatusAnchorNotFound || s == StatusIOError
}

// String returns the string representation.
func (s ApplicationStatus) String() string {
	return string(s)
}

// BackupRef points at the backup taken for an applied record.
type BackupRef struct {
	// EntryID is the ledger entry identifier.
	EntryID string

	// Location is where the pre-patch bytes were copied.
	Location string
}

// ApplicationRecord is the result of one (artifact, spec) attempt.
// BackupRef is non-nil if and only if Status is StatusApplied.
type ApplicationRecord struct {
	ArtifactKey    string
	Transformation string
	Status         ApplicationStatus

	// Reason explains non-applied outcomes.
	Reason string

	BackupRef *BackupRef
	Timestamp time.Time
}

// BackupEntry is an append-only ledger row describing one backup.
type BackupEntry struct {
	// ID is the unique entry identifier.
	ID string

	ArtifactKey    string
	Transformation string
	Version        int

	// RunID links the entry to the batch that produced it.
	RunID string

	Timestamp time.Time

	// Location is the backup's path relative to the corpus root.
	Location string

	// ContentHash is the hex sha256 of the pre-patch bytes.
	ContentHash string

	// Size is the pre-patch length in bytes.
	Size int64

	// Voids names an earlier entry whose patch never reached the artifact.
	// The earlier entry's backup still matches the artifact's content.
	Voids string
}

// IsVoid reports whether the entry marks another entry as void.
func (e BackupEntry) IsVoid() bool {
	return e.Voids != ""
}

// LedgerFilter narrows ledger queries. Zero fields match everything.
type LedgerFilter struct {
	ArtifactKey    string
	Transformation string
	RunID          string

	// Limit keeps only the newest entries. Zero means no limit.
	Limit int
}

// Matches reports whether the entry satisfies the filter.
func (f LedgerFilter) Matches(e BackupEntry) bool {
	if f.ArtifactKey != "" && f.ArtifactKey != e.ArtifactKey {
		return false
	}
	if f.Transformation != "" && f.Transformation != e.Transformation {
		return false
	}
	if f.RunID != "" && f.RunID != e.RunID {
		return false
	}
	return true
}
