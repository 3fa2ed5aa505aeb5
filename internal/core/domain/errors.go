package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates an unknown renderer, selector or placement.
	ErrUnsupportedType = errors.New("unsupported type")

	// ErrIO indicates a read, write or backup failure on an artifact.
	// The artifact is left unchanged when this is returned from a write.
	ErrIO = errors.New("i/o error")

	// Matching Errors.

	// ErrAnchorNotFound indicates no anchor pattern matched the artifact.
	ErrAnchorNotFound = errors.New("anchor not found")

	// ErrAmbiguousAnchor indicates an anchor pattern matched more than once.
	// The patch is refused rather than guessing a location.
	ErrAmbiguousAnchor = errors.New("ambiguous anchor")

	// Ledger Errors.

	// ErrHashMismatch indicates a backup's bytes no longer match the ledger hash.
	ErrHashMismatch = errors.New("backup content hash mismatch")
)
