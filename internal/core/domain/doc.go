// Package domain defines the core entities for rework.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Artifact: A named, mutable unit of text in the corpus
//   - TransformationSpec: A named, versioned change with marker and anchors
//   - ApplicationRecord: The outcome of applying one spec to one artifact
//   - BackupEntry: An append-only ledger row pointing at pre-patch bytes
//   - BatchReport: The aggregate of one run over the corpus
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
