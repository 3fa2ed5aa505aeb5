// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ArtifactStore: Corpus enumeration, read, atomic write and backup copies
//   - BackupLedger: Append-only record of every backup taken
//   - ConfigStore: Application configuration
//   - CatalogSource: Transformation catalog loading
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - RegenerationGateway: Rebuilds derived outputs. Without it, runs only patch text.
//   - ArtifactWatcher: Change notifications for watch mode.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
