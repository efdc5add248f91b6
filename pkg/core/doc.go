// Package core defines the shared language of the LeapGrid system.
//
// This package contains:
//   - Domain entities (Document, Snapshot, VersionRecord)
//   - Service interfaces (SettingsStore)
//   - Configuration types (AutoSaveSettings)
//   - The error taxonomy shared by history and version management
//
// The Golden Rule: pkg/core imports ONLY the stdlib.
// All other packages depend on core, not the reverse.
package core
