// Package config provides configuration management for the LeapGrid CLI.
//
// Configuration is layered: built-in defaults, then leapgrid.yaml, then
// LEAPGRID_* environment variables, then command-line flags.
package config

import (
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// AutoSaveConfig is an alias for the shared auto-save settings type.
// This allows CLI code to use config.AutoSaveConfig without importing
// pkg/core.
type AutoSaveConfig = core.AutoSaveSettings

// Config is the fully resolved CLI configuration.
type Config struct {
	// VersionDir is where document versions are stored.
	VersionDir string `koanf:"version_dir"`

	// StatePath is the settings/audit SQLite database.
	StatePath string `koanf:"state_path"`

	// AutoSave holds the auto-save settings.
	AutoSave AutoSaveConfig `koanf:"autosave"`

	// Output selects the rendering mode: auto, text, json, or markdown.
	Output string `koanf:"output"`

	// UIAddr is the listen address for the UI server.
	UIAddr string `koanf:"ui_addr"`

	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose"`

	// ProjectRoot is the directory the config file was found in (or the
	// working directory). Not read from the file itself.
	ProjectRoot string `koanf:"-"`
}
