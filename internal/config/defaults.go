// Package config holds the shared configuration defaults for LeapGrid.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// Default values shared between the CLI loader and the UI server.
const (
	// DefaultAppDir is the per-user data directory, relative to $HOME.
	DefaultAppDir = ".leapgrid"

	// DefaultVersionDirName is the version directory inside the app dir.
	DefaultVersionDirName = "versions"

	// DefaultStateFileName is the settings database inside the app dir.
	DefaultStateFileName = "state.db"

	// DefaultOutput is the output rendering mode.
	DefaultOutput = "auto"

	// DefaultUIAddr is the address the UI server listens on.
	DefaultUIAddr = "localhost:8765"
)

// AppDir returns the per-user data directory, honoring $HOME.
func AppDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultAppDir
	}
	return filepath.Join(home, DefaultAppDir)
}

// DefaultVersionDir returns the default version directory path.
func DefaultVersionDir() string {
	return filepath.Join(AppDir(), DefaultVersionDirName)
}

// DefaultStatePath returns the default settings database path.
func DefaultStatePath() string {
	return filepath.Join(AppDir(), DefaultStateFileName)
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}
