// Package commands implements the leapgrid subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/cli/config"
	"github.com/leapstack-labs/leapgrid/internal/cli/output"
	intconfig "github.com/leapstack-labs/leapgrid/internal/config"
	"github.com/leapstack-labs/leapgrid/internal/session"
	"github.com/leapstack-labs/leapgrid/internal/state"
	"github.com/leapstack-labs/leapgrid/internal/versions"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
	Store    *versions.Store
}

// NewCommandContext creates a CommandContext with a version store and
// renderer.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg := getConfig()
	logger := config.GetLogger(cmd.Context())

	store, err := versions.NewStore(cfg.VersionDir, cfg.AutoSave.KeepVersions, versions.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	mode := output.Mode(cfg.Output)
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
		Store:    store,
	}, nil
}

// NewSession creates a document session over the context's store.
func (c *CommandContext) NewSession() *session.Session {
	return session.New(c.Store, session.WithLogger(c.Logger))
}

// OpenStateStore opens (and migrates) the settings database. The
// returned cleanup must be called, typically via defer.
func (c *CommandContext) OpenStateStore() (*state.SQLiteStore, func(), error) {
	stateDir := filepath.Dir(c.Cfg.StatePath)
	if stateDir != "." && stateDir != "" {
		if err := os.MkdirAll(stateDir, 0o750); err != nil {
			return nil, nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	store := state.NewSQLiteStore()
	if err := store.Open(c.Cfg.StatePath); err != nil {
		return nil, nil, err
	}
	if err := store.Migrate(); err != nil {
		store.Close()
		return nil, nil, err
	}

	cleanup := func() { _ = store.Close() }
	return store, cleanup, nil
}

// getConfig returns the current configuration, falling back to
// environment variables when no config has been loaded.
func getConfig() *config.Config {
	if cfg := config.GetCurrentConfig(); cfg != nil {
		return cfg
	}

	// Fallback: read from environment with defaults
	versionDir := getEnvOrDefault("LEAPGRID_VERSION_DIR", intconfig.DefaultVersionDir())
	statePath := getEnvOrDefault("LEAPGRID_STATE_PATH", intconfig.DefaultStatePath())
	outputFormat := getEnvOrDefault("LEAPGRID_OUTPUT", intconfig.DefaultOutput)
	uiAddr := getEnvOrDefault("LEAPGRID_UI_ADDR", intconfig.DefaultUIAddr)
	verbose := os.Getenv("LEAPGRID_VERBOSE") == "true"

	return &config.Config{
		VersionDir: versionDir,
		StatePath:  statePath,
		AutoSave:   config.AutoSaveConfig{Enabled: true, IntervalMinutes: 5, KeepVersions: 10},
		Output:     outputFormat,
		UIAddr:     uiAddr,
		Verbose:    verbose,
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
