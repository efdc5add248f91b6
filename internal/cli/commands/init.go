package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

const configTemplate = `# LeapGrid configuration
version_dir: %s
state_path: %s

autosave:
  enabled: %t
  interval_minutes: %d
  keep_versions: %d

# Output format: auto, text, json, markdown
output: auto
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a leapgrid workspace",
		Long: `Create a leapgrid.yaml config file, the version directory, and the
settings database.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			if err := os.MkdirAll(dir, 0o750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}

			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			cfg := cmdCtx.Cfg

			cfgPath := filepath.Join(dir, "leapgrid.yaml")
			if _, err := os.Stat(cfgPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", cfgPath)
			}

			defaults := core.DefaultAutoSaveSettings()
			content := fmt.Sprintf(configTemplate,
				cfg.VersionDir, cfg.StatePath,
				defaults.Enabled, defaults.IntervalMinutes, defaults.KeepVersions)
			if err := os.WriteFile(cfgPath, []byte(content), 0o644); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			// Version dir was created by NewCommandContext; set up the
			// settings database as well.
			stateStore, cleanup, err := cmdCtx.OpenStateStore()
			if err != nil {
				return err
			}
			defer cleanup()
			if err := stateStore.SaveAutoSave(defaults); err != nil {
				return err
			}

			r := cmdCtx.Renderer
			r.Println("Initialized leapgrid workspace")
			r.Printf("  config:      %s\n", cfgPath)
			r.Printf("  versions:    %s\n", cfg.VersionDir)
			r.Printf("  settings db: %s\n", cfg.StatePath)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing config file")
	return cmd
}
