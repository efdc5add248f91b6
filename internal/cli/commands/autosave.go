package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/cli/output"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// NewAutoSaveCommand creates the autosave command group.
func NewAutoSaveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "autosave",
		Short: "Inspect and change auto-save settings",
		Long: `Auto-save settings are persisted in the settings database and used by
the UI server's background saver. The audit trail records every save
attempt, successful or failed.`,
	}

	cmd.AddCommand(newAutoSaveStatusCommand())
	cmd.AddCommand(newAutoSaveSetCommand())
	cmd.AddCommand(newAutoSaveEventsCommand())
	return cmd
}

func newAutoSaveStatusCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the current auto-save settings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			stateStore, cleanup, err := cmdCtx.OpenStateStore()
			if err != nil {
				return err
			}
			defer cleanup()

			settings, err := stateStore.LoadAutoSave()
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if format != "" {
				r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
			}
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(settings)
			}

			state := "disabled"
			if settings.Enabled {
				state = "enabled"
			}
			r.Printf("Auto-save: %s\n", state)
			r.Printf("  interval: %d minutes\n", settings.IntervalMinutes)
			r.Printf("  keep:     %d versions\n", settings.KeepVersions)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, json, markdown")
	return cmd
}

func newAutoSaveSetCommand() *cobra.Command {
	var (
		enable   bool
		disable  bool
		interval int
		keep     int
	)

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change auto-save settings",
		Example: `  # Save every 10 minutes, keep the last 20 versions
  leapgrid autosave set --interval 10 --keep 20

  # Turn auto-save off
  leapgrid autosave set --disable`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if enable && disable {
				return fmt.Errorf("--enable and --disable are mutually exclusive")
			}

			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			stateStore, cleanup, err := cmdCtx.OpenStateStore()
			if err != nil {
				return err
			}
			defer cleanup()

			settings, err := stateStore.LoadAutoSave()
			if err != nil {
				return err
			}

			if enable {
				settings.Enabled = true
			}
			if disable {
				settings.Enabled = false
			}
			if cmd.Flags().Changed("interval") {
				settings.IntervalMinutes = interval
			}
			if cmd.Flags().Changed("keep") {
				settings.KeepVersions = keep
			}

			if err := stateStore.SaveAutoSave(settings); err != nil {
				return err
			}

			cmdCtx.Renderer.Println("Auto-save settings updated")
			return nil
		},
	}

	cmd.Flags().BoolVar(&enable, "enable", false, "Enable auto-save")
	cmd.Flags().BoolVar(&disable, "disable", false, "Disable auto-save")
	cmd.Flags().IntVar(&interval, "interval", 0, "Auto-save interval in minutes (1-60)")
	cmd.Flags().IntVar(&keep, "keep", 0, "Versions to keep per document (1-100)")
	return cmd
}

func newAutoSaveEventsCommand() *cobra.Command {
	var (
		limit  int
		format string
	)

	cmd := &cobra.Command{
		Use:   "events",
		Short: "Show the auto-save audit trail",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			stateStore, cleanup, err := cmdCtx.OpenStateStore()
			if err != nil {
				return err
			}
			defer cleanup()

			events, err := stateStore.ListAutoSaveEvents(limit)
			if err != nil {
				return err
			}

			r := cmdCtx.Renderer
			if format != "" {
				r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
			}
			if r.EffectiveMode() == output.ModeJSON {
				return r.JSON(events)
			}
			return listEventsTable(r.Out(), events)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum events to show (0 = all)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, json, markdown")
	return cmd
}

func listEventsTable(w io.Writer, events []core.AutoSaveEvent) error {
	if len(events) == 0 {
		_, _ = fmt.Fprintln(w, "(no auto-save events)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"When", "Status", "Document", "Version", "Error"})

	for _, e := range events {
		t.AppendRow(table.Row{
			e.OccurredAt.Format("2006-01-02 15:04:05"),
			e.Status,
			e.DocumentPath,
			e.VersionFile,
			e.Error,
		})
	}

	t.Render()
	return nil
}
