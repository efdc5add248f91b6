package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/cli/output"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// NewVersionsCommand creates the versions command group.
func NewVersionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "versions",
		Short: "Manage document version history",
		Long: `List, save, restore, delete, and prune the timestamped versions kept
for a document in the version directory.`,
	}

	cmd.AddCommand(newVersionsListCommand())
	cmd.AddCommand(newVersionsSaveCommand())
	cmd.AddCommand(newVersionsRestoreCommand())
	cmd.AddCommand(newVersionsDeleteCommand())
	cmd.AddCommand(newVersionsPruneCommand())
	return cmd
}

func newVersionsListCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "list <file>",
		Short:   "List stored versions of a document",
		Example: `  leapgrid versions list budget.csv`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			r := cmdCtx.Renderer
			if format != "" {
				r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
			}

			records, err := cmdCtx.Store.GetVersions(args[0])
			if err != nil {
				return err
			}

			switch r.EffectiveMode() {
			case output.ModeJSON:
				return r.JSON(records)
			default:
				return listVersionsTable(r.Out(), records)
			}
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, json, markdown")
	return cmd
}

func listVersionsTable(w io.Writer, records []core.VersionRecord) error {
	if len(records) == 0 {
		_, _ = fmt.Fprintln(w, "(no versions)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"#", "File", "Modified", "Size"})

	for i, rec := range records {
		t.AppendRow(table.Row{
			i + 1,
			rec.FileName,
			rec.ModifiedAt.Format("2006-01-02 15:04:05"),
			formatSize(rec.SizeBytes),
		})
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d versions)\n", len(records))
	return nil
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

func newVersionsSaveCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "save <file>",
		Short:   "Save a version of a document now",
		Example: `  leapgrid versions save budget.csv`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			sess := cmdCtx.NewSession()
			if err := sess.Open(args[0]); err != nil {
				return err
			}
			rec, err := sess.SaveVersion()
			if err != nil {
				return err
			}

			cmdCtx.Renderer.Printf("Saved %s\n", rec.FileName)
			return nil
		},
	}
}

func newVersionsRestoreCommand() *cobra.Command {
	var noBackup bool

	cmd := &cobra.Command{
		Use:   "restore <file> <version-file>",
		Short: "Restore a document from a stored version",
		Long: `Replace the document's contents with a stored version and write the
result back to the document's file. Unless --no-backup is given, the
current contents are saved as a new version first.`,
		Example: `  leapgrid versions restore budget.csv budget_v20260827_143005.csv`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			rec, err := findVersion(cmdCtx, args[0], args[1])
			if err != nil {
				return err
			}

			sess := cmdCtx.NewSession()
			if err := sess.Open(args[0]); err != nil {
				return err
			}
			if !noBackup {
				if _, err := sess.SaveVersion(); err != nil {
					return fmt.Errorf("failed to back up current contents: %w", err)
				}
			}
			if err := sess.Restore(rec); err != nil {
				return err
			}
			if err := sess.Save(); err != nil {
				return err
			}

			cmdCtx.Renderer.Printf("Restored %s from %s\n", args[0], rec.FileName)
			return nil
		},
	}

	cmd.Flags().BoolVar(&noBackup, "no-backup", false, "Skip saving the current contents as a version first")
	return cmd
}

func newVersionsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "delete <file> <version-file>",
		Short:   "Delete a stored version",
		Example: `  leapgrid versions delete budget.csv budget_v20260827_143005.csv`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			rec, err := findVersion(cmdCtx, args[0], args[1])
			if err != nil {
				return err
			}
			if err := cmdCtx.Store.DeleteVersion(rec); err != nil {
				return err
			}

			cmdCtx.Renderer.Printf("Deleted %s\n", rec.FileName)
			return nil
		},
	}
}

func newVersionsPruneCommand() *cobra.Command {
	var keep int

	cmd := &cobra.Command{
		Use:     "prune <file>",
		Short:   "Delete old versions beyond the retention bound",
		Example: `  leapgrid versions prune budget.csv --keep 5`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			if keep > 0 {
				cmdCtx.Store.SetKeep(keep)
			}

			remaining, err := cmdCtx.Store.Prune(args[0])
			if err != nil {
				return err
			}

			cmdCtx.Renderer.Printf("%d versions kept\n", remaining)
			return nil
		},
	}

	cmd.Flags().IntVarP(&keep, "keep", "k", 0, "Retention bound to enforce (default: configured keep_versions)")
	return cmd
}

// findVersion resolves a version file name to its record.
func findVersion(cmdCtx *CommandContext, docPath, versionFile string) (core.VersionRecord, error) {
	records, err := cmdCtx.Store.GetVersions(docPath)
	if err != nil {
		return core.VersionRecord{}, err
	}
	for _, rec := range records {
		if rec.FileName == versionFile {
			return rec, nil
		}
	}
	return core.VersionRecord{}, fmt.Errorf("%w: %s", core.ErrVersionNotFound, versionFile)
}
