package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/cli/output"
	"github.com/leapstack-labs/leapgrid/internal/codec"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// ShowOptions holds options for the show command.
type ShowOptions struct {
	Limit   int    // Maximum rows to display (0 = all)
	Format  string // Output format override
	Formats bool   // Include column format settings
}

// NewShowCommand creates the show command.
func NewShowCommand() *cobra.Command {
	opts := &ShowOptions{}
	cmd := &cobra.Command{
		Use:   "show <file>",
		Short: "Display a document",
		Long: `Read a CSV or .grid document and print it as a table.

Output adapts to environment:
  - Terminal: table with borders
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format`,
		Example: `  # Show a document
  leapgrid show budget.csv

  # First ten rows only
  leapgrid show budget.csv --limit 10

  # Machine readable
  leapgrid show budget.grid --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			r := cmdCtx.Renderer
			if opts.Format != "" {
				r = output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(opts.Format))
			}

			doc, err := codec.ReadDocument(args[0])
			if err != nil {
				return err
			}

			rows := doc.Rows
			truncated := false
			if opts.Limit > 0 && len(rows) > opts.Limit {
				rows = rows[:opts.Limit]
				truncated = true
			}

			switch r.EffectiveMode() {
			case output.ModeJSON:
				return showJSON(r, doc, rows)
			case output.ModeMarkdown:
				return showMarkdown(r.Out(), doc, rows, truncated)
			default:
				return showTable(r.Out(), doc, rows, truncated, opts.Formats)
			}
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 0, "Maximum rows to display (0 = all)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, json, markdown")
	cmd.Flags().BoolVar(&opts.Formats, "formats", false, "Show column format settings")
	return cmd
}

type showOutput struct {
	Path    string                     `json:"path"`
	Columns []string                   `json:"columns"`
	Rows    [][]string                 `json:"rows"`
	Formats map[string]core.FormatSpec `json:"formats,omitempty"`
	Total   int                        `json:"total_rows"`
}

func showJSON(r *output.Renderer, doc *core.Document, rows [][]string) error {
	return r.JSON(showOutput{
		Path:    doc.BoundPath,
		Columns: doc.Columns,
		Rows:    rows,
		Formats: doc.Formats,
		Total:   len(doc.Rows),
	})
}

func showTable(w io.Writer, doc *core.Document, rows [][]string, truncated, withFormats bool) error {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	headerRow := make(table.Row, len(doc.Columns))
	for i, col := range doc.Columns {
		headerRow[i] = col
	}
	t.AppendHeader(headerRow)

	for _, row := range rows {
		tr := make(table.Row, len(row))
		for i, cell := range row {
			tr[i] = cell
		}
		t.AppendRow(tr)
	}

	t.Render()
	if truncated {
		_, _ = fmt.Fprintf(w, "(%d of %d rows)\n", len(rows), len(doc.Rows))
	} else {
		_, _ = fmt.Fprintf(w, "(%d rows)\n", len(rows))
	}

	if withFormats && len(doc.Formats) > 0 {
		_, _ = fmt.Fprintln(w)
		_, _ = fmt.Fprintln(w, "Formats:")
		for col, spec := range doc.Formats {
			_, _ = fmt.Fprintf(w, "  %s: %s\n", col, describeFormat(spec))
		}
	}
	return nil
}

func showMarkdown(w io.Writer, doc *core.Document, rows [][]string, truncated bool) error {
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(doc.Columns, " | "))
	seps := make([]string, len(doc.Columns))
	for i := range seps {
		seps[i] = "---"
	}
	_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(seps, " | "))

	for _, row := range rows {
		_, _ = fmt.Fprintf(w, "| %s |\n", strings.Join(row, " | "))
	}
	if truncated {
		_, _ = fmt.Fprintf(w, "\n(%d of %d rows)\n", len(rows), len(doc.Rows))
	}
	return nil
}

func describeFormat(spec core.FormatSpec) string {
	parts := []string{spec.Kind}
	if spec.Decimals > 0 {
		parts = append(parts, fmt.Sprintf("%d decimals", spec.Decimals))
	}
	if spec.Prefix != "" {
		parts = append(parts, "prefix "+spec.Prefix)
	}
	if spec.Suffix != "" {
		parts = append(parts, "suffix "+spec.Suffix)
	}
	if spec.Bold {
		parts = append(parts, "bold")
	}
	return strings.Join(parts, ", ")
}
