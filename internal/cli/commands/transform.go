package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/transform"
	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// TransformOptions holds options for the transform command.
type TransformOptions struct {
	Map         []string // column=expr pairs
	Add         []string // column=expr pairs
	Filter      string   // row predicate
	Out         string   // output path (default: in place)
	SaveVersion bool     // version the document before transforming
}

// NewTransformCommand creates the transform command.
func NewTransformCommand() *cobra.Command {
	opts := &TransformOptions{}
	cmd := &cobra.Command{
		Use:   "transform <file>",
		Short: "Transform a document with row expressions",
		Long: `Apply Starlark expressions to a document's rows.

Expressions see the current cell as "value", the row as a "row" dict
keyed by column name, and the zero-based row number as "index".`,
		Example: `  # Uppercase a column
  leapgrid transform budget.csv --map 'item=value.upper()'

  # Derive a column
  leapgrid transform budget.csv --add 'total=str(int(row["amount"]) + int(row["tax"]))'

  # Keep large expenses only, write elsewhere
  leapgrid transform budget.csv --filter 'int(row["amount"]) > 100' --out big.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(opts.Map) == 0 && len(opts.Add) == 0 && opts.Filter == "" {
				return fmt.Errorf("nothing to do: pass --map, --add, or --filter")
			}

			cmdCtx, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			sess := cmdCtx.NewSession()
			if err := sess.Open(args[0]); err != nil {
				return err
			}
			if opts.SaveVersion {
				if _, err := sess.SaveVersion(); err != nil {
					return err
				}
			}

			engine := transform.NewEngine()

			for _, pair := range opts.Map {
				col, expr, err := splitPair(pair)
				if err != nil {
					return err
				}
				err = sess.Apply("map "+col, func(doc *core.Document) error {
					return engine.MapColumn(doc, col, expr)
				})
				if err != nil {
					return err
				}
			}

			for _, pair := range opts.Add {
				col, expr, err := splitPair(pair)
				if err != nil {
					return err
				}
				err = sess.Apply("add "+col, func(doc *core.Document) error {
					return engine.AddColumn(doc, col, expr)
				})
				if err != nil {
					return err
				}
			}

			if opts.Filter != "" {
				err = sess.Apply("filter rows", func(doc *core.Document) error {
					return engine.Filter(doc, opts.Filter)
				})
				if err != nil {
					return err
				}
			}

			if opts.Out != "" {
				if err := sess.SaveAs(opts.Out); err != nil {
					return err
				}
				cmdCtx.Renderer.Printf("Wrote %s\n", opts.Out)
				return nil
			}
			if err := sess.Save(); err != nil {
				return err
			}
			cmdCtx.Renderer.Printf("Wrote %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringArrayVarP(&opts.Map, "map", "m", nil, "Replace a column: column=expr (repeatable)")
	cmd.Flags().StringArrayVarP(&opts.Add, "add", "a", nil, "Derive a new column: column=expr (repeatable)")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "Keep rows where the expression is truthy")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Write the result to this path instead of in place")
	cmd.Flags().BoolVar(&opts.SaveVersion, "save-version", false, "Save a version before transforming")
	return cmd
}

// splitPair splits "column=expr" at the first '='.
func splitPair(pair string) (col, expr string, err error) {
	idx := strings.Index(pair, "=")
	if idx <= 0 || idx == len(pair)-1 {
		return "", "", fmt.Errorf("invalid pair %q: expected column=expr", pair)
	}
	return pair[:idx], pair[idx+1:], nil
}
