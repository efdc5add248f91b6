// Package transform evaluates Starlark expressions against document
// rows: mapping a column through an expression, deriving a new column,
// or filtering rows by a predicate. Expressions see the current cell as
// "value", the whole row as a "row" dict keyed by column name, and the
// zero-based row number as "index".
package transform

import (
	"fmt"
	"strconv"
	"sync"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// Engine compiles and runs row expressions.
type Engine struct {
	pool *threadPool
}

// NewEngine creates a transform engine.
func NewEngine() *Engine {
	return &Engine{pool: newThreadPool(10)}
}

// MapColumn replaces every cell of col with the result of expr. Rows
// are evaluated concurrently; results land by index, so the output
// order is deterministic.
func (e *Engine) MapColumn(doc *core.Document, col, expr string) error {
	colIdx := doc.ColumnIndex(col)
	if colIdx < 0 {
		return fmt.Errorf("column %q not found", col)
	}

	results, err := e.evalRows(doc, expr, func(row []string) starlark.Value {
		return starlark.String(row[colIdx])
	})
	if err != nil {
		return err
	}

	for i, v := range results {
		doc.Rows[i][colIdx] = valueToString(v)
	}
	return nil
}

// AddColumn appends a new column whose cells are computed by expr.
// "value" is the empty string for a column that does not exist yet.
func (e *Engine) AddColumn(doc *core.Document, name, expr string) error {
	results, err := e.evalRows(doc, expr, func([]string) starlark.Value {
		return starlark.String("")
	})
	if err != nil {
		return err
	}

	if err := doc.AppendColumn(name, ""); err != nil {
		return err
	}
	colIdx := doc.ColumnIndex(name)
	for i, v := range results {
		doc.Rows[i][colIdx] = valueToString(v)
	}
	return nil
}

// Filter keeps only the rows for which expr is truthy.
func (e *Engine) Filter(doc *core.Document, expr string) error {
	results, err := e.evalRows(doc, expr, func([]string) starlark.Value {
		return starlark.String("")
	})
	if err != nil {
		return err
	}

	kept := doc.Rows[:0:0]
	for i, v := range results {
		if v.Truth() {
			kept = append(kept, doc.Rows[i])
		}
	}
	doc.Rows = kept
	return nil
}

// evalRows evaluates expr once per row, concurrently, and returns the
// results in row order. The first error wins and carries its row
// number.
func (e *Engine) evalRows(doc *core.Document, expr string, cellValue func(row []string) starlark.Value) ([]starlark.Value, error) {
	results := make([]starlark.Value, len(doc.Rows))
	errs := make([]error, len(doc.Rows))

	var wg sync.WaitGroup
	for i, row := range doc.Rows {
		wg.Add(1)
		go func(idx int, row []string) {
			defer wg.Done()

			name := fmt.Sprintf("row[%d]", idx)
			thread := e.pool.get(name)
			defer e.pool.put(thread)

			globals := starlark.StringDict{
				"value": cellValue(row),
				"row":   rowToStarlark(doc.Columns, row),
				"index": starlark.MakeInt(idx),
			}
			v, err := starlark.Eval(thread, name, expr, globals) //nolint:staticcheck // SA1019: will migrate to EvalOptions later
			results[idx] = v
			errs[idx] = err
		}(i, row)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	return results, nil
}

// rowToStarlark converts one row to a dict keyed by column name.
func rowToStarlark(columns, row []string) starlark.Value {
	dict := starlark.NewDict(len(columns))
	for i, col := range columns {
		if i < len(row) {
			_ = dict.SetKey(starlark.String(col), starlark.String(row[i]))
		}
	}
	return dict
}

// valueToString renders an evaluation result back into a cell.
func valueToString(v starlark.Value) string {
	switch val := v.(type) {
	case starlark.String:
		return string(val)
	case starlark.Int:
		return val.String()
	case starlark.Float:
		return strconv.FormatFloat(float64(val), 'f', -1, 64)
	case starlark.Bool:
		if bool(val) {
			return "true"
		}
		return "false"
	case starlark.NoneType:
		return ""
	default:
		return v.String()
	}
}
