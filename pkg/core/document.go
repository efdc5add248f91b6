package core

import "fmt"

// Document is the live, mutable table being edited: ordered columns,
// column-aligned rows, per-column format settings, and the file the
// document is bound to on disk.
//
// There is exactly one live Document per editing session, owned by a
// single writer. History and auto-save never patch it in place; they
// always replace it wholesale with a clone. That trades per-operation
// memory for the guarantee that a half-applied edit can never be
// observed.
type Document struct {
	// Columns is the ordered list of column names.
	Columns []string
	// Rows holds cell values, one slice per row, aligned with Columns.
	Rows [][]string
	// Formats maps column name to display format settings.
	Formats map[string]FormatSpec
	// BoundPath is the file this document was loaded from or saved to.
	// Empty for a new, never-saved document.
	BoundPath string
	// Dirty is true when the document has unsaved changes.
	Dirty bool
}

// FormatSpec holds display formatting for a single column.
type FormatSpec struct {
	// Kind is the value interpretation: text, number, currency, percent, date.
	Kind string `yaml:"kind"`
	// Decimals is the number of decimal places for numeric kinds.
	Decimals int `yaml:"decimals,omitempty"`
	// Prefix is prepended to rendered values (e.g. a currency symbol).
	Prefix string `yaml:"prefix,omitempty"`
	// Suffix is appended to rendered values (e.g. "%").
	Suffix string `yaml:"suffix,omitempty"`
	// Bold marks the column for emphasis in renderers that support it.
	Bold bool `yaml:"bold,omitempty"`
}

// NewDocument creates an empty document with the given columns.
func NewDocument(columns []string) *Document {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Document{
		Columns: cols,
		Rows:    [][]string{},
		Formats: make(map[string]FormatSpec),
	}
}

// Clone returns a deep copy of the document. Snapshots, version writes,
// and undo/redo all go through Clone so no two owners ever share row
// storage.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}

	c := &Document{
		Columns:   make([]string, len(d.Columns)),
		Rows:      make([][]string, len(d.Rows)),
		Formats:   make(map[string]FormatSpec, len(d.Formats)),
		BoundPath: d.BoundPath,
		Dirty:     d.Dirty,
	}
	copy(c.Columns, d.Columns)
	for i, row := range d.Rows {
		c.Rows[i] = make([]string, len(row))
		copy(c.Rows[i], row)
	}
	for name, spec := range d.Formats {
		c.Formats[name] = spec
	}
	return c
}

// Equal reports whether two documents hold identical table content,
// formats, and bound path. The dirty flag is ignored; it is session
// state, not document content.
func (d *Document) Equal(other *Document) bool {
	if d == nil || other == nil {
		return d == other
	}
	if d.BoundPath != other.BoundPath {
		return false
	}
	if len(d.Columns) != len(other.Columns) || len(d.Rows) != len(other.Rows) {
		return false
	}
	for i, col := range d.Columns {
		if other.Columns[i] != col {
			return false
		}
	}
	for i, row := range d.Rows {
		if len(other.Rows[i]) != len(row) {
			return false
		}
		for j, cell := range row {
			if other.Rows[i][j] != cell {
				return false
			}
		}
	}
	if len(d.Formats) != len(other.Formats) {
		return false
	}
	for name, spec := range d.Formats {
		if other.Formats[name] != spec {
			return false
		}
	}
	return true
}

// ColumnIndex returns the position of a column by name, or -1.
func (d *Document) ColumnIndex(name string) int {
	for i, col := range d.Columns {
		if col == name {
			return i
		}
	}
	return -1
}

// SetCell sets a single cell value.
func (d *Document) SetCell(row, col int, value string) error {
	if row < 0 || row >= len(d.Rows) {
		return fmt.Errorf("row %d out of range (document has %d rows)", row, len(d.Rows))
	}
	if col < 0 || col >= len(d.Columns) {
		return fmt.Errorf("column %d out of range (document has %d columns)", col, len(d.Columns))
	}
	d.Rows[row][col] = value
	return nil
}

// Cell returns a single cell value.
func (d *Document) Cell(row, col int) (string, error) {
	if row < 0 || row >= len(d.Rows) {
		return "", fmt.Errorf("row %d out of range (document has %d rows)", row, len(d.Rows))
	}
	if col < 0 || col >= len(d.Columns) {
		return "", fmt.Errorf("column %d out of range (document has %d columns)", col, len(d.Columns))
	}
	return d.Rows[row][col], nil
}

// AppendRow adds a row at the end. Short rows are padded with empty
// cells; long rows are rejected.
func (d *Document) AppendRow(cells []string) error {
	return d.InsertRow(len(d.Rows), cells)
}

// InsertRow inserts a row at the given position.
func (d *Document) InsertRow(at int, cells []string) error {
	if at < 0 || at > len(d.Rows) {
		return fmt.Errorf("insert position %d out of range (document has %d rows)", at, len(d.Rows))
	}
	if len(cells) > len(d.Columns) {
		return fmt.Errorf("row has %d cells but document has %d columns", len(cells), len(d.Columns))
	}

	row := make([]string, len(d.Columns))
	copy(row, cells)

	d.Rows = append(d.Rows, nil)
	copy(d.Rows[at+1:], d.Rows[at:])
	d.Rows[at] = row
	return nil
}

// DeleteRow removes the row at the given position.
func (d *Document) DeleteRow(at int) error {
	if at < 0 || at >= len(d.Rows) {
		return fmt.Errorf("row %d out of range (document has %d rows)", at, len(d.Rows))
	}
	d.Rows = append(d.Rows[:at], d.Rows[at+1:]...)
	return nil
}

// AppendColumn adds a new named column, filling existing rows with the
// default value.
func (d *Document) AppendColumn(name, defaultValue string) error {
	if name == "" {
		return fmt.Errorf("column name cannot be empty")
	}
	if d.ColumnIndex(name) >= 0 {
		return fmt.Errorf("column %q already exists", name)
	}
	d.Columns = append(d.Columns, name)
	for i := range d.Rows {
		d.Rows[i] = append(d.Rows[i], defaultValue)
	}
	return nil
}

// DeleteColumn removes a column and its cells and format settings.
func (d *Document) DeleteColumn(name string) error {
	idx := d.ColumnIndex(name)
	if idx < 0 {
		return fmt.Errorf("column %q not found", name)
	}
	d.Columns = append(d.Columns[:idx], d.Columns[idx+1:]...)
	for i, row := range d.Rows {
		d.Rows[i] = append(row[:idx], row[idx+1:]...)
	}
	delete(d.Formats, name)
	return nil
}

// RenameColumn renames a column, carrying its format settings over.
func (d *Document) RenameColumn(oldName, newName string) error {
	if newName == "" {
		return fmt.Errorf("column name cannot be empty")
	}
	idx := d.ColumnIndex(oldName)
	if idx < 0 {
		return fmt.Errorf("column %q not found", oldName)
	}
	if d.ColumnIndex(newName) >= 0 {
		return fmt.Errorf("column %q already exists", newName)
	}
	d.Columns[idx] = newName
	if spec, ok := d.Formats[oldName]; ok {
		delete(d.Formats, oldName)
		d.Formats[newName] = spec
	}
	return nil
}

// SetFormat sets the format spec for a column.
func (d *Document) SetFormat(column string, spec FormatSpec) error {
	if d.ColumnIndex(column) < 0 {
		return fmt.Errorf("column %q not found", column)
	}
	if d.Formats == nil {
		d.Formats = make(map[string]FormatSpec)
	}
	d.Formats[column] = spec
	return nil
}
