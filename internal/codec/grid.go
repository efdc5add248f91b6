package codec

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// gridCodec handles .grid files, LeapGrid's native YAML format. Unlike
// CSV it round-trips column format settings.
type gridCodec struct{}

func init() {
	Register(".grid", gridCodec{})
}

// gridFile is the on-disk YAML shape of a document.
type gridFile struct {
	Columns []string                   `yaml:"columns"`
	Formats map[string]core.FormatSpec `yaml:"formats,omitempty"`
	Rows    [][]string                 `yaml:"rows"`
}

func (gridCodec) Encode(doc *core.Document) ([]byte, error) {
	f := gridFile{
		Columns: doc.Columns,
		Rows:    doc.Rows,
	}
	if len(doc.Formats) > 0 {
		f.Formats = doc.Formats
	}
	return yaml.Marshal(f)
}

func (gridCodec) Decode(data []byte) (*core.Document, error) {
	var f gridFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if len(f.Columns) == 0 {
		return nil, fmt.Errorf("grid file has no columns")
	}

	doc := core.NewDocument(f.Columns)
	for i, row := range f.Rows {
		if err := doc.AppendRow(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}
	for col, spec := range f.Formats {
		if err := doc.SetFormat(col, spec); err != nil {
			return nil, err
		}
	}
	return doc, nil
}
