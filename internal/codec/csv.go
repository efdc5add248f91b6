package codec

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/leapstack-labs/leapgrid/pkg/core"
)

// csvCodec handles .csv files: the first record is the header, every
// following record is a row. Column format settings have no CSV
// representation and are dropped on encode, matching what spreadsheet
// tools do when saving to CSV.
type csvCodec struct{}

func init() {
	Register(".csv", csvCodec{})
}

func (csvCodec) Encode(doc *core.Document) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(doc.Columns); err != nil {
		return nil, err
	}
	for i, row := range doc.Rows {
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (csvCodec) Decode(data []byte) (*core.Document, error) {
	r := csv.NewReader(bytes.NewReader(data))
	records, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("empty csv: missing header row")
	}

	doc := core.NewDocument(records[0])
	for i, record := range records[1:] {
		if err := doc.AppendRow(record); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return doc, nil
}
