package publish

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/surveyforge/surveyforge/internal/table"
)

// EncodeCSV renders the dataset as the published CSV artifact: a header of
// column names followed by canonical cell strings, missing cells empty.
func EncodeCSV(t *table.Table) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(t.ColumnNames()); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	row := make([]string, t.NumColumns())
	for ri := 0; ri < t.NumRows(); ri++ {
		for ci, c := range t.Columns {
			row[ci] = c.Render(ri)
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", ri, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeCSV parses a published artifact back into its header and rows, for
// the read-back integrity check. No type reconstruction happens here; the
// check only needs shape and names.
func DecodeCSV(body []byte) (header []string, rows [][]string, err error) {
	r := csv.NewReader(bytes.NewReader(body))
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("artifact has no header")
	}
	return records[0], records[1:], nil
}
