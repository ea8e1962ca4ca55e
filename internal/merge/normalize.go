// Package merge turns N heterogeneous cycle tables into one type-consistent
// dataset. It normalizes each raw cycle table, fills categorical labels from
// a reference codebook, reconciles representation mismatches, and folds the
// cycles together under a bounded retry policy.
package merge

import (
	"fmt"
	"strings"

	"github.com/surveyforge/surveyforge/internal/table"
)

// YearColumn is the injected collection-year column.
const YearColumn = "year"

// Normalize canonicalizes one raw cycle table: column names are lower-cased,
// a year column is prepended, and, when an allow-list is given, columns
// outside it are dropped. The identifier column is always kept, whether or
// not the allow-list names it. The input table is modified in place.
func Normalize(t *table.Table, year int, idColumn string, allow []string) (*table.Table, error) {
	for _, c := range t.Columns {
		c.Name = strings.ToLower(c.Name)
	}

	if len(allow) > 0 {
		keep := make(map[string]bool, len(allow)+2)
		for _, name := range allow {
			keep[strings.ToLower(name)] = true
		}
		keep[YearColumn] = true
		keep[strings.ToLower(idColumn)] = true

		var kept []*table.Column
		for _, c := range t.Columns {
			if keep[c.Name] {
				kept = append(kept, c)
			}
		}
		t.Columns = kept
	}

	if t.HasColumn(YearColumn) {
		return nil, fmt.Errorf("cycle table already has a %q column", YearColumn)
	}

	yc := &table.Column{
		Name:   YearColumn,
		Rep:    table.Numeric(table.PrecisionInt),
		Values: make([]table.Value, t.NumRows()),
	}
	for i := range yc.Values {
		yc.Values[i] = table.IntValue(int64(year))
	}
	if err := t.PrependColumn(yc); err != nil {
		return nil, err
	}
	return t, nil
}
