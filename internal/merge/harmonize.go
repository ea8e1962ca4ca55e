package merge

import (
	"github.com/surveyforge/surveyforge/internal/table"
)

// Harmonize reconciles representation mismatches between two tables so they
// can be concatenated without corrupting values. Structural columns in skip
// are handled separately by the caller and left untouched. Both tables are
// modified in place.
//
// The critical rule: whenever either side of a shared column is categorical,
// both sides become text. A categorical cell's internal index is unrelated
// to the original source codes, so exposing it as a number silently corrupts
// data. There is deliberately no numeric path out of a categorical column.
func Harmonize(a, b *table.Table, skip []string) {
	skipped := make(map[string]bool, len(skip))
	for _, name := range skip {
		skipped[name] = true
	}

	for _, ca := range a.Columns {
		if skipped[ca.Name] {
			continue
		}
		cb := b.Column(ca.Name)
		if cb == nil {
			continue
		}
		harmonizePair(ca, cb)
	}
}

func harmonizePair(a, b *table.Column) {
	// An all-missing side adopts the other side's representation; there is
	// no value content to convert, so nothing can be guessed wrong.
	if a.Rep.Kind == table.KindAllMissing && b.Rep.Kind != table.KindAllMissing {
		a.Rep = cloneRep(b.Rep)
		return
	}
	if b.Rep.Kind == table.KindAllMissing && a.Rep.Kind != table.KindAllMissing {
		b.Rep = cloneRep(a.Rep)
		return
	}
	if a.Rep.Kind == table.KindAllMissing && b.Rep.Kind == table.KindAllMissing {
		return
	}

	if a.Rep.Kind == table.KindCategorical || b.Rep.Kind == table.KindCategorical {
		table.ToText(a)
		table.ToText(b)
		return
	}

	if a.Rep.Kind == table.KindNumeric && b.Rep.Kind == table.KindNumeric {
		if a.Rep.Precision != b.Rep.Precision {
			table.PromoteToFloat(a)
			table.PromoteToFloat(b)
		}
		return
	}

	if a.Rep.Kind == table.KindText && b.Rep.Kind == table.KindText {
		return
	}

	// Incompatible primitive kinds: fall back to text on both sides rather
	// than fail the merge.
	table.ToText(a)
	table.ToText(b)
}

func cloneRep(r table.Representation) table.Representation {
	out := r
	if r.Labels != nil {
		out.Labels = append([]string(nil), r.Labels...)
	}
	return out
}

// Concat appends the rows of src onto dst after harmonization. Columns
// present on only one side are padded with missing cells on the other; their
// representation carries over from the side that has values.
func Concat(dst, src *table.Table) {
	oldRows := dst.NumRows()
	srcRows := src.NumRows()

	for _, dc := range dst.Columns {
		if sc := src.Column(dc.Name); sc != nil {
			dc.Values = append(dc.Values, sc.Values...)
			continue
		}
		for i := 0; i < srcRows; i++ {
			dc.Values = append(dc.Values, table.MissingValue)
		}
	}

	for _, sc := range src.Columns {
		if dst.Column(sc.Name) != nil {
			continue
		}
		vals := make([]table.Value, 0, oldRows+srcRows)
		for i := 0; i < oldRows; i++ {
			vals = append(vals, table.MissingValue)
		}
		vals = append(vals, sc.Values...)
		dst.Columns = append(dst.Columns, &table.Column{Name: sc.Name, Rep: cloneRep(sc.Rep), Values: vals})
	}
}
