// Package table provides the in-memory column-major table used by the merge
// engine. Every column carries a Representation decided once per table, so
// type decisions live in one place instead of being re-derived cell by cell.
package table

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind identifies the representation of a column.
type Kind int

const (
	// KindAllMissing marks a column with no observed values.
	KindAllMissing Kind = iota
	// KindCategorical marks a column whose values index a closed label set.
	KindCategorical
	// KindNumeric marks an int64- or float64-valued column.
	KindNumeric
	// KindText marks a free-text column.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindAllMissing:
		return "all-missing"
	case KindCategorical:
		return "categorical"
	case KindNumeric:
		return "numeric"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Precision is the numeric precision class of a KindNumeric column.
type Precision int

const (
	// PrecisionInt holds whole numbers in int64.
	PrecisionInt Precision = iota
	// PrecisionFloat holds float64 values.
	PrecisionFloat
)

// Representation is the tagged variant describing how a column stores values.
// Labels is set only for KindCategorical, Precision only for KindNumeric.
type Representation struct {
	Kind      Kind
	Labels    []string
	Precision Precision
}

// Categorical returns a categorical representation over the given label set.
func Categorical(labels ...string) Representation {
	return Representation{Kind: KindCategorical, Labels: labels}
}

// Numeric returns a numeric representation with the given precision.
func Numeric(p Precision) Representation {
	return Representation{Kind: KindNumeric, Precision: p}
}

// Text returns the free-text representation.
func Text() Representation {
	return Representation{Kind: KindText}
}

// AllMissing returns the representation of a column with no observed values.
func AllMissing() Representation {
	return Representation{Kind: KindAllMissing}
}

// Value is one cell. Interpretation depends on the column representation:
// categorical cells hold an index into the label set in Int, numeric cells
// hold Int or Float per the precision class, text cells hold Str.
type Value struct {
	Missing bool
	Int     int64
	Float   float64
	Str     string
}

// MissingValue is the canonical missing cell.
var MissingValue = Value{Missing: true}

// IntValue returns a present int64 cell.
func IntValue(v int64) Value { return Value{Int: v} }

// FloatValue returns a present float64 cell.
func FloatValue(v float64) Value { return Value{Float: v} }

// StrValue returns a present text cell.
func StrValue(s string) Value { return Value{Str: s} }

// Column is a named, typed vector of cells.
type Column struct {
	Name   string
	Rep    Representation
	Values []Value
}

// Render returns the canonical string form of the cell at row i.
// Missing cells render as the empty string; categorical cells render their
// label, never their index.
func (c *Column) Render(i int) string {
	v := c.Values[i]
	if v.Missing {
		return ""
	}
	switch c.Rep.Kind {
	case KindCategorical:
		if v.Int >= 0 && int(v.Int) < len(c.Rep.Labels) {
			return c.Rep.Labels[v.Int]
		}
		return ""
	case KindNumeric:
		if c.Rep.Precision == PrecisionInt {
			return strconv.FormatInt(v.Int, 10)
		}
		return FormatFloat(v.Float)
	case KindText:
		return v.Str
	default:
		return ""
	}
}

// FormatFloat renders a float in its shortest decimal form, without an
// exponent for the magnitudes survey data carries. Integral floats render
// without a decimal point, matching the decimal-string form of the number.
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	return s
}

// Table is an ordered collection of equally sized columns.
type Table struct {
	Columns []*Column
}

// New returns an empty table.
func New() *Table {
	return &Table{}
}

// NumRows returns the row count. All columns are kept the same length.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// NumColumns returns the column count.
func (t *Table) NumColumns() int {
	return len(t.Columns)
}

// ColumnNames returns column names in table order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Column returns the named column, or nil if absent.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// HasColumn reports whether the named column exists.
func (t *Table) HasColumn(name string) bool {
	return t.Column(name) != nil
}

// AddColumn appends a column. It returns an error if the name is taken or the
// length disagrees with the existing columns.
func (t *Table) AddColumn(c *Column) error {
	if t.HasColumn(c.Name) {
		return fmt.Errorf("column %q already exists", c.Name)
	}
	if len(t.Columns) > 0 && len(c.Values) != t.NumRows() {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, len(c.Values), t.NumRows())
	}
	t.Columns = append(t.Columns, c)
	return nil
}

// PrependColumn inserts a column at position zero, subject to the same
// checks as AddColumn.
func (t *Table) PrependColumn(c *Column) error {
	if t.HasColumn(c.Name) {
		return fmt.Errorf("column %q already exists", c.Name)
	}
	if len(t.Columns) > 0 && len(c.Values) != t.NumRows() {
		return fmt.Errorf("column %q has %d rows, table has %d", c.Name, len(c.Values), t.NumRows())
	}
	t.Columns = append([]*Column{c}, t.Columns...)
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	out := New()
	for _, c := range t.Columns {
		nc := &Column{
			Name:   c.Name,
			Rep:    c.Rep,
			Values: append([]Value(nil), c.Values...),
		}
		if c.Rep.Labels != nil {
			nc.Rep.Labels = append([]string(nil), c.Rep.Labels...)
		}
		out.Columns = append(out.Columns, nc)
	}
	return out
}

// MissingColumn returns a column of n missing cells with the given
// representation.
func MissingColumn(name string, rep Representation, n int) *Column {
	vals := make([]Value, n)
	for i := range vals {
		vals[i] = MissingValue
	}
	return &Column{Name: name, Rep: rep, Values: vals}
}

// String renders a compact schema description, useful in errors and logs.
func (t *Table) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "table[%d rows]", t.NumRows())
	for _, c := range t.Columns {
		fmt.Fprintf(&b, " %s:%s", c.Name, c.Rep.Kind)
	}
	return b.String()
}
