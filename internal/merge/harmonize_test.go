package merge

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/surveyforge/surveyforge/internal/table"
)

func colWith(name string, rep table.Representation) *table.Column {
	c := &table.Column{Name: name, Rep: rep}
	switch rep.Kind {
	case table.KindCategorical:
		c.Values = []table.Value{table.IntValue(0), table.MissingValue}
	case table.KindNumeric:
		if rep.Precision == table.PrecisionInt {
			c.Values = []table.Value{table.IntValue(7), table.MissingValue}
		} else {
			c.Values = []table.Value{table.FloatValue(7.5), table.MissingValue}
		}
	case table.KindText:
		c.Values = []table.Value{table.StrValue("x"), table.MissingValue}
	default:
		c.Values = []table.Value{table.MissingValue, table.MissingValue}
	}
	return c
}

func oneColumnTable(t *testing.T, c *table.Column) *table.Table {
	t.Helper()
	tbl := table.New()
	require.NoError(t, tbl.AddColumn(c))
	return tbl
}

// TestHarmonize_PairGrid walks every pair of representations and checks the
// two invariants that must hold regardless of direction: the sides end up
// with the same kind, and a categorical cell never surfaces as a number.
func TestHarmonize_PairGrid(t *testing.T) {
	reps := []table.Representation{
		table.AllMissing(),
		table.Categorical("Low", "High"),
		table.Numeric(table.PrecisionInt),
		table.Numeric(table.PrecisionFloat),
		table.Text(),
	}

	for i, ra := range reps {
		for j, rb := range reps {
			t.Run(fmt.Sprintf("%d_%s_vs_%d_%s", i, ra.Kind, j, rb.Kind), func(t *testing.T) {
				ca := colWith("v", ra)
				cb := colWith("v", rb)
				a := oneColumnTable(t, ca)
				b := oneColumnTable(t, cb)

				Harmonize(a, b, nil)
				Concat(a, b)

				bothMissing := ra.Kind == table.KindAllMissing && rb.Kind == table.KindAllMissing
				if !bothMissing {
					assert.Equal(t, ca.Rep.Kind, cb.Rep.Kind, "sides must agree after harmonization")
				}
				if ra.Kind == table.KindCategorical || rb.Kind == table.KindCategorical {
					assert.NotEqual(t, table.KindNumeric, ca.Rep.Kind, "categorical data must never become numeric")
					assert.NotEqual(t, table.KindNumeric, cb.Rep.Kind)
				}
				require.Equal(t, 4, a.NumRows())
				for i := 0; i < 4; i++ {
					// Rendering every concatenated cell must never yield a
					// categorical index.
					s := ca.Render(i)
					if ra.Kind == table.KindCategorical || rb.Kind == table.KindCategorical {
						assert.NotContains(t, []string{"0", "1"}, s, "ordinal leaked as %q", s)
					}
				}
			})
		}
	}
}

func TestHarmonize_CategoricalAgainstNumericYieldsLabels(t *testing.T) {
	a := table.New()
	require.NoError(t, a.AddColumn(&table.Column{
		Name:   "status",
		Rep:    table.Categorical("Low", "High"),
		Values: []table.Value{table.IntValue(0), table.IntValue(1)},
	}))
	b := table.New()
	require.NoError(t, b.AddColumn(&table.Column{
		Name:   "status",
		Rep:    table.Numeric(table.PrecisionInt),
		Values: []table.Value{table.IntValue(1), table.IntValue(2)},
	}))

	Harmonize(a, b, nil)
	Concat(a, b)

	c := a.Column("status")
	require.Equal(t, table.KindText, c.Rep.Kind)
	require.Equal(t, 4, a.NumRows())
	got := make([]string, 4)
	for i := range got {
		got[i] = c.Render(i)
	}
	// Labels from the categorical side, decimal strings from the numeric
	// side. The internal indexes 0 and 1 must not appear as numbers.
	assert.Equal(t, []string{"Low", "High", "1", "2"}, got)
}

func TestHarmonize_PrecisionPromotion(t *testing.T) {
	a := oneColumnTable(t, &table.Column{
		Name: "wt", Rep: table.Numeric(table.PrecisionInt),
		Values: []table.Value{table.IntValue(60)},
	})
	b := oneColumnTable(t, &table.Column{
		Name: "wt", Rep: table.Numeric(table.PrecisionFloat),
		Values: []table.Value{table.FloatValue(61.3)},
	})

	Harmonize(a, b, nil)

	require.Equal(t, table.PrecisionFloat, a.Column("wt").Rep.Precision)
	assert.Equal(t, 60.0, a.Column("wt").Values[0].Float)
	assert.Equal(t, table.PrecisionFloat, b.Column("wt").Rep.Precision)
}

func TestHarmonize_AllMissingAdoptsOtherSide(t *testing.T) {
	a := oneColumnTable(t, table.MissingColumn("v", table.AllMissing(), 2))
	b := oneColumnTable(t, &table.Column{
		Name: "v", Rep: table.Categorical("Yes", "No"),
		Values: []table.Value{table.IntValue(1), table.IntValue(0)},
	})

	Harmonize(a, b, nil)

	require.Equal(t, table.KindCategorical, a.Column("v").Rep.Kind)
	assert.Equal(t, []string{"Yes", "No"}, a.Column("v").Rep.Labels)
	// The adopting side owns its label slice.
	a.Column("v").Rep.Labels[0] = "mutated"
	assert.Equal(t, "Yes", b.Column("v").Rep.Labels[0])
}

func TestHarmonize_SkipListLeavesColumnsAlone(t *testing.T) {
	a := oneColumnTable(t, &table.Column{
		Name: "seqn", Rep: table.Numeric(table.PrecisionInt),
		Values: []table.Value{table.IntValue(1)},
	})
	b := oneColumnTable(t, &table.Column{
		Name: "seqn", Rep: table.Numeric(table.PrecisionFloat),
		Values: []table.Value{table.FloatValue(2)},
	})

	Harmonize(a, b, []string{"seqn"})

	assert.Equal(t, table.PrecisionInt, a.Column("seqn").Rep.Precision)
	assert.Equal(t, table.PrecisionFloat, b.Column("seqn").Rep.Precision)
}

func TestConcat_PadsOneSidedColumns(t *testing.T) {
	dst := table.New()
	require.NoError(t, dst.AddColumn(&table.Column{
		Name: "a", Rep: table.Numeric(table.PrecisionInt),
		Values: []table.Value{table.IntValue(1), table.IntValue(2)},
	}))
	require.NoError(t, dst.AddColumn(&table.Column{
		Name: "only_old", Rep: table.Text(),
		Values: []table.Value{table.StrValue("x"), table.StrValue("y")},
	}))

	src := table.New()
	require.NoError(t, src.AddColumn(&table.Column{
		Name: "a", Rep: table.Numeric(table.PrecisionInt),
		Values: []table.Value{table.IntValue(3)},
	}))
	require.NoError(t, src.AddColumn(&table.Column{
		Name: "only_new", Rep: table.Text(),
		Values: []table.Value{table.StrValue("z")},
	}))

	Concat(dst, src)

	require.Equal(t, 3, dst.NumRows())
	require.Equal(t, []string{"a", "only_old", "only_new"}, dst.ColumnNames())
	assert.True(t, dst.Column("only_old").Values[2].Missing)
	assert.True(t, dst.Column("only_new").Values[0].Missing)
	assert.True(t, dst.Column("only_new").Values[1].Missing)
	assert.Equal(t, "z", dst.Column("only_new").Values[2].Str)
}
