package table

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	c := &Column{
		Name: "status",
		Rep:  Categorical("Low", "High"),
		Values: []Value{
			IntValue(0),
			IntValue(1),
			MissingValue,
		},
	}

	assert.Equal(t, "Low", c.Render(0))
	assert.Equal(t, "High", c.Render(1))
	assert.Equal(t, "", c.Render(2))
}

func TestRender_Numeric(t *testing.T) {
	ints := &Column{Name: "n", Rep: Numeric(PrecisionInt), Values: []Value{IntValue(42)}}
	floats := &Column{Name: "f", Rep: Numeric(PrecisionFloat), Values: []Value{FloatValue(1.5), FloatValue(99)}}

	assert.Equal(t, "42", ints.Render(0))
	assert.Equal(t, "1.5", floats.Render(0))
	assert.Equal(t, "99", floats.Render(1))
}

func TestToText_Categorical(t *testing.T) {
	c := &Column{
		Name:   "x",
		Rep:    Categorical("Male", "Female"),
		Values: []Value{IntValue(1), IntValue(0), MissingValue},
	}

	ToText(c)

	require.Equal(t, KindText, c.Rep.Kind)
	assert.Equal(t, "Female", c.Values[0].Str)
	assert.Equal(t, "Male", c.Values[1].Str)
	assert.True(t, c.Values[2].Missing)
}

func TestToText_CategoricalOutOfRangeIndexBecomesMissing(t *testing.T) {
	c := &Column{Name: "x", Rep: Categorical("A"), Values: []Value{IntValue(5)}}

	ToText(c)

	// An untracked index must never leak as a number or a bogus label.
	assert.True(t, c.Values[0].Missing)
}

func TestToText_Numeric(t *testing.T) {
	c := &Column{Name: "x", Rep: Numeric(PrecisionFloat), Values: []Value{FloatValue(2.25), MissingValue}}

	ToText(c)

	assert.Equal(t, "2.25", c.Values[0].Str)
	assert.True(t, c.Values[1].Missing)
}

func TestToText_AllMissingChangesTagOnly(t *testing.T) {
	c := MissingColumn("x", AllMissing(), 3)

	ToText(c)

	assert.Equal(t, KindText, c.Rep.Kind)
	for _, v := range c.Values {
		assert.True(t, v.Missing)
	}
}

func TestPromoteToFloat(t *testing.T) {
	c := &Column{Name: "x", Rep: Numeric(PrecisionInt), Values: []Value{IntValue(7), MissingValue}}

	PromoteToFloat(c)

	require.Equal(t, PrecisionFloat, c.Rep.Precision)
	assert.Equal(t, 7.0, c.Values[0].Float)
	assert.True(t, c.Values[1].Missing)
}

func TestCoerceToInt(t *testing.T) {
	tests := []struct {
		name string
		col  *Column
		want []Value
	}{
		{
			name: "float truncates",
			col:  &Column{Name: "x", Rep: Numeric(PrecisionFloat), Values: []Value{FloatValue(1999.0), FloatValue(3.9)}},
			want: []Value{IntValue(1999), IntValue(3)},
		},
		{
			name: "text parses",
			col:  &Column{Name: "x", Rep: Text(), Values: []Value{StrValue("12"), StrValue("oops")}},
			want: []Value{IntValue(12), MissingValue},
		},
		{
			name: "all missing keeps missing",
			col:  MissingColumn("x", AllMissing(), 2),
			want: []Value{MissingValue, MissingValue},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			CoerceToInt(tt.col)
			require.Equal(t, KindNumeric, tt.col.Rep.Kind)
			require.Equal(t, PrecisionInt, tt.col.Rep.Precision)
			assert.Equal(t, tt.want, tt.col.Values)
		})
	}
}

func TestAddColumn_RejectsDuplicatesAndLengthMismatch(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn(&Column{Name: "a", Rep: Text(), Values: []Value{StrValue("x")}}))

	err := tbl.AddColumn(&Column{Name: "a", Rep: Text(), Values: []Value{StrValue("y")}})
	assert.Error(t, err)

	err = tbl.AddColumn(&Column{Name: "b", Rep: Text(), Values: []Value{StrValue("y"), StrValue("z")}})
	assert.Error(t, err)
}

func TestClone_IsDeep(t *testing.T) {
	tbl := New()
	require.NoError(t, tbl.AddColumn(&Column{Name: "a", Rep: Categorical("L"), Values: []Value{IntValue(0)}}))

	cp := tbl.Clone()
	cp.Columns[0].Values[0] = MissingValue
	cp.Columns[0].Rep.Labels[0] = "changed"

	assert.False(t, tbl.Columns[0].Values[0].Missing)
	assert.Equal(t, "L", tbl.Columns[0].Rep.Labels[0])
}
