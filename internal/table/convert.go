package table

import "strconv"

// ToText rewrites a column in place to the text representation. Categorical
// cells take their label text; untracked indexes become missing rather than
// leaking an ordinal. Numeric cells take their decimal-string form.
func ToText(c *Column) {
	switch c.Rep.Kind {
	case KindText:
		return
	case KindCategorical:
		for i, v := range c.Values {
			if v.Missing {
				continue
			}
			if v.Int >= 0 && int(v.Int) < len(c.Rep.Labels) {
				c.Values[i] = StrValue(c.Rep.Labels[v.Int])
			} else {
				c.Values[i] = MissingValue
			}
		}
	case KindNumeric:
		for i, v := range c.Values {
			if v.Missing {
				continue
			}
			if c.Rep.Precision == PrecisionInt {
				c.Values[i] = StrValue(strconv.FormatInt(v.Int, 10))
			} else {
				c.Values[i] = StrValue(FormatFloat(v.Float))
			}
		}
	case KindAllMissing:
		// Cells are already missing; only the tag changes.
	}
	c.Rep = Text()
}

// PromoteToFloat rewrites an int-precision numeric column to float precision.
// Non-numeric columns are left untouched.
func PromoteToFloat(c *Column) {
	if c.Rep.Kind != KindNumeric || c.Rep.Precision != PrecisionInt {
		return
	}
	for i, v := range c.Values {
		if v.Missing {
			continue
		}
		c.Values[i] = FloatValue(float64(v.Int))
	}
	c.Rep = Numeric(PrecisionFloat)
}

// CoerceToInt rewrites a column to int-precision numeric, used for the
// structural identifier and year columns of each cycle table. Float cells
// truncate toward zero; text cells parse, becoming missing on failure.
func CoerceToInt(c *Column) {
	switch c.Rep.Kind {
	case KindNumeric:
		if c.Rep.Precision == PrecisionInt {
			return
		}
		for i, v := range c.Values {
			if v.Missing {
				continue
			}
			c.Values[i] = IntValue(int64(v.Float))
		}
	case KindText:
		for i, v := range c.Values {
			if v.Missing {
				continue
			}
			n, err := strconv.ParseInt(v.Str, 10, 64)
			if err != nil {
				c.Values[i] = MissingValue
				continue
			}
			c.Values[i] = IntValue(n)
		}
	case KindCategorical:
		// An identifier column should never be categorical; go through text
		// so label content survives where it parses.
		ToText(c)
		CoerceToInt(c)
		return
	case KindAllMissing:
		// Tag change only.
	}
	c.Rep = Numeric(PrecisionInt)
}

// NumericCell returns the float64 view of a numeric cell, regardless of
// precision class. The second return is false for missing cells.
func NumericCell(c *Column, i int) (float64, bool) {
	v := c.Values[i]
	if v.Missing {
		return 0, false
	}
	if c.Rep.Precision == PrecisionInt {
		return float64(v.Int), true
	}
	return v.Float, true
}
