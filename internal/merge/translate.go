package merge

import (
	"strconv"

	"github.com/surveyforge/surveyforge/internal/survey"
	"github.com/surveyforge/surveyforge/internal/table"
)

// Translate fills in categorical text for numeric columns that lack labels,
// using translations borrowed from a sibling cycle. For each column present
// in both the table and the translation set it skips columns that are
// already categorical or text, columns with no observed values, and
// variables the reference codebook marks continuous, where translating
// would turn a single top-coded value into text while the rest of the
// column stays numeric. Codes absent from the mapping become the
// decimal-string form of the number, never dropped and never left numeric.
//
// It returns the names of the columns that were translated.
func Translate(t *table.Table, translations survey.TranslationTable) []string {
	var translated []string
	for _, c := range t.Columns {
		entry, ok := translations[c.Name]
		if !ok {
			continue
		}
		if c.Rep.Kind != table.KindNumeric {
			continue
		}
		if entry.Continuous || len(entry.Mapping) == 0 {
			continue
		}

		observed := false
		for i := range c.Values {
			v := c.Values[i]
			if v.Missing {
				continue
			}
			observed = true
			var code float64
			if c.Rep.Precision == table.PrecisionInt {
				code = float64(v.Int)
			} else {
				code = v.Float
			}
			if label, ok := entry.Mapping[code]; ok {
				c.Values[i] = table.StrValue(label)
				continue
			}
			if c.Rep.Precision == table.PrecisionInt {
				c.Values[i] = table.StrValue(strconv.FormatInt(v.Int, 10))
			} else {
				c.Values[i] = table.StrValue(table.FormatFloat(v.Float))
			}
		}
		// A numeric column with no observed cells has nothing to
		// translate; its representation stays numeric.
		if !observed {
			continue
		}
		c.Rep = table.Text()
		translated = append(translated, c.Name)
	}
	return translated
}

// ReferenceTranslations probes cycles newest to oldest until one yields a
// non-empty codebook, returning its translation table. Probing happens via
// the provided lookup so the caller controls fetching and retry policy.
func ReferenceTranslations(cycles []survey.Cycle, lookup func(survey.Cycle) (survey.TranslationTable, bool)) survey.TranslationTable {
	for _, cy := range cycles {
		if tt, ok := lookup(cy); ok && len(tt) > 0 {
			return tt
		}
	}
	return nil
}
