// Package survey defines the collection-period catalog and the collaborator
// interfaces for fetching per-cycle tables and codebook translations.
package survey

// Cycle is one fixed collection period of the source survey.
type Cycle struct {
	// Code identifies the period on the upstream source, e.g. "2001-2002".
	Code string
	// StartYear is the first calendar year of the period and becomes the
	// injected year column after normalization.
	StartYear int
	// Unreleased marks a period the source never published. Fetches must
	// skip it outright: it is not an absence worth probing, and never a
	// retry candidate.
	Unreleased bool
}

// Catalog is the fixed, ordered list of known collection periods. The
// 2019-2020 period was suspended mid-collection and never released as a
// standalone cycle, which is why the sequence is gapped.
var Catalog = []Cycle{
	{Code: "1999-2000", StartYear: 1999},
	{Code: "2001-2002", StartYear: 2001},
	{Code: "2003-2004", StartYear: 2003},
	{Code: "2005-2006", StartYear: 2005},
	{Code: "2007-2008", StartYear: 2007},
	{Code: "2009-2010", StartYear: 2009},
	{Code: "2011-2012", StartYear: 2011},
	{Code: "2013-2014", StartYear: 2013},
	{Code: "2015-2016", StartYear: 2015},
	{Code: "2017-2018", StartYear: 2017},
	{Code: "2019-2020", StartYear: 2019, Unreleased: true},
	{Code: "2021-2023", StartYear: 2021},
}

// Released returns the catalog without unreleased periods, oldest first.
func Released() []Cycle {
	out := make([]Cycle, 0, len(Catalog))
	for _, c := range Catalog {
		if !c.Unreleased {
			out = append(out, c)
		}
	}
	return out
}

// NewestFirst returns the released periods ordered newest first, the probe
// order used when picking a reference cycle for label translations.
func NewestFirst() []Cycle {
	rel := Released()
	out := make([]Cycle, len(rel))
	for i, c := range rel {
		out[len(rel)-1-i] = c
	}
	return out
}
