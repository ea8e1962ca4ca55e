package survey

import (
	"context"

	"github.com/surveyforge/surveyforge/internal/table"
)

// Source fetches one cycle's raw table for a table family.
//
// FetchTable returns ErrAbsent when the family was never published for the
// cycle, a *TransientError for retryable failures, and any other error for
// malformed payloads.
type Source interface {
	FetchTable(ctx context.Context, cycleCode, family string) (*table.Table, error)
}

// TranslationEntry maps one variable's numeric codes to label text.
// Continuous marks variables whose codebook carries a range-of-values
// sentinel instead of discrete codes; translating those corrupts data, so
// the translator must leave them alone.
type TranslationEntry struct {
	Mapping    map[float64]string
	Continuous bool
}

// TranslationTable maps variable name to its code translations for one cycle.
type TranslationTable map[string]TranslationEntry

// CodebookSource fetches per-variable code→label translations for a cycle.
// Translations returns ErrAbsent when the cycle has no codebook for the
// family.
type CodebookSource interface {
	Translations(ctx context.Context, cycleCode, family string) (TranslationTable, error)
}
