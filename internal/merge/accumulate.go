package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/surveyforge/surveyforge/internal/survey"
	"github.com/surveyforge/surveyforge/internal/table"
)

// RetryPolicy bounds the per-cycle fetch loop. Transient failures are
// retried Attempts times in total with a fixed Delay between tries; an
// absent table is never retried.
type RetryPolicy struct {
	Attempts int
	Delay    time.Duration
}

// DefaultRetryPolicy matches the upstream source's rate tolerance.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Delay: 2 * time.Second}
}

// Accumulator drives the per-cycle fetch loop for one table family and folds
// the cycles into a single harmonized dataset.
type Accumulator struct {
	source   survey.Source
	codebook survey.CodebookSource
	cycles   []survey.Cycle
	policy   RetryPolicy
	idColumn string
	logger   *slog.Logger
}

// Options configures an Accumulator.
type Options struct {
	// Cycles overrides the released-cycle catalog, mainly for tests.
	Cycles []survey.Cycle
	// Policy is the fetch retry policy; zero value takes the default.
	Policy RetryPolicy
	// IDColumn is the respondent identifier column, coerced to int64
	// together with the year column before each cycle is folded in.
	IDColumn string
	// Logger receives per-cycle diagnostics; nil discards.
	Logger *slog.Logger
}

// NewAccumulator builds an accumulator over the given collaborators.
func NewAccumulator(source survey.Source, codebook survey.CodebookSource, opts Options) *Accumulator {
	cycles := opts.Cycles
	if cycles == nil {
		cycles = survey.Catalog
	}
	policy := opts.Policy
	if policy.Attempts <= 0 {
		policy = DefaultRetryPolicy()
	}
	if policy.Delay <= 0 {
		policy.Delay = DefaultRetryPolicy().Delay
	}
	idColumn := opts.IDColumn
	if idColumn == "" {
		idColumn = "seqn"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Accumulator{
		source:   source,
		codebook: codebook,
		cycles:   cycles,
		policy:   policy,
		idColumn: idColumn,
		logger:   logger,
	}
}

// Result is the outcome of merging all cycles of one table family.
type Result struct {
	// Table is the harmonized dataset. Empty (zero columns) when no cycle
	// produced data.
	Table *table.Table
	// FailedCycles lists cycle codes whose fetch exhausted its retries.
	// A non-empty list marks the dataset incomplete; callers must not
	// publish it.
	FailedCycles []string
	// AbsentCycles lists cycle codes for which the family never existed.
	// Absence is expected and does not block publishing.
	AbsentCycles []string
	// Diagnostics carries human-readable per-cycle notes; rendering is the
	// caller's concern.
	Diagnostics []string
}

// Complete reports whether every released cycle either contributed rows or
// was genuinely absent.
func (r *Result) Complete() bool {
	return len(r.FailedCycles) == 0
}

// Merge fetches, normalizes, translates, harmonizes, and concatenates every
// released cycle of the family. It never returns an error for per-cycle
// failures; those are annotated on the Result so the caller can refuse to
// publish an incomplete dataset.
func (a *Accumulator) Merge(ctx context.Context, family string, allow []string) (*Result, error) {
	res := &Result{Table: table.New()}

	translations := a.referenceTranslations(ctx, family)
	if translations == nil {
		res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("%s: no cycle yielded a codebook, labels left untranslated", family))
	}

	structural := []string{a.idColumn, YearColumn}
	merged := 0

	for _, cycle := range a.cycles {
		if cycle.Unreleased {
			res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("%s %s: period unreleased, skipped", family, cycle.Code))
			continue
		}

		raw, err := a.fetchWithRetry(ctx, cycle.Code, family)
		if err != nil {
			if errors.Is(err, survey.ErrAbsent) {
				res.AbsentCycles = append(res.AbsentCycles, cycle.Code)
				res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("%s %s: not published for this cycle", family, cycle.Code))
				continue
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			res.FailedCycles = append(res.FailedCycles, cycle.Code)
			res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("%s %s: fetch failed after %d attempts: %v", family, cycle.Code, a.policy.Attempts, err))
			continue
		}

		cycleTable, err := Normalize(raw, cycle.StartYear, a.idColumn, allow)
		if err != nil {
			res.FailedCycles = append(res.FailedCycles, cycle.Code)
			res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("%s %s: normalize failed: %v", family, cycle.Code, err))
			continue
		}

		if translations != nil {
			if names := Translate(cycleTable, translations); len(names) > 0 {
				a.logger.Debug("translated labels", "family", family, "cycle", cycle.Code, "columns", len(names))
			}
		}

		// Defense in depth: no categorical column may survive into the
		// accumulator, whatever the harmonizer decides about pairings.
		for _, c := range cycleTable.Columns {
			if c.Rep.Kind == table.KindCategorical {
				table.ToText(c)
			}
		}

		// Structural columns are exempt from harmonization, so they must
		// reach the accumulator already in their fixed integer form; a float
		// identifier concatenated into an int column would corrupt it.
		for _, name := range structural {
			if c := cycleTable.Column(name); c != nil {
				table.CoerceToInt(c)
			}
		}

		if merged == 0 {
			res.Table = cycleTable
		} else {
			Harmonize(res.Table, cycleTable, structural)
			Concat(res.Table, cycleTable)
		}
		merged++
		a.logger.Debug("folded cycle", "family", family, "cycle", cycle.Code, "rows", cycleTable.NumRows(), "total_rows", res.Table.NumRows())
	}

	if merged == 0 {
		res.Diagnostics = append(res.Diagnostics, fmt.Sprintf("%s: no cycle produced data", family))
	}
	return res, nil
}

// fetchWithRetry fetches one cycle table, retrying only transient failures
// with a fixed delay. Absence passes straight through.
func (a *Accumulator) fetchWithRetry(ctx context.Context, cycleCode, family string) (*table.Table, error) {
	backoff := retry.WithMaxRetries(uint64(a.policy.Attempts-1), retry.NewConstant(a.policy.Delay))

	var out *table.Table
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		t, err := a.source.FetchTable(ctx, cycleCode, family)
		if err != nil {
			if survey.IsTransient(err) {
				a.logger.Debug("transient fetch failure, will retry", "family", family, "cycle", cycleCode, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		out = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// referenceTranslations probes released cycles newest to oldest for a
// non-empty codebook. Failures during probing degrade to the next-older
// cycle rather than aborting the merge.
func (a *Accumulator) referenceTranslations(ctx context.Context, family string) survey.TranslationTable {
	newestFirst := make([]survey.Cycle, 0, len(a.cycles))
	for i := len(a.cycles) - 1; i >= 0; i-- {
		if !a.cycles[i].Unreleased {
			newestFirst = append(newestFirst, a.cycles[i])
		}
	}

	return ReferenceTranslations(newestFirst, func(cy survey.Cycle) (survey.TranslationTable, bool) {
		tt, err := a.codebook.Translations(ctx, cy.Code, family)
		if err != nil {
			if !errors.Is(err, survey.ErrAbsent) {
				a.logger.Debug("codebook probe failed", "family", family, "cycle", cy.Code, "error", err)
			}
			return nil, false
		}
		return tt, true
	})
}
