// Package pipeline sequences the merge, change-detection, and publish steps
// per dataset and per batch, and produces the run summary.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/surveyforge/surveyforge/internal/batch"
	"github.com/surveyforge/surveyforge/internal/catalog"
	"github.com/surveyforge/surveyforge/internal/fingerprint"
	"github.com/surveyforge/surveyforge/internal/merge"
	"github.com/surveyforge/surveyforge/internal/publish"
)

// Pipeline runs datasets strictly sequentially: cycles within a dataset
// share one rate-limited source, and the checksum store's read-modify-write
// must not interleave across datasets.
type Pipeline struct {
	accumulator *merge.Accumulator
	checksums   *fingerprint.Store
	publisher   *publish.Publisher
	idColumn    string
	batchDelay  time.Duration
	dryRun      bool
	logger      *slog.Logger
}

// Options configures a Pipeline.
type Options struct {
	Accumulator *merge.Accumulator
	Checksums   *fingerprint.Store
	Publisher   *publish.Publisher
	// IDColumn is the respondent identifier; with the year column it forms
	// the canonical sort key and the structural column set.
	IDColumn string
	// BatchDelay is slept between batches to respect the source's rate
	// limits. No delay is inserted after the final batch.
	BatchDelay time.Duration
	// DryRun executes fetch, merge, and change detection but skips the
	// publish and fingerprint-update steps.
	DryRun bool
	Logger *slog.Logger
}

// New builds a pipeline.
func New(opts Options) *Pipeline {
	idColumn := opts.IDColumn
	if idColumn == "" {
		idColumn = "seqn"
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{
		accumulator: opts.Accumulator,
		checksums:   opts.Checksums,
		publisher:   opts.Publisher,
		idColumn:    idColumn,
		batchDelay:  opts.BatchDelay,
		dryRun:      opts.DryRun,
		logger:      logger,
	}
}

// RunBatches processes the given batches in order with the configured
// inter-batch delay. An IntegrityError halts the run immediately; datasets
// published earlier in the run stay published.
func (p *Pipeline) RunBatches(ctx context.Context, batches []batch.Batch) (*Summary, error) {
	summary := p.newSummary()
	start := time.Now()

	for bi, b := range batches {
		p.logger.Info("starting batch", "batch", b.Index, "categories", b.Label(), "datasets", len(b.Datasets))
		if err := p.runDatasets(ctx, summary, b.Datasets); err != nil {
			summary.DurationMS = time.Since(start).Milliseconds()
			return summary, err
		}
		if p.batchDelay > 0 && bi < len(batches)-1 {
			p.logger.Debug("inter-batch delay", "delay", p.batchDelay)
			select {
			case <-time.After(p.batchDelay):
			case <-ctx.Done():
				summary.DurationMS = time.Since(start).Milliseconds()
				return summary, ctx.Err()
			}
		}
	}

	summary.DurationMS = time.Since(start).Milliseconds()
	return summary, nil
}

// RunDatasets processes an explicit dataset subset, bypassing batching.
func (p *Pipeline) RunDatasets(ctx context.Context, datasets []catalog.Dataset) (*Summary, error) {
	summary := p.newSummary()
	start := time.Now()
	err := p.runDatasets(ctx, summary, datasets)
	summary.DurationMS = time.Since(start).Milliseconds()
	return summary, err
}

func (p *Pipeline) newSummary() *Summary {
	return &Summary{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		DryRun:    p.dryRun,
	}
}

func (p *Pipeline) runDatasets(ctx context.Context, summary *Summary, datasets []catalog.Dataset) error {
	for _, d := range datasets {
		outcome, err := p.processDataset(ctx, d)
		summary.record(outcome)
		if err != nil {
			var ie *publish.IntegrityError
			if errors.As(err, &ie) {
				summary.Halted = ie.Error()
				p.logger.Error("halting run on integrity failure", "dataset", d.Name, "error", ie)
			}
			return err
		}
		p.logger.Info("dataset done", "dataset", d.Name, "status", outcome.Status, "detection", outcome.Detection, "rows", outcome.Rows)
	}
	return nil
}

// processDataset runs one dataset end to end. The merged table is scoped to
// this call so memory is released before the next dataset starts.
func (p *Pipeline) processDataset(ctx context.Context, d catalog.Dataset) (DatasetOutcome, error) {
	outcome := DatasetOutcome{Name: d.Name, Category: d.Category}

	res, err := p.accumulator.Merge(ctx, d.Family, d.Columns)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		return outcome, err
	}
	outcome.Diagnostics = res.Diagnostics
	outcome.Rows = res.Table.NumRows()

	if !res.Complete() {
		// Publishing a partial merge would silently shrink the public
		// dataset; fail this dataset only and keep the run going.
		outcome.Status = StatusFailed
		outcome.Reason = fmt.Sprintf("incomplete: cycles failed after retries: %v", res.FailedCycles)
		return outcome, nil
	}
	if res.Table.NumRows() == 0 {
		outcome.Status = StatusFailed
		outcome.Reason = "no cycle produced data"
		return outcome, nil
	}

	status, sum, err := fingerprint.Detect(res.Table, d.Name, merge.YearColumn, p.idColumn, p.checksums)
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		return outcome, err
	}
	outcome.Detection = status
	outcome.Fingerprint = sum

	if status == fingerprint.StatusUnchanged {
		outcome.Status = StatusUnchanged
		return outcome, nil
	}
	if p.dryRun {
		outcome.Status = StatusSkipped
		outcome.Reason = "dry run"
		return outcome, nil
	}

	structural := []string{p.idColumn, merge.YearColumn}
	if _, err := p.publisher.Publish(ctx, d.Name, res.Table, structural); err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		return outcome, err
	}

	// The fingerprint moves only after publish and verification succeeded,
	// so a broken artifact can never mask itself as up to date.
	p.checksums.Set(d.Name, sum)
	if err := p.checksums.Save(); err != nil {
		outcome.Status = StatusFailed
		outcome.Reason = err.Error()
		return outcome, fmt.Errorf("persist fingerprint for %s: %w", d.Name, err)
	}

	outcome.Status = StatusUploaded
	return outcome, nil
}
