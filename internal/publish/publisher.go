package publish

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/surveyforge/surveyforge/internal/table"
)

// Publisher writes dataset artifacts and verifies them by reading back.
type Publisher struct {
	store  Store
	logger *slog.Logger
}

// NewPublisher wraps an object store. A nil logger discards.
func NewPublisher(store Store, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Publisher{store: store, logger: logger}
}

// Key derives the object key for a dataset name.
func Key(name string) string {
	return fmt.Sprintf("datasets/%s.csv", name)
}

// Publish uploads the dataset and runs the read-back integrity check. A
// failed check returns *IntegrityError; callers treat that as fatal for the
// whole run, because a corrupted public artifact is worse than a stale one.
func (p *Publisher) Publish(ctx context.Context, name string, t *table.Table, structural []string) (*VerificationResult, error) {
	body, err := EncodeCSV(t)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", name, err)
	}

	key := Key(name)
	if err := p.store.Put(ctx, key, body); err != nil {
		return nil, fmt.Errorf("publish %s: %w", name, err)
	}
	p.logger.Info("published dataset", "dataset", name, "key", key, "rows", t.NumRows(), "bytes", len(body))

	readback, err := p.store.Get(ctx, key)
	if err != nil {
		// The artifact may or may not have landed; without a read we cannot
		// vouch for it, so treat the round trip itself as an integrity
		// failure.
		return nil, &IntegrityError{Dataset: name, Result: &VerificationResult{
			Checks: []Check{{Name: "read-back", Detail: err.Error()}},
		}}
	}

	header, rows, err := DecodeCSV(readback)
	if err != nil {
		return nil, &IntegrityError{Dataset: name, Result: &VerificationResult{
			Checks: []Check{{Name: "parse-artifact", Detail: err.Error()}},
		}}
	}

	res := Verify(t, header, rows, structural)
	if !res.Success {
		return res, &IntegrityError{Dataset: name, Result: res}
	}
	p.logger.Debug("verified dataset", "dataset", name, "checks", len(res.Checks))
	return res, nil
}
