package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/surveyforge/surveyforge/internal/batch"
	"github.com/surveyforge/surveyforge/internal/catalog"
	"github.com/surveyforge/surveyforge/internal/cli/config"
	"github.com/surveyforge/surveyforge/internal/fingerprint"
	"github.com/surveyforge/surveyforge/internal/merge"
	"github.com/surveyforge/surveyforge/internal/pipeline"
	"github.com/surveyforge/surveyforge/internal/publish"
	"github.com/surveyforge/surveyforge/internal/survey"
)

// PublishOptions holds options for the publish command.
type PublishOptions struct {
	DryRun      bool
	BatchIndex  int
	Datasets    string
	SummaryPath string
}

// NewPublishCommand creates the publish command, the main pipeline entry.
func NewPublishCommand() *cobra.Command {
	opts := &PublishOptions{BatchIndex: -1}

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Merge survey cycles and publish changed datasets",
		Long: `Fetch every cycle of each catalog dataset, harmonize them into one table,
and upload the result to object storage when its content changed since the
last publish. Each upload is read back and verified before the stored
fingerprint moves.`,
		Example: `  # Process the whole catalog, batch by batch
  surveyforge publish

  # Detect changes without uploading anything
  surveyforge publish --dry-run

  # Process only batch 2
  surveyforge publish --batch 2

  # Process an explicit dataset subset, bypassing batching
  surveyforge publish --datasets demographics,bodymeasures`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "Run fetch, merge, and change detection but skip uploads")
	cmd.Flags().IntVar(&opts.BatchIndex, "batch", -1, "Process only the batch with this index")
	cmd.Flags().StringVar(&opts.Datasets, "datasets", "", "Comma-separated dataset names to process, bypassing batching")
	cmd.Flags().StringVar(&opts.SummaryPath, "summary", "", "Write the JSON run summary to this path")

	return cmd
}

func runPublish(cmd *cobra.Command, opts *PublishOptions) error {
	cfg := config.GetCurrentConfig()
	logger := config.GetLogger(cmd.Context())
	ctx := cmd.Context()

	if !opts.DryRun {
		if err := cfg.ValidatePublish(); err != nil {
			return err
		}
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return err
	}

	checksums, err := fingerprint.OpenStore(cfg.ChecksumPath)
	if err != nil {
		return err
	}

	client := survey.NewHTTPClient(cfg.SourceURL, cfg.Fetch.Timeout(), logger)
	accumulator := merge.NewAccumulator(client, client, merge.Options{
		Policy:   merge.RetryPolicy{Attempts: cfg.Fetch.Attempts, Delay: cfg.Fetch.Delay()},
		IDColumn: cfg.IDColumn,
		Logger:   logger,
	})

	var store publish.Store
	if opts.DryRun {
		store = publish.NewMemoryStore()
	} else {
		store, err = publish.NewS3Store(ctx, publish.S3Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		}, logger)
		if err != nil {
			return err
		}
	}

	p := pipeline.New(pipeline.Options{
		Accumulator: accumulator,
		Checksums:   checksums,
		Publisher:   publish.NewPublisher(store, logger),
		IDColumn:    cfg.IDColumn,
		BatchDelay:  cfg.Batch.Delay(),
		DryRun:      opts.DryRun,
		Logger:      logger,
	})

	summary, runErr := runScope(cmd, p, cat, cfg.Batch.Size, opts)
	if summary != nil {
		summary.Render(cmd.OutOrStdout())
		if opts.SummaryPath != "" {
			if werr := summary.WriteJSON(opts.SummaryPath); werr != nil {
				logger.Error("failed to write summary artifact", "path", opts.SummaryPath, "error", werr)
			}
		}
	}
	return runErr
}

// runScope picks between the three run controls: explicit dataset subset,
// single batch, or the full schedule.
func runScope(cmd *cobra.Command, p *pipeline.Pipeline, cat *catalog.Catalog, batchSize int, opts *PublishOptions) (*pipeline.Summary, error) {
	ctx := cmd.Context()

	if opts.Datasets != "" {
		names := strings.Split(opts.Datasets, ",")
		selected, err := cat.Select(names)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Processing %d selected datasets\n", len(selected))
		return p.RunDatasets(ctx, selected)
	}

	batches, err := batch.Schedule(cat, batchSize)
	if err != nil {
		return nil, err
	}

	if opts.BatchIndex >= 0 {
		b, err := batch.Pick(batches, opts.BatchIndex)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Processing batch %d (%s, %d datasets)\n", b.Index, b.Label(), len(b.Datasets))
		return p.RunBatches(ctx, []batch.Batch{b})
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Processing %d datasets in %d batches\n", len(cat.Datasets), len(batches))
	return p.RunBatches(ctx, batches)
}
