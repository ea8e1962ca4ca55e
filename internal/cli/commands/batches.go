package commands

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/surveyforge/surveyforge/internal/batch"
	"github.com/surveyforge/surveyforge/internal/catalog"
	"github.com/surveyforge/surveyforge/internal/cli/config"
)

// NewBatchesCommand creates the batches command, which previews the batch
// schedule without fetching anything.
func NewBatchesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "batches",
		Short: "Show how the catalog partitions into batches",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetCurrentConfig()

			cat, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return err
			}
			batches, err := batch.Schedule(cat, cfg.Batch.Size)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Batch", "Categories", "Datasets"})
			for _, b := range batches {
				t.AppendRow(table.Row{b.Index, b.Label(), len(b.Datasets)})
			}
			t.Render()
			return nil
		},
	}
}
