package commands

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/surveyforge/surveyforge/internal/catalog"
	"github.com/surveyforge/surveyforge/internal/cli/config"
	"github.com/surveyforge/surveyforge/internal/fingerprint"
)

// NewStatusCommand creates the status command, which lists catalog datasets
// and their stored fingerprints.
func NewStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List catalog datasets and their stored fingerprints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.GetCurrentConfig()

			cat, err := catalog.Load(cfg.CatalogPath)
			if err != nil {
				return err
			}
			store, err := fingerprint.OpenStore(cfg.ChecksumPath)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Dataset", "Category", "Fingerprint"})
			for _, d := range cat.Datasets {
				sum, _ := store.Get(d.Name)
				if sum == "" {
					sum = "(never published)"
				} else if len(sum) > 12 {
					sum = sum[:12]
				}
				t.AppendRow(table.Row{d.Name, d.Category, sum})
			}
			t.Render()

			fmt.Fprintf(cmd.OutOrStdout(), "\n%d datasets, %d with stored fingerprints\n", len(cat.Datasets), store.Len())
			return nil
		},
	}
}
