// Package cli provides the command-line interface for surveyforge.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/surveyforge/surveyforge/internal/cli/commands"
	"github.com/surveyforge/surveyforge/internal/cli/config"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "surveyforge",
		Short: "surveyforge - survey cycle harmonizer and publisher",
		Long: `surveyforge merges every collection cycle of a survey table family into one
type-consistent dataset and republishes it to object storage only when the
content actually changed.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" || cmd.Name() == "version" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger := config.NewLogger(cfg.Verbose)
			cmd.SetContext(config.WithLogger(cmd.Context(), logger))

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./surveyforge.yaml)")
	rootCmd.PersistentFlags().String("catalog", "", "Path to the YAML dataset catalog")
	rootCmd.PersistentFlags().String("checksums", "", "Path to the fingerprint store file")
	rootCmd.PersistentFlags().String("source-url", "", "Survey source base URL")
	rootCmd.PersistentFlags().String("id-column", "", "Respondent identifier column")
	rootCmd.PersistentFlags().Int("batch-size", 0, "Maximum datasets per batch")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(commands.NewVersionCommand(Version, BuildDate, GitCommit))
	rootCmd.AddCommand(commands.NewPublishCommand())
	rootCmd.AddCommand(commands.NewBatchesCommand())
	rootCmd.AddCommand(commands.NewStatusCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
