package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version, buildDate, gitCommit string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "surveyforge %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "  build date: %s\n", buildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "  commit:     %s\n", gitCommit)
		},
	}
}
