package commands

import (
	"github.com/spf13/cobra"

	"github.com/contflow/contflow/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "contflow",
		Short:   "Bank statement ingestion and cash-flow classification",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newInitCommand(),
		newImportCommand(),
		newClassifyCommand(),
		newUnclassifiedCommand(),
		newCorrectCommand(),
		newRulesCommand(),
		newReportCommand(),
		newWatchCommand(),
	)

	return rootCmd
}
