package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/cashbook/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globals{}
	rootCmd := &cobra.Command{
		Use:     "cashbook",
		Short:   "Cash-basis bookkeeping, reports, and ledger checks",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.repo, "repo", ".", "ledger directory")
	rootCmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level (overrides cashbook.yaml)")

	rootCmd.AddCommand(
		newInitCommand(),
		newAccountCommand(g),
		newTxnCommand(g),
		newReportCommand(g),
		newValidateCommand(g),
		newBalanceCommand(g),
		newImportCommand(g),
		newServeCommand(g),
	)

	return rootCmd
}
