package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"contas/internal/services"
)

// NewRootCommand creates the contasctl root with all subcommands
// registered. The ledger is built lazily so `--help` never touches
// the database.
func NewRootCommand(openLedger func() (*services.Ledger, func(), error)) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "contasctl",
		Short: "Manage accounts, cards, transactions and invoices from the terminal",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newAccountCommand(openLedger))
	rootCmd.AddCommand(newCardCommand(openLedger))
	rootCmd.AddCommand(newTxCommand(openLedger))
	rootCmd.AddCommand(newInvoiceCommand(openLedger))
	rootCmd.AddCommand(newSummaryCommand(openLedger))

	return rootCmd
}

func withLedger(openLedger func() (*services.Ledger, func(), error), run func(*cobra.Command, *services.Ledger, []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ledger, cleanup, err := openLedger()
		if err != nil {
			return fmt.Errorf("open ledger: %w", err)
		}
		defer cleanup()
		return run(cmd, ledger, args)
	}
}
