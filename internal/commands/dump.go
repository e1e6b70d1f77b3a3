package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tally/internal/journal"
	"github.com/tallybook-dev/tally/internal/ledger"
)

func newDumpLedgerCommand() *cobra.Command {
	var accountsPath, transactionsPath, outLedger string

	cmd := &cobra.Command{
		Use:   "dump-ledger",
		Short: "Apply a transaction batch and export the merged ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDumpLedger(cmd, accountsPath, transactionsPath, outLedger)
		},
	}

	cmd.Flags().StringVar(&accountsPath, "accounts", "", "path to accounts.csv (required)")
	cmd.Flags().StringVar(&transactionsPath, "transactions", "", "path to transactions.csv (required)")
	cmd.Flags().StringVar(&outLedger, "out-ledger", "", "where to write the merged ledger CSV (required)")
	_ = cmd.MarkFlagRequired("accounts")
	_ = cmd.MarkFlagRequired("transactions")
	_ = cmd.MarkFlagRequired("out-ledger")

	return cmd
}

func runDumpLedger(cmd *cobra.Command, accountsPath, transactionsPath, outLedger string) error {
	seeds, records, err := loadInputs(accountsPath, transactionsPath)
	if err != nil {
		return err
	}

	result, err := ledger.ApplyBatch(seeds, records, ledger.ApplyOptions{})
	if err != nil {
		return fmt.Errorf("applying batch: %w", err)
	}

	if err := writeCSV(outLedger, func(f *os.File) error {
		return journal.WriteLedger(f, result.Ledger)
	}); err != nil {
		return fmt.Errorf("writing ledger: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote merged ledger for %d accounts to %s\n", len(result.Balances), outLedger)
	return nil
}
