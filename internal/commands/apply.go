package commands

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tallybook-dev/tally/internal/accounts"
	"github.com/tallybook-dev/tally/internal/config"
	"github.com/tallybook-dev/tally/internal/currency"
	"github.com/tallybook-dev/tally/internal/gitops"
	"github.com/tallybook-dev/tally/internal/journal"
	"github.com/tallybook-dev/tally/internal/ledger"
	"github.com/tallybook-dev/tally/internal/logging"
	"github.com/tallybook-dev/tally/internal/model"
	"github.com/tallybook-dev/tally/internal/runlog"
)

type applyFlags struct {
	accountsPath     string
	transactionsPath string
	outBalances      string
	outLedger        string
	onError          string
	projectDir       string
	verbose          bool
}

func newApplyCommand() *cobra.Command {
	var flags applyFlags

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a transaction batch and write final balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runApply(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.accountsPath, "accounts", "", "path to accounts.csv (required)")
	cmd.Flags().StringVar(&flags.transactionsPath, "transactions", "", "path to transactions.csv (required)")
	cmd.Flags().StringVar(&flags.outBalances, "out-balances", "", "where to write final balances CSV (required)")
	cmd.Flags().StringVar(&flags.outLedger, "out-ledger", "", "also write the merged ledger CSV here")
	cmd.Flags().StringVar(&flags.onError, "on-error", "", "abort or skip on a failing record (default from config: abort)")
	cmd.Flags().StringVar(&flags.projectDir, "project", ".", "project directory holding tally.yaml")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "debug logging")
	_ = cmd.MarkFlagRequired("accounts")
	_ = cmd.MarkFlagRequired("transactions")
	_ = cmd.MarkFlagRequired("out-balances")

	return cmd
}

func runApply(cmd *cobra.Command, flags applyFlags) error {
	cfg, isProject, err := projectConfig(flags.projectDir)
	if err != nil {
		return err
	}

	level := cfg.Apply.LogLevel
	if flags.verbose {
		level = "debug"
	}
	logger := logging.Init(cmd.ErrOrStderr(), level)

	policy := ledger.ErrorPolicy(cfg.Apply.OnError)
	if flags.onError != "" {
		policy = ledger.ErrorPolicy(flags.onError)
	}
	if !policy.Valid() {
		return fmt.Errorf("invalid --on-error %q: want %q or %q", policy, ledger.OnErrorAbort, ledger.OnErrorSkip)
	}

	seeds, records, err := loadInputs(flags.accountsPath, flags.transactionsPath)
	if err != nil {
		return err
	}
	logger.Debug("batch loaded", "accounts", len(seeds), "records", len(records))

	result, err := ledger.ApplyBatch(seeds, records, ledger.ApplyOptions{OnError: policy})
	if err != nil {
		return fmt.Errorf("applying batch: %w", err)
	}
	for _, skipped := range result.Skipped {
		logger.Warn("record skipped", "index", skipped.Index, "owner", skipped.Record.Owner, "err", skipped.Err)
	}

	if err := writeCSV(flags.outBalances, func(f *os.File) error {
		return accounts.WriteBalances(f, result.Balances)
	}); err != nil {
		return fmt.Errorf("writing balances: %w", err)
	}

	if flags.outLedger != "" {
		if err := writeCSV(flags.outLedger, func(f *os.File) error {
			return journal.WriteLedger(f, result.Ledger)
		}); err != nil {
			return fmt.Errorf("writing ledger: %w", err)
		}
	}

	printSummary(cmd, cfg, result, len(records))

	if isProject {
		recordRun(logger, cfg, flags.projectDir, "apply",
			fmt.Sprintf("%d records, %d skipped, %d accounts", len(records), len(result.Skipped), len(result.Balances)))
	}
	return nil
}

// projectConfig loads tally.yaml from the project dir, falling back to
// defaults when the file is absent so apply works on bare CSV files too.
func projectConfig(dir string) (*config.Config, bool, error) {
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if errors.Is(err, fs.ErrNotExist) {
		return config.Default(""), false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return cfg, true, nil
}

func loadInputs(accountsPath, transactionsPath string) ([]model.Seed, []model.TransactionRecord, error) {
	af, err := os.Open(accountsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening accounts: %w", err)
	}
	defer af.Close()

	seeds, err := accounts.ReadSeeds(af)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", accountsPath, err)
	}

	tf, err := os.Open(transactionsPath)
	if err != nil {
		return nil, nil, fmt.Errorf("opening transactions: %w", err)
	}
	defer tf.Close()

	records, err := journal.ReadRecords(tf)
	if err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", transactionsPath, err)
	}

	return seeds, records, nil
}

func writeCSV(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func printSummary(cmd *cobra.Command, cfg *config.Config, result ledger.Result, total int) {
	out := cmd.OutOrStdout()
	symbol := cfg.Project.CurrencySymbol
	if symbol == "" {
		symbol = "$"
	}

	fmt.Fprintf(out, "Applied %d records (%d skipped)\n", total-len(result.Skipped), len(result.Skipped))
	for _, b := range result.Balances {
		fmt.Fprintf(out, "  %s: %s\n", b.Owner, currency.Format(symbol, b.Amount))
	}
}

// recordRun appends to the project run log and auto-commits if configured.
// Both are best-effort: the batch outputs are already on disk.
func recordRun(logger *slog.Logger, cfg *config.Config, projectDir, action, details string) {
	entry := runlog.NewEntry(action, details)

	if cfg.Git.AutoCommit && gitops.IsRepo(projectDir) {
		msg := fmt.Sprintf("%s: %s", action, details)
		hash, err := gitops.CommitAll(projectDir, msg, cfg.Git.AuthorName, cfg.Git.AuthorEmail)
		if err != nil {
			// Nothing staged is not an error worth failing the run for.
			if !strings.Contains(err.Error(), "nothing to commit") {
				logger.Warn("auto-commit failed", "err", err)
			}
		} else {
			entry.CommitHash = hash
		}
	}

	if err := runlog.Append(projectDir, []runlog.Entry{entry}); err != nil {
		logger.Warn("run log write failed", "err", err)
	}
}
