package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tallybook-dev/tally/internal/runlog"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

const (
	testAccounts = "owner,opening_balance\nAlice,100\nBob,50\n"
	testTxns     = "owner,event,amount,other\n" +
		"Alice,DEPOSIT,20,\n" +
		"Alice,WITHDRAW,10,\n" +
		"Alice,TRANSFER_OUT,40,Bob\n"
)

func TestApply(t *testing.T) {
	dir := t.TempDir()
	accountsPath := filepath.Join(dir, "accounts.csv")
	txnsPath := filepath.Join(dir, "transactions.csv")
	balancesPath := filepath.Join(dir, "balances.csv")
	writeFile(t, accountsPath, testAccounts)
	writeFile(t, txnsPath, testTxns)

	out, err := execute(t, "apply",
		"--accounts", accountsPath,
		"--transactions", txnsPath,
		"--out-balances", balancesPath,
		"--project", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(balancesPath)
	require.NoError(t, err)
	assert.Equal(t, "owner,balance\nAlice,70.00\nBob,90.00\n", string(data))

	assert.Contains(t, out, "Applied 3 records (0 skipped)")
	assert.Contains(t, out, "Alice: $70.00")
	assert.Contains(t, out, "Bob: $90.00")
}

func TestApply_WithLedgerOutput(t *testing.T) {
	dir := t.TempDir()
	accountsPath := filepath.Join(dir, "accounts.csv")
	txnsPath := filepath.Join(dir, "transactions.csv")
	balancesPath := filepath.Join(dir, "balances.csv")
	ledgerPath := filepath.Join(dir, "ledger.csv")
	writeFile(t, accountsPath, testAccounts)
	writeFile(t, txnsPath, testTxns)

	_, err := execute(t, "apply",
		"--accounts", accountsPath,
		"--transactions", txnsPath,
		"--out-balances", balancesPath,
		"--out-ledger", ledgerPath,
		"--project", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(ledgerPath)
	require.NoError(t, err)
	want := "owner,event,amount,other\n" +
		"Alice,DEPOSIT,20.00,\n" +
		"Alice,WITHDRAW,10.00,\n" +
		"Alice,TRANSFER_OUT,40.00,Bob\n" +
		"Bob,TRANSFER_IN,40.00,Alice\n"
	assert.Equal(t, want, string(data))
}

func TestApply_AbortOnOverdraft(t *testing.T) {
	dir := t.TempDir()
	accountsPath := filepath.Join(dir, "accounts.csv")
	txnsPath := filepath.Join(dir, "transactions.csv")
	writeFile(t, accountsPath, "owner,opening_balance\nAlice,5\n")
	writeFile(t, txnsPath, "owner,event,amount,other\nAlice,WITHDRAW,10,\n")

	_, err := execute(t, "apply",
		"--accounts", accountsPath,
		"--transactions", txnsPath,
		"--out-balances", filepath.Join(dir, "balances.csv"),
		"--project", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient funds")
}

func TestApply_SkipPolicy(t *testing.T) {
	dir := t.TempDir()
	accountsPath := filepath.Join(dir, "accounts.csv")
	txnsPath := filepath.Join(dir, "transactions.csv")
	balancesPath := filepath.Join(dir, "balances.csv")
	writeFile(t, accountsPath, "owner,opening_balance\nAlice,5\n")
	writeFile(t, txnsPath, "owner,event,amount,other\n"+
		"Alice,WITHDRAW,10,\n"+
		"Alice,DEPOSIT,20,\n")

	out, err := execute(t, "apply",
		"--accounts", accountsPath,
		"--transactions", txnsPath,
		"--out-balances", balancesPath,
		"--on-error", "skip",
		"--project", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(balancesPath)
	require.NoError(t, err)
	assert.Equal(t, "owner,balance\nAlice,25.00\n", string(data))
	assert.Contains(t, out, "Applied 1 records (1 skipped)")
}

func TestApply_InvalidPolicy(t *testing.T) {
	dir := t.TempDir()
	accountsPath := filepath.Join(dir, "accounts.csv")
	txnsPath := filepath.Join(dir, "transactions.csv")
	writeFile(t, accountsPath, testAccounts)
	writeFile(t, txnsPath, testTxns)

	_, err := execute(t, "apply",
		"--accounts", accountsPath,
		"--transactions", txnsPath,
		"--out-balances", filepath.Join(dir, "balances.csv"),
		"--on-error", "explode",
		"--project", dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --on-error")
}

func TestApply_MissingAccountsFile(t *testing.T) {
	dir := t.TempDir()
	txnsPath := filepath.Join(dir, "transactions.csv")
	writeFile(t, txnsPath, testTxns)

	_, err := execute(t, "apply",
		"--accounts", filepath.Join(dir, "nope.csv"),
		"--transactions", txnsPath,
		"--out-balances", filepath.Join(dir, "balances.csv"),
		"--project", dir)
	require.Error(t, err)
}

func TestApply_InProjectWritesRunLog(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "init", dir, "--name", "Test Books")
	require.NoError(t, err)

	accountsPath := filepath.Join(dir, "accounts.csv")
	txnsPath := filepath.Join(dir, "transactions.csv")
	writeFile(t, accountsPath, testAccounts)
	writeFile(t, txnsPath, testTxns)

	_, err = execute(t, "apply",
		"--accounts", accountsPath,
		"--transactions", txnsPath,
		"--out-balances", filepath.Join(dir, "balances.csv"),
		"--project", dir)
	require.NoError(t, err)

	entries, err := runlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "apply", entries[0].Action)
	assert.Contains(t, entries[0].Details, "3 records")
	assert.NotEmpty(t, entries[0].CommitHash, "auto-commit should record a hash")
}
