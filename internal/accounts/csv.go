// Package accounts reads account seeds (accounts.csv) and writes final
// balances (balances.csv).
package accounts

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tally/internal/csvutil"
	"github.com/tallybook-dev/tally/internal/ledger"
	"github.com/tallybook-dev/tally/internal/model"
)

// SeedHeader is the expected header of accounts.csv. Matching is
// case/space/BOM tolerant and extra columns are ignored.
const SeedHeader = "owner,opening_balance"

// BalanceHeader is the header written to balances.csv.
const BalanceHeader = "owner,balance"

// ReadSeeds reads accounts.csv: one account per row, owners unique,
// opening balances non-negative.
func ReadSeeds(r io.Reader) ([]model.Seed, error) {
	cr := csvutil.NewReader(r)
	cr.FieldsPerRecord = -1

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("accounts CSV is empty or has no header row")
	}

	header := csvutil.NormalizeHeader(records[0])
	idx, missing := csvutil.ColumnIndex(header, strings.Split(SeedHeader, ","))
	if len(missing) > 0 {
		return nil, fmt.Errorf("accounts CSV missing required columns %v, found %v", missing, header)
	}

	seen := make(map[string]bool)
	var seeds []model.Seed
	for i, rec := range records[1:] {
		if csvutil.Blank(rec) {
			continue
		}

		seed, err := unmarshalSeed(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		if seen[seed.Owner] {
			return nil, fmt.Errorf("row %d: duplicate owner %q", i+2, seed.Owner)
		}
		seen[seed.Owner] = true
		seeds = append(seeds, seed)
	}
	return seeds, nil
}

func unmarshalSeed(rec []string, idx map[string]int) (model.Seed, error) {
	owner, err := field(rec, idx, "owner")
	if err != nil {
		return model.Seed{}, err
	}
	raw, err := field(rec, idx, "opening_balance")
	if err != nil {
		return model.Seed{}, err
	}

	if owner == "" {
		return model.Seed{}, ledger.ValidationError{Field: "owner", Reason: "must not be empty"}
	}

	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return model.Seed{}, fmt.Errorf("parsing opening_balance %q: %w", raw, err)
	}
	if balance.IsNegative() {
		return model.Seed{}, ledger.ValidationError{Field: "opening balance", Reason: "must not be negative"}
	}

	return model.Seed{Owner: owner, OpeningBalance: balance}, nil
}

func field(rec []string, idx map[string]int, name string) (string, error) {
	i := idx[name]
	if i >= len(rec) {
		return "", fmt.Errorf("missing %s column value", name)
	}
	return strings.TrimSpace(rec[i]), nil
}

// WriteBalances writes balances.csv (including header), amounts fixed to two
// decimal places, in the given order.
func WriteBalances(w io.Writer, balances []model.Balance) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(BalanceHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, b := range balances {
		row := []string{b.Owner, b.Amount.StringFixed(2)}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalSeed converts a Seed to an accounts.csv row.
func MarshalSeed(seed model.Seed) []string {
	return []string{seed.Owner, seed.OpeningBalance.StringFixed(2)}
}

// WriteSeeds writes accounts.csv (including header).
func WriteSeeds(w io.Writer, seeds []model.Seed) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(SeedHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, seed := range seeds {
		if err := cw.Write(MarshalSeed(seed)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}
