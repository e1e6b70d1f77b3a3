package model

import "github.com/shopspring/decimal"

// Seed is one row of accounts.csv: an account to open before applying
// transactions.
type Seed struct {
	Owner          string
	OpeningBalance decimal.Decimal
}

// Balance is one account's final balance after a batch.
type Balance struct {
	Owner  string
	Amount decimal.Decimal
}

// LedgerRow is one event in the merged batch ledger, tagged with its owner.
type LedgerRow struct {
	Owner string
	Event Event
}
