package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// TransactionRecord is one parsed row of transactions.csv, pre-validation.
type TransactionRecord struct {
	Owner  string
	Kind   EventKind
	Amount decimal.Decimal
	Other  string // counterparty owner for transfer kinds
}

// ParseEventKind matches an event name case-insensitively.
// Returns false for OPEN: opening balances come from accounts.csv, never
// from the transaction stream.
func ParseEventKind(s string) (EventKind, bool) {
	k := EventKind(strings.ToUpper(strings.TrimSpace(s)))
	if k == EventOpen || !k.Valid() {
		return "", false
	}
	return k, true
}
