package ledger

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// ValidationError describes malformed input: an empty owner, a non-positive
// amount, or a negative opening balance.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// InsufficientFundsError means a withdrawal or transfer would drive the
// balance below zero. The account is left unchanged.
type InsufficientFundsError struct {
	Owner     string
	Requested decimal.Decimal
	Available decimal.Decimal
}

func (e InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds for %s: requested %s, available %s",
		e.Owner, e.Requested.StringFixed(2), e.Available.StringFixed(2))
}

// UnknownAccountError means a record references an owner that is not part of
// the batch's account set.
type UnknownAccountError struct {
	Owner string
}

func (e UnknownAccountError) Error() string {
	return fmt.Sprintf("unknown account %q", e.Owner)
}
