// Package ledger implements the in-memory account model and the batch
// applier. Accounts hold an append-only event ledger; the balance always
// equals the signed sum of the ledger. All mutation goes through the methods
// here, which validate before appending, so a failed operation never leaves a
// partial write behind.
package ledger

import (
	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tally/internal/model"
)

// Account is one party's balance plus its event history.
type Account struct {
	owner   string
	balance decimal.Decimal
	events  []model.Event
}

// Open creates an account with an OPEN event for the opening balance.
func Open(owner string, openingBalance decimal.Decimal) (*Account, error) {
	if owner == "" {
		return nil, ValidationError{Field: "owner", Reason: "must not be empty"}
	}
	if openingBalance.IsNegative() {
		return nil, ValidationError{Field: "opening balance", Reason: "must not be negative"}
	}
	return &Account{
		owner:   owner,
		balance: openingBalance,
		events:  []model.Event{{Kind: model.EventOpen, Amount: openingBalance}},
	}, nil
}

// Owner returns the account's owner identifier.
func (a *Account) Owner() string { return a.owner }

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal { return a.balance }

// Deposit credits amount to the account.
func (a *Account) Deposit(amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	a.append(model.Event{Kind: model.EventDeposit, Amount: amount})
	return nil
}

// Withdraw debits amount from the account. Overdrafts are rejected before
// any mutation.
func (a *Account) Withdraw(amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	if amount.GreaterThan(a.balance) {
		return InsufficientFundsError{Owner: a.owner, Requested: amount, Available: a.balance}
	}
	a.append(model.Event{Kind: model.EventWithdraw, Amount: amount})
	return nil
}

// TransferTo moves amount from a to other as one logical step: TRANSFER_OUT
// on a, TRANSFER_IN on other. Validation and the overdraft check run first,
// so a failure mutates neither side.
func (a *Account) TransferTo(other *Account, amount decimal.Decimal) error {
	if other == nil {
		return ValidationError{Field: "counterparty", Reason: "must not be nil"}
	}
	if other.owner == a.owner {
		return ValidationError{Field: "counterparty", Reason: "cannot transfer to self"}
	}
	if err := validateAmount(amount); err != nil {
		return err
	}
	if amount.GreaterThan(a.balance) {
		return InsufficientFundsError{Owner: a.owner, Requested: amount, Available: a.balance}
	}
	a.append(model.Event{Kind: model.EventTransferOut, Amount: amount, Counterparty: other.owner})
	other.append(model.Event{Kind: model.EventTransferIn, Amount: amount, Counterparty: a.owner})
	return nil
}

// ReceiveTransfer credits amount as a standalone TRANSFER_IN from an account
// outside this batch. No corresponding debit is recorded.
func (a *Account) ReceiveTransfer(from string, amount decimal.Decimal) error {
	if err := validateAmount(amount); err != nil {
		return err
	}
	a.append(model.Event{Kind: model.EventTransferIn, Amount: amount, Counterparty: from})
	return nil
}

// Statement returns a copy of the ledger in append order.
func (a *Account) Statement() []model.Event {
	out := make([]model.Event, len(a.events))
	copy(out, a.events)
	return out
}

func (a *Account) append(e model.Event) {
	a.balance = a.balance.Add(e.Signed())
	a.events = append(a.events, e)
}

func validateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ValidationError{Field: "amount", Reason: "must be positive"}
	}
	return nil
}
