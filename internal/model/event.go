package model

import "github.com/shopspring/decimal"

// EventKind classifies ledger events.
type EventKind string

const (
	EventOpen        EventKind = "OPEN"
	EventDeposit     EventKind = "DEPOSIT"
	EventWithdraw    EventKind = "WITHDRAW"
	EventTransferOut EventKind = "TRANSFER_OUT"
	EventTransferIn  EventKind = "TRANSFER_IN"
)

// Valid reports whether k is one of the known event kinds.
func (k EventKind) Valid() bool {
	switch k {
	case EventOpen, EventDeposit, EventWithdraw, EventTransferOut, EventTransferIn:
		return true
	}
	return false
}

// Credit reports whether the event increases the account balance.
func (k EventKind) Credit() bool {
	return k == EventOpen || k == EventDeposit || k == EventTransferIn
}

// Event is one row in an account's ledger. Immutable once appended.
type Event struct {
	Kind         EventKind
	Amount       decimal.Decimal // positive; OPEN may be zero
	Counterparty string          // set only for TRANSFER_OUT / TRANSFER_IN
}

// Signed returns the event amount with its balance-effect sign.
func (e Event) Signed() decimal.Decimal {
	if e.Kind.Credit() {
		return e.Amount
	}
	return e.Amount.Neg()
}
