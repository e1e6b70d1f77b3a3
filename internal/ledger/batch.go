package ledger

import (
	"fmt"

	"github.com/tallybook-dev/tally/internal/model"
)

// ErrorPolicy controls how ApplyBatch reacts to a failing record.
type ErrorPolicy string

const (
	// OnErrorAbort stops at the first failing record and returns its error.
	// The default: the common case is idempotent reprocessing of a trusted
	// batch, where any failure means the inputs are wrong.
	OnErrorAbort ErrorPolicy = "abort"
	// OnErrorSkip records the failure and continues with the next record.
	OnErrorSkip ErrorPolicy = "skip"
)

// Valid reports whether p is a known policy.
func (p ErrorPolicy) Valid() bool {
	return p == OnErrorAbort || p == OnErrorSkip
}

// ApplyOptions configures a batch run.
type ApplyOptions struct {
	OnError ErrorPolicy // zero value means OnErrorAbort
}

// RecordError is a failing record kept when the policy is OnErrorSkip.
type RecordError struct {
	Index  int // zero-based position in the input record slice
	Record model.TransactionRecord
	Err    error
}

func (e RecordError) Error() string {
	return fmt.Sprintf("record %d (%s %s): %v", e.Index, e.Record.Owner, e.Record.Kind, e.Err)
}

func (e RecordError) Unwrap() error { return e.Err }

// Result is the outcome of a batch: final balances and the merged ledger,
// both in account seed order. Skipped is empty under OnErrorAbort.
type Result struct {
	Balances []model.Balance
	Ledger   []model.LedgerRow
	Skipped  []RecordError
}

// pairKey identifies a pending transfer pair: a TRANSFER_OUT that has been
// applied and is still awaiting its TRANSFER_IN leg.
type pairKey struct {
	from   string
	to     string
	amount string // canonical decimal string, so 40 and 40.00 match
}

// ApplyBatch opens one account per seed, applies records strictly in input
// order, and returns final balances plus the merged ledger.
//
// A TRANSFER_OUT registers a pending pair (amount, ordered owner pair). A
// TRANSFER_IN that matches a pending pair is the auto-materialized leg of an
// earlier TransferTo and is skipped, consuming the pair; each OUT absorbs
// exactly one IN. A TRANSFER_IN with no pending pair is a standalone credit:
// its OUT leg lives outside this batch, so no debit is applied and the
// counterparty is not required to be a seeded account.
func ApplyBatch(seeds []model.Seed, records []model.TransactionRecord, opts ApplyOptions) (Result, error) {
	policy := opts.OnError
	if policy == "" {
		policy = OnErrorAbort
	}
	if !policy.Valid() {
		return Result{}, ValidationError{Field: "error policy", Reason: fmt.Sprintf("unknown policy %q", policy)}
	}

	byOwner := make(map[string]*Account, len(seeds))
	order := make([]*Account, 0, len(seeds))
	for _, seed := range seeds {
		if _, dup := byOwner[seed.Owner]; dup {
			return Result{}, ValidationError{Field: "owner", Reason: fmt.Sprintf("duplicate owner %q", seed.Owner)}
		}
		acct, err := Open(seed.Owner, seed.OpeningBalance)
		if err != nil {
			return Result{}, err
		}
		byOwner[seed.Owner] = acct
		order = append(order, acct)
	}

	var result Result
	pending := make(map[pairKey]int)

	for i, rec := range records {
		err := applyRecord(byOwner, pending, rec)
		if err == nil {
			continue
		}
		if policy == OnErrorAbort {
			return Result{}, RecordError{Index: i, Record: rec, Err: err}
		}
		result.Skipped = append(result.Skipped, RecordError{Index: i, Record: rec, Err: err})
	}

	for _, acct := range order {
		result.Balances = append(result.Balances, model.Balance{Owner: acct.Owner(), Amount: acct.Balance()})
		for _, e := range acct.Statement() {
			result.Ledger = append(result.Ledger, model.LedgerRow{Owner: acct.Owner(), Event: e})
		}
	}
	return result, nil
}

func applyRecord(byOwner map[string]*Account, pending map[pairKey]int, rec model.TransactionRecord) error {
	if rec.Owner == "" {
		return ValidationError{Field: "owner", Reason: "must not be empty"}
	}
	acct, ok := byOwner[rec.Owner]
	if !ok {
		return UnknownAccountError{Owner: rec.Owner}
	}

	switch rec.Kind {
	case model.EventDeposit:
		return acct.Deposit(rec.Amount)

	case model.EventWithdraw:
		return acct.Withdraw(rec.Amount)

	case model.EventTransferOut:
		other, ok := byOwner[rec.Other]
		if !ok {
			return UnknownAccountError{Owner: rec.Other}
		}
		if err := acct.TransferTo(other, rec.Amount); err != nil {
			return err
		}
		pending[pairKey{from: rec.Owner, to: rec.Other, amount: rec.Amount.String()}]++
		return nil

	case model.EventTransferIn:
		key := pairKey{from: rec.Other, to: rec.Owner, amount: rec.Amount.String()}
		if pending[key] > 0 {
			// Already materialized by the matching TRANSFER_OUT.
			pending[key]--
			return nil
		}
		return acct.ReceiveTransfer(rec.Other, rec.Amount)

	default:
		return ValidationError{Field: "event", Reason: fmt.Sprintf("unknown event kind %q", rec.Kind)}
	}
}
