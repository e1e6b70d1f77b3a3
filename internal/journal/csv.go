// Package journal reads transaction records (transactions.csv) and writes
// the merged ledger dump (ledger.csv). Both share the same four-column
// schema: owner,event,amount,other.
package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tallybook-dev/tally/internal/csvutil"
	"github.com/tallybook-dev/tally/internal/model"
)

// Header is the shared CSV header for transactions.csv and ledger.csv.
const Header = "owner,event,amount,other"

// ReadRecords reads transactions.csv in input order. Header matching is
// case/space/BOM tolerant; event names are matched case-insensitively.
func ReadRecords(r io.Reader) ([]model.TransactionRecord, error) {
	cr := csvutil.NewReader(r)
	cr.FieldsPerRecord = -1

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("transactions CSV is empty or has no header row")
	}

	header := csvutil.NormalizeHeader(rows[0])
	idx, missing := csvutil.ColumnIndex(header, strings.Split(Header, ","))
	if len(missing) > 0 {
		return nil, fmt.Errorf("transactions CSV missing required columns %v, found %v", missing, header)
	}

	var records []model.TransactionRecord
	for i, row := range rows[1:] {
		if csvutil.Blank(row) {
			continue
		}

		rec, err := unmarshalRecord(row, idx)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func unmarshalRecord(row []string, idx map[string]int) (model.TransactionRecord, error) {
	get := func(name string) string {
		i := idx[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	kind, ok := model.ParseEventKind(get("event"))
	if !ok {
		return model.TransactionRecord{}, fmt.Errorf("unknown event %q", get("event"))
	}

	amount, err := decimal.NewFromString(get("amount"))
	if err != nil {
		return model.TransactionRecord{}, fmt.Errorf("parsing amount %q: %w", get("amount"), err)
	}

	return model.TransactionRecord{
		Owner:  get("owner"),
		Kind:   kind,
		Amount: amount,
		Other:  get("other"),
	}, nil
}

// MarshalRow converts a ledger row to its CSV form.
func MarshalRow(row model.LedgerRow) []string {
	return []string{
		row.Owner,
		string(row.Event.Kind),
		row.Event.Amount.StringFixed(2),
		row.Event.Counterparty,
	}
}

// WriteLedger writes the merged ledger dump (including header). OPEN rows
// are omitted: opening balances already live in accounts.csv.
func WriteLedger(w io.Writer, rows []model.LedgerRow) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, row := range rows {
		if row.Event.Kind == model.EventOpen {
			continue
		}
		if err := cw.Write(MarshalRow(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}
