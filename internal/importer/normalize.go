package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/intake/internal/fields"
	"github.com/cleared-dev/intake/internal/id"
	"github.com/cleared-dev/intake/internal/model"
)

var (
	ErrMissingField = errors.New("missing required field")
	ErrNoAmount     = errors.New("no withdrawal or deposit amount")
)

// Labels tried, in order, when a format's own column is absent or empty.
var (
	dateFallbacks        = []string{"Transaction Date", "Date", "Posted Date", "Posting Date"}
	descriptionFallbacks = []string{"Transaction Details", "Description", "Details", "Memo", "Payee"}
)

// Row is one data row keyed by column label.
type Row map[string]string

// NewRow pairs labels with cells. Missing trailing cells become empty and
// extra cells are dropped.
func NewRow(labels, cells []string) Row {
	row := make(Row, len(labels))
	for i, l := range labels {
		if i < len(cells) {
			row[l] = strings.TrimSpace(cells[i])
		} else {
			row[l] = ""
		}
	}
	return row
}

// Blank reports whether every cell is empty.
func (r Row) Blank() bool {
	for _, v := range r {
		if v != "" {
			return false
		}
	}
	return true
}

// RowResult is the outcome of normalizing one row: a transaction, or the
// reason the row was dropped.
type RowResult struct {
	Line        int
	Transaction model.Transaction
	Err         error
}

// OK reports whether the row produced a transaction.
func (r RowResult) OK() bool { return r.Err == nil }

// Normalizer turns rows of one detected format into transactions.
type Normalizer struct {
	format FormatDescriptor
	newID  func() string
	now    func() time.Time
}

// NewNormalizer returns a normalizer for rows keyed by the format's columns.
func NewNormalizer(format FormatDescriptor) *Normalizer {
	return &Normalizer{format: format, newID: id.NewTransactionID, now: time.Now}
}

// NormalizeRow converts one row. It never panics on bad input; failures are
// reported in the result.
func (n *Normalizer) NormalizeRow(line int, row Row) RowResult {
	res := RowResult{Line: line}

	dateRaw := lookup(row, n.format.DateColumn, dateFallbacks)
	if dateRaw == "" {
		res.Err = fmt.Errorf("%w: date", ErrMissingField)
		return res
	}
	descRaw := lookup(row, n.format.DescriptionColumn, descriptionFallbacks)
	if descRaw == "" {
		res.Err = fmt.Errorf("%w: description", ErrMissingField)
		return res
	}

	amount, err := n.amount(row)
	if err != nil {
		res.Err = err
		return res
	}

	date, err := fields.ParseDateWith(dateRaw, n.format.DateNotation, n.now())
	if err != nil {
		res.Err = err
		return res
	}

	res.Transaction = model.Transaction{
		ID:                  n.newID(),
		Date:                date,
		Description:         fields.SanitizeDescription(descRaw),
		OriginalDescription: descRaw,
		Amount:              amount,
	}
	return res
}

// NormalizeRows converts rows numbered from firstLine, returning the
// transactions and the failed rows.
func (n *Normalizer) NormalizeRows(rows []Row, firstLine int) ([]model.Transaction, []RowResult) {
	var txns []model.Transaction
	var failed []RowResult
	for i, row := range rows {
		res := n.NormalizeRow(firstLine+i, row)
		if !res.OK() {
			failed = append(failed, res)
			continue
		}
		txns = append(txns, res.Transaction)
	}
	return txns, failed
}

func (n *Normalizer) amount(row Row) (decimal.Decimal, error) {
	if n.format.SplitAmount() {
		return splitAmount(row[n.format.WithdrawalColumn], row[n.format.DepositColumn])
	}

	if raw := lookup(row, n.format.AmountColumn, []string{"Amount"}); raw != "" {
		return fields.ParseAmount(raw)
	}
	debit, credit := lookup(row, "", []string{"Debit"}), lookup(row, "", []string{"Credit"})
	if debit != "" || credit != "" {
		return splitAmount(debit, credit)
	}
	return decimal.Zero, fmt.Errorf("%w: amount", ErrMissingField)
}

// splitAmount reads a withdrawal/deposit pair: withdrawals are outflows,
// deposits inflows. A zero withdrawal defers to a non-empty deposit.
func splitAmount(withdrawal, deposit string) (decimal.Decimal, error) {
	withdrawal, deposit = strings.TrimSpace(withdrawal), strings.TrimSpace(deposit)
	if withdrawal == "" && deposit == "" {
		return decimal.Zero, ErrNoAmount
	}

	if withdrawal != "" {
		w, err := fields.ParseAmount(withdrawal)
		if err != nil {
			return decimal.Zero, fmt.Errorf("withdrawal: %w", err)
		}
		if !w.IsZero() || deposit == "" {
			return w.Abs().Neg(), nil
		}
	}

	d, err := fields.ParseAmount(deposit)
	if err != nil {
		return decimal.Zero, fmt.Errorf("deposit: %w", err)
	}
	return d.Abs(), nil
}

// lookup returns the primary column's value, else the first non-empty value
// among fallback labels matched by normalized header.
func lookup(row Row, primary string, fallbacks []string) string {
	if primary != "" {
		if v := strings.TrimSpace(row[primary]); v != "" {
			return v
		}
	}
	for _, fb := range fallbacks {
		want := normalizeHeader(fb)
		for label, v := range row {
			if normalizeHeader(label) == want {
				if v = strings.TrimSpace(v); v != "" {
					return v
				}
			}
		}
	}
	return ""
}
