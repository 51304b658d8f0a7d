// Package canonical reads and writes the pipeline's own transaction CSV, the
// hand-off between ingestion, deduplication and review.
package canonical

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/intake/internal/model"
)

// Header is the CSV header for canonical transaction files.
const Header = "id,date,description,original_description,amount,account_code,category,merchant,confidence,approved,manually_edited,ai_categorized"

const (
	numFields      = 12
	colID          = 0
	colDate        = 1
	colDesc        = 2
	colOrigDesc    = 3
	colAmount      = 4
	colAccountCode = 5
	colCategory    = 6
	colMerchant    = 7
	colConfidence  = 8
	colApproved    = 9
	colEdited      = 10
	colAI          = 11
)

// ReadTransactions reads all transactions from a canonical CSV reader.
func ReadTransactions(r io.Reader) ([]model.Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading transactions CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}
	if got := strings.Join(records[0], ","); got != Header {
		return nil, fmt.Errorf("unexpected header %q", got)
	}

	var txns []model.Transaction
	for i, rec := range records[1:] {
		txn, err := UnmarshalTransaction(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}

// WriteTransactions writes transactions to w, header first.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a CSV row.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colID] = txn.ID
	row[colDate] = txn.Date.String()
	row[colDesc] = txn.Description
	row[colOrigDesc] = txn.OriginalDescription
	row[colAmount] = txn.Amount.StringFixed(2)
	row[colAccountCode] = txn.AccountCode
	row[colCategory] = txn.Category
	row[colMerchant] = txn.Merchant
	if txn.Confidence != 0 {
		row[colConfidence] = strconv.FormatFloat(txn.Confidence, 'f', -1, 64)
	}
	row[colApproved] = strconv.FormatBool(txn.IsApproved)
	row[colEdited] = strconv.FormatBool(txn.IsManuallyEdited)
	row[colAI] = strconv.FormatBool(txn.AICategorized)
	return row
}

// UnmarshalTransaction converts a CSV row to a Transaction.
func UnmarshalTransaction(record []string) (model.Transaction, error) {
	if len(record) != numFields {
		return model.Transaction{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	if record[colID] == "" {
		return model.Transaction{}, errors.New("id is required")
	}

	date, err := civil.ParseDate(record[colDate])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	var confidence float64
	if record[colConfidence] != "" {
		confidence, err = strconv.ParseFloat(record[colConfidence], 64)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("parsing confidence %q: %w", record[colConfidence], err)
		}
	}

	var flags [3]bool
	for i, col := range []int{colApproved, colEdited, colAI} {
		flags[i], err = parseBool(record[col])
		if err != nil {
			return model.Transaction{}, err
		}
	}

	return model.Transaction{
		ID:                  record[colID],
		Date:                date,
		Description:         record[colDesc],
		OriginalDescription: record[colOrigDesc],
		Amount:              amount,
		AccountCode:         record[colAccountCode],
		Category:            record[colCategory],
		Merchant:            record[colMerchant],
		Confidence:          confidence,
		IsApproved:          flags[0],
		IsManuallyEdited:    flags[1],
		AICategorized:       flags[2],
	}, nil
}

func parseBool(s string) (bool, error) {
	if s == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("parsing flag %q: %w", s, err)
	}
	return b, nil
}
