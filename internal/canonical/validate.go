package canonical

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/intake/internal/fields"
	"github.com/cleared-dev/intake/internal/model"
)

// ValidationError describes a single problem with one transaction.
type ValidationError struct {
	ID          string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s]: %s", e.ID, e.Description)
}

// AccountChecker tests whether an account code exists in the chart of accounts.
type AccountChecker interface {
	Exists(code string) bool
}

var (
	hundred   = decimal.NewFromInt(100)
	maxAmount = decimal.NewFromInt(fields.MaxAmount)
)

// Validate checks a canonical file's transactions: unique IDs, real dates,
// amounts within range and to at most two decimal places, and account codes
// known to accounts. A nil accounts skips the account check.
func Validate(txns []model.Transaction, accounts AccountChecker) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool, len(txns))

	for _, t := range txns {
		if seen[t.ID] {
			errs = append(errs, ValidationError{ID: t.ID, Description: "duplicate id"})
		}
		seen[t.ID] = true

		if !t.Date.IsValid() {
			errs = append(errs, ValidationError{ID: t.ID, Description: fmt.Sprintf("invalid date %s", t.Date)})
		}
		if t.Amount.Abs().GreaterThan(maxAmount) {
			errs = append(errs, ValidationError{ID: t.ID, Description: fmt.Sprintf("amount %s exceeds %d", t.Amount, fields.MaxAmount)})
		}
		if cents := t.Amount.Mul(hundred); !cents.Equal(cents.Truncate(0)) {
			errs = append(errs, ValidationError{ID: t.ID, Description: fmt.Sprintf("amount %s has more than 2 decimal places", t.Amount)})
		}
		if t.Confidence < 0 || t.Confidence > 1 {
			errs = append(errs, ValidationError{ID: t.ID, Description: fmt.Sprintf("confidence %v outside [0,1]", t.Confidence)})
		}
		if accounts != nil && t.IsCategorized() && !accounts.Exists(t.AccountCode) {
			errs = append(errs, ValidationError{ID: t.ID, Description: fmt.Sprintf("unknown account %s", t.AccountCode)})
		}
	}
	return errs
}
