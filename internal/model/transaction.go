package model

import (
	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
)

// PlaceholderAccountCode is assigned when categorization fails or is skipped.
const PlaceholderAccountCode = "9999"

// Transaction is one normalized bank statement line.
type Transaction struct {
	ID                  string          `json:"id"`
	Date                civil.Date      `json:"date"`
	Description         string          `json:"description"`
	OriginalDescription string          `json:"originalDescription"`
	Amount              decimal.Decimal `json:"amount"` // negative = outflow, positive = inflow

	// Categorization fields, owned by the categorizer and the review flow.
	Confidence       float64 `json:"confidence"`
	AccountCode      string  `json:"accountCode,omitempty"`
	Category         string  `json:"category,omitempty"`
	Merchant         string  `json:"merchant,omitempty"`
	IsApproved       bool    `json:"isApproved"`
	IsManuallyEdited bool    `json:"isManuallyEdited"`
	AICategorized    bool    `json:"aiCategorized"`
}

// IsCategorized reports whether the transaction carries a real account code.
func (t Transaction) IsCategorized() bool {
	return t.AccountCode != "" && t.AccountCode != PlaceholderAccountCode
}
