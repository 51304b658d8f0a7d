package model

import (
	"encoding/json"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionIsCategorized(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{"", false},
		{PlaceholderAccountCode, false},
		{"6100", true},
	}
	for _, tt := range tests {
		txn := Transaction{AccountCode: tt.code}
		assert.Equal(t, tt.want, txn.IsCategorized(), "IsCategorized(%q)", tt.code)
	}
}

func TestTransactionJSON(t *testing.T) {
	txn := Transaction{
		ID:                  "txn_1",
		Date:                civil.Date{Year: 2024, Month: 1, Day: 15},
		Description:         "Coffee Shop",
		OriginalDescription: "  Coffee   Shop!! ",
		Amount:              decimal.RequireFromString("-5.50"),
	}

	data, err := json.Marshal(txn)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, "2024-01-15", raw["date"])
	assert.Equal(t, "-5.5", raw["amount"])
	assert.Equal(t, "  Coffee   Shop!! ", raw["originalDescription"])
	assert.NotContains(t, raw, "accountCode")
}

func TestValidationResult(t *testing.T) {
	v := NewValidationResult()
	assert.True(t, v.IsValid)
	assert.NotNil(t, v.Errors)

	v.AddWarning("row %d: skipped", 3)
	assert.True(t, v.IsValid)
	assert.Equal(t, "row 3: skipped", v.Summary())

	v.AddError("no transactions")
	assert.False(t, v.IsValid)
	assert.Equal(t, []string{"no transactions"}, v.Errors)
	assert.Equal(t, "no transactions", v.Summary())
}
