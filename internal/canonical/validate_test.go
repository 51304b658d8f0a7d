package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/intake/internal/accounts"
	"github.com/cleared-dev/intake/internal/model"
)

func TestValidate_Clean(t *testing.T) {
	errs := Validate(testTxns(), accounts.NewService(accounts.DefaultChart()))
	assert.Empty(t, errs)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func([]model.Transaction)
		errMsg string
	}{
		{"duplicate id", func(txns []model.Transaction) { txns[1].ID = txns[0].ID }, "duplicate id"},
		{"invalid date", func(txns []model.Transaction) { txns[0].Date = date(2024, 2, 30) }, "invalid date"},
		{"too large", func(txns []model.Transaction) { txns[0].Amount = dec("10000000.01") }, "exceeds"},
		{"sub-cent", func(txns []model.Transaction) { txns[0].Amount = dec("-4.001") }, "more than 2 decimal places"},
		{"confidence", func(txns []model.Transaction) { txns[0].Confidence = 1.2 }, "outside [0,1]"},
		{"unknown account", func(txns []model.Transaction) { txns[0].AccountCode = "8888" }, "unknown account 8888"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txns := testTxns()
			tt.modify(txns)
			errs := Validate(txns, accounts.NewService(accounts.DefaultChart()))
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Error(), tt.errMsg)
		})
	}
}

func TestValidate_NilChartSkipsAccounts(t *testing.T) {
	txns := testTxns()
	txns[0].AccountCode = "8888"
	assert.Empty(t, Validate(txns, nil))
}
