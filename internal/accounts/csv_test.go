package accounts

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/intake/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{Code: "1010", Name: "Business Checking", Type: model.AccountTypeAsset, Description: "Primary checking account"},
		{Code: "5020", Name: "Software & SaaS", Type: model.AccountTypeExpense},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "account_code,account_name,account_type,description\n"))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, accounts, got)
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestUnmarshalAccount_Errors(t *testing.T) {
	tests := []struct {
		name   string
		record []string
		errMsg string
	}{
		{"short row", []string{"1010", "Checking"}, "expected 4 fields"},
		{"no code", []string{" ", "Checking", "asset", ""}, "account_code is required"},
		{"placeholder", []string{model.PlaceholderAccountCode, "Suspense", "asset", ""}, "reserved"},
		{"bad type", []string{"1010", "Checking", "cash", ""}, "unknown account_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalAccount(tt.record)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart()
	require.NotEmpty(t, chart)

	codes := make(map[string]bool)
	for _, acct := range chart {
		assert.False(t, codes[acct.Code], "duplicate code %s", acct.Code)
		codes[acct.Code] = true
		assert.NotEmpty(t, acct.Name, "account %s missing name", acct.Code)
		assert.NotEmpty(t, acct.Type, "account %s missing type", acct.Code)
		assert.NotEqual(t, model.PlaceholderAccountCode, acct.Code)
	}
	assert.True(t, codes["1010"], "expected Business Checking (1010)")
	assert.True(t, codes["5020"], "expected Software & SaaS (5020)")
}
