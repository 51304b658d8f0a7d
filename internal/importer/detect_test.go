package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/intake/internal/model"
)

func TestDetect_EveryRegisteredFormat(t *testing.T) {
	reg := DefaultRegistry()
	d := NewDetector(reg)
	for _, f := range reg.All() {
		t.Run(string(f.Name), func(t *testing.T) {
			det := d.Detect(f.Headers, nil, "statement.csv")
			require.True(t, det.Detected())
			assert.Equal(t, f.Name, det.Format.Name)
			assert.Equal(t, StrategyExact, det.Strategy)
			assert.False(t, det.Headerless)
		})
	}
}

func TestDetect_ExactIsCaseAndSpacingInsensitive(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect([]string{" date ", "DESCRIPTION", "withdrawals", "Deposits", "balance"}, nil, "")
	assert.Equal(t, model.BankFormat("TD"), det.Format.Name)
	assert.Equal(t, "withdrawals", det.Format.WithdrawalColumn)
	assert.Equal(t, "Deposits", det.Format.DepositColumn)
}

func TestDetect_ContentPattern(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect(
		[]string{"Date", "Details", "Amount", "Account"},
		[][]string{{"05/03/2024", "Transfer fee", "-1.00", "ANZ Everyday 01-0242"}},
		"statement.csv",
	)
	assert.Equal(t, model.BankFormat("ANZ"), det.Format.Name)
	assert.Equal(t, StrategyContent, det.Strategy)
	assert.Equal(t, "Details", det.Format.DescriptionColumn)
}

func TestDetect_ContentPatternIgnoresDescriptions(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect(
		[]string{"Date", "Details", "Amount"},
		[][]string{{"01/02/2024", "ANZ ATM WITHDRAWAL", "-20.00"}},
		"statement.csv",
	)
	assert.Equal(t, model.FormatGeneric, det.Format.Name)
	assert.Equal(t, StrategyGeneric, det.Strategy)
}

func TestDetect_ContentPatternRejectsWrongDateNotation(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect(
		[]string{"Date", "Details", "Amount"},
		[][]string{{"01/15/2024", "Countdown Ponsonby", "-54.20"}},
		"anz-march.csv",
	)
	assert.Equal(t, model.FormatGeneric, det.Format.Name)
	assert.Equal(t, StrategyGeneric, det.Strategy)
}

func TestDetect_ContentPatternFromFileName(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect(
		[]string{"Date", "Details", "Amount"},
		[][]string{{"05/03/2024", "Countdown Ponsonby", "-54.20"}},
		"anz-march.csv",
	)
	assert.Equal(t, model.BankFormat("ANZ"), det.Format.Name)
	assert.Equal(t, StrategyContent, det.Strategy)
}

func TestDetect_FuzzyColumns(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	headers := []string{"Transaction Date", "Posting Date", "Card Number", "Description", "Category", "Debit", "Credit"}
	det := d.Detect(headers, [][]string{{"2024-01-15", "2024-01-16", "1234", "COFFEE SHOP", "Dining", "5.50", ""}}, "")

	assert.Equal(t, model.BankFormat("CapitalOne"), det.Format.Name)
	assert.Equal(t, StrategyFuzzy, det.Strategy)
	assert.Equal(t, "Transaction Date", det.Format.DateColumn)
	assert.Equal(t, "Debit", det.Format.WithdrawalColumn)
	assert.Equal(t, "Credit", det.Format.DepositColumn)
}

func TestDetect_FuzzyRejectsWrongDateNotation(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	headers := []string{"Transaction Date", "Posting Date", "Card Number", "Description", "Category", "Debit", "Credit"}
	det := d.Detect(headers, [][]string{{"01/15/2024", "01/16/2024", "1234", "COFFEE SHOP", "Dining", "5.50", ""}}, "")

	assert.Equal(t, model.FormatGeneric, det.Format.Name)
	assert.Equal(t, StrategyGeneric, det.Strategy)
	assert.True(t, det.Format.SplitAmount())
}

func TestDetect_Generic(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect([]string{"Date", "Description", "Amount"}, [][]string{{"2024-01-15", "Coffee Shop Purchase", "-5.50"}}, "statement.csv")

	assert.Equal(t, model.FormatGeneric, det.Format.Name)
	assert.Equal(t, StrategyGeneric, det.Strategy)
	assert.Equal(t, "Date", det.Format.DateColumn)
	assert.Equal(t, "Description", det.Format.DescriptionColumn)
	assert.Equal(t, "Amount", det.Format.AmountColumn)
}

func TestDetect_GenericAbbreviatedHeaders(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect([]string{"Txn Dt", "Descr", "Amt"}, nil, "")

	assert.Equal(t, model.FormatGeneric, det.Format.Name)
	assert.Equal(t, "Txn Dt", det.Format.DateColumn)
	assert.Equal(t, "Descr", det.Format.DescriptionColumn)
	assert.Equal(t, "Amt", det.Format.AmountColumn)
}

func TestDetect_GenericSplitAmounts(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect([]string{"Date", "Description", "Debit", "Credit"}, nil, "")

	assert.Equal(t, model.FormatGeneric, det.Format.Name)
	assert.Empty(t, det.Format.AmountColumn)
	assert.Equal(t, "Debit", det.Format.WithdrawalColumn)
	assert.Equal(t, "Credit", det.Format.DepositColumn)
}

func TestDetect_Headerless(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect(
		[]string{"2024-01-15", "COFFEE SHOP", "-5.50"},
		[][]string{{"2024-01-15", "COFFEE SHOP", "-5.50"}},
		"",
	)

	require.True(t, det.Detected())
	assert.True(t, det.Headerless)
	assert.Equal(t, StrategyInferred, det.Strategy)
	assert.Equal(t, model.FormatGeneric, det.Format.Name)
	assert.Equal(t, []string{"Column 1", "Column 2", "Column 3"}, det.Labels)
	assert.Equal(t, "Column 1", det.Format.DateColumn)
	assert.Equal(t, "Column 2", det.Format.DescriptionColumn)
	assert.Equal(t, "Column 3", det.Format.AmountColumn)
}

func TestDetect_HeaderlessPicksLongestText(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect([]string{"01/15/2024", "-5.50", "*", "", "COFFEE SHOP 42"}, nil, "")

	require.True(t, det.Headerless)
	assert.Equal(t, "Column 2", det.Format.AmountColumn)
	assert.Equal(t, "Column 5", det.Format.DescriptionColumn)
}

func TestDetect_HeaderlessWholeAmounts(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect([]string{"2024-01-15", "RENT PAYMENT", "1500"}, nil, "")

	require.True(t, det.Detected())
	assert.True(t, det.Headerless)
	assert.Equal(t, "Column 2", det.Format.DescriptionColumn)
	assert.Equal(t, "Column 3", det.Format.AmountColumn)
}

func TestDetect_HeaderlessPrefersDecimalAmount(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect([]string{"2024-01-15", "4021", "RENT PAYMENT", "-1500.00"}, nil, "")

	require.True(t, det.Detected())
	assert.Equal(t, "Column 4", det.Format.AmountColumn)
}

func TestDetect_UnknownDataRowMessage(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect([]string{"2024-01-15", "1500", "-5.50"}, nil, "")

	require.False(t, det.Detected())
	msg := det.Message()
	assert.Contains(t, msg, "First row looks like data")
	assert.NotContains(t, msg, "Found headers")
}

func TestDetect_InferredInternetBanking(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect(
		[]string{"Col1", "Col2", "Col3"},
		[][]string{{"15/01/2024", "Internet banking transfer to savings", "-100.00"}},
		"",
	)

	require.True(t, det.Detected())
	assert.False(t, det.Headerless)
	assert.Equal(t, StrategyInferred, det.Strategy)
	assert.Equal(t, model.FormatInternetBanking, det.Format.Name)
	assert.Equal(t, "Col2", det.Format.DescriptionColumn)
}

func TestDetect_Unknown(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect([]string{"Col1", "Col2", "Col3"}, [][]string{{"foo", "bar", "baz"}}, "")

	assert.False(t, det.Detected())
	assert.Equal(t, model.FormatUnknown, det.Format.Name)
	assert.Equal(t, []FieldType{FieldDate, FieldDescription, FieldAmount}, det.Missing)

	msg := det.Message()
	assert.Contains(t, msg, "date")
	assert.Contains(t, msg, "description")
	assert.Contains(t, msg, "amount")
	assert.Contains(t, msg, "Col1, Col2, Col3")
}

func TestDetect_UnknownReportsMissingRolesOnly(t *testing.T) {
	d := NewDetector(DefaultRegistry())
	det := d.Detect([]string{"Date", "Amount", "Col3"}, [][]string{{"x", "y", "z"}}, "")

	assert.False(t, det.Detected())
	assert.Equal(t, []FieldType{FieldDescription}, det.Missing)
}

func TestDetection_ZeroValueNotDetected(t *testing.T) {
	assert.False(t, Detection{}.Detected())
}

func TestUniqueLabels(t *testing.T) {
	got := uniqueLabels([]string{"Date", "", "Amount", "Amount", " Date "})
	assert.Equal(t, []string{"Date", "Column 2", "Amount", "Amount (2)", "Date (2)"}, got)
}
