package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyHeader(t *testing.T) {
	tests := []struct {
		label string
		field FieldType
		conf  float64
	}{
		{"Date", FieldDate, 1.0},
		{"  POSTING DATE ", FieldDate, 1.0},
		{"Txn Date", FieldDate, 1.0},
		{"Trans. Dt", FieldDate, 1.0},
		{"Description", FieldDescription, 1.0},
		{"Descripton", FieldDescription, 1.0},
		{"Desc", FieldDescription, 1.0},
		{"Amount", FieldAmount, 1.0},
		{"Amt", FieldAmount, 1.0},
		{"Ammount", FieldAmount, 1.0},
		{"Withdrawals", FieldAmount, 1.0},
		{"Running Bal.", FieldBalance, 1.0},
		{"Ref", FieldReference, 1.0},
		{"Check #", FieldReference, 1.0},
		{"Catagory", FieldCategory, 1.0},
		{"Unique Id", FieldReference, 0.7},
	}
	for _, tt := range tests {
		c := ClassifyHeader(tt.label)
		assert.Equal(t, tt.field, c.Field, "ClassifyHeader(%q)", tt.label)
		assert.InDelta(t, tt.conf, c.Confidence, 0.001, "ClassifyHeader(%q)", tt.label)
		assert.True(t, c.Accepted(), "ClassifyHeader(%q) accepted", tt.label)
	}
}

func TestClassifyHeader_Unrecognized(t *testing.T) {
	for _, label := range []string{"Col1", "Col2", "Col3", ""} {
		c := ClassifyHeader(label)
		assert.False(t, c.Accepted(), "ClassifyHeader(%q) = %s %.2f", label, c.Field, c.Confidence)
		assert.LessOrEqual(t, c.Confidence, AcceptThreshold, label)
	}
}

func TestClassifyHeader_Alternatives(t *testing.T) {
	c := ClassifyHeader("Posting Date")
	assert.Equal(t, FieldDate, c.Field)
	assert.Contains(t, c.Alternatives, "Date")
	assert.Contains(t, c.Alternatives, "Transaction Date")
	assert.NotContains(t, c.Alternatives, "Posting Date")
	assert.Equal(t, "posting date", c.Normalized)
}

func TestClassifyHeaders(t *testing.T) {
	cs := ClassifyHeaders([]string{"Date", "Memo", "Amount"})
	assert.Equal(t, []FieldType{FieldDate, FieldDescription, FieldAmount}, []FieldType{cs[0].Field, cs[1].Field, cs[2].Field})
}

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Txn Amt", "transaction amount"},
		{"Check or Slip #", "check or slip number"},
		{"Card No.", "card number"},
		{"CAD$", "cad"},
		{"Memo/Description", "memo description"},
		{"  Balence  ", "balance"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeHeader(tt.in), "normalizeHeader(%q)", tt.in)
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, similarity("date", "date"), 0.001)
	assert.InDelta(t, 0.7, similarity("posting date", "date"), 0.001)
	assert.InDelta(t, 0.7, similarity("date", "posting date"), 0.001)
	assert.InDelta(t, 0.75, similarity("posted date", "posting date"), 0.001)
	assert.InDelta(t, 0.0, similarity("", "date"), 0.001)
	assert.InDelta(t, 0.0, similarity("xyz", "date"), 0.001)
}
