package commands_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/intake/internal/canonical"
	"github.com/cleared-dev/intake/internal/model"
)

func writeCanonicalFile(t *testing.T, txns []model.Transaction) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, canonical.WriteTransactions(f, txns))
	return path
}

func txn(id, desc, amount string) model.Transaction {
	return model.Transaction{
		ID:                  id,
		Date:                civil.Date{Year: 2024, Month: 1, Day: 15},
		Description:         desc,
		OriginalDescription: desc,
		Amount:              decimal.RequireFromString(amount),
	}
}

func TestDedupe(t *testing.T) {
	path := writeCanonicalFile(t, []model.Transaction{
		txn("txn_1", "Coffee Shop", "-5.50"),
		txn("txn_2", "COFFEE SHOP", "-5.50"),
		txn("txn_3", "Bookstore", "-12.00"),
	})
	outPath := filepath.Join(t.TempDir(), "clean.csv")

	out, err := runIntake(t, "dedupe", path, "-o", outPath)
	require.NoError(t, err, out)
	assert.Contains(t, out, "Removed 1 duplicate(s), kept 2 transaction(s)")

	txns := readCanonical(t, outPath)
	require.Len(t, txns, 2)
	assert.Equal(t, "txn_1", txns[0].ID)
	assert.Equal(t, "txn_3", txns[1].ID)
}

func TestDedupe_RejectsInvalidFile(t *testing.T) {
	bad := txn("txn_1", "Coffee Shop", "-5.50")
	bad.AccountCode = "8888"
	bad.Confidence = 0.9
	path := writeCanonicalFile(t, []model.Transaction{bad, txn("txn_1", "Bookstore", "-12.00")})

	out, err := runIntake(t, "dedupe", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 validation error(s)")
	assert.Contains(t, out, "8888")
}

func TestDedupe_MissingFile(t *testing.T) {
	_, err := runIntake(t, "dedupe", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
}

func TestFormats(t *testing.T) {
	out, err := runIntake(t, "formats")
	require.NoError(t, err)
	for _, name := range []string{"Chase", "TD", "ANZ"} {
		assert.Contains(t, out, name)
	}
	assert.Contains(t, out, "Withdrawals / Deposits")
}

func TestFormatsClassify(t *testing.T) {
	out, err := runIntake(t, "formats", "classify", "--json", "--log-level", "error", "Posting Date", "Narrative", "Zzz")
	require.NoError(t, err, out)

	var results []struct {
		Header string  `json:"header"`
		Field  string  `json:"field"`
		Score  float64 `json:"confidence"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &results), out)
	require.Len(t, results, 3)
	assert.Equal(t, "date", results[0].Field)
	assert.Equal(t, 1.0, results[0].Score)
	assert.Equal(t, "unknown", results[2].Field)
}

func TestFormatsClassify_Text(t *testing.T) {
	out, err := runIntake(t, "formats", "classify", "Transaction Date")
	require.NoError(t, err)
	assert.Contains(t, out, "Transaction Date")
	assert.Contains(t, out, "date 1.00")
}
