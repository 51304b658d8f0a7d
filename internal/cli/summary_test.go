package cli

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/intake/internal/importer"
	"github.com/cleared-dev/intake/internal/model"
	"github.com/cleared-dev/intake/internal/stats"
)

func testResult() *importer.Result {
	return &importer.Result{
		FileName:     "chase_checking.csv",
		Format:       "Chase",
		Strategy:     importer.StrategyExact,
		Transactions: make([]model.Transaction, 6),
		Validation:   model.NewValidationResult(),
		RowsRead:     7,
		RowsSkipped:  1,
	}
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(FileSummary{
		Result:     testResult(),
		Duplicates: 2,
		Stats:      &stats.Stats{Total: 6, Categorized: 3, CategorizedPercent: 50},
	})

	assert.Contains(t, out, "chase_checking.csv")
	assert.Contains(t, out, "Chase")
	assert.Contains(t, out, "exact")
	assert.Contains(t, out, "7 read, 1 skipped")
	assert.Contains(t, out, "3 (50%)")
	assert.Contains(t, out, SuccessIcon)
}

func TestRenderSummary_NoStats(t *testing.T) {
	out := RenderSummary(FileSummary{Result: testResult()})
	assert.NotContains(t, out, "Categorized")
}

func TestRenderSummary_Rejected(t *testing.T) {
	res := testResult()
	res.Format, res.Strategy = model.FormatUnknown, importer.StrategyNone
	res.Validation.AddError("Could not detect bank format: missing date column(s)")

	out := RenderSummary(FileSummary{Result: res})
	assert.Contains(t, out, ErrorIcon)
	assert.Contains(t, out, "missing date column(s)")
	assert.NotContains(t, out, "none")
}

func TestRenderSummary_CapsWarnings(t *testing.T) {
	res := testResult()
	for i := 0; i < maxWarnings+3; i++ {
		res.Validation.AddWarning("Row %d: bad amount", i+2)
	}

	out := RenderSummary(FileSummary{Result: res})
	assert.Contains(t, out, "Row 2: bad amount")
	assert.NotContains(t, out, fmt.Sprintf("Row %d: bad amount", maxWarnings+3))
	assert.Contains(t, out, "and 3 more warning(s)")
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	bar := NewProgress(&buf, 3, "Categorizing")
	progress := ProgressFunc(bar)
	for i := 1; i <= 3; i++ {
		progress(i, 3)
	}
	require.True(t, bar.IsFinished())
	assert.True(t, strings.Contains(buf.String(), "Categorizing"))
}

func TestLazyProgress(t *testing.T) {
	var buf bytes.Buffer
	progress := LazyProgress(&buf, "Categorizing")
	assert.Empty(t, buf.String())

	progress(1, 2)
	progress(2, 2)
	assert.Contains(t, buf.String(), "2/2")
}
