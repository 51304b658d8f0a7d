package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cleared-dev/intake/internal/model"
)

func categorized(code string, conf float64) model.Transaction {
	return model.Transaction{AccountCode: code, Confidence: conf}
}

func TestCalculate(t *testing.T) {
	txns := []model.Transaction{
		categorized("5100", 0.98),                       // high confidence
		categorized("5200", 0.95),                       // high confidence, boundary
		categorized("5300", 0.80),                       // categorized, no review
		categorized("5400", 0.50),                       // categorized, needs review
		categorized(model.PlaceholderAccountCode, 0.99), // placeholder: needs review
		{},                                              // uncategorized
	}

	s := Calculate(txns, DefaultThresholds())
	assert.Equal(t, Stats{
		Total:                 6,
		Categorized:           4,
		HighConfidence:        2,
		NeedsReview:           3,
		CategorizedPercent:    67,
		HighConfidencePercent: 33,
		NeedsReviewPercent:    50,
	}, s)
}

func TestCalculate_Empty(t *testing.T) {
	assert.Equal(t, Stats{}, Calculate(nil, DefaultThresholds()))
}

func TestCalculate_CustomThresholds(t *testing.T) {
	txns := []model.Transaction{categorized("5100", 0.85), categorized("5100", 0.60)}

	s := Calculate(txns, Thresholds{AutoConfirm: 0.8, ReviewFlag: 0.5})
	assert.Equal(t, 1, s.HighConfidence)
	assert.Equal(t, 0, s.NeedsReview)
	assert.Equal(t, 100, s.CategorizedPercent)
}

func TestDefaultThresholds(t *testing.T) {
	th := DefaultThresholds()
	assert.Equal(t, 0.95, th.AutoConfirm)
	assert.Equal(t, 0.70, th.ReviewFlag)
}
