// Package stats summarizes how far categorization got for a set of
// transactions.
package stats

import (
	"github.com/cleared-dev/intake/internal/config"
	"github.com/cleared-dev/intake/internal/fields"
	"github.com/cleared-dev/intake/internal/model"
)

// Thresholds are the confidence cut-offs used when counting.
type Thresholds struct {
	// AutoConfirm is the confidence at or above which a categorized
	// transaction counts as high confidence.
	AutoConfirm float64
	// ReviewFlag is the confidence below which a transaction needs review.
	ReviewFlag float64
}

// ThresholdsFromConfig converts the thresholds section of the config.
func ThresholdsFromConfig(cfg config.ThresholdsConfig) Thresholds {
	return Thresholds{AutoConfirm: cfg.AutoConfirm, ReviewFlag: cfg.ReviewFlag}
}

// DefaultThresholds mirrors config.Default().
func DefaultThresholds() Thresholds {
	return ThresholdsFromConfig(config.Default().Thresholds)
}

// Stats counts categorization outcomes. Percentages are of Total, rounded.
type Stats struct {
	Total          int `json:"total"`
	Categorized    int `json:"categorized"`
	HighConfidence int `json:"highConfidence"`
	NeedsReview    int `json:"needsReview"`

	CategorizedPercent    int `json:"categorizedPercent"`
	HighConfidencePercent int `json:"highConfidencePercent"`
	NeedsReviewPercent    int `json:"needsReviewPercent"`
}

// Calculate counts txns against th. A transaction needs review when it is
// uncategorized or its confidence is below th.ReviewFlag.
func Calculate(txns []model.Transaction, th Thresholds) Stats {
	s := Stats{Total: len(txns)}
	for _, t := range txns {
		categorized := t.IsCategorized()
		if categorized {
			s.Categorized++
			if t.Confidence >= th.AutoConfirm {
				s.HighConfidence++
			}
		}
		if !categorized || t.Confidence < th.ReviewFlag {
			s.NeedsReview++
		}
	}

	s.CategorizedPercent = fields.Percent(s.Categorized, s.Total)
	s.HighConfidencePercent = fields.Percent(s.HighConfidence, s.Total)
	s.NeedsReviewPercent = fields.Percent(s.NeedsReview, s.Total)
	return s
}
