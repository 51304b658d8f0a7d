// Package dedupe collapses exact duplicate transactions.
//
// Two transactions are duplicates when they share a date, an amount rounded
// to cents, and a description that is equal after case and punctuation are
// folded away.
package dedupe

import (
	"strings"

	"github.com/cleared-dev/intake/internal/fields"
	"github.com/cleared-dev/intake/internal/model"
)

// Group is a transaction and the later copies of it.
type Group struct {
	OriginalIndex    int               `json:"originalIndex"`
	DuplicateIndexes []int             `json:"duplicateIndexes"`
	Transaction      model.Transaction `json:"transaction"`
	Confidence       float64           `json:"confidence"`
}

// Result is the outcome of one Detect call.
type Result struct {
	Groups         []Group             `json:"groups"`
	Clean          []model.Transaction `json:"clean"`
	DuplicateCount int                 `json:"duplicateCount"`
}

// Key returns the identity used to match duplicates.
func Key(t model.Transaction) string {
	desc := fields.NormalizeKey(t.Description)
	if desc == "" {
		desc = fields.NormalizeKey(t.OriginalDescription)
	}
	return strings.Join([]string{
		t.Date.String(),
		t.Amount.Round(2).StringFixed(2),
		desc,
	}, "|")
}

// Detect scans txns in order. The first occurrence of each key survives into
// Clean; later ones are counted as duplicates. Only keys seen more than once
// produce a Group.
func Detect(txns []model.Transaction) Result {
	res := Result{Groups: []Group{}, Clean: make([]model.Transaction, 0, len(txns))}

	first := make(map[string]int, len(txns))
	group := make(map[string]int)

	for i, t := range txns {
		k := Key(t)
		orig, seen := first[k]
		if !seen {
			first[k] = i
			res.Clean = append(res.Clean, t)
			continue
		}

		res.DuplicateCount++
		gi, ok := group[k]
		if !ok {
			gi = len(res.Groups)
			group[k] = gi
			res.Groups = append(res.Groups, Group{
				OriginalIndex: orig,
				Transaction:   txns[orig],
				Confidence:    1.0,
			})
		}
		res.Groups[gi].DuplicateIndexes = append(res.Groups[gi].DuplicateIndexes, i)
	}
	return res
}
