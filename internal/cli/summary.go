package cli

import (
	"fmt"
	"strings"

	"github.com/cleared-dev/intake/internal/importer"
	"github.com/cleared-dev/intake/internal/stats"
)

// maxWarnings caps the warnings listed under one file summary.
const maxWarnings = 10

// FileSummary is everything shown for one ingested file.
type FileSummary struct {
	Result     *importer.Result
	Duplicates int
	// Stats is nil when categorization was skipped.
	Stats *stats.Stats
}

// RenderSummary renders one file's outcome as a boxed block followed by its
// errors and warnings.
func RenderSummary(s FileSummary) string {
	res := s.Result

	var body strings.Builder
	format := string(res.Format)
	if res.Strategy != importer.StrategyNone {
		format += SubtleStyle.Render(fmt.Sprintf(" (%s", res.Strategy))
		if res.Headerless {
			format += SubtleStyle.Render(", headerless")
		}
		format += SubtleStyle.Render(")")
	}
	line(&body, "Format", format)
	line(&body, "Rows", fmt.Sprintf("%d read, %d skipped", res.RowsRead, res.RowsSkipped))
	line(&body, "Transactions", fmt.Sprintf("%d", len(res.Transactions)))
	line(&body, "Duplicates", fmt.Sprintf("%d", s.Duplicates))
	if st := s.Stats; st != nil {
		line(&body, "Categorized", fmt.Sprintf("%d (%d%%)", st.Categorized, st.CategorizedPercent))
		line(&body, "High confidence", fmt.Sprintf("%d (%d%%)", st.HighConfidence, st.HighConfidencePercent))
		line(&body, "Needs review", fmt.Sprintf("%d (%d%%)", st.NeedsReview, st.NeedsReviewPercent))
	}

	title := FormatSuccess(res.FileName)
	switch {
	case !res.Validation.IsValid:
		title = FormatError(res.FileName)
	case len(res.Validation.Warnings) > 0:
		title = FormatWarning(res.FileName)
	}

	var out strings.Builder
	out.WriteString(RenderBox(title, strings.TrimRight(body.String(), "\n")))
	out.WriteString("\n")
	for _, e := range res.Validation.Errors {
		out.WriteString(FormatError(e) + "\n")
	}
	for i, w := range res.Validation.Warnings {
		if i == maxWarnings {
			out.WriteString(SubtleStyle.Render(fmt.Sprintf("  ... and %d more warning(s)", len(res.Validation.Warnings)-maxWarnings)) + "\n")
			break
		}
		out.WriteString(FormatWarning(w) + "\n")
	}
	return out.String()
}

func line(b *strings.Builder, label, value string) {
	b.WriteString(LabelStyle.Render(label) + value + "\n")
}
