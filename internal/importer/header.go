package importer

import (
	"strings"

	"github.com/cleared-dev/intake/internal/fields"
)

// FieldType is the semantic role of a CSV column.
type FieldType string

const (
	FieldUnknown     FieldType = "unknown"
	FieldDate        FieldType = "date"
	FieldDescription FieldType = "description"
	FieldAmount      FieldType = "amount"
	FieldBalance     FieldType = "balance"
	FieldReference   FieldType = "reference"
	FieldCategory    FieldType = "category"
)

// AcceptThreshold is the confidence a classification must exceed to be used.
const AcceptThreshold = 0.5

const (
	scoreExact    = 1.0
	scoreContains = 0.7
)

// fieldPatterns lists known header labels per field type. Declaration order
// breaks ties between equally scored types.
var fieldPatterns = []struct {
	field    FieldType
	patterns []string
}{
	{FieldDate, []string{
		"Date", "Transaction Date", "Posting Date", "Posted Date", "Post Date",
		"Value Date", "Effective Date", "Processed Date", "Booking Date",
	}},
	{FieldDescription, []string{
		"Description", "Transaction Details", "Details", "Memo", "Narrative",
		"Payee", "Merchant", "Particulars", "Name",
	}},
	{FieldAmount, []string{
		"Amount", "Transaction Amount", "Value", "Debit", "Credit",
		"Withdrawal", "Withdrawals", "Deposit", "Deposits", "Money In", "Money Out",
	}},
	{FieldBalance, []string{
		"Balance", "Running Balance", "Account Balance", "Closing Balance", "Available Balance",
	}},
	{FieldReference, []string{
		"Reference", "Transaction ID", "Check Number", "Cheque Number", "Code", "ID",
	}},
	{FieldCategory, []string{
		"Category", "Type", "Transaction Type", "Class",
	}},
}

// normalizedPatterns holds fieldPatterns run through normalizeHeader, same shape.
var normalizedPatterns = func() [][]string {
	out := make([][]string, len(fieldPatterns))
	for i, fp := range fieldPatterns {
		for _, p := range fp.patterns {
			out[i] = append(out[i], normalizeHeader(p))
		}
	}
	return out
}()

var misspellings = map[string]string{
	"ammount":     "amount",
	"amout":       "amount",
	"amonut":      "amount",
	"descripton":  "description",
	"discription": "description",
	"desciption":  "description",
	"balence":     "balance",
	"ballance":    "balance",
	"catagory":    "category",
	"refrence":    "reference",
	"referance":   "reference",
	"tranaction":  "transaction",
	"transation":  "transaction",
	"transcation": "transaction",
}

var abbreviations = map[string]string{
	"txn":   "transaction",
	"trans": "transaction",
	"tran":  "transaction",
	"desc":  "description",
	"descr": "description",
	"amt":   "amount",
	"bal":   "balance",
	"ref":   "reference",
	"dt":    "date",
	"no":    "number",
	"num":   "number",
	"cat":   "category",
	"chq":   "cheque",
}

// Classification is the result of interpreting one header label.
type Classification struct {
	Header       string    `json:"header"`
	Normalized   string    `json:"normalized"`
	Field        FieldType `json:"field"`
	Confidence   float64   `json:"confidence"`
	Alternatives []string  `json:"alternatives,omitempty"`
}

// Accepted reports whether the classification is confident enough to use.
func (c Classification) Accepted() bool {
	return c.Field != FieldUnknown && c.Confidence > AcceptThreshold
}

// ClassifyHeader maps a raw header label to its most likely field type.
func ClassifyHeader(label string) Classification {
	norm := normalizeHeader(label)
	c := Classification{Header: label, Normalized: norm, Field: FieldUnknown}
	if norm == "" {
		return c
	}

	bestType, bestPattern := -1, -1
	for i, patterns := range normalizedPatterns {
		for j, p := range patterns {
			if s := similarity(norm, p); s > c.Confidence {
				c.Confidence = s
				bestType, bestPattern = i, j
			}
		}
	}
	if bestType < 0 {
		return c
	}

	c.Field = fieldPatterns[bestType].field
	for j, p := range fieldPatterns[bestType].patterns {
		if j != bestPattern {
			c.Alternatives = append(c.Alternatives, p)
		}
	}
	return c
}

// ClassifyHeaders classifies each label in order.
func ClassifyHeaders(labels []string) []Classification {
	out := make([]Classification, len(labels))
	for i, l := range labels {
		out[i] = ClassifyHeader(l)
	}
	return out
}

// normalizeHeader lowercases, strips symbols, and rewrites known misspellings
// and abbreviations word by word.
func normalizeHeader(label string) string {
	label = strings.ReplaceAll(label, "#", " number ")
	words := strings.Fields(fields.NormalizeKey(label))
	for i, w := range words {
		if fixed, ok := misspellings[w]; ok {
			w = fixed
		}
		if full, ok := abbreviations[w]; ok {
			w = full
		}
		words[i] = w
	}
	return strings.Join(words, " ")
}

// similarity scores two normalized labels in [0, 1]: exact match, containment,
// or the share of characters they have in common relative to the longer one.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return scoreExact
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return scoreContains
	}

	counts := make(map[rune]int)
	for _, r := range a {
		counts[r]++
	}
	shared := 0
	for _, r := range b {
		if counts[r] > 0 {
			counts[r]--
			shared++
		}
	}

	longer := len([]rune(a))
	if n := len([]rune(b)); n > longer {
		longer = n
	}
	return float64(shared) / float64(longer)
}
