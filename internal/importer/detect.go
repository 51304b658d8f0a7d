package importer

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/cleared-dev/intake/internal/fields"
	"github.com/cleared-dev/intake/internal/model"
)

// Strategy names the detection step that produced a format.
type Strategy string

const (
	StrategyNone     Strategy = "none"
	StrategyExact    Strategy = "exact"
	StrategyContent  Strategy = "content"
	StrategyFuzzy    Strategy = "fuzzy"
	StrategyGeneric  Strategy = "generic"
	StrategyInferred Strategy = "inferred"
)

// fuzzyThreshold is the similarity a header must exceed to stand in for a
// format's column label.
const fuzzyThreshold = 0.7

// nearMissThreshold is the lowest confidence reported as a near miss.
const nearMissThreshold = 0.3

var requiredFields = []FieldType{FieldDate, FieldDescription, FieldAmount}

var transferPattern = regexp.MustCompile(`(?i)\b(transfer|trf|tfr|internet banking|online banking|bill payment|direct debit|automatic payment|standing order)\b`)

var (
	withdrawalLabels = map[string]bool{
		"withdrawal": true, "withdrawals": true, "withdrawal amount": true,
		"debit": true, "debits": true, "debit amount": true,
		"money out": true, "paid out": true,
	}
	depositLabels = map[string]bool{
		"deposit": true, "deposits": true, "deposit amount": true,
		"credit": true, "credits": true, "credit amount": true,
		"money in": true, "paid in": true,
	}
)

// Detection is the outcome of format detection for one file.
type Detection struct {
	// Format has its column labels resolved to entries of Labels.
	Format   FormatDescriptor
	Strategy Strategy
	// Headerless is set when the first row is data, not a header. On a failed
	// detection it means the first row read as data but no format fit.
	Headerless bool
	// Labels keys each column of every data row. Unique and non-empty.
	Labels []string

	Missing    []FieldType
	NearMisses []Classification
}

// Detected reports whether a usable format was found.
func (d Detection) Detected() bool {
	return d.Strategy != "" && d.Strategy != StrategyNone
}

// Message describes a failed detection for display to the user.
func (d Detection) Message() string {
	if d.Detected() {
		return ""
	}
	missing := make([]string, len(d.Missing))
	for i, f := range d.Missing {
		missing[i] = string(f)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Could not detect bank format: missing %s column(s)", strings.Join(missing, ", "))
	switch {
	case d.Headerless:
		fmt.Fprintf(&b, ". First row looks like data, not headers: %s", strings.Join(d.Labels, ", "))
	case len(d.Labels) > 0:
		fmt.Fprintf(&b, ". Found headers: %s", strings.Join(d.Labels, ", "))
	}
	if len(d.NearMisses) > 0 {
		hints := make([]string, len(d.NearMisses))
		for i, c := range d.NearMisses {
			hints[i] = fmt.Sprintf("%q looks like %s (%.0f%%)", c.Header, c.Field, c.Confidence*100)
		}
		fmt.Fprintf(&b, ". Possible matches: %s", strings.Join(hints, "; "))
	}
	return b.String()
}

// Detector identifies the bank format of a CSV file from its header row and
// a few sample rows.
type Detector struct {
	registry *Registry
}

// NewDetector returns a detector over the given registry.
func NewDetector(registry *Registry) *Detector {
	return &Detector{registry: registry}
}

// Detect runs the detection cascade: headerless check, exact identifier
// match, content patterns, fuzzy column match, generic header fallback, then
// structural inference from sample values.
func (d *Detector) Detect(headers []string, samples [][]string, fileName string) Detection {
	headers = trimCells(headers)

	dataRow := looksLikeDataRow(headers)
	if dataRow {
		labels := syntheticLabels(len(headers))
		rows := append([][]string{headers}, samples...)
		if f, ok := inferFormat(labels, headers, sampleText(rows)); ok {
			return Detection{Format: f, Strategy: StrategyInferred, Headerless: true, Labels: labels}
		}
	}

	idx := newHeaderIndex(headers)
	det := Detection{Labels: idx.labels}

	if f, ok := d.matchExact(idx); ok {
		det.Format, det.Strategy = f, StrategyExact
		return det
	}
	if f, ok := d.matchContent(idx, samples, fileName); ok {
		det.Format, det.Strategy = f, StrategyContent
		return det
	}
	if f, ok := d.matchFuzzy(idx, samples); ok {
		det.Format, det.Strategy = f, StrategyFuzzy
		return det
	}
	if f, ok := idx.matchGeneric(); ok {
		det.Format, det.Strategy = f, StrategyGeneric
		return det
	}
	for _, row := range samples {
		if f, ok := inferFormat(idx.labels, trimCells(row), sampleText(samples)); ok {
			det.Format, det.Strategy = f, StrategyInferred
			return det
		}
	}

	det.Strategy = StrategyNone
	det.Format = FormatDescriptor{Name: model.FormatUnknown}
	det.Headerless = dataRow
	det.Missing = idx.missing()
	det.NearMisses = idx.nearMisses()
	return det
}

func (d *Detector) matchExact(idx *headerIndex) (FormatDescriptor, bool) {
	for _, f := range d.registry.All() {
		if !idx.hasAll(f.identifiers(), idx.resolveExact) {
			continue
		}
		if resolved, ok := resolveColumns(f, idx.resolveExact); ok {
			return resolved, true
		}
	}
	return FormatDescriptor{}, false
}

// matchContent looks for a format's content pattern in the sample rows, then
// in the file name. Description cells are skipped: a merchant line such as
// "ANZ ATM" says nothing about who exported the file. A hit still has to fit
// the format's date notation.
func (d *Detector) matchContent(idx *headerIndex, samples [][]string, fileName string) (FormatDescriptor, bool) {
	fromSamples := func(f FormatDescriptor) string {
		return sampleText(withoutColumn(samples, idx.position(f.DescriptionColumn)))
	}
	fromName := func(FormatDescriptor) string { return fileName }

	for _, hint := range []func(FormatDescriptor) string{fromSamples, fromName} {
		for _, f := range d.registry.All() {
			if len(f.ContentPatterns) == 0 {
				continue
			}
			resolved, ok := resolveColumns(f, idx.resolveFuzzy)
			if !ok {
				continue
			}
			text := hint(resolved)
			if text == "" || !matchesAny(f.ContentPatterns, text) {
				continue
			}
			if !sampleDateFits(idx, resolved, samples) {
				continue
			}
			return resolved, true
		}
	}
	return FormatDescriptor{}, false
}

func (d *Detector) matchFuzzy(idx *headerIndex, samples [][]string) (FormatDescriptor, bool) {
	for _, f := range d.registry.All() {
		if !idx.hasAll(f.identifiers(), idx.resolveFuzzy) {
			continue
		}
		resolved, ok := resolveColumns(f, idx.resolveFuzzy)
		if !ok {
			continue
		}
		if !sampleDateFits(idx, resolved, samples) {
			continue
		}
		return resolved, true
	}
	return FormatDescriptor{}, false
}

// sampleDateFits checks the first non-empty sample date against the format's
// declared notation. Passes when there is nothing to check.
func sampleDateFits(idx *headerIndex, f FormatDescriptor, samples [][]string) bool {
	if f.DateNotation == "" {
		return true
	}
	col := idx.position(f.DateColumn)
	for _, row := range samples {
		if col < 0 || col >= len(row) {
			continue
		}
		v := strings.TrimSpace(row[col])
		if v == "" {
			continue
		}
		_, err := fields.ParseDateAs(v, f.DateNotation)
		return err == nil
	}
	return true
}

// resolveColumns rewrites each mapped column of f to the file's own label.
func resolveColumns(f FormatDescriptor, resolve func(string) (string, bool)) (FormatDescriptor, bool) {
	out := f
	for _, col := range []*string{&out.DateColumn, &out.DescriptionColumn, &out.AmountColumn, &out.WithdrawalColumn, &out.DepositColumn} {
		if *col == "" {
			continue
		}
		label, ok := resolve(*col)
		if !ok {
			return FormatDescriptor{}, false
		}
		*col = label
	}
	return out, true
}

func matchesAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}

// headerIndex is a header row with its normalized and classified forms.
type headerIndex struct {
	labels []string
	norm   []string
	class  []Classification
	byNorm map[string]int
}

func newHeaderIndex(headers []string) *headerIndex {
	idx := &headerIndex{
		labels: uniqueLabels(headers),
		byNorm: make(map[string]int),
	}
	for i, h := range headers {
		n := normalizeHeader(h)
		idx.norm = append(idx.norm, n)
		idx.class = append(idx.class, ClassifyHeader(h))
		if _, seen := idx.byNorm[n]; !seen && n != "" {
			idx.byNorm[n] = i
		}
	}
	return idx
}

func (h *headerIndex) position(label string) int {
	for i, l := range h.labels {
		if l == label {
			return i
		}
	}
	return -1
}

func (h *headerIndex) hasAll(columns []string, resolve func(string) (string, bool)) bool {
	if len(columns) == 0 {
		return false
	}
	for _, c := range columns {
		if _, ok := resolve(c); !ok {
			return false
		}
	}
	return true
}

func (h *headerIndex) resolveExact(column string) (string, bool) {
	i, ok := h.byNorm[normalizeHeader(column)]
	if !ok {
		return "", false
	}
	return h.labels[i], true
}

// resolveFuzzy finds the header that best stands in for column: an exact
// normalized match, or a header of the same field type whose similarity
// exceeds fuzzyThreshold.
func (h *headerIndex) resolveFuzzy(column string) (string, bool) {
	if label, ok := h.resolveExact(column); ok {
		return label, true
	}
	want := ClassifyHeader(column)
	if want.Field == FieldUnknown {
		return "", false
	}
	best, bestScore := -1, fuzzyThreshold
	for i, c := range h.class {
		if c.Field != want.Field {
			continue
		}
		if s := similarity(h.norm[i], want.Normalized); s > bestScore {
			best, bestScore = i, s
		}
	}
	if best < 0 {
		return "", false
	}
	return h.labels[best], true
}

// best returns the most confident accepted header of the given type that
// satisfies keep. Earlier headers win ties.
func (h *headerIndex) best(field FieldType, keep func(norm string) bool) (string, bool) {
	best, bestScore := -1, 0.0
	for i, c := range h.class {
		if c.Field != field || !c.Accepted() {
			continue
		}
		if keep != nil && !keep(h.norm[i]) {
			continue
		}
		if c.Confidence > bestScore {
			best, bestScore = i, c.Confidence
		}
	}
	if best < 0 {
		return "", false
	}
	return h.labels[best], true
}

func (h *headerIndex) splitPair() (withdrawal, deposit string, ok bool) {
	w, d := -1, -1
	for i, n := range h.norm {
		switch {
		case w < 0 && withdrawalLabels[n]:
			w = i
		case d < 0 && depositLabels[n]:
			d = i
		}
	}
	if w < 0 || d < 0 {
		return "", "", false
	}
	return h.labels[w], h.labels[d], true
}

func (h *headerIndex) matchGeneric() (FormatDescriptor, bool) {
	date, okDate := h.best(FieldDate, nil)
	desc, okDesc := h.best(FieldDescription, nil)
	if !okDate || !okDesc {
		return FormatDescriptor{}, false
	}

	f := FormatDescriptor{Name: model.FormatGeneric, DateColumn: date, DescriptionColumn: desc}
	notSplit := func(n string) bool { return !withdrawalLabels[n] && !depositLabels[n] }
	if amount, ok := h.best(FieldAmount, notSplit); ok {
		f.AmountColumn = amount
		return f, true
	}
	if w, d, ok := h.splitPair(); ok {
		f.WithdrawalColumn, f.DepositColumn = w, d
		return f, true
	}
	if amount, ok := h.best(FieldAmount, nil); ok {
		f.AmountColumn = amount
		return f, true
	}
	return FormatDescriptor{}, false
}

func (h *headerIndex) missing() []FieldType {
	var out []FieldType
	for _, f := range requiredFields {
		if _, ok := h.best(f, nil); !ok {
			out = append(out, f)
		}
	}
	return out
}

func (h *headerIndex) nearMisses() []Classification {
	var out []Classification
	for _, c := range h.class {
		if c.Field != FieldUnknown && !c.Accepted() && c.Confidence >= nearMissThreshold {
			out = append(out, c)
		}
	}
	return out
}

// looksLikeDataRow reports whether a row has a date cell and a separate
// amount cell, which a header row never does.
func looksLikeDataRow(row []string) bool {
	dateCol := firstDateColumn(row)
	return dateCol >= 0 && firstAmountColumn(row, dateCol) >= 0
}

// inferFormat maps columns from a single data row: the first date-like value,
// the first signed or decimal number (else the first whole number), and the
// longest remaining text.
func inferFormat(labels, row []string, text string) (FormatDescriptor, bool) {
	if len(row) > len(labels) {
		row = row[:len(labels)]
	}
	dateCol := firstDateColumn(row)
	if dateCol < 0 {
		return FormatDescriptor{}, false
	}
	amountCol := firstAmountColumn(row, dateCol)
	if amountCol < 0 {
		return FormatDescriptor{}, false
	}

	descCol, longest := -1, 0
	for i, v := range row {
		if i == dateCol || i == amountCol || !hasLetter(v) {
			continue
		}
		if n := utf8.RuneCountInString(v); n > longest {
			descCol, longest = i, n
		}
	}
	if descCol < 0 {
		return FormatDescriptor{}, false
	}

	name := model.FormatGeneric
	if transferPattern.MatchString(text) {
		name = model.FormatInternetBanking
	}
	return FormatDescriptor{
		Name:              name,
		DateColumn:        labels[dateCol],
		DescriptionColumn: labels[descCol],
		AmountColumn:      labels[amountCol],
	}, true
}

func firstDateColumn(row []string) int {
	for i, v := range row {
		if fields.LooksLikeDate(v) {
			return i
		}
	}
	return -1
}

// firstAmountColumn prefers a signed or decimal value and falls back to a
// whole number when the row has none.
func firstAmountColumn(row []string, skip int) int {
	for i, v := range row {
		if i != skip && fields.LooksLikeAmount(v) {
			return i
		}
	}
	for i, v := range row {
		if i != skip && fields.LooksLikeWholeAmount(v) {
			return i
		}
	}
	return -1
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func sampleText(rows [][]string) string {
	var parts []string
	for _, row := range rows {
		parts = append(parts, strings.Join(row, " "))
	}
	return strings.Join(parts, " ")
}

// withoutColumn copies rows with column col blanked.
func withoutColumn(rows [][]string, col int) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		out[i] = row
		if col >= 0 && col < len(row) {
			out[i] = append([]string{}, row...)
			out[i][col] = ""
		}
	}
	return out
}

func trimCells(row []string) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = strings.TrimSpace(strings.TrimPrefix(c, "\ufeff"))
	}
	return out
}

// syntheticLabels returns "Column 1".."Column n".
func syntheticLabels(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "Column " + strconv.Itoa(i+1)
	}
	return out
}

// uniqueLabels fills blank header cells and suffixes repeated ones so every
// column can key a row map.
func uniqueLabels(headers []string) []string {
	out := make([]string, len(headers))
	seen := make(map[string]int)
	for i, h := range headers {
		label := strings.TrimSpace(h)
		if label == "" {
			label = "Column " + strconv.Itoa(i+1)
		}
		seen[label]++
		if n := seen[label]; n > 1 {
			label = fmt.Sprintf("%s (%d)", label, n)
		}
		out[i] = label
	}
	return out
}
