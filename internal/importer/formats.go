package importer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cleared-dev/intake/internal/config"
	"github.com/cleared-dev/intake/internal/fields"
	"github.com/cleared-dev/intake/internal/model"
)

// FormatDescriptor describes one bank's CSV export layout.
type FormatDescriptor struct {
	Name model.BankFormat

	// Headers is the header row the bank exports, in order.
	Headers []string
	// Identifiers must all be present for an exact match. Defaults to the
	// mapped columns when empty.
	Identifiers []string

	DateColumn        string
	DescriptionColumn string
	AmountColumn      string // empty when amounts are split
	WithdrawalColumn  string
	DepositColumn     string

	DateNotation    fields.DateNotation
	ContentPatterns []*regexp.Regexp
}

// SplitAmount reports whether amounts come from separate withdrawal and deposit columns.
func (f FormatDescriptor) SplitAmount() bool {
	return f.AmountColumn == "" && f.WithdrawalColumn != "" && f.DepositColumn != ""
}

// Columns returns the mapped column labels, without empties.
func (f FormatDescriptor) Columns() []string {
	var cols []string
	for _, c := range []string{f.DateColumn, f.DescriptionColumn, f.AmountColumn, f.WithdrawalColumn, f.DepositColumn} {
		if c != "" {
			cols = append(cols, c)
		}
	}
	return cols
}

func (f FormatDescriptor) identifiers() []string {
	if len(f.Identifiers) > 0 {
		return f.Identifiers
	}
	return f.Columns()
}

// Validate checks that the descriptor is usable.
func (f FormatDescriptor) Validate() error {
	switch {
	case f.Name == "":
		return errors.New("format name is required")
	case isReservedFormat(f.Name):
		return fmt.Errorf("format name %q is reserved", f.Name)
	case f.DateColumn == "":
		return fmt.Errorf("format %s: date column is required", f.Name)
	case f.DescriptionColumn == "":
		return fmt.Errorf("format %s: description column is required", f.Name)
	case f.AmountColumn == "" && !f.SplitAmount():
		return fmt.Errorf("format %s: amount column or withdrawal and deposit columns are required", f.Name)
	case f.DateNotation != "" && !fields.ValidNotation(f.DateNotation):
		return fmt.Errorf("format %s: unknown date notation %q", f.Name, f.DateNotation)
	}
	return nil
}

func isReservedFormat(name model.BankFormat) bool {
	for _, r := range []model.BankFormat{model.FormatUnknown, model.FormatGeneric, model.FormatInternetBanking} {
		if strings.EqualFold(string(name), string(r)) {
			return true
		}
	}
	return false
}

// Registry holds bank formats in detection order.
type Registry struct {
	formats []FormatDescriptor
	byName  map[string]int
}

// NewRegistry creates an empty format registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]int)}
}

// Add appends a format. Names are case-insensitive and must be unique.
func (r *Registry) Add(f FormatDescriptor) error {
	if err := f.Validate(); err != nil {
		return err
	}
	key := strings.ToLower(string(f.Name))
	if _, ok := r.byName[key]; ok {
		return fmt.Errorf("duplicate format: %s", f.Name)
	}
	r.byName[key] = len(r.formats)
	r.formats = append(r.formats, f)
	return nil
}

// Register adds a format. Panics on an invalid or duplicate format.
func (r *Registry) Register(f FormatDescriptor) {
	if err := r.Add(f); err != nil {
		panic(err.Error())
	}
}

// Get returns the named format.
func (r *Registry) Get(name string) (FormatDescriptor, bool) {
	i, ok := r.byName[strings.ToLower(name)]
	if !ok {
		return FormatDescriptor{}, false
	}
	return r.formats[i], true
}

// All returns the formats in detection order.
func (r *Registry) All() []FormatDescriptor {
	out := make([]FormatDescriptor, len(r.formats))
	copy(out, r.formats)
	return out
}

// Len returns the number of registered formats.
func (r *Registry) Len() int { return len(r.formats) }

// DefaultRegistry returns a registry with all built-in formats.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, f := range builtinFormats() {
		r.Register(f)
	}
	return r
}

// NewRegistryFromConfig returns the custom formats from config followed by the
// built-in formats. Custom formats are tried first.
func NewRegistryFromConfig(custom []config.FormatConfig) (*Registry, error) {
	r := NewRegistry()
	for _, fc := range custom {
		f, err := FormatFromConfig(fc)
		if err != nil {
			return nil, err
		}
		if err := r.Add(f); err != nil {
			return nil, fmt.Errorf("adding custom format: %w", err)
		}
	}
	for _, f := range builtinFormats() {
		if err := r.Add(f); err != nil {
			return nil, fmt.Errorf("adding built-in format: %w", err)
		}
	}
	return r, nil
}

// FormatFromConfig converts a config entry into a descriptor.
func FormatFromConfig(fc config.FormatConfig) (FormatDescriptor, error) {
	f := FormatDescriptor{
		Name:              model.BankFormat(fc.Name),
		Headers:           fc.Headers,
		Identifiers:       fc.Identifiers,
		DateColumn:        fc.DateColumn,
		DescriptionColumn: fc.DescriptionColumn,
		AmountColumn:      fc.AmountColumn,
		WithdrawalColumn:  fc.WithdrawalColumn,
		DepositColumn:     fc.DepositColumn,
		DateNotation:      fields.DateNotation(fc.DateNotation),
	}
	for _, p := range fc.ContentPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return FormatDescriptor{}, fmt.Errorf("format %s: compiling content pattern %q: %w", fc.Name, p, err)
		}
		f.ContentPatterns = append(f.ContentPatterns, re)
	}
	if err := f.Validate(); err != nil {
		return FormatDescriptor{}, err
	}
	return f, nil
}

func builtinFormats() []FormatDescriptor {
	return []FormatDescriptor{
		{
			Name:              "ANZ",
			Headers:           []string{"Type", "Details", "Particulars", "Code", "Reference", "Amount", "Date", "ForeignCurrencyAmount", "ConversionCharge"},
			Identifiers:       []string{"Type", "Details", "Particulars", "Code", "Reference", "Amount", "Date"},
			DateColumn:        "Date",
			DescriptionColumn: "Details",
			AmountColumn:      "Amount",
			DateNotation:      fields.NotationDayMonthYear,
			ContentPatterns:   []*regexp.Regexp{regexp.MustCompile(`(?i)\banz\b`)},
		},
		{
			Name:              "ASB",
			Headers:           []string{"Date", "Unique Id", "Tran Type", "Cheque Number", "Payee", "Memo", "Amount"},
			Identifiers:       []string{"Date", "Unique Id", "Tran Type", "Cheque Number", "Payee", "Memo", "Amount"},
			DateColumn:        "Date",
			DescriptionColumn: "Payee",
			AmountColumn:      "Amount",
			DateNotation:      fields.NotationYearMonthDaySlash,
			ContentPatterns:   []*regexp.Regexp{regexp.MustCompile(`(?i)\basb\b`)},
		},
		{
			Name: "BNZ",
			Headers: []string{
				"Date", "Amount", "Payee", "Particulars", "Code", "Reference", "Tran Type",
				"This Party Account", "Other Party Account", "Serial", "Transaction Code",
				"Batch Number", "Originating Bank/Branch", "Processed Date",
			},
			Identifiers:       []string{"Date", "Amount", "Payee", "Particulars", "Code", "Reference", "Tran Type", "This Party Account"},
			DateColumn:        "Date",
			DescriptionColumn: "Payee",
			AmountColumn:      "Amount",
			DateNotation:      fields.NotationDayMonthYear,
			ContentPatterns:   []*regexp.Regexp{regexp.MustCompile(`(?i)\b(bnz|bank of new zealand)\b`)},
		},
		{
			Name:              "Westpac",
			Headers:           []string{"Date", "Amount", "Other Party", "Description", "Reference", "Particulars", "Analysis Code"},
			Identifiers:       []string{"Date", "Amount", "Other Party", "Description", "Reference", "Particulars", "Analysis Code"},
			DateColumn:        "Date",
			DescriptionColumn: "Other Party",
			AmountColumn:      "Amount",
			DateNotation:      fields.NotationDayMonthYear,
			ContentPatterns:   []*regexp.Regexp{regexp.MustCompile(`(?i)\bwestpac\b`)},
		},
		{
			Name: "Kiwibank",
			Headers: []string{
				"Account number", "Date", "Memo/Description", "Source Code (payment type)",
				"TP ref", "TP part", "TP code", "OP ref", "OP part", "OP code", "OP name",
				"OP Bank Account Number", "Amount (credit)", "Amount (debit)", "Amount", "Balance",
			},
			Identifiers:       []string{"Account number", "Date", "Memo/Description", "Source Code (payment type)", "Amount", "Balance"},
			DateColumn:        "Date",
			DescriptionColumn: "Memo/Description",
			AmountColumn:      "Amount",
			DateNotation:      fields.NotationDayMonthYearDash,
			ContentPatterns:   []*regexp.Regexp{regexp.MustCompile(`(?i)kiwibank`)},
		},
		{
			Name:              "Chase",
			Headers:           []string{"Details", "Posting Date", "Description", "Amount", "Type", "Balance", "Check or Slip #"},
			Identifiers:       []string{"Details", "Posting Date", "Description", "Amount", "Type", "Balance", "Check or Slip #"},
			DateColumn:        "Posting Date",
			DescriptionColumn: "Description",
			AmountColumn:      "Amount",
			DateNotation:      fields.NotationMonthDayYear,
			ContentPatterns:   []*regexp.Regexp{regexp.MustCompile(`(?i)\b(jpmorgan )?chase\b`)},
		},
		{
			Name:              "BankOfAmerica",
			Headers:           []string{"Date", "Description", "Amount", "Running Bal."},
			Identifiers:       []string{"Date", "Description", "Amount", "Running Bal."},
			DateColumn:        "Date",
			DescriptionColumn: "Description",
			AmountColumn:      "Amount",
			DateNotation:      fields.NotationMonthDayYear,
			ContentPatterns:   []*regexp.Regexp{regexp.MustCompile(`(?i)bank of america`)},
		},
		{
			Name:              "CapitalOne",
			Headers:           []string{"Transaction Date", "Posted Date", "Card No.", "Description", "Category", "Debit", "Credit"},
			Identifiers:       []string{"Transaction Date", "Posted Date", "Card No.", "Description", "Category", "Debit", "Credit"},
			DateColumn:        "Transaction Date",
			DescriptionColumn: "Description",
			WithdrawalColumn:  "Debit",
			DepositColumn:     "Credit",
			DateNotation:      fields.NotationISO,
			ContentPatterns:   []*regexp.Regexp{regexp.MustCompile(`(?i)capital ?one`)},
		},
		{
			Name:              "TD",
			Headers:           []string{"Date", "Description", "Withdrawals", "Deposits", "Balance"},
			Identifiers:       []string{"Date", "Description", "Withdrawals", "Deposits", "Balance"},
			DateColumn:        "Date",
			DescriptionColumn: "Description",
			WithdrawalColumn:  "Withdrawals",
			DepositColumn:     "Deposits",
			DateNotation:      fields.NotationMonthDayYear,
			ContentPatterns:   []*regexp.Regexp{regexp.MustCompile(`(?i)\btd bank\b|toronto.dominion`)},
		},
		{
			Name:              "RBC",
			Headers:           []string{"Account Type", "Account Number", "Transaction Date", "Cheque Number", "Description 1", "Description 2", "CAD$", "USD$"},
			Identifiers:       []string{"Account Type", "Account Number", "Transaction Date", "Cheque Number", "Description 1", "Description 2", "CAD$"},
			DateColumn:        "Transaction Date",
			DescriptionColumn: "Description 1",
			AmountColumn:      "CAD$",
			DateNotation:      fields.NotationMonthDayYear,
			ContentPatterns:   []*regexp.Regexp{regexp.MustCompile(`(?i)royal bank|\brbc\b`)},
		},
		{
			Name:              "Barclays",
			Headers:           []string{"Number", "Date", "Account", "Amount", "Subcategory", "Memo"},
			Identifiers:       []string{"Number", "Date", "Account", "Amount", "Subcategory", "Memo"},
			DateColumn:        "Date",
			DescriptionColumn: "Memo",
			AmountColumn:      "Amount",
			DateNotation:      fields.NotationDayMonthYear,
			ContentPatterns:   []*regexp.Regexp{regexp.MustCompile(`(?i)barclays`)},
		},
		{
			Name: "Monzo",
			Headers: []string{
				"Transaction ID", "Date", "Time", "Type", "Name", "Emoji", "Category", "Amount",
				"Currency", "Local amount", "Local currency", "Notes and #tags", "Address",
				"Receipt", "Description", "Category split", "Money Out", "Money In",
			},
			Identifiers:       []string{"Transaction ID", "Date", "Time", "Type", "Name", "Emoji", "Category", "Amount"},
			DateColumn:        "Date",
			DescriptionColumn: "Name",
			AmountColumn:      "Amount",
			DateNotation:      fields.NotationDayMonthYear,
			ContentPatterns:   []*regexp.Regexp{regexp.MustCompile(`(?i)\bmonzo\b`)},
		},
	}
}
