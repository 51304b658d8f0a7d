package fields

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount bounds the magnitude of any accepted amount.
const MaxAmount = 10_000_000

var maxAmount = decimal.NewFromInt(MaxAmount)

var (
	numberPattern = regexp.MustCompile(`^-?(\d+(\.\d+)?|\.\d+)$`)

	// amountLikePattern matches cells that read as signed or decimal money values.
	amountLikePattern = regexp.MustCompile(`^[+-]?\(?[+-]?\s*[$€£¥]?\s*\d{1,3}(,?\d{3})*(\.\d+)?\)?(\s*(CR|DR|cr|dr))?$`)

	wholeAmountPattern = regexp.MustCompile(`^[$€£¥]?\s*\d{1,3}(,?\d{3})*$`)

	symbolStripper = strings.NewReplacer(
		"$", "", "€", "", "£", "", "¥", "", "₹", "",
		",", "", " ", "", "\u00a0", "",
	)
)

var currencyCodes = []string{"USD", "NZD", "AUD", "CAD", "GBP", "EUR"}

// ParseAmount converts a bank amount literal into a signed decimal.
//
// Accepted forms include "1,234.56", "$-5.50", "(123.45)" (negative),
// "45.00 DR" (positive) and "45.00 CR" (negative).
func ParseAmount(raw string) (decimal.Decimal, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimSpace(strings.Trim(s, `"'`))
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty value", ErrInvalidAmount)
	}

	negate := false
	upper := strings.ToUpper(s)
	switch {
	case strings.HasSuffix(upper, "CR"):
		negate = true
		upper = upper[:len(upper)-2]
	case strings.HasSuffix(upper, "DR"):
		upper = upper[:len(upper)-2]
	}
	upper = strings.TrimSpace(upper)

	if strings.HasPrefix(upper, "(") && strings.HasSuffix(upper, ")") {
		negate = !negate
		upper = upper[1 : len(upper)-1]
	}

	for _, code := range currencyCodes {
		upper = strings.ReplaceAll(upper, code, "")
	}
	s = symbolStripper.Replace(upper)
	s = strings.TrimPrefix(s, "+")

	if !numberPattern.MatchString(s) {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, raw, err)
	}
	if negate {
		d = d.Neg()
	}
	if d.Abs().GreaterThan(maxAmount) {
		return decimal.Zero, fmt.Errorf("%w: %s exceeds %d", ErrAmountOutOfRange, d.String(), MaxAmount)
	}
	return d, nil
}

// LooksLikeAmount reports whether s reads as a signed or decimal money value.
// Bare integers do not count; they are as likely to be references.
func LooksLikeAmount(s string) bool {
	s = strings.TrimSpace(s)
	if !amountLikePattern.MatchString(s) {
		return false
	}
	return strings.ContainsAny(s, ".-+(") || strings.HasSuffix(strings.ToUpper(s), "CR") || strings.HasSuffix(strings.ToUpper(s), "DR")
}

// LooksLikeWholeAmount reports whether s is an unsigned whole number such as
// "1500" or "$1,500". Callers use it only when no cell passes LooksLikeAmount.
func LooksLikeWholeAmount(s string) bool {
	s = strings.TrimSpace(s)
	if !wholeAmountPattern.MatchString(s) {
		return false
	}
	_, err := ParseAmount(s)
	return err == nil
}
