// Package fields parses and cleans individual cell values from bank exports:
// dates, signed amounts, and free-text descriptions.
package fields

import (
	"errors"
	"math"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrAmountOutOfRange = errors.New("amount out of range")
)

// MaxDescriptionLength caps sanitized descriptions, in runes.
const MaxDescriptionLength = 255

// keptPunctuation survives description sanitizing; all other symbols are dropped.
const keptPunctuation = "&-.,'/#@*()+:"

// SanitizeDescription collapses whitespace, drops control characters and most
// punctuation, and caps the length.
func SanitizeDescription(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case strings.ContainsRune(keptPunctuation, r):
			b.WriteRune(r)
		}
	}

	s := strings.Join(strings.Fields(b.String()), " ")
	if utf8.RuneCountInString(s) > MaxDescriptionLength {
		s = strings.TrimSpace(string([]rune(s)[:MaxDescriptionLength]))
	}
	return s
}

// NormalizeKey lowercases s and reduces it to letters and digits separated by
// single spaces. "Coffee-Shop #12!" -> "coffee shop 12".
func NormalizeKey(s string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, s)
	return strings.Join(strings.Fields(mapped), " ")
}

// FormatAmount renders an amount with exactly two decimal places.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// Percent returns part/total as a whole-number percentage, 0 when total is 0.
func Percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(total)))
}
