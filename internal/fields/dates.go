package fields

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// DateNotation names the day/month/year ordering a bank export uses.
type DateNotation string

const (
	NotationMonthDayYear      DateNotation = "MM/DD/YYYY"
	NotationISO               DateNotation = "YYYY-MM-DD"
	NotationDayMonthYear      DateNotation = "DD/MM/YYYY"
	NotationDayMonthYearDash  DateNotation = "DD-MM-YYYY"
	NotationMonthDayYearDash  DateNotation = "MM-DD-YYYY"
	NotationYearMonthDaySlash DateNotation = "YYYY/MM/DD"
	NotationDayMonthYearDot   DateNotation = "DD.MM.YYYY"
	NotationMonthDayYearDot   DateNotation = "MM.DD.YYYY"
	NotationDayMonthName      DateNotation = "DD MMM"
)

// notationLayouts maps each notation to Go layouts. Single-digit layout
// elements also accept zero-padded values.
var notationLayouts = map[DateNotation][]string{
	NotationMonthDayYear:      {"1/2/2006"},
	NotationISO:               {"2006-1-2"},
	NotationDayMonthYear:      {"2/1/2006"},
	NotationDayMonthYearDash:  {"2-1-2006"},
	NotationMonthDayYearDash:  {"1-2-2006"},
	NotationYearMonthDaySlash: {"2006/1/2"},
	NotationDayMonthYearDot:   {"2.1.2006"},
	NotationMonthDayYearDot:   {"1.2.2006"},
	NotationDayMonthName:      {"2 Jan", "2 January"},
}

// dateCascade is the order notations are tried when none is declared.
// US month-first wins for ambiguous values like 01/02/2024.
var dateCascade = []DateNotation{
	NotationMonthDayYear,
	NotationISO,
	NotationDayMonthYear,
	NotationDayMonthYearDash,
	NotationMonthDayYearDash,
	NotationYearMonthDaySlash,
	NotationDayMonthYearDot,
	NotationMonthDayYearDot,
	NotationDayMonthName,
}

// fallbackLayouts are tried after every notation fails.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"2 Jan 2006",
	"2 January 2006",
	"02-Jan-2006",
	"2-Jan-06",
	"Mon Jan 2 2006",
	"Mon, 02 Jan 2006",
	"20060102",
	"1/2/06",
}

// Notations returns the date cascade in evaluation order.
func Notations() []DateNotation {
	out := make([]DateNotation, len(dateCascade))
	copy(out, dateCascade)
	return out
}

// ValidNotation reports whether n is a known notation.
func ValidNotation(n DateNotation) bool {
	_, ok := notationLayouts[n]
	return ok
}

// ParseDate parses raw with the full cascade, using the current year for
// year-less values.
func ParseDate(raw string) (civil.Date, error) {
	return ParseDateAt(raw, time.Now())
}

// ParseDateAt is ParseDate with an explicit reference time.
func ParseDateAt(raw string, now time.Time) (civil.Date, error) {
	return ParseDateWith(raw, "", now)
}

// ParseDateAs parses raw using only the given notation.
func ParseDateAs(raw string, notation DateNotation) (civil.Date, error) {
	s := cleanDate(raw)
	if d, ok := parseNotation(s, notation, time.Now()); ok {
		return d, nil
	}
	return civil.Date{}, fmt.Errorf("%w: %q is not %s", ErrInvalidDate, raw, notation)
}

// ParseDateWith tries the declared notation first (if any), then the cascade,
// then the fallback layouts.
func ParseDateWith(raw string, notation DateNotation, now time.Time) (civil.Date, error) {
	s := cleanDate(raw)
	if s == "" {
		return civil.Date{}, fmt.Errorf("%w: empty value", ErrInvalidDate)
	}

	if notation != "" {
		if d, ok := parseNotation(s, notation, now); ok {
			return d, nil
		}
	}
	for _, n := range dateCascade {
		if d, ok := parseNotation(s, n, now); ok {
			return d, nil
		}
	}
	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return civil.DateOf(t), nil
		}
	}
	return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// LooksLikeDate reports whether s parses as a date with a digit in it.
func LooksLikeDate(s string) bool {
	s = cleanDate(s)
	if !strings.ContainsAny(s, "0123456789") {
		return false
	}
	_, err := ParseDate(s)
	return err == nil
}

func parseNotation(s string, n DateNotation, now time.Time) (civil.Date, bool) {
	for _, layout := range notationLayouts[n] {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		d := civil.DateOf(t)
		if n == NotationDayMonthName {
			d.Year = now.Year()
		}
		if !d.IsValid() {
			continue
		}
		return d, true
	}
	return civil.Date{}, false
}

func cleanDate(raw string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), `"'`))
}
