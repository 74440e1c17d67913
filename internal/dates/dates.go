// Package dates normalizes the heterogeneous date strings found in
// extracted invoices and purchase-order ledgers into a single canonical
// MM/DD/YYYY representation, and compares normalized dates for equality.
package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

type fieldOrder int

const (
	orderYMD fieldOrder = iota
	orderMDY
	orderDMY
)

type datePattern struct {
	re    *regexp.Regexp
	order fieldOrder
}

// fixedPatterns is tried in order; the first regex that matches wins and
// is parsed under that pattern's field order.
//
// Known quirk, kept deliberately: the DD/MM/YYYY and DD-MM-YYYY entries
// share a regex with the earlier month-first entries, so they can never
// be reached and slash- or dash-separated four-digit-year dates are
// always read month-first. Existing data depends on this interpretation;
// reordering the table would change output and needs a product decision
// first.
var fixedPatterns = []datePattern{
	{regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2}) (\d{1,2}):(\d{2}):(\d{2})$`), orderYMD},
	{regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`), orderYMD},
	{regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), orderMDY},
	{regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{2})$`), orderMDY},
	{regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`), orderDMY},
	{regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`), orderMDY},
	{regexp.MustCompile(`^(\d{1,2})-(\d{1,2})-(\d{4})$`), orderDMY},
}

// fallbackLayouts is tried after the fixed patterns, mirroring the other
// formats that show up in ledger exports.
var fallbackLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"2 January 2006",
	"02 Jan 2006",
}

var monthNamePattern = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{1,2}),?\s+(\d{4})$`)

var monthsByName = map[string]time.Month{
	"january": time.January, "february": time.February, "march": time.March,
	"april": time.April, "may": time.May, "june": time.June,
	"july": time.July, "august": time.August, "september": time.September,
	"october": time.October, "november": time.November, "december": time.December,
}

var monthsByAbbrev = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March,
	"apr": time.April, "may": time.May, "jun": time.June,
	"jul": time.July, "aug": time.August, "sep": time.September,
	"oct": time.October, "nov": time.November, "dec": time.December,
}

const canonicalLayout = "01/02/2006"

// Standardize converts a date string into canonical MM/DD/YYYY form.
//
// Empty input, "NULL", and whitespace-only input normalize to "", a
// valid, comparable "unknown date" value. When no parsing strategy
// succeeds the trimmed original is returned unchanged; callers treat
// non-canonical leftovers as best-effort, unparseable values. This
// function never fails.
func Standardize(input string) (result string) {
	// Parsing failures of any kind degrade to the original string
	// rather than propagating.
	defer func() {
		if recover() != nil {
			result = input
		}
	}()

	trimmed := strings.TrimSpace(input)
	if trimmed == "" || trimmed == "NULL" {
		return ""
	}

	for _, p := range fixedPatterns {
		m := p.re.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}

		var year, month, day int
		switch p.order {
		case orderYMD:
			year, _ = strconv.Atoi(m[1])
			month, _ = strconv.Atoi(m[2])
			day, _ = strconv.Atoi(m[3])
		case orderMDY:
			month, _ = strconv.Atoi(m[1])
			day, _ = strconv.Atoi(m[2])
			year, _ = strconv.Atoi(m[3])
		case orderDMY:
			day, _ = strconv.Atoi(m[1])
			month, _ = strconv.Atoi(m[2])
			year, _ = strconv.Atoi(m[3])
		}

		year = expandTwoDigitYear(year)
		return formatCanonical(year, time.Month(month), day)
	}

	for _, layout := range fallbackLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format(canonicalLayout)
		}
	}

	if m := monthNamePattern.FindStringSubmatch(trimmed); m != nil {
		if month, ok := resolveMonthName(m[1]); ok {
			day, _ := strconv.Atoi(m[2])
			year, _ := strconv.Atoi(m[3])
			return formatCanonical(year, month, day)
		}
	}

	return trimmed
}

// Equal compares two already-normalized date strings. Two empty strings
// are equal; otherwise comparison is exact, with no tolerance and no
// calendar awareness.
func Equal(a, b string) bool {
	if a == "" && b == "" {
		return true
	}
	return a == b
}

// expandTwoDigitYear maps 0-49 to 2000-2049 and 50-99 to 1950-1999.
func expandTwoDigitYear(year int) int {
	if year >= 100 {
		return year
	}
	if year <= 49 {
		return 2000 + year
	}
	return 1900 + year
}

func formatCanonical(year int, month time.Month, day int) string {
	// time.Date normalizes out-of-range components (month 13 rolls into
	// the next year) instead of rejecting them.
	t := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return t.Format(canonicalLayout)
}

func resolveMonthName(name string) (time.Month, bool) {
	lower := strings.ToLower(name)
	if m, ok := monthsByName[lower]; ok {
		return m, true
	}
	if len(lower) >= 3 {
		if m, ok := monthsByAbbrev[lower[:3]]; ok {
			return m, true
		}
	}
	return 0, false
}
