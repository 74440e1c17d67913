package dates

import "testing"

func TestStandardizeEmptyValues(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty string", ""},
		{"NULL literal", "NULL"},
		{"whitespace only", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Standardize(tt.input); got != "" {
				t.Errorf("Expected empty result, got %q", got)
			}
		})
	}
}

func TestStandardizeFixedFormats(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2025-04-07", "04/07/2025"},
		{"2025-04-07 13:45:00", "04/07/2025"},
		{"04/07/2025", "04/07/2025"},
		{"4/7/2025", "04/07/2025"},
		{"04-07-2025", "04/07/2025"},
		{"  2025-04-07  ", "04/07/2025"},
		{"12/31/2024", "12/31/2024"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Standardize(tt.input); got != tt.expected {
				t.Errorf("Standardize(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStandardizeTwoDigitYears(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"04/07/25", "04/07/2025"},
		{"04/07/49", "04/07/2049"},
		{"04/07/50", "04/07/1950"},
		{"04/07/75", "04/07/1975"},
		{"04/07/99", "04/07/1999"},
		{"04/07/00", "04/07/2000"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Standardize(tt.input); got != tt.expected {
				t.Errorf("Standardize(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

// Slash and dash separated four-digit-year dates are always read
// month-first; the day-first table entries share a regex with an
// earlier entry and never win.
func TestStandardizeAmbiguousDatesAreMonthFirst(t *testing.T) {
	if got := Standardize("03/04/2025"); got != "03/04/2025" {
		t.Errorf("Expected month-first 03/04/2025, got %q", got)
	}
	if got := Standardize("3-4-2025"); got != "03/04/2025" {
		t.Errorf("Expected month-first 03/04/2025, got %q", got)
	}
}

func TestStandardizeMonthNames(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"April 7, 2025", "04/07/2025"},
		{"Apr 7, 2025", "04/07/2025"},
		{"apr 7 2025", "04/07/2025"},
		{"DECEMBER 31, 1999", "12/31/1999"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Standardize(tt.input); got != tt.expected {
				t.Errorf("Standardize(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStandardizeFallbackLayouts(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2025-04-07T13:45:00", "04/07/2025"},
		{"2025/04/07", "04/07/2025"},
		{"7 April 2025", "04/07/2025"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Standardize(tt.input); got != tt.expected {
				t.Errorf("Standardize(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStandardizeUnparseablePassthrough(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"not a date", "not a date"},
		{"  TBD  ", "TBD"},
		{"Q3 2025", "Q3 2025"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := Standardize(tt.input); got != tt.expected {
				t.Errorf("Standardize(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name     string
		a, b     string
		expected bool
	}{
		{"both empty", "", "", true},
		{"equal canonical", "04/07/2025", "04/07/2025", true},
		{"different dates", "04/07/2025", "04/08/2025", false},
		{"empty vs value", "", "04/07/2025", false},
		{"unparseable leftovers compare exactly", "TBD", "TBD", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Equal(tt.a, tt.b); got != tt.expected {
				t.Errorf("Equal(%q, %q) = %v, expected %v", tt.a, tt.b, got, tt.expected)
			}
		})
	}
}
