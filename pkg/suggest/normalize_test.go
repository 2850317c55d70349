package suggest

import "testing"

func TestNormalize(t *testing.T) {
	testCases := []struct {
		input       string
		expected    string
		description string
	}{
		{"montreal", "montreal", "already normalized"},
		{"MONtREaL", "montreal", "mixed case"},
		{"Montréal", "montreal", "accented name"},
		{"monreāl", "monreal", "macron diacritic"},
		{"Вашинг", "vashing", "cyrillic transliteration"},
		{"São Paulo", "sao paulo", "tilde plus inner space"},
		{"  New   York  ", "new york", "whitespace collapse"},
		{"Montréal-Ouest", "montreal-ouest", "hyphen preserved"},
		{"", "", "empty input"},
		{"   ", "", "blank input"},
	}

	for _, tc := range testCases {
		got := Normalize(tc.input)
		if got != tc.expected {
			t.Errorf("%s: Normalize(%q) = %q, want %q", tc.description, tc.input, got, tc.expected)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"MONtREaL", "Montréal", "Вашинг", "monreāl", "São Paulo", "washing"}

	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestNormalizeCaseVariantsAgree(t *testing.T) {
	if Normalize("MONtREaL") != Normalize("montreal") {
		t.Errorf("case variants should normalize identically")
	}
}
