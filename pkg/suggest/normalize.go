// Package suggest is the core ranking and serving pipeline: normalization,
// fuzzy matching against the place index, geo-aware scoring, the per-session
// result cache and the per-client rate limiter.
package suggest

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripMarks decomposes to NFD and drops combining marks, so "Monreāl"
// compares as "monreal".
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize converts raw query text into the canonical comparable form used
// for both index keys and incoming queries: trimmed, diacritics stripped,
// non-Latin scripts transliterated to ASCII, lowercased, inner whitespace
// collapsed. Idempotent: Normalize(Normalize(x)) == Normalize(x).
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if out, _, err := transform.String(stripMarks, s); err == nil {
		s = out
	}
	s = unidecode.Unidecode(s)
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}
