// Package normalize canonicalises raw player input before parsing and
// matching.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Decompose first so accented letters degrade to their base letter instead
// of being dropped by the letter filter.
var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)))

// Normalize strips diacritics, drops everything that is not an ASCII letter
// or a space, lower-cases and trims. Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	stripped, _, err := transform.String(stripMarks, text)
	if err != nil {
		stripped = text
	}

	var b strings.Builder
	b.Grow(len(stripped))
	for _, r := range stripped {
		if r == ' ' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			b.WriteRune(r)
		}
	}

	return strings.TrimSpace(strings.ToLower(b.String()))
}
