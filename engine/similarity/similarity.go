// Package similarity scores how close two strings are using the
// Levenshtein edit distance.
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// Distance returns the case-insensitive Levenshtein distance between a and b.
// Insertions, deletions and substitutions each cost one.
func Distance(a, b string) int {
	return levenshtein.ComputeDistance(strings.ToLower(a), strings.ToLower(b))
}

// Similarity returns (L - d) / L where L is the rune length of the longer
// string and d the edit distance between them. Two empty strings are
// identical and score 1. The result is always in [0, 1].
func Similarity(a, b string) float64 {
	longer, shorter := a, b
	if utf8.RuneCountInString(a) < utf8.RuneCountInString(b) {
		longer, shorter = b, a
	}

	n := utf8.RuneCountInString(longer)
	if n == 0 {
		return 1
	}

	return float64(n-Distance(longer, shorter)) / float64(n)
}
