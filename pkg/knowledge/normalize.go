package knowledge

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Normalize prepares a span for comparison: lowercase, diacritics
// folded via NFD decomposition, punctuation stripped, whitespace
// collapsed. "Björk " and "bjork" normalize identically.
func Normalize(span string) string {
	if span == "" {
		return ""
	}
	lower := strings.ToLower(strings.TrimSpace(span))

	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range norm.NFD.String(lower) {
		switch {
		case unicode.Is(unicode.Mn, r):
			// combining mark from decomposition, drop it
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
