package cipher

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Substitute replaces every rune that has an entry in mapping and keeps the rest.
func Substitute(text string, mapping map[rune]rune) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if to, ok := mapping[r]; ok {
			b.WriteRune(to)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Normalize composes text to NFC and optionally upper-cases it.
func Normalize(text string, upper bool) string {
	text = norm.NFC.String(text)
	if upper {
		text = strings.ToUpper(text)
	}
	return text
}
