package util

import (
	"strings"
	"unicode"
)

// Slug lowercases s and collapses every run of non alphanumerics into a single
// dash, e.g. "Sci-Fi & Classics" -> "sci-fi-classics".
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
