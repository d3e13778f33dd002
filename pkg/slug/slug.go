// Package slug builds URL-safe identifiers from display names.
package slug

import (
	"strings"

	gslug "github.com/gosimple/slug"
)

// Make lowercases name and transliterates it to ASCII, joining words with
// hyphens: "Café Arabica (Grade AA)" becomes "cafe-arabica-grade-aa".
func Make(name string) string {
	return gslug.Make(strings.TrimSpace(name))
}

// MakeMax is Make cut to at most maxLen bytes, preferring to cut at a hyphen
// so the slug never ends mid-word when a word boundary is available.
func MakeMax(name string, maxLen int) string {
	s := Make(name)
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	s = s[:maxLen]
	if cut := strings.LastIndexByte(s, '-'); cut > 0 {
		s = s[:cut]
	}
	return strings.Trim(s, "-_")
}
