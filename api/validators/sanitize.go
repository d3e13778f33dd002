package validators

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// maxSearchTermRunes caps free text echoed into LIKE patterns.
const maxSearchTermRunes = 100

// SearchTerm collapses runs of whitespace, composes the text to NFC so a
// decomposed "é" typed on some keyboards still matches stored names, and
// truncates by rune so a multi-byte name is never cut mid-character.
func SearchTerm(raw string) string {
	term := norm.NFC.String(strings.Join(strings.Fields(raw), " "))
	runes := []rune(term)
	if len(runes) > maxSearchTermRunes {
		return string(runes[:maxSearchTermRunes])
	}
	return term
}
