package shared

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Slugify builds a URL slug from a title. Unicode letters survive, so
// Persian titles keep their script instead of degrading to empty slugs.
func Slugify(s string) string {
	s = norm.NFKC.String(strings.TrimSpace(strings.ToLower(s)))
	var b strings.Builder
	pendingDash := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteRune('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
