package moderation

import (
	"strings"
	"unicode"
)

// Slugify derives the stable record identifier from a display name. Letters
// and digits are kept (lowercased), each whitespace run becomes a single
// hyphen, literal hyphens survive, and everything else is stripped. Non-Latin
// scripts count as letters so Korean names stay addressable.
func Slugify(name string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range strings.TrimSpace(name) {
		if unicode.IsSpace(r) {
			inSpace = true
			continue
		}
		if inSpace {
			b.WriteRune('-')
			inSpace = false
		}
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
		case r == '-':
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
