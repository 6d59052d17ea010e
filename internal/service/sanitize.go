package service

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/flashdeck/flashdeck-api/internal/domain"
)

// unsafeRunes are rejected in strict fields such as names and email
// addresses, where markup or path characters have no legitimate use.
const unsafeRunes = "<>/\\`"

// sanitizeText normalizes user-supplied free text: line endings become
// \n, control characters other than tab and newline are removed, and
// surrounding whitespace is trimmed.
func sanitizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsControl(r) && r != '\t' && r != '\n' {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// sanitizeStrict applies sanitizeText, collapses the value to a single
// line, and rejects characters that would allow markup or path
// injection in short identifying fields.
func sanitizeStrict(s string) (string, error) {
	s = sanitizeText(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	if strings.ContainsAny(s, unsafeRunes) {
		return "", fmt.Errorf("%w: %q contains a reserved character", domain.ErrUnsafeCharacters, s)
	}
	return s, nil
}
