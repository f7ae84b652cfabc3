package utils

import (
	"strings"
	"unicode"
)

// CleanText normalizes user-provided chat input before it is embedded or
// placed into a prompt. It strips HTML/XML tags, drops control characters
// and collapses runs of whitespace into single spaces.
// The raw text is what gets stored; this cleaned form is only used for
// embedding and prompting.
func CleanText(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	inTag := false
	for _, r := range raw {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			if inTag {
				inTag = false
				b.WriteRune(' ')
				continue
			}
			b.WriteRune(r)
		case inTag:
			// skip tag contents
		case unicode.IsControl(r):
			b.WriteRune(' ')
		default:
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}

// ClampRunes truncates text to at most 'limit' runes. Used to keep prompts
// inside the provider's context window without failing the request.
func ClampRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit])
}
