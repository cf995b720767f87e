package grammar

import (
	"strings"
	"unicode"
)

// isSpace reports whitespace the way the word splitter sees it: unicode
// spaces plus the ASCII file, group, record and unit separators.
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}

// Words splits s into whitespace-separated words.
func Words(s string) []string {
	return strings.FieldsFunc(s, isSpace)
}

// TrimText strips leading and trailing whitespace from s.
func TrimText(s string) string {
	return strings.TrimFunc(s, isSpace)
}
