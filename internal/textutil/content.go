package textutil

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// NormalizeContent trims surrounding whitespace and composes the text to NFC so
// that "é" typed as e + U+0301 counts as one character, the same way Postgres
// counts it against a varchar limit.
func NormalizeContent(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Length is the number of characters (runes) in s.
func Length(s string) int {
	return utf8.RuneCountInString(s)
}
