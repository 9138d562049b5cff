package util

import (
	"regexp"
	"strings"
)

var (
	reQuotes = regexp.MustCompile(`["'` + "`" + `«»“”‘’]`)
	reSpaces = regexp.MustCompile(`\s+`)
)

// Fold lowercases, drops quotes, collapses whitespace and trims trailing punctuation.
func Fold(input string) string {
	s := strings.ToLower(strings.ReplaceAll(input, "\u00A0", " "))
	s = reQuotes.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimRight(s, ".,;:!"))
}
