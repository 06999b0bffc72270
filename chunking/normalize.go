package chunking

import (
	"regexp"
	"strings"
)

var (
	numericRefPattern = regexp.MustCompile(`\(\d+\)`)
	annotationPattern = regexp.MustCompile(`\[[^\]]*\]`)
	whitespacePattern = regexp.MustCompile(`[\s\p{Z}]+`)
)

// Normalize strips whitespace noise and citation artifacts from raw text.
// Numeric reference markers like "(12)" and bracketed annotations like
// "[citation]" are removed, whitespace runs collapse to one space and the
// result is trimmed. Markers are removed before collapsing so their removal
// never leaves a double space behind.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}
	text := numericRefPattern.ReplaceAllString(raw, "")
	text = annotationPattern.ReplaceAllString(text, "")
	text = whitespacePattern.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
