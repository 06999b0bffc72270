package chunking

import (
	"strings"
	"unicode/utf8"
)

// DefaultMinLength is the shortest normalized fragment considered meaningful.
const DefaultMinLength = 40

// DefaultDenylist holds authoring-tool and code-like tokens that mark a
// fragment as leaked markup rather than prose.
var DefaultDenylist = []string{
	"xmlns",
	"<?xml",
	"xsi:",
	"http://www.w3.org",
	"<![cdata[",
	"doctype",
	"javascript:",
	"function(",
	"{{",
	"}}",
}

// Filter decides whether a normalized fragment is worth indexing.
type Filter struct {
	minLength int
	denylist  []string
}

// NewFilter creates a Filter. Length is measured in characters, not bytes.
// Denylist tokens match case-insensitively as substrings.
func NewFilter(minLength int, denylist []string) *Filter {
	lowered := make([]string, 0, len(denylist))
	for _, token := range denylist {
		if token = strings.ToLower(strings.TrimSpace(token)); token != "" {
			lowered = append(lowered, token)
		}
	}
	return &Filter{minLength: minLength, denylist: lowered}
}

// DefaultFilter returns a Filter with DefaultMinLength and DefaultDenylist.
func DefaultFilter() *Filter {
	return NewFilter(DefaultMinLength, DefaultDenylist)
}

// IsMeaningful reports whether text is long enough and free of denylisted tokens.
func (f *Filter) IsMeaningful(text string) bool {
	if utf8.RuneCountInString(text) < f.minLength {
		return false
	}
	lower := strings.ToLower(text)
	for _, token := range f.denylist {
		if strings.Contains(lower, token) {
			return false
		}
	}
	return true
}
