package chunking

import "strings"

type tagSet map[string]struct{}

func newTagSet(tags []string) tagSet {
	set := make(tagSet, len(tags))
	for _, t := range tags {
		if t = lowerTag(t); t != "" {
			set[t] = struct{}{}
		}
	}
	return set
}

func (s tagSet) has(tag string) bool {
	_, ok := s[tag]
	return ok
}

func lowerTag(tag string) string {
	return strings.ToLower(strings.TrimSpace(tag))
}
