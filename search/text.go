package search

import "strings"

// tokenize splits text on whitespace. Tokens are lower-cased unless
// caseSensitive is set. Punctuation is kept.
func tokenize(text string, caseSensitive bool) []string {
	if !caseSensitive {
		text = strings.ToLower(text)
	}
	return strings.Fields(text)
}

// uniqueTokens returns the distinct tokens in first-seen order.
func uniqueTokens(tokens []string) []string {
	seen := make(map[string]bool, len(tokens))
	unique := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if !seen[t] {
			seen[t] = true
			unique = append(unique, t)
		}
	}
	return unique
}

// termCounts returns the frequency of each token.
func termCounts(tokens []string) map[string]int {
	counts := make(map[string]int, len(tokens))
	for _, t := range tokens {
		counts[t]++
	}
	return counts
}
