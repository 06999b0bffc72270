package search

import (
	"math"

	"github.com/poiesic/medirag/core"
)

// LexicalScorer scores candidates against a query with TF-IDF, using only the
// candidate set as the reference corpus. Scores are non-negative and
// unbounded, and are comparable only within a single call.
type LexicalScorer struct {
	caseSensitive bool
}

// NewLexicalScorer creates a LexicalScorer.
func NewLexicalScorer(caseSensitive bool) *LexicalScorer {
	return &LexicalScorer{caseSensitive: caseSensitive}
}

// Score returns one score per candidate, aligned with candidates.
//
// For each distinct query term t the candidate gains tf(t) * idf(t), where tf
// is the raw count of t in the candidate text and
// idf(t) = ln((1+N)/(1+df(t))) + 1 over the N candidates.
func (s *LexicalScorer) Score(query string, candidates []core.Chunk) []float64 {
	scores := make([]float64, len(candidates))
	terms := uniqueTokens(tokenize(query, s.caseSensitive))
	if len(terms) == 0 || len(candidates) == 0 {
		return scores
	}

	counts := make([]map[string]int, len(candidates))
	df := make(map[string]int, len(terms))
	for i, c := range candidates {
		counts[i] = termCounts(tokenize(c.Text, s.caseSensitive))
		for _, t := range terms {
			if counts[i][t] > 0 {
				df[t]++
			}
		}
	}

	n := float64(len(candidates))
	for i := range candidates {
		var score float64
		for _, t := range terms {
			tf := counts[i][t]
			if tf == 0 {
				continue
			}
			idf := math.Log((1+n)/(1+float64(df[t]))) + 1
			score += float64(tf) * idf
		}
		scores[i] = score
	}
	return scores
}
