package search

import "math"

// Default fusion weights.
const (
	DefaultVectorWeight  = 0.7
	DefaultLexicalWeight = 0.3
)

// Fusion linearly combines vector similarity and lexical relevance.
type Fusion struct {
	VectorWeight  float64
	LexicalWeight float64
}

// DefaultFusion returns a Fusion with the default weights.
func DefaultFusion() Fusion {
	return Fusion{VectorWeight: DefaultVectorWeight, LexicalWeight: DefaultLexicalWeight}
}

// Similarity converts a vector distance to a similarity in [0, 1].
// Distances outside [0, 1] are clamped and NaN maps to 0.
func Similarity(distance float64) float64 {
	sim := 1 - distance
	switch {
	case math.IsNaN(sim), sim < 0:
		return 0
	case sim > 1:
		return 1
	}
	return sim
}

// Fuse returns VectorWeight*Similarity(distance) + LexicalWeight*lexical.
// Higher is better. Values are not comparable across queries.
func (f Fusion) Fuse(distance, lexical float64) float64 {
	return f.VectorWeight*Similarity(distance) + f.LexicalWeight*lexical
}
