package search

import (
	"math"
	"testing"

	"github.com/poiesic/medirag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexicalScorer_Score(t *testing.T) {
	candidates := []core.Chunk{
		chunk("Blutungen sind selten"),
		chunk("Blutungen Blutungen und Infektionen"),
		chunk("keine Treffer hier"),
	}

	scores := NewLexicalScorer(true).Score("Blutungen Infektionen", candidates)
	require.Len(t, scores, 3)

	// df(Blutungen)=2, df(Infektionen)=1 over N=3 candidates.
	idfBlutungen := math.Log(4.0/3.0) + 1
	idfInfektionen := math.Log(4.0/2.0) + 1

	assert.InDelta(t, idfBlutungen, scores[0], 1e-12)
	assert.InDelta(t, 2*idfBlutungen+idfInfektionen, scores[1], 1e-12)
	assert.Equal(t, 0.0, scores[2])
}

func TestLexicalScorer_CaseSensitivity(t *testing.T) {
	candidates := []core.Chunk{chunk("Narkose und Betäubung")}

	assert.Equal(t, 0.0, NewLexicalScorer(true).Score("narkose", candidates)[0])
	assert.Greater(t, NewLexicalScorer(false).Score("narkose", candidates)[0], 0.0)
}

func TestLexicalScorer_RepeatedQueryTerms(t *testing.T) {
	candidates := []core.Chunk{chunk("Schmerzen nach dem Eingriff")}
	s := NewLexicalScorer(true)

	assert.Equal(t, s.Score("Schmerzen", candidates), s.Score("Schmerzen Schmerzen", candidates))
}

func TestLexicalScorer_LocalCorpus(t *testing.T) {
	s := NewLexicalScorer(true)
	target := chunk("Thrombose möglich")

	alone := s.Score("Thrombose", []core.Chunk{target})[0]
	inPool := s.Score("Thrombose", []core.Chunk{target, chunk("ohne"), chunk("nichts")})[0]

	// Rarer within a larger pool, so a higher IDF.
	assert.Greater(t, inPool, alone)
}

func TestLexicalScorer_EmptyInputs(t *testing.T) {
	s := NewLexicalScorer(true)

	assert.Empty(t, s.Score("q", nil))
	assert.Equal(t, []float64{0, 0}, s.Score("   ", []core.Chunk{chunk("a"), chunk("b")}))
}
