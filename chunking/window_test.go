package chunking

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_SplitsAcrossFragmentBoundary(t *testing.T) {
	a := strings.Repeat("A", 50)
	b := strings.Repeat("B", 50)
	joined := a + "\n" + b

	chunks := Window([]string{a, b}, "Risiken", "IP07.xml", 60, 0)

	require.Len(t, chunks, 2)
	assert.Equal(t, joined[:60], chunks[0].Text)
	assert.Equal(t, joined[60:], chunks[1].Text)
	for _, c := range chunks {
		assert.Equal(t, "Risiken", c.Chapter)
		assert.Equal(t, "IP07.xml", c.SourceFile)
	}
}

func TestWindow_FitsInOneChunk(t *testing.T) {
	chunks := Window([]string{"kurz", "auch kurz"}, "Einleitung", "a.xml", 100, 0)

	require.Len(t, chunks, 1)
	assert.Equal(t, "kurz\nauch kurz", chunks[0].Text)
}

func TestWindow_EmptyInput(t *testing.T) {
	assert.Empty(t, Window(nil, "c", "f", 10, 0))
	assert.Empty(t, Window([]string{"text"}, "c", "f", 0, 0))
}

func sampleFragments() []string {
	var fragments []string
	for i := 0; i < 12; i++ {
		fragments = append(fragments, fmt.Sprintf(
			"Absatz %d beschreibt mögliche Komplikationen wie Blutungen, Infektionen und Schmerzen nach dem Eingriff.", i))
	}
	fragments = append(fragments, strings.Repeat("x", 130))
	return fragments
}

func TestWindow_RoundTripWithoutOverlap(t *testing.T) {
	fragments := sampleFragments()
	joined := strings.Join(fragments, "\n")

	for _, maxChars := range []int{7, 40, 61, 100, 1000} {
		t.Run(fmt.Sprintf("max=%d", maxChars), func(t *testing.T) {
			chunks := Window(fragments, "Risiken", "a.xml", maxChars, 0)

			var b strings.Builder
			for _, c := range chunks {
				b.WriteString(c.Text)
			}
			assert.Equal(t, joined, b.String())
		})
	}
}

func TestWindow_LengthBounds(t *testing.T) {
	fragments := sampleFragments()

	for _, maxChars := range []int{1, 7, 40, 61, 100} {
		for _, overlap := range []int{0, 1, 5, 200} {
			t.Run(fmt.Sprintf("max=%d/overlap=%d", maxChars, overlap), func(t *testing.T) {
				chunks := Window(fragments, "Risiken", "a.xml", maxChars, overlap)
				require.NotEmpty(t, chunks)
				for _, c := range chunks {
					n := len([]rune(c.Text))
					assert.Greater(t, n, 0)
					assert.LessOrEqual(t, n, maxChars)
				}
			})
		}
	}
}

func TestWindow_Overlap(t *testing.T) {
	chunks := Window([]string{"abcdefghij"}, "c", "f", 4, 2)

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	assert.Equal(t, []string{"abcd", "cdef", "efgh", "ghij"}, texts)
}

func TestWindow_CountsCharactersNotBytes(t *testing.T) {
	text := strings.Repeat("ä", 10)
	chunks := Window([]string{text}, "c", "f", 5, 0)

	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("ä", 5), chunks[0].Text)
	assert.Equal(t, strings.Repeat("ä", 5), chunks[1].Text)
}

func TestWindow_HardCutKeepsNonSpaceText(t *testing.T) {
	joined := strings.Repeat("a ", 12) + "end"
	chunks := Window([]string{joined}, "Risiken", "IP07.xml", 5, 0)
	require.NotEmpty(t, chunks)

	var got strings.Builder
	for _, c := range chunks {
		assert.LessOrEqual(t, len([]rune(c.Text)), 5)
		assert.Equal(t, strings.TrimSpace(c.Text), c.Text)
		got.WriteString(c.Text)
	}
	// Only whitespace at hard cuts is dropped.
	assert.Equal(t, strings.Join(strings.Fields(joined), ""), strings.Join(strings.Fields(got.String()), ""))
	assert.NotEqual(t, joined, got.String())
}
