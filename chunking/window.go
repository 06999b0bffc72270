package chunking

import (
	"strings"
	"unicode"

	"github.com/poiesic/medirag/core"
)

// Window splits the fragments of one section into chunks of at most maxChars
// characters. Fragments are joined with a newline and windows advance by
// maxChars-overlap. A window end that would split a word from its adjacent
// whitespace is moved back to the nearest boundary between two non-space
// characters, so with overlap 0 the chunk texts concatenate back to the joined
// text. A window with no such boundary, which only happens when every word in
// it is a single character, is cut hard at maxChars; whitespace at a hard cut
// is lost to trimming, so only the non-space characters round-trip there.
//
// Each window is trimmed and dropped if empty. Every chunk carries chapter and
// sourceFile unchanged. overlap is clamped to [0, maxChars-1].
func Window(fragments []string, chapter, sourceFile string, maxChars, overlap int) []core.Chunk {
	if maxChars <= 0 || len(fragments) == 0 {
		return nil
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= maxChars {
		overlap = maxChars - 1
	}

	text := []rune(strings.Join(fragments, "\n"))

	var chunks []core.Chunk
	start := 0
	for start < len(text) {
		end := start + maxChars
		if end >= len(text) {
			end = len(text)
		} else {
			end = cutPoint(text, start, end)
		}

		if piece := strings.TrimSpace(string(text[start:end])); piece != "" {
			chunks = append(chunks, core.Chunk{
				Text:       piece,
				Chapter:    chapter,
				SourceFile: sourceFile,
			})
		}

		if end == len(text) {
			break
		}
		next := end - overlap
		if next <= start {
			next = start + 1
		}
		start = next
	}

	return chunks
}

// cutPoint returns the largest p in (start, limit] where neither text[p-1]
// nor text[p] is whitespace, or limit if there is none. limit < len(text).
func cutPoint(text []rune, start, limit int) int {
	for p := limit; p > start; p-- {
		if !unicode.IsSpace(text[p-1]) && !unicode.IsSpace(text[p]) {
			return p
		}
	}
	return limit
}
