package retrieval

import (
	"fmt"
	"strings"

	"github.com/poiesic/medirag/core"
)

// ContextSeparator joins chunk texts into the prompt context.
const ContextSeparator = "\n\n"

// Unknown labels a citation whose file or chapter is missing.
const Unknown = "Unbekannt"

// NotInDocuments is the reply the model is told to give when the context lacks the answer.
const NotInDocuments = "„Diese Information steht nicht in den vorliegenden Aufklärungsdokumenten.“"

const promptTemplate = `
Du bist ein medizinischer Assistent.

ANTWORTE AUSSCHLIESSLICH basierend auf dem untenstehenden Kontext.
Wenn du die Antwort nicht eindeutig aus dem Kontext ableiten kannst, sage:

%s

---------------------
KONTEXT:
%s

---------------------
FRAGE:
%s

ANTWORT:`

// BuildPrompt embeds the retrieved context and the question into the answer template.
func BuildPrompt(rawContext, question string) string {
	return fmt.Sprintf(promptTemplate, NotInDocuments, rawContext, question)
}

// BuildContext joins the texts of ranked candidates in rank order.
func BuildContext(ranked []core.Candidate) string {
	texts := make([]string, len(ranked))
	for i, c := range ranked {
		texts[i] = c.Chunk.Text
	}
	return strings.Join(texts, ContextSeparator)
}

// FormatCitation renders a citation key as "<file> – Kapitel: <chapter>".
func FormatCitation(key core.CitationKey) string {
	file, chapter := key.SourceFile, key.Chapter
	if file == "" {
		file = Unknown
	}
	if chapter == "" {
		chapter = Unknown
	}
	return fmt.Sprintf("%s – Kapitel: %s", file, chapter)
}

// BuildSources returns one citation per (file, chapter) pair, in order of first occurrence.
func BuildSources(ranked []core.Candidate) []string {
	sources := make([]string, 0, len(ranked))
	seen := make(map[core.CitationKey]struct{}, len(ranked))
	for _, c := range ranked {
		key := c.Chunk.Key()
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		sources = append(sources, FormatCitation(key))
	}
	return sources
}
