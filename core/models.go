package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"strconv"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored chunk records.
// It is derived from content so re-ingesting an unchanged document yields the same IDs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Chunk is a bounded, chapter-labeled unit of document text.
// It is the atomic retrieval object.
type Chunk struct {
	Text       string `json:"text"`
	Chapter    string `json:"kapitel"`
	SourceFile string `json:"file"`
}

// CitationKey identifies the (source file, chapter) pair a chunk is cited under.
type CitationKey struct {
	SourceFile string
	Chapter    string
}

// Key returns the citation key of the chunk.
func (c Chunk) Key() CitationKey {
	return CitationKey{SourceFile: c.SourceFile, Chapter: c.Chapter}
}

// Section is a named grouping of text fragments within a document.
// Fragments are normalized, meaningful and in document order.
type Section struct {
	Chapter   string
	Fragments []string
}

// ChunkRecord is a chunk as persisted in the chunk repository.
// Seq is the position of the chunk within its source document.
type ChunkRecord struct {
	Id     ID
	Chunk  Chunk
	Seq    int
	Vector []float32 // Embedding vector (populated during ingestion)
}

// RecordID returns the content-derived ID of a chunk at position seq of its source.
func RecordID(c Chunk, seq int) ID {
	return IDFromContent(c.SourceFile + "\x00" + c.Chapter + "\x00" + c.Text + "\x00" + strconv.Itoa(seq))
}

// Hit is a nearest-neighbor result from the vector index.
type Hit struct {
	Chunk    Chunk
	Distance float64
}

// Candidate is a chunk plus the retrieval-time scores computed for one query.
type Candidate struct {
	Chunk          Chunk
	VectorDistance float64
	LexicalScore   float64
	FusedScore     float64
}

// RetrievalResult is the unit returned to the caller of a query.
type RetrievalResult struct {
	Answer     string   `json:"answer"`
	Sources    []string `json:"sources"`
	RawContext string   `json:"raw_context"`
}
