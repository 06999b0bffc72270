package index

import (
	"context"
	"fmt"
	"sort"

	"github.com/poiesic/medirag/ai"
	"github.com/poiesic/medirag/core"
)

type entry struct {
	chunk  core.Chunk
	vector []float32
}

// Index is an immutable nearest-neighbor index over chunk vectors.
type Index struct {
	embedder   ai.Embedder
	entries    []entry
	dimensions int
}

// New builds an index from stored records.
// Records without a vector are skipped. Vectors are stored normalized.
func New(embedder ai.Embedder, records []*core.ChunkRecord) (*Index, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	ix := &Index{embedder: embedder}
	for _, record := range records {
		if record == nil || len(record.Vector) == 0 {
			continue
		}
		if ix.dimensions == 0 {
			ix.dimensions = len(record.Vector)
		} else if len(record.Vector) != ix.dimensions {
			return nil, fmt.Errorf("%w: %s#%d has %d dimensions, want %d",
				ErrDimensionMismatch, record.Chunk.SourceFile, record.Seq, len(record.Vector), ix.dimensions)
		}
		ix.entries = append(ix.entries, entry{
			chunk:  record.Chunk,
			vector: ai.NormalizeVector(record.Vector),
		})
	}
	return ix, nil
}

// Len returns the number of indexed chunks.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Dimensions returns the vector length of the index, or 0 when it is empty.
func (ix *Index) Dimensions() int {
	return ix.dimensions
}

// Search embeds query and returns up to k chunks ordered by ascending cosine distance.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]core.Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	if len(ix.entries) == 0 {
		return []core.Hit{}, nil
	}
	vector, err := ix.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	return ix.SearchVector(vector, k)
}

// SearchVector returns up to k chunks nearest to vector.
// Chunks at equal distance keep their storage order.
func (ix *Index) SearchVector(vector []float32, k int) ([]core.Hit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidK, k)
	}
	if len(ix.entries) == 0 {
		return []core.Hit{}, nil
	}
	if len(vector) != ix.dimensions {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			ErrDimensionMismatch, len(vector), ix.dimensions)
	}

	query := ai.NormalizeVector(vector)
	hits := make([]core.Hit, len(ix.entries))
	for i, e := range ix.entries {
		hits[i] = core.Hit{
			Chunk:    e.chunk,
			Distance: ai.CosineDistance(query, e.vector),
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}
