package reembed

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/medirag/core"
	"github.com/poiesic/medirag/storage"
	"github.com/poiesic/medirag/storage/badger"
	"github.com/stretchr/testify/require"
)

func setupTestRepo(t *testing.T) storage.ChunkRepository {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

// seedChunks stores n chunks spread over the given sources and returns them in storage order.
func seedChunks(t *testing.T, repo storage.ChunkRepository, n int, sources ...string) []*core.ChunkRecord {
	t.Helper()
	ctx := context.Background()
	if len(sources) == 0 {
		sources = []string{"IP01.xml"}
	}

	bySource := make(map[string][]*core.ChunkRecord)
	for i := 0; i < n; i++ {
		source := sources[i%len(sources)]
		bySource[source] = append(bySource[source], &core.ChunkRecord{
			Chunk: core.Chunk{
				Text:       fmt.Sprintf("Chunk %d aus %s", i, source),
				Chapter:    "Risiken",
				SourceFile: source,
			},
		})
	}
	for source, records := range bySource {
		_, err := repo.ReplaceSource(ctx, source, records)
		require.NoError(t, err)
	}

	var all []*core.ChunkRecord
	err := repo.ForEachChunkRecord(ctx, func(r *core.ChunkRecord) error {
		all = append(all, r)
		return nil
	})
	require.NoError(t, err)
	return all
}
