package index

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/medirag/ai"
	"github.com/poiesic/medirag/core"
	"github.com/poiesic/medirag/storage"
	"github.com/poiesic/medirag/storage/badger"
)

// Loader builds a fresh Index.
type Loader func(ctx context.Context) (*Index, error)

// FromRepository returns a Loader that reads every stored chunk record.
func FromRepository(repo storage.ChunkRepository, embedder ai.Embedder, logger *slog.Logger) Loader {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "index-loader")

	return func(ctx context.Context) (*Index, error) {
		if repo == nil {
			return nil, ErrRepositoryRequired
		}
		start := time.Now()

		var records []*core.ChunkRecord
		missing := 0
		err := repo.ForEachChunkRecord(ctx, func(record *core.ChunkRecord) error {
			if len(record.Vector) == 0 {
				missing++
			}
			records = append(records, record)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("reading chunk records: %w", err)
		}

		ix, err := New(embedder, records)
		if err != nil {
			return nil, err
		}
		if missing > 0 {
			logger.Warn("skipped chunks without embeddings", "count", missing)
		}
		logger.Info("index loaded",
			"chunks", ix.Len(),
			"dimensions", ix.Dimensions(),
			"duration", time.Since(start))
		return ix, nil
	}
}

// FromStore returns a Loader that opens the badger store at path read-only,
// reads every chunk record and closes the store again. The store stays
// unlocked between builds, so another process can ingest into it while the
// index built from the previous snapshot is serving.
func FromStore(path string, embedder ai.Embedder, logger *slog.Logger) Loader {
	if logger == nil {
		logger = slog.Default()
	}

	return func(ctx context.Context) (*Index, error) {
		backend, err := badger.OpenBackend(path, false,
			badger.WithBackendLogger(logger), badger.WithReadOnly())
		if err != nil {
			return nil, fmt.Errorf("opening store %s: %w", path, err)
		}
		defer backend.Close()

		repo, err := badger.NewChunkRepository(backend)
		if err != nil {
			return nil, err
		}
		defer repo.Close()

		return FromRepository(repo, embedder, logger)(ctx)
	}
}
