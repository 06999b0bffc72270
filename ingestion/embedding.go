package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/medirag/core"
	"github.com/poiesic/medirag/reembed"
	"github.com/poiesic/medirag/storage"
)

// embeddingProcessor embeds chunks and stores them as the new record set of their source.
type embeddingProcessor struct {
	repo      storage.ChunkRepository
	batcher   *reembed.BatchProcessor
	batchSize int
	logger    *slog.Logger
}

var _ processor = (*embeddingProcessor)(nil)

// newEmbeddingProcessor creates a new embedding processor.
func newEmbeddingProcessor(repo storage.ChunkRepository, batcher *reembed.BatchProcessor, batchSize int, logger *slog.Logger) (processor, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if batcher == nil {
		return nil, fmt.Errorf("batch embedder required")
	}
	if batchSize <= 0 {
		batchSize = reembed.DefaultBatchSize
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &embeddingProcessor{
		repo:      repo,
		batcher:   batcher,
		batchSize: batchSize,
		logger:    logger.With("processor", "embeddings"),
	}, nil
}

// process embeds chunks batch by batch, then swaps them in for source.
// Nothing is written unless every batch embeds successfully.
// An empty chunk list removes the source.
func (ep *embeddingProcessor) process(ctx context.Context, source string, chunks []core.Chunk) (int, error) {
	if len(chunks) == 0 {
		err := ep.repo.DeleteSource(ctx, source)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return 0, err
		}
		return 0, nil
	}

	records := make([]*core.ChunkRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = &core.ChunkRecord{Chunk: chunk}
	}

	ep.logger.Debug("embedding chunks", "source", source, "chunks", len(records))
	for start := 0; start < len(records); start += ep.batchSize {
		end := min(start+ep.batchSize, len(records))
		if err := ep.batcher.Embed(ctx, records[start:end]); err != nil {
			return 0, fmt.Errorf("embedding %s: %w", source, err)
		}
	}

	stored, err := ep.repo.ReplaceSource(ctx, source, records)
	if err != nil {
		return 0, fmt.Errorf("storing %s: %w", source, err)
	}
	return len(stored), nil
}
