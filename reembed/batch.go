package reembed

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/medirag/ai"
	"github.com/poiesic/medirag/core"
	"github.com/poiesic/medirag/storage"
)

// BatchProcessor embeds batches of chunk records.
type BatchProcessor struct {
	repo           storage.ChunkRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
	retryMaxDelay  time.Duration
	logger         *slog.Logger
}

// NewBatchProcessor creates a new batch processor.
// repo may be nil when only Embed is used.
func NewBatchProcessor(repo storage.ChunkRepository, embedder ai.Embedder, config *Config, logger *slog.Logger) (*BatchProcessor, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries <= 0 {
		return nil, ErrInvalidMaxAttempts
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     config.MaxRetries,
		retryBaseDelay: config.RetryDelay,
		retryMaxDelay:  config.MaxRetryDelay,
		logger:         logger.With("component", "batch-embedder"),
	}, nil
}

// Embed sets a normalized embedding of each record's chunk text.
func (bp *BatchProcessor) Embed(ctx context.Context, records []*core.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	texts := make([]string, len(records))
	for i, record := range records {
		texts[i] = record.Chunk.Text
	}

	var embeddings [][]float32
	err := RetryWithBackoff(ctx, bp.logger, func(ctx context.Context) error {
		var err error
		embeddings, err = bp.embedder.EmbedTexts(ctx, texts)
		return err
	}, bp.maxRetries, bp.retryBaseDelay, bp.retryMaxDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.maxRetries, err)
	}

	if len(embeddings) != len(records) {
		return fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingCount, len(records), len(embeddings))
	}

	for i := range records {
		records[i].Vector = ai.NormalizeVector(embeddings[i])
	}
	return nil
}

// Process embeds a batch of stored records and writes the new vectors back.
func (bp *BatchProcessor) Process(ctx context.Context, records []*core.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}
	if bp.repo == nil {
		return ErrRepositoryRequired
	}
	if err := bp.Embed(ctx, records); err != nil {
		return err
	}
	if err := bp.repo.UpdateChunkRecords(ctx, records...); err != nil {
		return fmt.Errorf("failed to update records: %w", err)
	}
	return nil
}
