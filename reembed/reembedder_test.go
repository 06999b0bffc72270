package reembed

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/poiesic/medirag/ai/mock"
	"github.com/poiesic/medirag/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewReembedder(t *testing.T) {
	_, err := NewReembedder(nil, mock.NewMockEmbedder(), nil, nil, nil)
	assert.ErrorIs(t, err, ErrRepositoryRequired)

	_, err = NewReembedder(setupTestRepo(t), nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestReembedder_Run(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	seedChunks(t, repo, 7, "a.xml", "b.xml")

	embedder := mock.NewMockEmbedder()
	embedder.Dimensions = 4
	config := fastConfig()
	config.BatchSize = 3
	config.ReportInterval = 1

	var progress bytes.Buffer
	reembedder, err := NewReembedder(repo, embedder, config, &progress, nil)
	require.NoError(t, err)

	summary, err := reembedder.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 7, summary.Chunks)
	assert.Equal(t, 3, summary.Batches)
	assert.Equal(t, 3, embedder.CallCount())
	assert.Contains(t, progress.String(), "7/7 chunks")

	err = repo.ForEachChunkRecord(ctx, func(record *core.ChunkRecord) error {
		assert.Len(t, record.Vector, 4)
		return nil
	})
	require.NoError(t, err)
}

func TestReembedder_Idempotent(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	seedChunks(t, repo, 4)

	reembedder, err := NewReembedder(repo, mock.NewMockEmbedder(), fastConfig(), nil, nil)
	require.NoError(t, err)

	_, err = reembedder.Run(ctx)
	require.NoError(t, err)
	first, err := repo.GetChunkRecords(ctx, "IP01.xml")
	require.NoError(t, err)

	_, err = reembedder.Run(ctx)
	require.NoError(t, err)
	second, err := repo.GetChunkRecords(ctx, "IP01.xml")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestReembedder_EmptyDatabase(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	reembedder, err := NewReembedder(setupTestRepo(t), embedder, nil, nil, nil)
	require.NoError(t, err)

	summary, err := reembedder.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, summary.Chunks)
	assert.Zero(t, embedder.CallCount())
}

func TestReembedder_EmbeddingError(t *testing.T) {
	repo := setupTestRepo(t)
	seedChunks(t, repo, 5)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding API down")
	}
	config := fastConfig()
	config.MaxRetries = 1
	config.BatchSize = 2

	reembedder, err := NewReembedder(repo, embedder, config, nil, nil)
	require.NoError(t, err)

	summary, err := reembedder.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch 1")
	assert.Contains(t, err.Error(), "embedding API down")
	assert.Zero(t, summary.Chunks)
}

func TestReembedder_ContextCancellation(t *testing.T) {
	repo := setupTestRepo(t)
	seedChunks(t, repo, 10)

	ctx, cancel := context.WithCancel(context.Background())
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(c context.Context, texts []string) ([][]float32, error) {
		cancel()
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{1, 0}
		}
		return vectors, nil
	}
	config := fastConfig()
	config.BatchSize = 2

	reembedder, err := NewReembedder(repo, embedder, config, nil, nil)
	require.NoError(t, err)

	_, err = reembedder.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, DefaultBatchSize, config.BatchSize)
	assert.Equal(t, 3, config.MaxRetries)
	assert.Positive(t, config.RetryDelay)
	assert.GreaterOrEqual(t, config.MaxRetryDelay, config.RetryDelay)
}
