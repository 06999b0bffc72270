package reembed

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/poiesic/medirag/ai/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig() *Config {
	config := DefaultConfig()
	config.RetryDelay = time.Millisecond
	config.MaxRetryDelay = 5 * time.Millisecond
	return config
}

func TestNewBatchProcessor(t *testing.T) {
	_, err := NewBatchProcessor(nil, nil, nil, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	config := DefaultConfig()
	config.MaxRetries = 0
	_, err = NewBatchProcessor(nil, mock.NewMockEmbedder(), config, nil)
	assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
}

func TestBatchProcessor_Process(t *testing.T) {
	ctx := context.Background()
	repo := setupTestRepo(t)
	records := seedChunks(t, repo, 5)

	embedder := mock.NewMockEmbedder()
	embedder.Dimensions = 8
	processor, err := NewBatchProcessor(repo, embedder, fastConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, processor.Process(ctx, records))
	assert.Equal(t, 1, embedder.CallCount(), "one embedding call per batch")

	stored, err := repo.GetChunkRecords(ctx, "IP01.xml")
	require.NoError(t, err)
	require.Len(t, stored, 5)
	for _, record := range stored {
		assert.Len(t, record.Vector, 8)
	}
}

func TestBatchProcessor_EmptyBatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	processor, err := NewBatchProcessor(nil, embedder, fastConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, processor.Process(context.Background(), nil))
	require.NoError(t, processor.Embed(context.Background(), nil))
	assert.Zero(t, embedder.CallCount())
}

func TestBatchProcessor_ProcessWithoutRepository(t *testing.T) {
	repo := setupTestRepo(t)
	records := seedChunks(t, repo, 1)

	processor, err := NewBatchProcessor(nil, mock.NewMockEmbedder(), fastConfig(), nil)
	require.NoError(t, err)

	err = processor.Process(context.Background(), records)
	assert.ErrorIs(t, err, ErrRepositoryRequired)
}

func TestBatchProcessor_EmbeddingError(t *testing.T) {
	repo := setupTestRepo(t)
	records := seedChunks(t, repo, 2)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("model not loaded")
	}
	config := fastConfig()
	config.MaxRetries = 2
	processor, err := NewBatchProcessor(repo, embedder, config, nil)
	require.NoError(t, err)

	err = processor.Process(context.Background(), records)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 2 attempts")
	assert.Contains(t, err.Error(), "model not loaded")
	assert.Equal(t, 2, embedder.CallCount())

	stored, err := repo.GetChunkRecords(context.Background(), "IP01.xml")
	require.NoError(t, err)
	for _, record := range stored {
		assert.Empty(t, record.Vector, "failed batch must not be written")
	}
}

func TestBatchProcessor_Retry(t *testing.T) {
	repo := setupTestRepo(t)
	records := seedChunks(t, repo, 3)

	calls := 0
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		calls++
		if calls < 3 {
			return nil, errors.New("temporary failure")
		}
		vectors := make([][]float32, len(texts))
		for i := range texts {
			vectors[i] = []float32{3, 4}
		}
		return vectors, nil
	}
	processor, err := NewBatchProcessor(repo, embedder, fastConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, processor.Process(context.Background(), records))
	assert.Equal(t, 3, calls)
}

func TestBatchProcessor_CountMismatch(t *testing.T) {
	repo := setupTestRepo(t)
	records := seedChunks(t, repo, 3)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	}
	processor, err := NewBatchProcessor(repo, embedder, fastConfig(), nil)
	require.NoError(t, err)

	err = processor.Process(context.Background(), records)
	assert.ErrorIs(t, err, ErrEmbeddingCount)
}

func TestBatchProcessor_ContextCancellation(t *testing.T) {
	repo := setupTestRepo(t)
	records := seedChunks(t, repo, 2)

	processor, err := NewBatchProcessor(repo, mock.NewMockEmbedder(), fastConfig(), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = processor.Process(ctx, records)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatchProcessor_VectorNormalization(t *testing.T) {
	repo := setupTestRepo(t)
	records := seedChunks(t, repo, 1)

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{3, 4}}, nil
	}
	processor, err := NewBatchProcessor(nil, embedder, fastConfig(), nil)
	require.NoError(t, err)

	require.NoError(t, processor.Embed(context.Background(), records))

	vector := records[0].Vector
	require.Len(t, vector, 2)
	assert.InDelta(t, 0.6, vector[0], 1e-6)
	assert.InDelta(t, 0.8, vector[1], 1e-6)

	var sumSquares float64
	for _, v := range vector {
		sumSquares += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sumSquares), 1e-6)
}
