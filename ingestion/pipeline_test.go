package ingestion

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/medirag/ai/mock"
	"github.com/poiesic/medirag/chunking"
	"github.com/poiesic/medirag/core"
	"github.com/poiesic/medirag/storage"
	"github.com/poiesic/medirag/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const procedureDocument = `<?xml version="1.0" encoding="UTF-8"?>
<bogen>
  <infoteil>
    <einleitung>
      <a>Sehr geehrte Patientin, sehr geehrter Patient, bitte lesen Sie diese Informationen.</a>
    </einleitung>
    <risikokatalog>
      <titel>Risiken</titel>
      <risiko>Blutungen können auftreten und müssen eventuell gestillt werden.</risiko>
    </risikokatalog>
  </infoteil>
</bogen>`

const revisedDocument = `<?xml version="1.0" encoding="UTF-8"?>
<bogen>
  <infoteil>
    <risikokatalog>
      <titel>Risiken</titel>
      <risiko>Infektionen an der Einstichstelle sind in seltenen Fällen möglich.</risiko>
    </risikokatalog>
  </infoteil>
</bogen>`

const emptyDocument = `<bogen><infoteil><einleitung><a>Kurz.</a></einleitung></infoteil></bogen>`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func setupTestRepository(t *testing.T) storage.ChunkRepository {
	t.Helper()
	repo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func setupTestChunker(t *testing.T) *chunking.Pipeline {
	t.Helper()
	chunker, err := chunking.NewPipeline(chunking.WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(chunker.Release)
	return chunker
}

func setupTestPipeline(t *testing.T, repo storage.ChunkRepository, provider *mock.MockProvider, opts ...Option) *Pipeline {
	t.Helper()
	p, err := NewPipeline(repo, provider, setupTestChunker(t), opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p
}

func newMockProvider() *mock.MockProvider {
	embedder := mock.NewMockEmbedder()
	embedder.Dimensions = 8
	return mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator(mock.DefaultAnswer)).(*mock.MockProvider)
}

func TestNewPipeline(t *testing.T) {
	repo := setupTestRepository(t)
	provider := newMockProvider()
	chunker := setupTestChunker(t)

	tests := []struct {
		name    string
		build   func() (*Pipeline, error)
		wantErr error
	}{
		{"nil repository", func() (*Pipeline, error) { return NewPipeline(nil, provider, chunker) }, ErrRepositoryRequired},
		{"nil provider", func() (*Pipeline, error) { return NewPipeline(repo, nil, chunker) }, ErrAIProviderRequired},
		{"nil chunker", func() (*Pipeline, error) { return NewPipeline(repo, provider, nil) }, ErrChunkerRequired},
		{"bad retry", func() (*Pipeline, error) { return NewPipeline(repo, provider, chunker, WithRetry(0, time.Second)) }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := tt.build()
			assert.Error(t, err)
			assert.Nil(t, p)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}

	t.Run("with options", func(t *testing.T) {
		p, err := NewPipeline(repo, provider, chunker,
			WithPoolSize(3),
			WithPoolSize(0),
			WithBatchSize(4),
			WithRetry(2, time.Millisecond),
			WithLogger(nil))
		require.NoError(t, err)
		defer p.Release()

		assert.Equal(t, 1, p.embeddingPool.Cap())
		assert.Equal(t, 4, p.embedConfig.BatchSize)
		assert.Equal(t, 2, p.embedConfig.MaxRetries)
	})
}

func TestPipeline_Ingest(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeFile(t, dir, "IP07.xml", procedureDocument)
	writeFile(t, dir, "sub/IP12.XML", revisedDocument)
	writeFile(t, dir, "notes.txt", "ignored")

	repo := setupTestRepository(t)
	provider := newMockProvider()
	var progress bytes.Buffer
	p := setupTestPipeline(t, repo, provider, WithProgress(&progress), WithBatchSize(1))

	report, err := p.Ingest(ctx, dir)
	require.NoError(t, err)
	require.Len(t, report.Files, 2)
	assert.NoError(t, report.Err())
	assert.Equal(t, 2, report.Count(StatusStored))
	assert.Equal(t, 3, report.Chunks())
	assert.Contains(t, progress.String(), "2/2 files")

	// One embedding call per chunk with batch size 1
	assert.Equal(t, 3, provider.GetMockEmbedder().CallCount())

	sources, err := repo.Sources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"IP07.xml", "IP12.XML"}, sources)

	records, err := repo.GetChunkRecords(ctx, "IP07.xml")
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "einleitung", records[0].Chunk.Chapter)
	assert.Equal(t, "Risiken", records[1].Chunk.Chapter)
	for _, record := range records {
		assert.Len(t, record.Vector, 8)
	}
}

func TestPipeline_ReingestReplacesChunks(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := writeFile(t, dir, "IP07.xml", procedureDocument)

	repo := setupTestRepository(t)
	p := setupTestPipeline(t, repo, newMockProvider())

	_, err := p.Ingest(ctx, path)
	require.NoError(t, err)

	writeFile(t, dir, "IP07.xml", revisedDocument)
	report, err := p.Ingest(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Chunks())

	records, err := repo.GetChunkRecords(ctx, "IP07.xml")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Contains(t, records[0].Chunk.Text, "Infektionen")

	t.Run("empty document clears previous chunks", func(t *testing.T) {
		writeFile(t, dir, "IP07.xml", emptyDocument)
		report, err := p.Ingest(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, StatusEmpty, report.Files[0].Status)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestPipeline_PartialFailures(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	good := writeFile(t, dir, "a/IP07.xml", procedureDocument)
	broken := writeFile(t, dir, "broken.xml", "<bogen><infoteil>")
	empty := writeFile(t, dir, "empty.xml", emptyDocument)
	dup := writeFile(t, dir, "b/IP07.xml", revisedDocument)
	missing := filepath.Join(dir, "missing.xml")

	repo := setupTestRepository(t)
	p := setupTestPipeline(t, repo, newMockProvider())

	report, err := p.IngestFiles(ctx, []string{good, broken, empty, dup, missing})
	require.NoError(t, err)
	require.Len(t, report.Files, 5)

	assert.Equal(t, StatusStored, report.Files[0].Status)
	assert.Equal(t, StatusFailed, report.Files[1].Status)
	assert.ErrorIs(t, report.Files[1].Err, core.ErrParse)
	assert.Equal(t, StatusEmpty, report.Files[2].Status)
	assert.Equal(t, StatusFailed, report.Files[3].Status)
	assert.ErrorIs(t, report.Files[3].Err, ErrDuplicateSource)
	assert.Equal(t, StatusFailed, report.Files[4].Status)
	assert.ErrorIs(t, report.Files[4].Err, core.ErrParse)

	assert.Equal(t, 3, report.Count(StatusFailed))
	assert.ErrorIs(t, report.Err(), core.ErrParse)
	assert.ErrorIs(t, report.Err(), ErrDuplicateSource)

	records, err := repo.GetChunkRecords(ctx, "IP07.xml")
	require.NoError(t, err)
	assert.Len(t, records, 2, "first IP07.xml wins")
}

func TestPipeline_EmbeddingFailureKeepsPreviousChunks(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := writeFile(t, dir, "IP07.xml", procedureDocument)

	repo := setupTestRepository(t)
	provider := newMockProvider()
	p := setupTestPipeline(t, repo, provider, WithRetry(1, time.Millisecond))

	_, err := p.Ingest(ctx, path)
	require.NoError(t, err)

	provider.GetMockEmbedder().EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding service down")
	}
	writeFile(t, dir, "IP07.xml", revisedDocument)

	report, err := p.Ingest(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, report.Files[0].Status)
	assert.ErrorContains(t, report.Files[0].Err, "embedding service down")

	records, err := repo.GetChunkRecords(ctx, "IP07.xml")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestPipeline_NoDocuments(t *testing.T) {
	p := setupTestPipeline(t, setupTestRepository(t), newMockProvider())

	_, err := p.Ingest(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, ErrNoDocuments)
}

func TestPipeline_Canceled(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "IP07.xml", procedureDocument)
	p := setupTestPipeline(t, setupTestRepository(t), newMockProvider())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Ingest(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPipeline_Release(t *testing.T) {
	p, err := NewPipeline(setupTestRepository(t), newMockProvider(), setupTestChunker(t))
	require.NoError(t, err)

	p.Release()
	assert.True(t, p.embeddingPool.IsClosed())
}

func TestReport(t *testing.T) {
	report := &Report{Files: []FileReport{
		{Path: "a.xml", Status: StatusStored, Chunks: 4},
		{Path: "b.xml", Status: StatusEmpty},
		{Path: "c.xml", Status: StatusStored, Chunks: 1},
	}}
	assert.Equal(t, 5, report.Chunks())
	assert.Equal(t, 2, report.Count(StatusStored))
	assert.NoError(t, report.Err())

	assert.Equal(t, "stored", StatusStored.String())
	assert.Equal(t, "empty", StatusEmpty.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}
