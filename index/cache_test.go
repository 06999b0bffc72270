package index

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/medirag/core"
	"github.com/poiesic/medirag/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticLoader(t *testing.T, texts ...string) Loader {
	t.Helper()
	records := make([]*core.ChunkRecord, len(texts))
	for i, text := range texts {
		records[i] = record(text, 1, float32(i))
	}
	return func(ctx context.Context) (*Index, error) {
		return New(fixedEmbedder(1, 0), records)
	}
}

func TestNewCache_RequiresLoader(t *testing.T) {
	_, err := NewCache(nil)
	assert.ErrorIs(t, err, ErrLoaderRequired)
}

func TestCache_GetBuildsOnce(t *testing.T) {
	release := make(chan struct{})
	inner := staticLoader(t, "a", "b")
	load := func(ctx context.Context) (*Index, error) {
		<-release
		return inner(ctx)
	}

	cache, err := NewCache(load)
	require.NoError(t, err)
	assert.False(t, cache.Loaded())

	const callers = 16
	results := make([]*Index, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ix, err := cache.Get(context.Background())
			assert.NoError(t, err)
			results[i] = ix
		}(i)
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int64(1), cache.Builds())
	assert.True(t, cache.Loaded())
	for _, ix := range results {
		assert.Same(t, results[0], ix)
	}
}

func TestCache_FailureIsNotCached(t *testing.T) {
	fail := true
	inner := staticLoader(t, "a")
	load := func(ctx context.Context) (*Index, error) {
		if fail {
			return nil, errors.New("store locked")
		}
		return inner(ctx)
	}

	cache, err := NewCache(load)
	require.NoError(t, err)

	_, err = cache.Get(context.Background())
	assert.ErrorIs(t, err, core.ErrIndexUnavailable)
	assert.ErrorContains(t, err, "store locked")
	assert.False(t, cache.Loaded())

	fail = false
	ix, err := cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len())
	assert.Equal(t, int64(2), cache.Builds())
}

func TestCache_NilIndexIsUnavailable(t *testing.T) {
	cache, err := NewCache(func(ctx context.Context) (*Index, error) { return nil, nil })
	require.NoError(t, err)

	_, err = cache.Get(context.Background())
	assert.ErrorIs(t, err, core.ErrIndexUnavailable)
}

func TestCache_ReloadAndSwap(t *testing.T) {
	ctx := context.Background()
	texts := []string{"a"}
	load := func(ctx context.Context) (*Index, error) {
		return staticLoader(t, texts...)(ctx)
	}
	cache, err := NewCache(load)
	require.NoError(t, err)

	first, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Len())

	texts = []string{"a", "b", "c"}
	second, err := cache.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, second.Len())

	current, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Same(t, second, current)
	// The old handle remains usable by whoever still holds it
	assert.Equal(t, 1, first.Len())

	t.Run("failed reload keeps previous handle", func(t *testing.T) {
		failing, err := NewCache(func(ctx context.Context) (*Index, error) {
			return nil, errors.New("boom")
		})
		require.NoError(t, err)
		assert.Nil(t, failing.Swap(first))

		_, err = failing.Reload(ctx)
		assert.ErrorIs(t, err, core.ErrIndexUnavailable)

		current, err := failing.Get(ctx)
		require.NoError(t, err)
		assert.Same(t, first, current)
	})

	t.Run("swap returns previous", func(t *testing.T) {
		previous := cache.Swap(first)
		assert.Same(t, second, previous)
	})
}

func TestFromRepository(t *testing.T) {
	ctx := context.Background()
	repo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer func() {
		repo.Close()
		backend.Close()
	}()

	_, err = repo.ReplaceSource(ctx, "IP07.xml", []*core.ChunkRecord{
		record("with vector", 1, 0),
		record("without vector"),
		record("another", 0, 1),
	})
	require.NoError(t, err)

	ix, err := FromRepository(repo, fixedEmbedder(1, 0), nil)(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, ix.Len())

	hits, err := ix.Search(ctx, "frage", 1)
	require.NoError(t, err)
	assert.Equal(t, "with vector", hits[0].Chunk.Text)

	t.Run("nil repository", func(t *testing.T) {
		_, err := FromRepository(nil, fixedEmbedder(1, 0), nil)(ctx)
		assert.ErrorIs(t, err, ErrRepositoryRequired)
	})
}

// writeSource stores texts under source in the on-disk store at dir, holding
// the store open only for the write.
func writeSource(t *testing.T, dir, source string, texts ...string) {
	t.Helper()
	backend, err := badger.OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	repo, err := badger.NewChunkRepository(backend)
	require.NoError(t, err)

	records := make([]*core.ChunkRecord, len(texts))
	for i, text := range texts {
		records[i] = &core.ChunkRecord{
			Chunk:  core.Chunk{Text: text, Chapter: "Risiken", SourceFile: source},
			Vector: []float32{1, float32(i)},
		}
	}
	_, err = repo.ReplaceSource(context.Background(), source, records)
	require.NoError(t, err)
}

func TestFromStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	writeSource(t, dir, "IP07.xml", "Blutungen sind selten.")

	cache, err := NewCache(FromStore(dir, fixedEmbedder(1, 0), nil))
	require.NoError(t, err)

	ix, err := cache.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ix.Len())

	// The store is writable again while the loaded index serves queries.
	writeSource(t, dir, "IP12.xml", "Nüchtern bleiben.", "Keine Getränke.")
	hits, err := ix.Search(ctx, "frage", 4)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	ix, err = cache.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, ix.Len())

	t.Run("missing store", func(t *testing.T) {
		missing, err := NewCache(FromStore(dir+"/missing", fixedEmbedder(1, 0), nil))
		require.NoError(t, err)
		_, err = missing.Get(ctx)
		assert.ErrorIs(t, err, core.ErrIndexUnavailable)
	})
}
