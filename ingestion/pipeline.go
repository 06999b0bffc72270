package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/medirag/ai"
	"github.com/poiesic/medirag/chunking"
	"github.com/poiesic/medirag/reembed"
	"github.com/poiesic/medirag/storage"
)

// Pipeline ingests procedure documents into the chunk repository.
type Pipeline struct {
	repo          storage.ChunkRepository
	chunker       *chunking.Pipeline
	embeddingPool *ants.Pool
	embeddingProc processor
	embedConfig   *reembed.Config
	progress      io.Writer
	logger        *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets how many documents are embedded and stored concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		embeddingPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = embeddingPool
		return nil
	}
}

// WithBatchSize sets the number of chunks per embedding call.
// Default is reembed.DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = reembed.DefaultBatchSize
		}
		p.embedConfig.BatchSize = size
		return nil
	}
}

// WithRetry sets the attempts and base backoff delay of embedding calls.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxAttempts <= 0 {
			return reembed.ErrInvalidMaxAttempts
		}
		p.embedConfig.MaxRetries = maxAttempts
		p.embedConfig.RetryDelay = baseDelay
		return nil
	}
}

// WithProgress writes per-file progress to w.
// Default is no progress output.
func WithProgress(w io.Writer) Option {
	return func(p *Pipeline) error {
		p.progress = w
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
// The chunker is borrowed; the caller releases it.
func NewPipeline(
	repo storage.ChunkRepository,
	provider ai.AIProvider,
	chunker *chunking.Pipeline,
	opts ...Option,
) (*Pipeline, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	if chunker == nil {
		return nil, ErrChunkerRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	embeddingPool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		repo:          repo,
		chunker:       chunker,
		embeddingPool: embeddingPool,
		embedConfig:   reembed.DefaultConfig(),
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	// Create the processor after options are applied (so it gets final config)
	batcher, err := reembed.NewBatchProcessor(repo, provider.Embedder(), p.embedConfig, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	embeddingProc, err := newEmbeddingProcessor(repo, batcher, p.embedConfig.BatchSize, p.logger)
	if err != nil {
		p.Release()
		return nil, err
	}
	p.embeddingProc = embeddingProc

	return p, nil
}

// Ingest collects the XML documents under paths and ingests them.
// Directories are walked recursively.
func (p *Pipeline) Ingest(ctx context.Context, paths ...string) (*Report, error) {
	files, err := chunking.CollectFiles(paths...)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoDocuments
	}
	return p.IngestFiles(ctx, files)
}

// IngestFiles chunks, embeds and stores each file.
// Per-file failures are recorded in the report and do not stop the run;
// only context cancellation or a pool failure returns an error.
func (p *Pipeline) IngestFiles(ctx context.Context, files []string) (*Report, error) {
	start := time.Now()
	p.logger.Info("ingesting documents", "files", len(files))

	batch, err := p.chunker.ChunkFiles(ctx, files)
	if err != nil {
		return nil, err
	}

	report := &Report{Files: make([]FileReport, len(batch.Files))}
	tracker := reembed.NewProgressTracker(p.progress, "files", len(batch.Files), 1)
	tracker.Start()

	seen := make(map[string]string, len(batch.Files))
	var wg sync.WaitGroup
	for i, result := range batch.Files {
		source := sourceName(result)
		if first, dup := seen[source]; dup && !result.Failed() {
			report.Files[i] = FileReport{
				Path:   result.Path,
				Source: source,
				Status: StatusFailed,
				Err:    fmt.Errorf("%w: %s already ingested from %s", ErrDuplicateSource, source, first),
			}
			p.logger.Error("skipping document", "path", result.Path, "err", report.Files[i].Err)
			tracker.Fail(1)
			continue
		}
		if !result.Failed() {
			seen[source] = result.Path
		}

		if err := ctx.Err(); err != nil {
			wg.Wait()
			return report, err
		}

		wg.Add(1)
		err := p.embeddingPool.Submit(func() {
			defer wg.Done()
			report.Files[i] = p.store(ctx, source, result)
			if report.Files[i].Status == StatusFailed {
				tracker.Fail(1)
			} else {
				tracker.Increment(1)
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return report, fmt.Errorf("submitting %s: %w", result.Path, err)
		}
	}
	wg.Wait()
	tracker.Finish()

	report.Elapsed = time.Since(start)
	p.logger.Info("ingestion complete",
		"stored", report.Count(StatusStored),
		"empty", report.Count(StatusEmpty),
		"failed", report.Count(StatusFailed),
		"chunks", report.Chunks(),
		"duration", report.Elapsed.Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

// store writes one chunked file to the repository.
func (p *Pipeline) store(ctx context.Context, source string, result chunking.FileResult) FileReport {
	fr := FileReport{Path: result.Path, Source: source}

	switch {
	case result.Failed():
		fr.Status = StatusFailed
		fr.Err = result.Err
		return fr
	case result.Empty():
		fr.Status = StatusEmpty
	default:
		fr.Status = StatusStored
	}

	n, err := p.embeddingProc.process(ctx, source, result.Chunks)
	if err != nil {
		p.logger.Error("error storing document", "path", result.Path, "err", err)
		fr.Status = StatusFailed
		fr.Err = err
		return fr
	}
	fr.Chunks = n
	p.logger.Debug("document stored", "path", result.Path, "chunks", n)
	return fr
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}

// sourceName returns the name a file's chunks are stored under.
func sourceName(result chunking.FileResult) string {
	if len(result.Chunks) > 0 {
		return result.Chunks[0].SourceFile
	}
	return filepath.Base(result.Path)
}
