// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/medirag/ai"
	"github.com/poiesic/medirag/core"
	"github.com/poiesic/medirag/storage"
)

// Config holds configuration for embedding batches.
type Config struct {
	// BatchSize is the number of chunk texts sent per embedding call
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding call
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration

	// MaxRetryDelay caps the backoff delay; zero means no cap
	MaxRetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
		MaxRetryDelay:  30 * time.Second,
	}
}

// Summary describes a finished reembedding run.
type Summary struct {
	Chunks  int
	Elapsed time.Duration
	Batches int
}

// Reembedder replaces the vector of every stored chunk.
type Reembedder struct {
	repo      storage.ChunkRepository
	config    *Config
	progress  io.Writer
	logger    *slog.Logger
	processor *BatchProcessor
	iterator  *RecordIterator
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(repo storage.ChunkRepository, embedder ai.Embedder, config *Config, progress io.Writer, logger *slog.Logger) (*Reembedder, error) {
	if repo == nil {
		return nil, ErrRepositoryRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	processor, err := NewBatchProcessor(repo, embedder, config, logger)
	if err != nil {
		return nil, err
	}

	return &Reembedder{
		repo:      repo,
		config:    config,
		progress:  progress,
		logger:    logger.With("component", "reembedder"),
		processor: processor,
		iterator:  NewRecordIterator(repo, config.BatchSize),
	}, nil
}

// Run reembeds every stored chunk with the configured embedder.
// A failed batch aborts the run; batches already written keep their new vectors.
func (r *Reembedder) Run(ctx context.Context) (*Summary, error) {
	total, err := r.repo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count records: %w", err)
	}

	summary := &Summary{}
	if total == 0 {
		r.logger.Info("no chunks stored, nothing to reembed")
		return summary, nil
	}

	r.logger.Info("reembedding chunks", "total", total, "batch_size", r.iterator.batchSize)

	tracker := NewProgressTracker(r.progress, "chunks", total, r.config.ReportInterval)
	tracker.Start()

	err = r.iterator.ForEach(ctx, func(batch []*core.ChunkRecord) error {
		if err := r.processor.Process(ctx, batch); err != nil {
			return fmt.Errorf("failed to process batch %d: %w", summary.Batches+1, err)
		}
		summary.Batches++
		summary.Chunks += len(batch)
		tracker.Update(summary.Chunks)
		return nil
	})
	if err != nil {
		return summary, err
	}

	tracker.Finish()
	summary.Elapsed = tracker.Elapsed()

	r.logger.Info("reembedding complete",
		"chunks", summary.Chunks,
		"batches", summary.Batches,
		"duration", summary.Elapsed.Round(time.Millisecond))
	return summary, nil
}
