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


package medirag

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/poiesic/medirag/ai"
	"github.com/poiesic/medirag/ai/openai"
	"github.com/poiesic/medirag/chunking"
	"github.com/poiesic/medirag/index"
	"github.com/poiesic/medirag/ingestion"
	"github.com/poiesic/medirag/reembed"
	"github.com/poiesic/medirag/retrieval"
	"github.com/poiesic/medirag/search"
	"github.com/poiesic/medirag/storage"
	"github.com/poiesic/medirag/storage/badger"
)

// Database ties the chunk store to the AI services and the shared index.
type Database struct {
	backend   *badger.Backend
	chunkRepo storage.ChunkRepository
	provider  ai.AIProvider
	aiConfig  *ai.Config
	cache     *index.Cache
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig *ai.Config
	provider ai.AIProvider
	readOnly bool
	inMemory bool
	detached bool
	logger   *slog.Logger
}

// WithAIConfig sets the configuration of the AI provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The database takes ownership and closes it.
func WithProvider(provider ai.AIProvider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithReadOnly opens an existing store without write access.
func WithReadOnly() DatabaseOption {
	return func(o *databaseOptions) {
		o.readOnly = true
	}
}

// WithDetachedStore leaves the store closed. The index is built by opening the
// store read-only for each load, so another process may write to it in between
// and Reload picks up its changes. A detached database only answers queries.
func WithDetachedStore() DatabaseOption {
	return func(o *databaseOptions) {
		o.detached = true
	}
}

// WithInMemory keeps the store in memory; the path is ignored.
func WithInMemory() DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = true
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) DatabaseOption {
	return func(o *databaseOptions) {
		o.logger = logger
	}
}

// NewDatabase opens the chunk store at filePath.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig: ai.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	if options.detached {
		return newDetachedDatabase(filePath, options)
	}

	backendOpts := []badger.BackendOption{badger.WithBackendLogger(options.logger)}
	if options.readOnly {
		backendOpts = append(backendOpts, badger.WithReadOnly())
	}
	backend, err := badger.OpenBackend(filePath, options.inMemory, backendOpts...)
	if err != nil {
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	provider, err := newProvider(options)
	if err != nil {
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	cache, err := index.NewCache(
		index.FromRepository(chunkRepo, provider.Embedder(), options.logger),
		index.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		chunkRepo.Close()
		backend.Close()
		return nil, err
	}

	return &Database{
		backend:   backend,
		chunkRepo: chunkRepo,
		provider:  provider,
		aiConfig:  options.aiConfig,
		cache:     cache,
		logger:    options.logger,
	}, nil
}

func newDetachedDatabase(filePath string, options *databaseOptions) (*Database, error) {
	if options.inMemory {
		return nil, fmt.Errorf("%w: in-memory store cannot be detached", ErrDetachedStore)
	}
	info, err := os.Stat(filePath)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", filePath)
	}

	provider, err := newProvider(options)
	if err != nil {
		return nil, err
	}
	cache, err := index.NewCache(
		index.FromStore(filePath, provider.Embedder(), options.logger),
		index.WithLogger(options.logger))
	if err != nil {
		provider.Close()
		return nil, err
	}
	return &Database{
		provider: provider,
		aiConfig: options.aiConfig,
		cache:    cache,
		logger:   options.logger,
	}, nil
}

func newProvider(options *databaseOptions) (ai.AIProvider, error) {
	if options.provider != nil {
		return options.provider, nil
	}
	return openai.NewProvider(options.aiConfig)
}

func (db *Database) Close() error {
	// Close AI provider first
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}
	if db.Detached() {
		return nil
	}

	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// Detached reports whether the database was opened with WithDetachedStore.
func (db *Database) Detached() bool {
	return db.backend == nil
}

// ChunkRepository returns the open chunk repository, or nil when detached.
func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

func (db *Database) Provider() ai.AIProvider {
	return db.provider
}

// IndexCache returns the shared index handle of this database.
func (db *Database) IndexCache() *index.Cache {
	return db.cache
}

// NewChunker creates a chunking pipeline that logs through the database logger.
func (db *Database) NewChunker(opts ...chunking.Option) (*chunking.Pipeline, error) {
	return chunking.NewPipeline(append([]chunking.Option{chunking.WithLogger(db.logger)}, opts...)...)
}

func (db *Database) NewIngestionPipeline(chunker *chunking.Pipeline, opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	if db.Detached() {
		return nil, ErrDetachedStore
	}
	return ingestion.NewPipeline(db.chunkRepo, db.provider, chunker,
		append([]ingestion.Option{ingestion.WithLogger(db.logger)}, opts...)...)
}

// NewOrchestrator creates an orchestrator over the shared index.
// Generation options and timeout default to the AI config.
func (db *Database) NewOrchestrator(searchOpts []search.Option, opts ...retrieval.Option) (*retrieval.Orchestrator, error) {
	searcher, err := search.NewSearcher(append([]search.Option{search.WithLogger(db.logger)}, searchOpts...)...)
	if err != nil {
		return nil, err
	}

	defaults := []retrieval.Option{
		retrieval.WithSearcher(searcher),
		retrieval.WithGenerateOptions(db.aiConfig.Generate),
		retrieval.WithLogger(db.logger),
	}
	if db.aiConfig.Timeout > 0 {
		defaults = append(defaults, retrieval.WithTimeout(db.aiConfig.Timeout))
	}
	return retrieval.NewOrchestrator(retrieval.CachedIndex(db.cache), db.provider.Generator(), append(defaults, opts...)...)
}

func (db *Database) NewReembedder(config *reembed.Config, progress io.Writer) (*reembed.Reembedder, error) {
	if db.Detached() {
		return nil, ErrDetachedStore
	}
	return reembed.NewReembedder(db.chunkRepo, db.provider.Embedder(), config, progress, db.logger)
}
