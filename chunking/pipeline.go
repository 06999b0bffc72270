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


package chunking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/medirag/core"
)

const (
	// DefaultMaxChunkChars is the default upper bound on chunk length in characters.
	DefaultMaxChunkChars = 1000

	// DefaultContainerTag is the information-body container of procedure documents.
	DefaultContainerTag = "infoteil"

	// DefaultChapter labels content that precedes the first heading.
	DefaultChapter = "Introduction"
)

// Default tag sets. Matching is case-insensitive on local names.
var (
	DefaultTitleTags   = []string{"titel"}
	DefaultProseTags   = []string{"a", "risiko", "verhaltenshinweis", "text", "p", "para", "absatz", "li", "subpara"}
	DefaultHeadingTags = []string{"titel", "title", "ueberschrift", "heading", "h1", "h2", "h3", "h4", "h5", "h6"}
)

// Pipeline composes the parser, normalizer, filter and windower into the
// document-to-chunks transform. It is safe for concurrent use.
type Pipeline struct {
	maxChunkChars  int
	overlap        int
	minLength      int
	denylist       []string
	containerTag   string
	titleTags      []string
	proseTags      []string
	headingTags    []string
	defaultChapter string
	pool           *ants.Pool
	parser         *Parser
	logger         *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithMaxChunkChars sets the maximum chunk length in characters.
// Default is DefaultMaxChunkChars.
func WithMaxChunkChars(n int) Option {
	return func(p *Pipeline) error {
		if n <= 0 {
			return ErrInvalidMaxChunkChars
		}
		p.maxChunkChars = n
		return nil
	}
}

// WithOverlap sets the number of characters shared by adjacent chunks.
// Default is 0.
func WithOverlap(n int) Option {
	return func(p *Pipeline) error {
		if n < 0 {
			return ErrInvalidOverlap
		}
		p.overlap = n
		return nil
	}
}

// WithMinLength sets the minimum meaningful fragment length.
// Default is DefaultMinLength.
func WithMinLength(n int) Option {
	return func(p *Pipeline) error {
		p.minLength = n
		return nil
	}
}

// WithDenylist replaces the denylisted tokens.
// Default is DefaultDenylist.
func WithDenylist(tokens []string) Option {
	return func(p *Pipeline) error {
		p.denylist = tokens
		return nil
	}
}

// WithContainerTag sets the tag that enables schema-aware parsing.
// An empty tag disables schema-aware parsing.
func WithContainerTag(tag string) Option {
	return func(p *Pipeline) error {
		p.containerTag = tag
		return nil
	}
}

// WithTitleTags sets the tags that label schema sections.
func WithTitleTags(tags []string) Option {
	return func(p *Pipeline) error {
		p.titleTags = tags
		return nil
	}
}

// WithProseTags sets the tags whose text is collected as fragments.
func WithProseTags(tags []string) Option {
	return func(p *Pipeline) error {
		p.proseTags = tags
		return nil
	}
}

// WithHeadingTags sets the tags that open a new section in generic parsing.
func WithHeadingTags(tags []string) Option {
	return func(p *Pipeline) error {
		p.headingTags = tags
		return nil
	}
}

// WithDefaultChapter sets the label used before the first heading.
func WithDefaultChapter(chapter string) Option {
	return func(p *Pipeline) error {
		p.defaultChapter = chapter
		return nil
	}
}

// WithPoolSize sets the worker pool size for batch parsing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
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

// NewPipeline creates a chunking pipeline.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		maxChunkChars:  DefaultMaxChunkChars,
		minLength:      DefaultMinLength,
		denylist:       DefaultDenylist,
		containerTag:   DefaultContainerTag,
		titleTags:      DefaultTitleTags,
		proseTags:      DefaultProseTags,
		headingTags:    DefaultHeadingTags,
		defaultChapter: DefaultChapter,
		pool:           pool,
		logger:         slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	if p.overlap >= p.maxChunkChars {
		p.Release()
		return nil, ErrInvalidOverlap
	}

	p.logger = p.logger.With("component", "chunking")

	filter := NewFilter(p.minLength, p.denylist)
	p.parser = NewParser(p.logger,
		NewSchemaStrategy(filter, p.containerTag, p.titleTags, p.proseTags),
		NewGenericStrategy(filter, p.headingTags, p.proseTags, p.defaultChapter),
	)

	return p, nil
}

// Chunk converts a parsed document into ordered chunks.
// A document without meaningful content yields no chunks and an error
// wrapping core.ErrEmptyDocument, which callers treat as a warning.
func (p *Pipeline) Chunk(doc *Document) ([]core.Chunk, error) {
	sections, _ := p.parser.Parse(doc)

	var chunks []core.Chunk
	for _, section := range sections {
		chunks = append(chunks, Window(section.Fragments, section.Chapter, doc.Source, p.maxChunkChars, p.overlap)...)
	}

	if len(chunks) == 0 {
		return nil, fmt.Errorf("%s: %w", doc.Source, core.ErrEmptyDocument)
	}
	return chunks, nil
}

// ChunkFile reads, parses and chunks the document at path.
func (p *Pipeline) ChunkFile(path string) ([]core.Chunk, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return p.Chunk(doc)
}

// FileResult is the outcome of chunking one file in a batch.
type FileResult struct {
	Path   string
	Chunks []core.Chunk
	// Err is a *core.ParseError or an error wrapping core.ErrEmptyDocument.
	Err error
}

// Empty reports whether the file parsed but produced no chunks.
func (r FileResult) Empty() bool {
	return errors.Is(r.Err, core.ErrEmptyDocument)
}

// Failed reports whether the file could not be parsed.
func (r FileResult) Failed() bool {
	return r.Err != nil && !r.Empty()
}

// BatchResult holds per-file outcomes in input order.
type BatchResult struct {
	Files []FileResult
}

// Chunks returns all chunks of the batch in input order.
func (b *BatchResult) Chunks() []core.Chunk {
	var all []core.Chunk
	for _, f := range b.Files {
		all = append(all, f.Chunks...)
	}
	return all
}

// Failures returns the files that could not be parsed, keyed by path.
func (b *BatchResult) Failures() map[string]error {
	failures := make(map[string]error)
	for _, f := range b.Files {
		if f.Failed() {
			failures[f.Path] = f.Err
		}
	}
	return failures
}

// ChunkFiles chunks every path concurrently on the worker pool. A file that
// fails to parse is logged and reported in the result; the rest of the batch
// still runs. Only context cancellation or pool failure aborts the batch.
func (p *Pipeline) ChunkFiles(ctx context.Context, paths []string) (*BatchResult, error) {
	result := &BatchResult{Files: make([]FileResult, len(paths))}

	var wg sync.WaitGroup
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			chunks, err := p.ChunkFile(path)
			result.Files[i] = FileResult{Path: path, Chunks: chunks, Err: err}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submitting %s: %w", path, err)
		}
	}
	wg.Wait()

	for _, f := range result.Files {
		switch {
		case f.Empty():
			p.logger.Warn("document has no meaningful content", "path", f.Path)
		case f.Failed():
			p.logger.Error("skipping unparsable document", "path", f.Path, "err", f.Err)
		}
	}

	return result, nil
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// ExtractChunks reads the document at path and returns its chunks using the
// default settings and the given maximum chunk size. A document without
// meaningful content yields an empty slice and no error.
func ExtractChunks(path string, maxChunkChars int) ([]core.Chunk, error) {
	p, err := NewPipeline(WithMaxChunkChars(maxChunkChars), WithPoolSize(1))
	if err != nil {
		return nil, err
	}
	defer p.Release()

	chunks, err := p.ChunkFile(path)
	if errors.Is(err, core.ErrEmptyDocument) {
		return []core.Chunk{}, nil
	}
	return chunks, err
}
