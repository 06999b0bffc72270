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


package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/medirag/ai"
	"github.com/poiesic/medirag/core"
	"github.com/poiesic/medirag/index"
	"github.com/poiesic/medirag/search"
)

const (
	// DefaultK is the number of chunks used as answer context.
	DefaultK = 4

	// DefaultTimeout bounds a single generation call.
	DefaultTimeout = 60 * time.Second
)

// DegradedAnswer starts the answer returned when generation fails.
const DegradedAnswer = "Die Antwort konnte nicht generiert werden"

// IndexSource yields the vector index to query.
type IndexSource func(ctx context.Context) (search.VectorIndex, error)

// CachedIndex returns an IndexSource backed by the shared index cache.
func CachedIndex(cache *index.Cache) IndexSource {
	return func(ctx context.Context) (search.VectorIndex, error) {
		ix, err := cache.Get(ctx)
		if err != nil {
			return nil, err
		}
		return ix, nil
	}
}

// StaticIndex returns an IndexSource that always yields vi.
func StaticIndex(vi search.VectorIndex) IndexSource {
	return func(context.Context) (search.VectorIndex, error) {
		return vi, nil
	}
}

// Orchestrator answers questions from retrieved document chunks.
type Orchestrator struct {
	source    IndexSource
	generator ai.Generator
	searcher  *search.Searcher
	options   ai.GenerateOptions
	timeout   time.Duration
	defaultK  int
	logger    *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator) error

// WithSearcher sets the hybrid searcher used for ranking.
func WithSearcher(searcher *search.Searcher) Option {
	return func(o *Orchestrator) error {
		o.searcher = searcher
		return nil
	}
}

// WithGenerateOptions sets the sampling options of the generation call.
func WithGenerateOptions(opts ai.GenerateOptions) Option {
	return func(o *Orchestrator) error {
		o.options = opts
		return nil
	}
}

// WithTimeout bounds each generation call.
// Default is DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) error {
		if timeout <= 0 {
			return ErrInvalidTimeout
		}
		o.timeout = timeout
		return nil
	}
}

// WithDefaultK sets the result count used when Ask is called with k <= 0.
func WithDefaultK(k int) Option {
	return func(o *Orchestrator) error {
		if k <= 0 {
			return search.ErrInvalidK
		}
		o.defaultK = k
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) error {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
		return nil
	}
}

// NewOrchestrator creates an orchestrator over source that answers with generator.
func NewOrchestrator(source IndexSource, generator ai.Generator, opts ...Option) (*Orchestrator, error) {
	if source == nil {
		return nil, ErrIndexRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	o := &Orchestrator{
		source:    source,
		generator: generator,
		options:   ai.DefaultGenerateOptions(),
		timeout:   DefaultTimeout,
		defaultK:  DefaultK,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.logger = o.logger.With("component", "orchestrator")

	if o.searcher == nil {
		searcher, err := search.NewSearcher(search.WithLogger(o.logger))
		if err != nil {
			return nil, err
		}
		o.searcher = searcher
	}
	return o, nil
}

// Ask answers query from the k best chunks.
//
// Index failures are fatal: Ask returns a nil result and an error wrapping
// core.ErrIndexUnavailable. Generation failures are not: Ask returns the
// result with a degraded answer and its sources and context intact,
// together with an error wrapping core.ErrGeneration.
func (o *Orchestrator) Ask(ctx context.Context, query string, k int) (*core.RetrievalResult, error) {
	return o.AskWithMonitor(ctx, query, k, nil)
}

// AskWithMonitor is Ask with callbacks at each stage of the search.
func (o *Orchestrator) AskWithMonitor(ctx context.Context, query string, k int, monitor search.SearchMonitor) (*core.RetrievalResult, error) {
	normalized := strings.ToLower(strings.TrimSpace(query))
	if normalized == "" {
		return nil, ErrEmptyQuery
	}
	if k <= 0 {
		k = o.defaultK
	}

	vi, err := o.source(ctx)
	if err == nil && vi == nil {
		err = errors.New("no index")
	}
	if err != nil {
		return nil, indexUnavailable(err)
	}

	ranked, err := o.searcher.SearchWithMonitor(ctx, vi, normalized, k, monitor)
	if err != nil {
		return nil, indexUnavailable(err)
	}

	result := &core.RetrievalResult{
		Sources:    BuildSources(ranked),
		RawContext: BuildContext(ranked),
	}

	answer, err := o.generate(ctx, BuildPrompt(result.RawContext, query))
	if err != nil {
		o.logger.Error("answer generation failed", "err", err, "sources", len(result.Sources))
		result.Answer = fmt.Sprintf("%s: %v", DegradedAnswer, err)
		return result, fmt.Errorf("%w: %w", core.ErrGeneration, err)
	}
	result.Answer = answer

	o.logger.Debug("question answered", "chunks", len(ranked), "sources", len(result.Sources))
	return result, nil
}

func (o *Orchestrator) generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	answer, err := o.generator.Generate(ctx, prompt, o.options)
	if err != nil {
		return "", err
	}
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return "", ai.ErrEmptyResponse
	}
	return answer, nil
}

func indexUnavailable(err error) error {
	if errors.Is(err, core.ErrIndexUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", core.ErrIndexUnavailable, err)
}
