package search

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/medirag/core"
)

// DefaultOversample is the default ratio of retrieved candidates to returned results.
const DefaultOversample = 2

// VectorIndex is a nearest-neighbor index over chunks.
// Hits are ordered by ascending distance.
type VectorIndex interface {
	Search(ctx context.Context, query string, k int) ([]core.Hit, error)
}

// Searcher ranks chunks with a fusion of vector similarity and lexical relevance.
type Searcher struct {
	scorer     *LexicalScorer
	fusion     Fusion
	oversample int
	logger     *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithWeights sets the fusion weights.
// Default is DefaultVectorWeight / DefaultLexicalWeight.
func WithWeights(vector, lexical float64) Option {
	return func(s *Searcher) error {
		if vector < 0 || lexical < 0 {
			return ErrInvalidWeights
		}
		s.fusion = Fusion{VectorWeight: vector, LexicalWeight: lexical}
		return nil
	}
}

// WithOversample sets how many candidates are retrieved per returned result.
// Default is DefaultOversample.
func WithOversample(factor int) Option {
	return func(s *Searcher) error {
		if factor < 1 {
			return ErrInvalidOversample
		}
		s.oversample = factor
		return nil
	}
}

// WithCaseSensitive sets whether lexical matching is case-sensitive.
// Default is true. The retrieval orchestrator lower-cases queries, so with
// case-sensitive matching capitalized chunk terms (German nouns) never score;
// pass false for such corpora.
func WithCaseSensitive(caseSensitive bool) Option {
	return func(s *Searcher) error {
		s.scorer = NewLexicalScorer(caseSensitive)
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(opts ...Option) (*Searcher, error) {
	s := &Searcher{
		scorer:     NewLexicalScorer(true),
		fusion:     DefaultFusion(),
		oversample: DefaultOversample,
		logger:     slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.logger = s.logger.With("component", "searcher")
	return s, nil
}

// Search returns the top k candidates for query from index.
func (s *Searcher) Search(ctx context.Context, index VectorIndex, query string, k int) ([]core.Candidate, error) {
	return s.SearchWithMonitor(ctx, index, query, k, nil)
}

// SearchWithMonitor is Search with callbacks at each stage of the search process.
func (s *Searcher) SearchWithMonitor(ctx context.Context, index VectorIndex, query string, k int, monitor SearchMonitor) ([]core.Candidate, error) {
	if index == nil {
		return nil, ErrIndexRequired
	}
	if k <= 0 {
		return nil, ErrInvalidK
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	poolSize := k * s.oversample
	monitor.Start(query, k, poolSize)

	hits, err := index.Search(ctx, query, poolSize)
	if err != nil {
		s.logger.Error("error querying vector index", "err", err)
		return nil, err
	}
	monitor.AfterVectorSearch(hits)

	ranked := s.rank(query, hits, k, monitor)
	monitor.Finish(ranked)

	s.logger.Debug("hybrid search complete", "pool", len(hits), "returned", len(ranked))
	return ranked, nil
}

// Rank fuses vector and lexical scores for hits and returns the top k.
// Hits must be in the order returned by the vector index.
func (s *Searcher) Rank(query string, hits []core.Hit, k int) []core.Candidate {
	return s.rank(query, hits, k, &noopMonitor{})
}

func (s *Searcher) rank(query string, hits []core.Hit, k int, monitor SearchMonitor) []core.Candidate {
	chunks := make([]core.Chunk, len(hits))
	for i, h := range hits {
		chunks[i] = h.Chunk
	}
	lexical := s.scorer.Score(query, chunks)

	candidates := make([]core.Candidate, len(hits))
	for i, h := range hits {
		candidates[i] = core.Candidate{
			Chunk:          h.Chunk,
			VectorDistance: h.Distance,
			LexicalScore:   lexical[i],
			FusedScore:     s.fusion.Fuse(h.Distance, lexical[i]),
		}
	}
	monitor.AfterFusion(candidates)

	ranked := make([]core.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FusedScore > ranked[j].FusedScore
	})

	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
