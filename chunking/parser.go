package chunking

import (
	"log/slog"

	"github.com/poiesic/medirag/core"
)

// Parser turns a document into ordered sections using the first of its
// strategies that applies. Strategies are never mixed within a document.
type Parser struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewParser creates a Parser that tries strategies in the given order.
func NewParser(logger *slog.Logger, strategies ...Strategy) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{strategies: strategies, logger: logger}
}

// Parse returns the document's sections and the name of the strategy used.
// The name is empty when no strategy applies.
func (p *Parser) Parse(doc *Document) ([]core.Section, string) {
	for _, s := range p.strategies {
		if !s.Applies(doc) {
			continue
		}
		sections := s.Sections(doc)
		p.logger.Debug("parsed document",
			"source", doc.Source,
			"strategy", s.Name(),
			"sections", len(sections))
		return sections, s.Name()
	}
	return nil, ""
}
