package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/poiesic/medirag/core"
	"github.com/poiesic/medirag/retrieval"
	"github.com/poiesic/medirag/search"
)

// explainMonitor prints the score breakdown of a query.
type explainMonitor struct {
	w io.Writer
}

var _ search.SearchMonitor = (*explainMonitor)(nil)

func newExplainMonitor(w io.Writer) *explainMonitor {
	return &explainMonitor{w: w}
}

func (m *explainMonitor) Start(query string, k, poolSize int) {
	fmt.Fprintf(m.w, "query=%q k=%d pool=%d\n", query, k, poolSize)
}

func (m *explainMonitor) AfterVectorSearch(hits []core.Hit) {
	fmt.Fprintf(m.w, "vector search returned %d hits\n", len(hits))
}

func (m *explainMonitor) AfterFusion(candidates []core.Candidate) {
	tw := tabwriter.NewWriter(m.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tdistance\tlexical\tfused\tsource")
	for i, cand := range candidates {
		fmt.Fprintf(tw, "%d\t%.4f\t%.4f\t%.4f\t%s\n", i+1,
			cand.VectorDistance, cand.LexicalScore, cand.FusedScore,
			retrieval.FormatCitation(cand.Chunk.Key()))
	}
	tw.Flush()
}

func (m *explainMonitor) Finish(ranked []core.Candidate) {
	fmt.Fprintf(m.w, "selected %d chunks\n\n", len(ranked))
}
