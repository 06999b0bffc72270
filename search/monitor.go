package search

import (
	"github.com/poiesic/medirag/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string, k, poolSize int)
	AfterVectorSearch(hits []core.Hit)
	AfterFusion(candidates []core.Candidate)
	Finish(ranked []core.Candidate)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string, _, _ int)       {}
func (n *noopMonitor) AfterVectorSearch(_ []core.Hit) {}
func (n *noopMonitor) AfterFusion(_ []core.Candidate) {}
func (n *noopMonitor) Finish(_ []core.Candidate)      {}
