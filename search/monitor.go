package search

import (
	"github.com/poiesic/offersearch/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
// Slices passed to hooks belong to the search call and must not be modified.
type SearchMonitor interface {
	Start(query string)
	AfterNormalization(normalized string)
	AfterSimilarity(field core.Field, similarities []float64)
	AfterScoring(rows []ScoredRow)
	TierMatched(tier core.Tier, matches int)
	FallbackAverages(averages map[core.Dimension]float64, chosen core.Dimension)
	Finish(ranking *core.Ranking)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                                                  {}
func (n *noopMonitor) AfterNormalization(_ string)                                     {}
func (n *noopMonitor) AfterSimilarity(_ core.Field, _ []float64)                       {}
func (n *noopMonitor) AfterScoring(_ []ScoredRow)                                      {}
func (n *noopMonitor) TierMatched(_ core.Tier, _ int)                                  {}
func (n *noopMonitor) FallbackAverages(_ map[core.Dimension]float64, _ core.Dimension) {}
func (n *noopMonitor) Finish(_ *core.Ranking)                                          {}

