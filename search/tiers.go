package search

import (
	"slices"

	"github.com/poiesic/offersearch/catalog"
	"github.com/poiesic/offersearch/core"
)

// fallbackSliceSize is how many top rows per dimension the fallback averages.
const fallbackSliceSize = 10

// matchTier restricts ranking to rows whose text field contains the query.
type matchTier struct {
	tier      core.Tier
	dimension core.Dimension
}

// matchTiers are tried in order; the first one with any matching row wins.
var matchTiers = []matchTier{
	{tier: core.TierCategory, dimension: core.DimensionCategory},
	{tier: core.TierRetailer, dimension: core.DimensionRetailer},
	{tier: core.TierBrand, dimension: core.DimensionBrand},
}

// match returns the rows selected by the tier, in catalog order.
func (t matchTier) match(cat *catalog.Catalog, query string) []int {
	return cat.Matches(t.dimension.Field(), query)
}

// rank orders the selected rows by the tier's dimension and keeps the first n.
func (t matchTier) rank(rows []ScoredRow, selected []int, n int) []ScoredRow {
	return topRows(rows, selected, t.dimension, n)
}

// selectRows applies the tier list, falling back to the best-averaging
// dimension when no tier matches.
func selectRows(cat *catalog.Catalog, query string, rows []ScoredRow, n int, monitor SearchMonitor) (core.Tier, core.Dimension, []ScoredRow) {
	for _, t := range matchTiers {
		selected := t.match(cat, query)
		monitor.TierMatched(t.tier, len(selected))
		if len(selected) > 0 {
			return t.tier, t.dimension, t.rank(rows, selected, n)
		}
	}

	dim, top := fallback(rows, n, monitor)
	return core.TierFallback, dim, top
}

// fallback takes the top rows of every dimension and returns the first n rows
// of the dimension with the highest mean score. Ties go to the dimension that
// comes first in core.Dimensions.
func fallback(rows []ScoredRow, n int, monitor SearchMonitor) (core.Dimension, []ScoredRow) {
	all := make([]int, len(rows))
	for i := range all {
		all[i] = i
	}

	averages := make(map[core.Dimension]float64, len(core.Dimensions))
	var (
		best    core.Dimension
		bestTop []ScoredRow
		bestAvg float64
		found   bool
	)
	for _, dim := range core.Dimensions {
		top := topRows(rows, all, dim, fallbackSliceSize)
		avg := meanScore(top, dim)
		averages[dim] = avg
		if !found || avg > bestAvg {
			best, bestTop, bestAvg, found = dim, top, avg, true
		}
	}
	monitor.FallbackAverages(averages, best)

	return best, bestTop[:min(n, len(bestTop))]
}

// topRows sorts the selected rows by dim score, highest first, and keeps the
// first n. The sort is stable: equal scores keep catalog order.
func topRows(rows []ScoredRow, selected []int, dim core.Dimension, n int) []ScoredRow {
	out := make([]ScoredRow, len(selected))
	for i, idx := range selected {
		out[i] = rows[idx]
	}
	slices.SortStableFunc(out, func(a, b ScoredRow) int {
		switch {
		case a.Scores[dim] > b.Scores[dim]:
			return -1
		case a.Scores[dim] < b.Scores[dim]:
			return 1
		}
		return 0
	})
	return out[:min(n, len(out))]
}

func meanScore(rows []ScoredRow, dim core.Dimension) float64 {
	if len(rows) == 0 {
		return 0
	}
	var sum float64
	for i := range rows {
		sum += rows[i].Scores[dim]
	}
	return sum / float64(len(rows))
}
