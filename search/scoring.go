package search

import (
	"math"

	"github.com/poiesic/offersearch/catalog"
	"github.com/poiesic/offersearch/core"
)

// Composite score weights. They sum to 1.
const (
	offerWeight     = 0.4
	dimensionWeight = 0.5
	receiptWeight   = 0.1
)

// scoreScale rounds composite scores to three decimal places.
const scoreScale = 1000

// ScoredRow holds the derived values computed for one catalog row during a
// single search.
type ScoredRow struct {
	Row             int
	Id              core.ID
	Similarity      [len(core.Fields)]float64 // Raw similarity per field
	OfferSimilarity float64                   // Offer similarity used for scoring
	ReceiptScore    float64
	Scores          [len(core.Dimensions)]float64 // Composite score per dimension
}

// Score returns the composite score for dim.
func (r *ScoredRow) Score(dim core.Dimension) float64 {
	return r.Scores[dim]
}

// CompositeScore blends offer similarity, dimension similarity and receipt
// score with fixed weights and rounds the result to three decimals.
func CompositeScore(offerSimilarity, dimensionSimilarity, receiptScore float64) float64 {
	v := offerWeight*offerSimilarity + dimensionWeight*dimensionSimilarity + receiptWeight*receiptScore
	return math.RoundToEven(v*scoreScale) / scoreScale
}

// scoreRows computes similarities and composite scores for every row of cat
// into a freshly allocated slice.
func scoreRows(cat *catalog.Catalog, normalizedQuery string, monitor SearchMonitor) []ScoredRow {
	rows := make([]ScoredRow, cat.Len())
	for _, field := range core.Fields {
		sims := cat.Similarities(field, normalizedQuery)
		monitor.AfterSimilarity(field, sims)
		for i, sim := range sims {
			rows[i].Similarity[field] = sim
		}
	}

	for i := range rows {
		row := &rows[i]
		row.Row = i
		row.Id = cat.Offer(i).Id
		row.OfferSimilarity = row.Similarity[core.FieldOffer]
		if cat.IsNoOffer(i) {
			row.OfferSimilarity = 0
		}
		row.ReceiptScore = cat.ReceiptScore(i)
		for _, dim := range core.Dimensions {
			row.Scores[dim] = CompositeScore(row.OfferSimilarity, row.Similarity[dim.Field()], row.ReceiptScore)
		}
	}
	return rows
}
