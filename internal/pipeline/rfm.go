// internal/pipeline/rfm.go
package pipeline

import (
	"math"
	"sort"
	"time"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"
)

// rfmMinPopulation is the population below which quintile ranking is
// meaningless; everyone gets the neutral score instead.
const rfmMinPopulation = 2

// neutralScore is the fallback for degenerate populations.
const neutralScore = 3

// segmentRule maps a recency score and the frequency/monetary average
// onto a named segment. Rules are evaluated in order, first match wins.
type segmentRule struct {
	minR, maxR   int
	minFM, maxFM float64
	label        string
}

// The standard 11-segment RFM grid. Defined once here; every caller
// goes through SegmentLabel rather than re-deriving labels inline.
var segmentTable = []segmentRule{
	{4, 5, 4, 5, "Champions"},
	{3, 5, 3, 5, "Loyal Customers"},
	{4, 5, 2, 3, "Potential Loyalist"},
	{4, 5, 1, 2, "Recent Customers"},
	{3, 4, 1, 2, "Promising"},
	{2, 3, 2, 3, "Need Attention"},
	{2, 3, 1, 2, "About To Sleep"},
	{1, 2, 4, 5, "Can't Lose Them"},
	{1, 2, 3, 4, "At Risk"},
	{1, 2, 2, 3, "Hibernating"},
	{1, 2, 1, 2, "Lost"},
}

// SegmentLabel resolves the three 1-5 scores to a segment name.
func SegmentLabel(r, f, m int) string {
	fm := float64(f+m) / 2
	for _, rule := range segmentTable {
		if r >= rule.minR && r <= rule.maxR && fm >= rule.minFM && fm <= rule.maxFM {
			return rule.label
		}
	}
	return "Other"
}

// ScoreRFM computes recency/frequency/monetary metrics per customer and
// scores each dimension 1-5 by quintile rank across the given
// population. Boundaries are recomputed on every call: the scores are
// relative to the current population, not absolute thresholds.
func ScoreRFM(customers []domain.CustomerAggregate, now time.Time) []domain.RFMSegment {
	n := len(customers)
	segments := make([]domain.RFMSegment, n)

	recency := make([]float64, n)
	frequency := make([]float64, n)
	monetary := make([]float64, n)

	for i, c := range customers {
		seg := domain.RFMSegment{
			CustomerKey:  c.Key,
			CustomerName: c.Name,
			Frequency:    len(c.Orders),
			Monetary:     c.TotalInvestment,
			RecencyDays:  -1,
		}

		var last time.Time
		for _, o := range c.Orders {
			if o.HasDate && o.OrderDate.After(last) {
				last = o.OrderDate
			}
		}
		if !last.IsZero() {
			seg.RecencyDays = int(now.Sub(last).Hours() / 24)
		}

		segments[i] = seg
		// Customers with no parseable order date rank as least recent.
		if seg.RecencyDays < 0 {
			recency[i] = math.MaxFloat64
		} else {
			recency[i] = float64(seg.RecencyDays)
		}
		frequency[i] = float64(seg.Frequency)
		monetary[i] = seg.Monetary
	}

	rScores := quintileScores(recency, true)
	fScores := quintileScores(frequency, false)
	mScores := quintileScores(monetary, false)

	for i := range segments {
		segments[i].RecencyScore = rScores[i]
		segments[i].FrequencyScore = fScores[i]
		segments[i].MonetaryScore = mScores[i]
		segments[i].Segment = SegmentLabel(rScores[i], fScores[i], mScores[i])
	}

	return segments
}

// quintileScores ranks values into five roughly even buckets. With
// inverse set, smaller values score higher (recency: fewer days since
// the last order means a better score). Populations too small to rank
// all receive the neutral score instead of dividing into empty buckets.
func quintileScores(values []float64, inverse bool) []int {
	n := len(values)
	scores := make([]int, n)
	if n < rfmMinPopulation {
		for i := range scores {
			scores[i] = neutralScore
		}
		return scores
	}

	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	for i, v := range values {
		// Rank by first occurrence so ties share a score.
		rank := sort.SearchFloat64s(sorted, v)
		bucket := rank * 5 / n
		if bucket > 4 {
			bucket = 4
		}
		if inverse {
			scores[i] = 5 - bucket
		} else {
			scores[i] = bucket + 1
		}
	}
	return scores
}
