// internal/pipeline/rfm_test.go
package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"
)

func TestSegmentLabel(t *testing.T) {
	cases := []struct {
		r, f, m int
		want    string
	}{
		{5, 5, 5, "Champions"},
		{4, 4, 4, "Champions"},
		{3, 3, 3, "Loyal Customers"},
		{4, 2, 3, "Potential Loyalist"},
		{5, 1, 2, "Recent Customers"},
		{3, 1, 1, "Promising"},
		{2, 2, 3, "Need Attention"},
		{2, 1, 2, "About To Sleep"},
		{1, 4, 5, "Can't Lose Them"},
		{1, 3, 4, "At Risk"},
		{1, 2, 3, "Hibernating"},
		{1, 1, 1, "Lost"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SegmentLabel(tc.r, tc.f, tc.m), "r=%d f=%d m=%d", tc.r, tc.f, tc.m)
	}
}

// rfmCustomer builds an aggregate with n orders, the most recent one
// daysAgo days before the fixed evaluation date.
func rfmCustomer(now time.Time, key string, n, daysAgo int, monetary float64) domain.CustomerAggregate {
	c := domain.CustomerAggregate{Key: key, Name: key, TotalInvestment: monetary}
	last := now.AddDate(0, 0, -daysAgo)
	for i := 0; i < n; i++ {
		c.Orders = append(c.Orders, domain.OrderRecord{
			OrderID:   key + "-" + string(rune('a'+i)),
			OrderDate: last.AddDate(0, 0, -i),
			HasDate:   true,
		})
	}
	return c
}

func TestScoreRFMQuintiles(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	customers := []domain.CustomerAggregate{
		rfmCustomer(now, "c1", 1, 41, 100),
		rfmCustomer(now, "c2", 2, 31, 200),
		rfmCustomer(now, "c3", 3, 21, 300),
		rfmCustomer(now, "c4", 4, 11, 400),
		rfmCustomer(now, "c5", 5, 1, 500),
	}

	segments := ScoreRFM(customers, now)
	require.Len(t, segments, 5)

	// Five distinct values per dimension rank into all five quintiles.
	// Recency is inverse: c5 bought most recently, so it scores highest.
	for i, seg := range segments {
		assert.Equal(t, i+1, seg.RecencyScore, "%s recency", seg.CustomerKey)
		assert.Equal(t, i+1, seg.FrequencyScore, "%s frequency", seg.CustomerKey)
		assert.Equal(t, i+1, seg.MonetaryScore, "%s monetary", seg.CustomerKey)
	}

	assert.Equal(t, "Lost", segments[0].Segment)
	assert.Equal(t, "Champions", segments[4].Segment)
	assert.Equal(t, 1, segments[4].RecencyDays)
	assert.Equal(t, 5, segments[4].Frequency)
	assert.Equal(t, 500.0, segments[4].Monetary)
}

func TestScoreRFMTiesShareScores(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	customers := []domain.CustomerAggregate{
		rfmCustomer(now, "c1", 2, 10, 100),
		rfmCustomer(now, "c2", 2, 10, 100),
		rfmCustomer(now, "c3", 2, 10, 100),
	}

	segments := ScoreRFM(customers, now)
	require.Len(t, segments, 3)
	for _, seg := range segments[1:] {
		assert.Equal(t, segments[0].RecencyScore, seg.RecencyScore)
		assert.Equal(t, segments[0].FrequencyScore, seg.FrequencyScore)
		assert.Equal(t, segments[0].MonetaryScore, seg.MonetaryScore)
	}
}

func TestScoreRFMSmallPopulationIsNeutral(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	customers := []domain.CustomerAggregate{
		rfmCustomer(now, "only", 3, 5, 250),
	}

	segments := ScoreRFM(customers, now)
	require.Len(t, segments, 1)
	assert.Equal(t, 3, segments[0].RecencyScore)
	assert.Equal(t, 3, segments[0].FrequencyScore)
	assert.Equal(t, 3, segments[0].MonetaryScore)
}

func TestScoreRFMUndatedCustomerRanksLeastRecent(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	undated := domain.CustomerAggregate{
		Key: "undated", Name: "undated", TotalInvestment: 50,
		Orders: []domain.OrderRecord{{OrderID: "x", HasDate: false}},
	}
	customers := []domain.CustomerAggregate{
		rfmCustomer(now, "recent", 1, 1, 50),
		undated,
	}

	segments := ScoreRFM(customers, now)
	require.Len(t, segments, 2)
	assert.Equal(t, -1, segments[1].RecencyDays)
	assert.Less(t, segments[1].RecencyScore, segments[0].RecencyScore)
}
