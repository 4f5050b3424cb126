// internal/pipeline/temporal_test.go
package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"
)

func datedOrder(id, day string, amount float64, items ...domain.LineItem) domain.OrderRecord {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return domain.OrderRecord{
		OrderID:     id,
		OrderDate:   d,
		HasDate:     true,
		TotalAmount: amount,
		Items:       items,
	}
}

func TestMonthBucketsFillGaps(t *testing.T) {
	ta := &TemporalAggregator{}
	orders := []domain.OrderRecord{
		datedOrder("1", "2024-01-15", 10),
		datedOrder("2", "2024-03-10", 20),
		datedOrder("3", "2024-03-20", 5),
	}

	buckets := ta.MonthBuckets(orders)
	require.Len(t, buckets, 3)

	assert.Equal(t, "2024-01", buckets[0].Key)
	assert.Equal(t, 1, buckets[0].Count)

	// February had no orders but still gets a bucket.
	assert.Equal(t, "2024-02", buckets[1].Key)
	assert.Zero(t, buckets[1].Count)
	assert.NotNil(t, buckets[1].Items)

	assert.Equal(t, "2024-03", buckets[2].Key)
	assert.Equal(t, 2, buckets[2].Count)
	assert.Equal(t, 25.0, buckets[2].Total)
}

func TestMonthBucketsSpanCap(t *testing.T) {
	ta := &TemporalAggregator{MonthSpanCap: 2}
	orders := []domain.OrderRecord{
		datedOrder("1", "2024-01-15", 10),
		datedOrder("2", "2024-12-10", 20),
	}

	buckets := ta.MonthBuckets(orders)
	require.Len(t, buckets, 2)
	assert.Equal(t, "2024-01", buckets[0].Key)
	assert.Equal(t, "2024-02", buckets[1].Key)

	// The December order falls outside the capped span.
	var total int
	for _, b := range buckets {
		total += b.Count
	}
	assert.Equal(t, 1, total)
}

func TestMonthBucketsSkipsUndated(t *testing.T) {
	ta := &TemporalAggregator{}
	orders := []domain.OrderRecord{
		{OrderID: "1", HasDate: false, TotalAmount: 99},
	}
	assert.Empty(t, ta.MonthBuckets(orders))
}

func TestDayContributionsExcludesDelivery(t *testing.T) {
	ta := &TemporalAggregator{DeliverySKU: "DELIVERY"}
	orders := []domain.OrderRecord{
		datedOrder("1", "2024-01-10", 55,
			domain.LineItem{SKU: "SKU1", LineTotal: 50},
			domain.LineItem{SKU: "delivery", LineTotal: 5},
		),
		// Delivery-only orders vanish from the heatmap.
		datedOrder("2", "2024-01-11", 5,
			domain.LineItem{SKU: "DELIVERY", LineTotal: 5},
		),
		datedOrder("3", "2024-01-10", 20,
			domain.LineItem{SKU: "SKU2", LineTotal: 20},
		),
	}

	days := ta.DayContributions(orders)
	require.Len(t, days, 1)

	day := days[0]
	assert.Equal(t, "2024-01-10", day.Key)
	assert.Equal(t, 2, day.Count)
	assert.Equal(t, 70.0, day.Amount, "delivery amount is subtracted")

	require.Len(t, day.Orders, 2)
	require.Len(t, day.Orders[0].Items, 1)
	assert.Equal(t, "SKU1", day.Orders[0].Items[0].SKU)
	assert.Equal(t, 50.0, day.Orders[0].Amount)
}

func TestDayContributionsKeepsItemlessOrders(t *testing.T) {
	ta := &TemporalAggregator{DeliverySKU: "DELIVERY"}
	// A joined miss: no items at all. It still happened on that day.
	orders := []domain.OrderRecord{
		datedOrder("1", "2024-01-10", 0),
	}

	days := ta.DayContributions(orders)
	require.Len(t, days, 1)
	assert.Equal(t, 1, days[0].Count)
}

func TestDayContributionsSorted(t *testing.T) {
	ta := &TemporalAggregator{}
	orders := []domain.OrderRecord{
		datedOrder("1", "2024-03-01", 1),
		datedOrder("2", "2024-01-01", 1),
		datedOrder("3", "2024-02-01", 1),
	}

	days := ta.DayContributions(orders)
	require.Len(t, days, 3)
	assert.Equal(t, "2024-01-01", days[0].Key)
	assert.Equal(t, "2024-02-01", days[1].Key)
	assert.Equal(t, "2024-03-01", days[2].Key)
}

func TestIntensityLevel(t *testing.T) {
	cases := map[int]int{
		0: 0, 1: 1, 2: 2, 3: 2, 4: 3, 5: 3, 6: 4, 12: 4,
	}
	for count, want := range cases {
		assert.Equal(t, want, IntensityLevel(count), "count=%d", count)
	}
}

func TestSKUMonthCounts(t *testing.T) {
	ta := &TemporalAggregator{DeliverySKU: "DELIVERY"}
	orders := []domain.OrderRecord{
		datedOrder("1", "2024-01-10", 0,
			domain.LineItem{SKU: "SKU1", Quantity: 2},
			domain.LineItem{SKU: "DELIVERY", Quantity: 1},
		),
		datedOrder("2", "2024-01-20", 0,
			domain.LineItem{SKU: "SKU1", Quantity: 3},
		),
		datedOrder("3", "2024-02-05", 0,
			domain.LineItem{SKU: "SKU2", Quantity: 1},
		),
	}

	counts := ta.SKUMonthCounts(orders)
	require.Len(t, counts, 2)
	assert.Equal(t, 5.0, counts["2024-01"]["SKU1"])
	assert.Equal(t, 1.0, counts["2024-02"]["SKU2"])
	_, hasDelivery := counts["2024-01"]["DELIVERY"]
	assert.False(t, hasDelivery)
}
