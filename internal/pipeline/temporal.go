// internal/pipeline/temporal.go
package pipeline

import (
	"sort"
	"strings"
	"time"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"
)

const defaultMonthSpanCap = 36

// TemporalAggregator buckets a customer's orders into calendar months
// and daily contributions. DeliverySKU marks the reserved
// shipping-service line excluded from product-level aggregates.
type TemporalAggregator struct {
	DeliverySKU  string
	MonthSpanCap int
}

// MonthBuckets builds one bucket per calendar month between the floor
// of the earliest and latest dated orders, inclusive. Gap months are
// emitted with zero count so heatmaps render them empty instead of
// skipping them. The span is capped to bound pathological date ranges.
func (t *TemporalAggregator) MonthBuckets(orders []domain.OrderRecord) []domain.MonthBucket {
	dated := datedOrders(orders)
	if len(dated) == 0 {
		return []domain.MonthBucket{}
	}

	earliest, latest := dated[0].OrderDate, dated[0].OrderDate
	for _, o := range dated[1:] {
		if o.OrderDate.Before(earliest) {
			earliest = o.OrderDate
		}
		if o.OrderDate.After(latest) {
			latest = o.OrderDate
		}
	}

	span := t.MonthSpanCap
	if span <= 0 {
		span = defaultMonthSpanCap
	}

	start := monthFloor(earliest)
	end := monthFloor(latest)

	buckets := make([]domain.MonthBucket, 0)
	index := make(map[string]int)
	for cursor := start; !cursor.After(end) && len(buckets) < span; cursor = cursor.AddDate(0, 1, 0) {
		key := cursor.Format("2006-01")
		index[key] = len(buckets)
		buckets = append(buckets, domain.MonthBucket{
			Key:   key,
			Date:  cursor,
			Items: []domain.LineItem{},
		})
	}

	for _, o := range dated {
		key := o.OrderDate.Format("2006-01")
		pos, ok := index[key]
		if !ok {
			// Beyond the capped span.
			continue
		}
		b := &buckets[pos]
		b.Count++
		b.Total += o.TotalAmount
		b.Items = append(b.Items, o.Items...)
	}

	return buckets
}

// DayContributions accumulates per-day order counts and amounts, net of
// delivery-service lines. An order consisting solely of the delivery
// line is excluded entirely; a mixed order counts with the delivery
// line stripped from its items and subtracted from its amount.
func (t *TemporalAggregator) DayContributions(orders []domain.OrderRecord) []domain.DayContribution {
	byDay := make(map[string]*domain.DayContribution)

	for _, o := range datedOrders(orders) {
		kept := make([]domain.LineItem, 0, len(o.Items))
		var deliveryAmount float64
		for _, item := range o.Items {
			if t.isDelivery(item.SKU) {
				deliveryAmount += item.LineTotal
				continue
			}
			kept = append(kept, item)
		}
		if len(kept) == 0 && len(o.Items) > 0 {
			continue
		}

		key := o.OrderDate.Format("2006-01-02")
		day, ok := byDay[key]
		if !ok {
			day = &domain.DayContribution{Key: key}
			byDay[key] = day
		}

		amount := o.TotalAmount - deliveryAmount
		day.Count++
		day.Amount += amount
		day.Orders = append(day.Orders, domain.OrderSummary{
			OrderID: o.OrderID,
			RawID:   o.RawID,
			Amount:  amount,
			Items:   kept,
		})
	}

	out := make([]domain.DayContribution, 0, len(byDay))
	for _, day := range byDay {
		out = append(out, *day)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// IntensityLevel maps a day's order count onto the heatmap's fixed
// 0-4 rendering scale.
func IntensityLevel(count int) int {
	switch {
	case count <= 0:
		return 0
	case count == 1:
		return 1
	case count <= 3:
		return 2
	case count <= 5:
		return 3
	default:
		return 4
	}
}

// SKUMonthCounts flattens a customer's orders into quantity totals per
// (month, sku), the shape the spreadsheet export consumes. Delivery
// lines are excluded.
func (t *TemporalAggregator) SKUMonthCounts(orders []domain.OrderRecord) map[string]map[string]float64 {
	counts := make(map[string]map[string]float64)
	for _, o := range datedOrders(orders) {
		month := o.OrderDate.Format("2006-01")
		for _, item := range o.Items {
			if t.isDelivery(item.SKU) {
				continue
			}
			if counts[month] == nil {
				counts[month] = make(map[string]float64)
			}
			counts[month][item.SKU] += item.Quantity
		}
	}
	return counts
}

func (t *TemporalAggregator) isDelivery(sku string) bool {
	return t.DeliverySKU != "" && strings.EqualFold(strings.TrimSpace(sku), t.DeliverySKU)
}

// datedOrders filters out records whose dates never parsed; they stay
// in customer and order counts but cannot be bucketed.
func datedOrders(orders []domain.OrderRecord) []domain.OrderRecord {
	out := make([]domain.OrderRecord, 0, len(orders))
	for _, o := range orders {
		if o.HasDate {
			out = append(out, o)
		}
	}
	return out
}

func monthFloor(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
