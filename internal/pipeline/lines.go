// internal/pipeline/lines.go
package pipeline

import "github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"

// LineGroup is the per-order result of collapsing POS line rows.
type LineGroup struct {
	Total    float64
	Items    []domain.LineItem
	Identity string
}

// AggregateLines collapses line rows by normalized order id into one
// total plus the ordered item list. The identity is first-wins: once a
// non-placeholder value is recorded for an order it is never replaced.
func AggregateLines(lines []LineRow) map[string]LineGroup {
	groups := make(map[string]LineGroup)
	for _, line := range lines {
		group := groups[line.OrderID]

		sku := line.SKU
		if sku == "" {
			// SKU is the grouping handle downstream; fall back to the
			// description when the export leaves it blank.
			sku = line.Description
		}

		group.Items = append(group.Items, domain.LineItem{
			SKU:         sku,
			Description: line.Description,
			Quantity:    line.Quantity,
			LineTotal:   line.LineTotal,
		})
		group.Total += line.LineTotal
		group.Identity = Coalesce(group.Identity, line.Identity, IsBlankOrZero)

		groups[line.OrderID] = group
	}
	return groups
}
