// internal/domain/order.go
package domain

import "time"

// IdentityNotFound is the placeholder written when an order has no
// matching POS detail carrying a national ID.
const IdentityNotFound = "No se encontró"

// LineItem is one product row inside an order, taken from the POS
// line-item export.
type LineItem struct {
	SKU         string  `json:"sku"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	LineTotal   float64 `json:"line_total"`
}

// OrderRecord is the canonical order after joining the order-management
// header with the aggregated POS lines. OrderID is normalized (leading
// zeros and trailing "-I" stripped); RawID keeps the original for
// display and export.
type OrderRecord struct {
	OrderID      string     `json:"order_id"`
	RawID        string     `json:"raw_id"`
	CustomerName string     `json:"customer_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone"`
	City         string     `json:"city"`
	Identity     string     `json:"identity"`
	OrderDate    time.Time  `json:"order_date"`
	HasDate      bool       `json:"has_date"`
	TotalAmount  float64    `json:"total_amount"`
	Items        []LineItem `json:"items"`
	Channel      string     `json:"channel"`
	POSUser      string     `json:"pos_user"`
	GestorName   string     `json:"gestor_name,omitempty"`
	GestorZone   string     `json:"gestor_zone,omitempty"`
}

// ItemsTotal sums the line totals of the order's items.
func (o *OrderRecord) ItemsTotal() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.LineTotal
	}
	return total
}
