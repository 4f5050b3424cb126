// internal/domain/analytics.go
package domain

import "time"

// MonthBucket aggregates one calendar month of a customer's orders.
// Buckets exist for every month in the covered span, including months
// with zero orders.
type MonthBucket struct {
	Key   string     `json:"key"` // YYYY-MM
	Date  time.Time  `json:"date"`
	Count int        `json:"count"`
	Total float64    `json:"total"`
	Items []LineItem `json:"items"`
}

// OrderSummary is a reduced order used inside day contributions, with
// delivery lines already filtered out.
type OrderSummary struct {
	OrderID string     `json:"order_id"`
	RawID   string     `json:"raw_id"`
	Amount  float64    `json:"amount"`
	Items   []LineItem `json:"items"`
}

// DayContribution is one heatmap cell: a day's order count and amount
// net of delivery-service lines.
type DayContribution struct {
	Key    string         `json:"key"` // YYYY-MM-DD
	Count  int            `json:"count"`
	Amount float64        `json:"amount"`
	Orders []OrderSummary `json:"orders"`
}

// RFMSegment holds the recency/frequency/monetary metrics, the 1-5
// quintile scores and the resulting segment label for one customer.
type RFMSegment struct {
	CustomerKey    string  `json:"customer_key"`
	CustomerName   string  `json:"customer_name"`
	RecencyDays    int     `json:"recency_days"`
	Frequency      int     `json:"frequency"`
	Monetary       float64 `json:"monetary"`
	RecencyScore   int     `json:"recency_score"`
	FrequencyScore int     `json:"frequency_score"`
	MonetaryScore  int     `json:"monetary_score"`
	Segment        string  `json:"segment"`
}
