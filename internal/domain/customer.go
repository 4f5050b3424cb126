// internal/domain/customer.go
package domain

// CustomerAggregate groups one customer's joined orders. It is a derived
// view recomputed from the order list, never a stored entity.
type CustomerAggregate struct {
	Key             string        `json:"key"`
	Name            string        `json:"name"`
	Email           string        `json:"email"`
	Phone           string        `json:"phone"`
	City            string        `json:"city"`
	Identity        string        `json:"identity"`
	Orders          []OrderRecord `json:"orders"`
	TotalInvestment float64       `json:"total_investment"`
}

// GroupKey returns the identity key used consistently across grouping,
// search and incremental sync: email, else phone, else name.
func GroupKey(name, email, phone string) string {
	if email != "" {
		return email
	}
	if phone != "" {
		return phone
	}
	return name
}

// CustomerDocument is the persisted shape of a customer in the remote
// document store.
type CustomerDocument struct {
	CustomerID string        `json:"customer_id" db:"customer_id"`
	Name       string        `json:"name" db:"name"`
	Email      string        `json:"email" db:"email"`
	Phone      string        `json:"phone" db:"phone"`
	City       string        `json:"city" db:"city"`
	Identity   string        `json:"identity" db:"identity"`
	Orders     []OrderRecord `json:"orders" db:"-"`
}
