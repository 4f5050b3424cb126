// internal/pipeline/search.go
package pipeline

import (
	"strings"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"
)

// MinQueryLength is the guard callers apply before invoking search.
// The engine itself does not enforce it: an explicit contract, so that
// programmatic callers (tests, exports) can search short terms.
const MinQueryLength = 3

// SplitQuery breaks a raw query on commas and newlines into trimmed,
// lowercased terms, dropping empties.
func SplitQuery(query string) []string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return r == ',' || r == '\n' || r == '\r'
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		term := strings.ToLower(strings.TrimSpace(f))
		if term != "" {
			terms = append(terms, term)
		}
	}
	return terms
}

// FilterOrders evaluates a query against joined orders. A single term
// searches name, email, phone, identity and SKUs; multiple terms switch
// to SKU-list mode where only line-item SKUs are considered, so pasted
// SKU lists cannot match on unrelated free text.
func FilterOrders(orders []domain.OrderRecord, query string) []domain.OrderRecord {
	terms := SplitQuery(query)
	if len(terms) == 0 {
		return orders
	}

	out := make([]domain.OrderRecord, 0, len(orders))
	for _, o := range orders {
		if orderMatches(&o, terms) {
			out = append(out, o)
		}
	}
	return out
}

// FilterCustomers applies the same term semantics to grouped customers.
// A customer matches when any of its orders does, or (single-term mode)
// when the aggregate's own fields do.
func FilterCustomers(customers []domain.CustomerAggregate, query string) []domain.CustomerAggregate {
	terms := SplitQuery(query)
	if len(terms) == 0 {
		return customers
	}

	out := make([]domain.CustomerAggregate, 0, len(customers))
	for _, c := range customers {
		if customerMatches(&c, terms) {
			out = append(out, c)
		}
	}
	return out
}

func orderMatches(o *domain.OrderRecord, terms []string) bool {
	if len(terms) == 1 {
		term := terms[0]
		if containsFold(o.CustomerName, term) ||
			containsFold(o.Email, term) ||
			containsFold(o.Phone, term) ||
			containsFold(o.Identity, term) {
			return true
		}
	}
	return anySKUMatches(o.Items, terms)
}

func customerMatches(c *domain.CustomerAggregate, terms []string) bool {
	if len(terms) == 1 {
		term := terms[0]
		if containsFold(c.Name, term) ||
			containsFold(c.Email, term) ||
			containsFold(c.Phone, term) ||
			containsFold(c.Identity, term) {
			return true
		}
	}
	for _, o := range c.Orders {
		if anySKUMatches(o.Items, terms) {
			return true
		}
	}
	return false
}

func anySKUMatches(items []domain.LineItem, terms []string) bool {
	for _, item := range items {
		sku := strings.ToLower(item.SKU)
		for _, term := range terms {
			if strings.Contains(sku, term) {
				return true
			}
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), needle)
}
