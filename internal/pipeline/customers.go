// internal/pipeline/customers.go
package pipeline

import "github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"

// GroupCustomers folds joined orders into customer aggregates keyed by
// email, else phone, else name. Output keeps first-occurrence order.
// Orders lacking all three key fields cannot be attributed to anyone;
// they are dropped and counted in the second return value.
func GroupCustomers(orders []domain.OrderRecord) ([]domain.CustomerAggregate, int) {
	index := make(map[string]int)
	customers := make([]domain.CustomerAggregate, 0)
	dropped := 0

	for _, order := range orders {
		key := domain.GroupKey(order.CustomerName, order.Email, order.Phone)
		if key == "" {
			dropped++
			continue
		}

		pos, ok := index[key]
		if !ok {
			pos = len(customers)
			index[key] = pos
			customers = append(customers, domain.CustomerAggregate{
				Key:      key,
				Name:     order.CustomerName,
				Email:    order.Email,
				Phone:    order.Phone,
				City:     order.City,
				Identity: domain.IdentityNotFound,
			})
		}

		c := &customers[pos]
		c.Orders = append(c.Orders, order)
		c.TotalInvestment += order.TotalAmount
		// Sticky identity: a real value is never overwritten by a
		// later sentinel.
		c.Identity = Coalesce(c.Identity, order.Identity, IsMissingIdentity)
	}

	return customers, dropped
}
