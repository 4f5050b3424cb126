// internal/pipeline/join.go
package pipeline

import "github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"

// Join merges normalized headers with the aggregated POS lines by
// normalized order id. The join is total: every header produces exactly
// one OrderRecord. A miss is expected (cancelled-then-excluded lines)
// and yields a zero-amount record with the "not found" identity, never
// an error.
func Join(headers []HeaderRecord, lines map[string]LineGroup) []domain.OrderRecord {
	out := make([]domain.OrderRecord, 0, len(headers))
	for _, h := range headers {
		rec := domain.OrderRecord{
			OrderID:      h.OrderID,
			RawID:        h.RawID,
			CustomerName: h.CustomerName,
			Email:        h.Email,
			Phone:        h.Phone,
			City:         h.City,
			OrderDate:    h.OrderDate,
			HasDate:      h.HasDate,
			Channel:      h.Channel,
			POSUser:      h.POSUser,
			GestorName:   h.GestorName,
			GestorZone:   h.GestorZone,
		}

		if group, ok := lines[h.OrderID]; ok {
			rec.TotalAmount = group.Total
			rec.Items = group.Items
			// POS detail overrides whatever the header carried.
			rec.Identity = Coalesce(group.Identity, h.Identity, IsBlankOrZero)
			if IsBlankOrZero(rec.Identity) {
				rec.Identity = domain.IdentityNotFound
			}
		} else {
			rec.TotalAmount = 0
			rec.Items = []domain.LineItem{}
			rec.Identity = domain.IdentityNotFound
		}

		out = append(out, rec)
	}
	return out
}
