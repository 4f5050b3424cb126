// internal/sync/merger.go
package sync

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/pipeline"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/store"
)

const (
	defaultBatchSize  = 100
	defaultBatchDelay = 500 * time.Millisecond
)

// Result reports how far a sync run got. BatchesDone stays meaningful
// on failure so callers can observe partial success.
type Result struct {
	Customers   int `json:"customers"`
	Batches     int `json:"batches"`
	BatchesDone int `json:"batches_done"`
}

// Merger reconciles a new upload's grouped customers with the persisted
// snapshot. Merging keys orders by id with new data winning, so
// reprocessing the same upload is idempotent.
type Merger struct {
	Store      store.CustomerStore
	BatchSize  int
	BatchDelay time.Duration
}

func NewMerger(s store.CustomerStore, batchSize int, batchDelay time.Duration) *Merger {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if batchDelay <= 0 {
		batchDelay = defaultBatchDelay
	}
	return &Merger{Store: s, BatchSize: batchSize, BatchDelay: batchDelay}
}

// Sync fetches the persisted snapshot, merges the upload into it and
// writes the result back in fixed-size batches. Batches run strictly
// one after another with an inter-batch delay; the store's write quota
// is the bottleneck, not this process. A failed batch aborts the rest
// and the error carries how many batches made it.
func (m *Merger) Sync(ctx context.Context, customers []domain.CustomerAggregate) (Result, error) {
	existing, err := m.Store.FetchAll(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to fetch persisted customers: %w", err)
	}

	merged := MergeSnapshot(existing, customers)

	result := Result{
		Customers: len(merged),
		Batches:   (len(merged) + m.BatchSize - 1) / m.BatchSize,
	}

	for start := 0; start < len(merged); start += m.BatchSize {
		if result.BatchesDone > 0 {
			// Cancellation is best-effort between batches only.
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(m.BatchDelay):
			}
		}

		end := start + m.BatchSize
		if end > len(merged) {
			end = len(merged)
		}

		if err := m.Store.UpsertBatch(ctx, merged[start:end]); err != nil {
			return result, fmt.Errorf("batch %d/%d failed: %w", result.BatchesDone+1, result.Batches, err)
		}
		result.BatchesDone++
		log.Debug().
			Int("batch", result.BatchesDone).
			Int("total", result.Batches).
			Msg("customer batch upserted")
	}

	return result, nil
}

// MergeSnapshot reconciles persisted documents with freshly grouped
// customers. Existing customers are located by customer_id or by the
// legacy grouping key; order lists merge last-write-wins per order id.
// Pure so it can be tested without a store.
func MergeSnapshot(existing []domain.CustomerDocument, customers []domain.CustomerAggregate) []domain.CustomerDocument {
	byID := make(map[string]int, len(existing))
	byLegacyKey := make(map[string]int, len(existing))
	merged := make([]domain.CustomerDocument, len(existing))
	copy(merged, existing)

	for i, doc := range merged {
		byID[doc.CustomerID] = i
		byLegacyKey[domain.GroupKey(doc.Name, doc.Email, doc.Phone)] = i
	}

	for _, c := range customers {
		id := CustomerID(c)

		pos, ok := byID[id]
		if !ok {
			pos, ok = byLegacyKey[c.Key]
		}
		if !ok {
			pos = len(merged)
			merged = append(merged, domain.CustomerDocument{CustomerID: id})
			byID[id] = pos
			byLegacyKey[c.Key] = pos
		}

		doc := &merged[pos]
		doc.Name = c.Name
		doc.Email = c.Email
		doc.Phone = c.Phone
		doc.City = c.City
		doc.Identity = pipeline.Coalesce(doc.Identity, c.Identity, pipeline.IsMissingIdentity)
		doc.Orders = mergeOrders(doc.Orders, c.Orders)
	}

	return merged
}

// mergeOrders overlays new orders onto existing ones by order id, new
// data winning on collision, preserving existing-then-new ordering.
func mergeOrders(existing, incoming []domain.OrderRecord) []domain.OrderRecord {
	index := make(map[string]int, len(existing))
	out := make([]domain.OrderRecord, len(existing))
	copy(out, existing)

	for i, o := range out {
		index[o.OrderID] = i
	}
	for _, o := range incoming {
		if pos, ok := index[o.OrderID]; ok {
			out[pos] = o
			continue
		}
		index[o.OrderID] = len(out)
		out = append(out, o)
	}
	return out
}

var idSanitizer = regexp.MustCompile(`[^a-z0-9]+`)

// CustomerID derives the persistence key: sanitized email, else
// sanitized phone, else a fallback from the customer name.
func CustomerID(c domain.CustomerAggregate) string {
	if s := sanitizeID(c.Email); s != "" {
		return s
	}
	if s := sanitizeID(c.Phone); s != "" {
		return s
	}
	return "cust_" + sanitizeID(c.Name)
}

func sanitizeID(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	v = idSanitizer.ReplaceAllString(v, "_")
	return strings.Trim(v, "_")
}
