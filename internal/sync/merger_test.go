// internal/sync/merger_test.go
package sync

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"
)

// fakeStore keeps documents in memory and can be told to fail a given
// batch number.
type fakeStore struct {
	docs      map[string]domain.CustomerDocument
	batches   int
	failBatch int
}

func newFakeStore() *fakeStore {
	return &fakeStore{docs: make(map[string]domain.CustomerDocument)}
}

func (s *fakeStore) FetchAll(ctx context.Context) ([]domain.CustomerDocument, error) {
	out := make([]domain.CustomerDocument, 0, len(s.docs))
	for _, d := range s.docs {
		out = append(out, d)
	}
	return out, nil
}

func (s *fakeStore) UpsertBatch(ctx context.Context, docs []domain.CustomerDocument) error {
	s.batches++
	if s.failBatch > 0 && s.batches == s.failBatch {
		return errors.New("quota exceeded")
	}
	for _, d := range docs {
		s.docs[d.CustomerID] = d
	}
	return nil
}

func aggregate(key, name, email string, orders ...domain.OrderRecord) domain.CustomerAggregate {
	return domain.CustomerAggregate{Key: key, Name: name, Email: email, Orders: orders}
}

func TestSyncWritesAllBatches(t *testing.T) {
	store := newFakeStore()
	m := NewMerger(store, 1, time.Millisecond)

	customers := []domain.CustomerAggregate{
		aggregate("a@x.com", "Ana", "a@x.com", domain.OrderRecord{OrderID: "1"}),
		aggregate("b@x.com", "Beto", "b@x.com", domain.OrderRecord{OrderID: "2"}),
		aggregate("c@x.com", "Carla", "c@x.com", domain.OrderRecord{OrderID: "3"}),
	}

	result, err := m.Sync(context.Background(), customers)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Customers)
	assert.Equal(t, 3, result.Batches)
	assert.Equal(t, 3, result.BatchesDone)
	assert.Len(t, store.docs, 3)
}

func TestSyncReportsPartialProgressOnFailure(t *testing.T) {
	store := newFakeStore()
	store.failBatch = 2
	m := NewMerger(store, 1, time.Millisecond)

	customers := []domain.CustomerAggregate{
		aggregate("a@x.com", "Ana", "a@x.com"),
		aggregate("b@x.com", "Beto", "b@x.com"),
		aggregate("c@x.com", "Carla", "c@x.com"),
	}

	result, err := m.Sync(context.Background(), customers)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch 2/3")
	assert.Equal(t, 1, result.BatchesDone)
	assert.Equal(t, 3, result.Batches)
}

func TestSyncStopsBetweenBatchesOnCancel(t *testing.T) {
	store := newFakeStore()
	m := NewMerger(store, 1, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	customers := []domain.CustomerAggregate{
		aggregate("a@x.com", "Ana", "a@x.com"),
		aggregate("b@x.com", "Beto", "b@x.com"),
	}

	// The first batch always runs; cancellation is only observed in the
	// inter-batch wait.
	result, err := m.Sync(ctx, customers)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.BatchesDone)
}

func TestSyncIsIdempotent(t *testing.T) {
	store := newFakeStore()
	m := NewMerger(store, 100, time.Millisecond)

	customers := []domain.CustomerAggregate{
		aggregate("a@x.com", "Ana", "a@x.com",
			domain.OrderRecord{OrderID: "1", TotalAmount: 10},
			domain.OrderRecord{OrderID: "2", TotalAmount: 20},
		),
	}

	_, err := m.Sync(context.Background(), customers)
	require.NoError(t, err)
	_, err = m.Sync(context.Background(), customers)
	require.NoError(t, err)

	require.Len(t, store.docs, 1)
	doc := store.docs["a_x_com"]
	assert.Len(t, doc.Orders, 2, "re-syncing must not duplicate orders")
}

func TestMergeSnapshotNewOrderDataWins(t *testing.T) {
	existing := []domain.CustomerDocument{{
		CustomerID: "a_x_com", Name: "Ana", Email: "a@x.com",
		Orders: []domain.OrderRecord{
			{OrderID: "1", TotalAmount: 10},
			{OrderID: "2", TotalAmount: 20},
		},
	}}
	incoming := []domain.CustomerAggregate{
		aggregate("a@x.com", "Ana", "a@x.com",
			domain.OrderRecord{OrderID: "2", TotalAmount: 25},
			domain.OrderRecord{OrderID: "3", TotalAmount: 30},
		),
	}

	merged := MergeSnapshot(existing, incoming)
	require.Len(t, merged, 1)
	require.Len(t, merged[0].Orders, 3)
	assert.Equal(t, "1", merged[0].Orders[0].OrderID)
	assert.Equal(t, 25.0, merged[0].Orders[1].TotalAmount, "incoming data wins per order id")
	assert.Equal(t, "3", merged[0].Orders[2].OrderID)
}

func TestMergeSnapshotMatchesByLegacyKey(t *testing.T) {
	// Persisted before customer ids were derived from emails.
	existing := []domain.CustomerDocument{{
		CustomerID: "legacy-123", Name: "Ana", Email: "a@x.com",
		Orders: []domain.OrderRecord{{OrderID: "1"}},
	}}
	incoming := []domain.CustomerAggregate{
		aggregate("a@x.com", "Ana", "a@x.com", domain.OrderRecord{OrderID: "2"}),
	}

	merged := MergeSnapshot(existing, incoming)
	require.Len(t, merged, 1)
	assert.Equal(t, "legacy-123", merged[0].CustomerID)
	assert.Len(t, merged[0].Orders, 2)
}

func TestMergeSnapshotKeepsKnownIdentity(t *testing.T) {
	existing := []domain.CustomerDocument{{
		CustomerID: "a_x_com", Name: "Ana", Email: "a@x.com", Identity: "17001",
	}}
	incoming := []domain.CustomerAggregate{{
		Key: "a@x.com", Name: "Ana", Email: "a@x.com", Identity: domain.IdentityNotFound,
	}}

	merged := MergeSnapshot(existing, incoming)
	require.Len(t, merged, 1)
	assert.Equal(t, "17001", merged[0].Identity)
}

func TestCustomerID(t *testing.T) {
	cases := []struct {
		c    domain.CustomerAggregate
		want string
	}{
		{domain.CustomerAggregate{Email: "John.Doe@X.com"}, "john_doe_x_com"},
		{domain.CustomerAggregate{Phone: "+593 99 111"}, "593_99_111"},
		{domain.CustomerAggregate{Name: "Jane Perez"}, "cust_jane_perez"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CustomerID(tc.c))
	}
}
