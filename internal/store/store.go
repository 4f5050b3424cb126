// internal/store/store.go
package store

import (
	"context"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"
)

// CustomerStore is the remote document collaborator the sync merger
// writes through. The pipeline core never touches it; only the merger
// and the service layer do.
type CustomerStore interface {
	// FetchAll returns every persisted customer document.
	FetchAll(ctx context.Context) ([]domain.CustomerDocument, error)

	// UpsertBatch writes one batch of customer documents, replacing
	// existing documents with the same customer_id.
	UpsertBatch(ctx context.Context, docs []domain.CustomerDocument) error
}
