// internal/store/postgres/store.go
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/config"
	"github.com/David815-hue/FrecuenciaCompra-sub000/internal/domain"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// CustomerStore persists customer documents in a single table with the
// order history as a JSONB column, keyed by customer_id.
type CustomerStore struct {
	db *sqlx.DB
}

func NewDB(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)
	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func NewCustomerStore(db *sqlx.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

type customerRow struct {
	CustomerID string `db:"customer_id"`
	Name       string `db:"name"`
	Email      string `db:"email"`
	Phone      string `db:"phone"`
	City       string `db:"city"`
	Identity   string `db:"identity"`
	Orders     []byte `db:"orders"`
}

// FetchAll loads every persisted customer document.
func (s *CustomerStore) FetchAll(ctx context.Context) ([]domain.CustomerDocument, error) {
	var rows []customerRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT customer_id, name, email, phone, city, identity, orders FROM customers`)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customers: %w", err)
	}
	return rowsToDocuments(rows)
}

// FetchByIDs loads the documents for the given customer ids.
func (s *CustomerStore) FetchByIDs(ctx context.Context, ids []string) ([]domain.CustomerDocument, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var rows []customerRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT customer_id, name, email, phone, city, identity, orders
		 FROM customers WHERE customer_id = ANY($1)`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch customers by id: %w", err)
	}
	return rowsToDocuments(rows)
}

// UpsertBatch writes one batch inside a transaction so a failed batch
// leaves the store unchanged.
func (s *CustomerStore) UpsertBatch(ctx context.Context, docs []domain.CustomerDocument) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO customers (customer_id, name, email, phone, city, identity, orders, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (customer_id) DO UPDATE SET
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			phone = EXCLUDED.phone,
			city = EXCLUDED.city,
			identity = EXCLUDED.identity,
			orders = EXCLUDED.orders,
			updated_at = NOW()
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, doc := range docs {
		orders, err := json.Marshal(doc.Orders)
		if err != nil {
			return fmt.Errorf("failed to encode orders for %s: %w", doc.CustomerID, err)
		}
		if _, err := stmt.ExecContext(ctx,
			doc.CustomerID, doc.Name, doc.Email, doc.Phone, doc.City, doc.Identity, orders,
		); err != nil {
			return fmt.Errorf("failed to upsert customer %s: %w", doc.CustomerID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit batch: %w", err)
	}
	return nil
}

// DeleteAll clears the collection. Used by the ingest CLI's reset
// command.
func (s *CustomerStore) DeleteAll(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM customers`); err != nil {
		return fmt.Errorf("failed to delete customers: %w", err)
	}
	return nil
}

func rowsToDocuments(rows []customerRow) ([]domain.CustomerDocument, error) {
	docs := make([]domain.CustomerDocument, 0, len(rows))
	for _, r := range rows {
		doc := domain.CustomerDocument{
			CustomerID: r.CustomerID,
			Name:       r.Name,
			Email:      r.Email,
			Phone:      r.Phone,
			City:       r.City,
			Identity:   r.Identity,
		}
		if len(r.Orders) > 0 {
			if err := json.Unmarshal(r.Orders, &doc.Orders); err != nil {
				return nil, fmt.Errorf("failed to decode orders for %s: %w", r.CustomerID, err)
			}
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
