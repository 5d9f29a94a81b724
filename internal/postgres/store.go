package postgres

import (
	"context"
	"errors"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StoreDB implements domain.StoreReader using PostgreSQL.
type StoreDB struct {
	pool *pgxpool.Pool
}

// Compile-time check that StoreDB implements domain.StoreReader.
var _ domain.StoreReader = (*StoreDB)(nil)

// NewStoreDB creates a new PostgreSQL-backed store reader.
func NewStoreDB(pool *pgxpool.Pool) *StoreDB {
	return &StoreDB{pool: pool}
}

// GetStoreByID loads a store by id.
func (s *StoreDB) GetStoreByID(ctx context.Context, id pgtype.UUID) (*domain.Store, error) {
	return s.getStore(ctx, "store.get_by_id", "id = $1", id)
}

// GetStoreByCode loads a store by its url-safe code.
func (s *StoreDB) GetStoreByCode(ctx context.Context, code string) (*domain.Store, error) {
	return s.getStore(ctx, "store.get_by_code", "code = $1", code)
}

func (s *StoreDB) getStore(ctx context.Context, op, where string, arg any) (*domain.Store, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, code, name, default_currency, created_at, updated_at
		FROM stores
		WHERE `+where, arg)

	var store domain.Store
	err := row.Scan(&store.ID, &store.Code, &store.Name, &store.DefaultCurrency,
		&store.CreatedAt, &store.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStoreNotFound
		}
		return nil, domain.Internal(err, op, "failed to get store")
	}
	return &store, nil
}
