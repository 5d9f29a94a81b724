package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Store represents one merchant storefront. Carts, products and prices are
// always scoped to a single store; cross-store access is rejected.
type Store struct {
	ID   pgtype.UUID
	Code string
	Name string

	// DefaultCurrency is informational only; all arithmetic is integer cents.
	DefaultCurrency string

	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// StoreReader resolves stores by id or code.
type StoreReader interface {
	GetStoreByID(ctx context.Context, id pgtype.UUID) (*Store, error)
	GetStoreByCode(ctx context.Context, code string) (*Store, error)
}

var ErrStoreNotFound = &Error{Code: ENOTFOUND, Message: "Store not found"}
