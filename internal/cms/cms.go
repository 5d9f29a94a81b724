// Package cms serves store-editable content blocks (about pages, banners,
// shipping policies) with a read-through TTL cache in front of the database.
package cms

import (
	"context"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

// Content is one editable content block, scoped to a store by slug.
type Content struct {
	ID        pgtype.UUID
	StoreID   pgtype.UUID
	Slug      string
	Title     string
	Body      string
	Published bool
	UpdatedAt pgtype.Timestamptz
}

// Provider serves content blocks. The cache and the database store both
// implement it, so callers never know whether a read was warm.
type Provider interface {
	// GetContent returns the published content block for a store and slug.
	GetContent(ctx context.Context, storeID pgtype.UUID, slug string) (*Content, error)
}

// ErrContentNotFound is returned when no published block exists for the slug.
var ErrContentNotFound = &domain.Error{Code: domain.ENOTFOUND, Message: "Content not found"}
