package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// =============================================================================
// CATALOG DOMAIN TYPES
// =============================================================================

// ProductStatus represents the lifecycle state of a product.
type ProductStatus string

const (
	ProductStatusDraft    ProductStatus = "draft"
	ProductStatusActive   ProductStatus = "active"
	ProductStatusArchived ProductStatus = "archived"
)

// Product represents a catalog product as cart and pricing code consume it.
// Cart line items reference products by SKU (the stable external key), never by
// in-memory pointer, so stale references are detected on every refresh.
type Product struct {
	ID      pgtype.UUID
	StoreID pgtype.UUID
	SKU     string
	Name    string
	Slug    string
	Status  ProductStatus

	// Virtual products (downloads, gift cards) never ship.
	Virtual          bool
	RequiresShipping bool
	WeightGrams      pgtype.Int4

	// Price is the product's active price record for its store.
	// Nil when no active price is configured.
	Price *ProductPrice

	// AttributeValues are the option values currently valid for this product
	// (e.g. "grind: coarse" with a surcharge). Cart selections are validated
	// against this set on every refresh.
	AttributeValues []AttributeValue

	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// ProductPrice is the active price record of a product.
type ProductPrice struct {
	ID          pgtype.UUID
	ProductID   pgtype.UUID
	AmountCents int64
	Active      bool
}

// AttributeValue is one selectable option value of a product, with the
// surcharge it adds on top of the base price.
type AttributeValue struct {
	ID             pgtype.UUID
	ProductID      pgtype.UUID
	Name           string // e.g. "grind"
	Value          string // e.g. "coarse"
	SurchargeCents int64
}

// HasAttributeValue reports whether id is a currently valid option value of p.
func (p *Product) HasAttributeValue(id pgtype.UUID) bool {
	for _, av := range p.AttributeValues {
		if av.ID == id {
			return true
		}
	}
	return false
}

// AttributeValueByID returns the option value with the given id, or nil.
func (p *Product) AttributeValueByID(id pgtype.UUID) *AttributeValue {
	for i := range p.AttributeValues {
		if p.AttributeValues[i].ID == id {
			return &p.AttributeValues[i]
		}
	}
	return nil
}

// =============================================================================
// CATALOG LOOKUP CONTRACT
// =============================================================================

// CatalogReader is the narrow catalog contract the cart core depends on.
// Lookups are by stable external key (SKU) so that deleted or re-homed
// products surface as ErrProductNotFound or a store mismatch rather than
// silently serving stale data.
type CatalogReader interface {
	// FindProductBySKU resolves a product by SKU. The returned product carries
	// its owning StoreID; callers decide whether a foreign store is an
	// obsolete item (refresh) or a hard failure (merge).
	FindProductBySKU(ctx context.Context, sku string) (*Product, error)

	// FindAttributeValueByID resolves a product option value by id.
	FindAttributeValueByID(ctx context.Context, id pgtype.UUID) (*AttributeValue, error)
}

// =============================================================================
// DOMAIN ERRORS
// =============================================================================

var (
	ErrProductNotFound        = &Error{Code: ENOTFOUND, Message: "Product not found"}
	ErrAttributeValueNotFound = &Error{Code: ENOTFOUND, Message: "Attribute value not found"}
	ErrNoActivePrice          = &Error{Code: ENOTFOUND, Message: "No active price configured for this product"}
)
