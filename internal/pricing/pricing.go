// Package pricing resolves the final unit price of a product for a given set
// of attribute selections. Resolution is a pure computation over current
// catalog state: the base price of the product's active price record plus the
// surcharge of every selected attribute value still valid for the product.
//
// All amounts are integer cents. Display and currency formatting are a
// presentation concern and never happen here.
package pricing

import (
	"context"

	"github.com/dukerupert/vanir/internal/domain"
)

// FinalPrice is the value object produced by price resolution. It is embedded
// into cart line items at refresh time, never persisted independently.
type FinalPrice struct {
	// UnitCents is the numeric unit price usable for arithmetic.
	UnitCents int64

	// BaseCents and SurchargeCents break the unit price down for display and
	// audit. UnitCents = BaseCents + SurchargeCents always holds.
	BaseCents      int64
	SurchargeCents int64
}

// Resolver computes final prices from catalog state.
type Resolver interface {
	// ResolvePrice computes the final unit price of product with the given
	// attribute selections. Selections must already be validated against the
	// product; values not valid for the product are ignored.
	// Returns ErrNoActivePrice when the product has no active price record.
	ResolvePrice(ctx context.Context, product *domain.Product, selections []domain.AttributeValue) (FinalPrice, error)
}

type catalogResolver struct{}

// NewResolver creates the catalog-backed price resolver.
func NewResolver() Resolver {
	return &catalogResolver{}
}

// ResolvePrice implements Resolver.
func (r *catalogResolver) ResolvePrice(ctx context.Context, product *domain.Product, selections []domain.AttributeValue) (FinalPrice, error) {
	if product.Price == nil || !product.Price.Active {
		return FinalPrice{}, domain.ErrNoActivePrice
	}

	price := FinalPrice{BaseCents: product.Price.AmountCents}

	for _, sel := range selections {
		// A selection that is no longer a valid option of the product carries
		// no surcharge; refresh is responsible for pruning it.
		if product.HasAttributeValue(sel.ID) {
			price.SurchargeCents += sel.SurchargeCents
		}
	}

	price.UnitCents = price.BaseCents + price.SurchargeCents
	return price, nil
}
