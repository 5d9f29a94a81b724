package cart

import (
	"context"
	"errors"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/pricing"
	"github.com/jackc/pgx/v5/pgtype"
)

// Refresher re-validates a single cart line item against the live catalog and
// recomputes its price.
type Refresher struct {
	catalog    domain.CatalogReader
	resolver   pricing.Resolver
	selections SelectionRemover
}

// NewRefresher creates a Refresher.
func NewRefresher(catalog domain.CatalogReader, resolver pricing.Resolver, selections SelectionRemover) *Refresher {
	return &Refresher{
		catalog:    catalog,
		resolver:   resolver,
		selections: selections,
	}
}

// RefreshItem re-resolves the item's product by SKU within the given store,
// prunes attribute selections the catalog no longer backs, and recomputes
// unit price and subtotal. It returns true when the item became obsolete
// (product gone, or product re-homed to another store).
//
// A missing product is an expected condition and never an error; pricing
// failures and storage failures propagate.
//
// Quantity is deliberately not validated here: the add/update path owns input
// validation, and refresh must not reject carts that were valid when written.
func (r *Refresher) RefreshItem(ctx context.Context, item *domain.CartItem, storeID pgtype.UUID) (bool, error) {
	const op = "cart.refresh"

	product, err := r.catalog.FindProductBySKU(ctx, item.SKU)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			item.Obsolete = true
			return true, nil
		}
		return false, domain.WrapError(err, domain.EINTERNAL, op, "failed to resolve product")
	}

	// A product that moved to a different store is invisible to this cart's
	// store-scoped lookup, same as a deleted one.
	if product.StoreID != storeID {
		item.Obsolete = true
		return true, nil
	}

	item.Virtual = product.Virtual

	// Validate every selection against the live product. Orphans are queued
	// and removed through an explicit delete, never just dropped in memory.
	var (
		kept      []domain.AttributeSelection
		validated []domain.AttributeValue
		orphaned  []pgtype.UUID
	)
	for _, sel := range item.Selections {
		value, err := r.catalog.FindAttributeValueByID(ctx, sel.AttributeValueID)
		if err != nil {
			if domain.IsCode(err, domain.ENOTFOUND) {
				orphaned = append(orphaned, sel.ID)
				continue
			}
			return false, domain.WrapError(err, domain.EINTERNAL, op, "failed to resolve attribute value")
		}
		if value.ProductID != product.ID || !product.HasAttributeValue(value.ID) {
			orphaned = append(orphaned, sel.ID)
			continue
		}
		kept = append(kept, sel)
		validated = append(validated, *value)
	}

	for _, id := range orphaned {
		if err := r.selections.DeleteSelection(ctx, id); err != nil {
			return false, domain.WrapError(err, domain.EINTERNAL, op, "failed to delete orphaned selection")
		}
	}

	if len(kept) == 0 && len(item.Selections) > 0 {
		// Every selection was pruned: the item keeps an empty collection,
		// not a nil-with-stale-entries one.
		item.Selections = []domain.AttributeSelection{}
	} else {
		item.Selections = kept
	}

	price, err := r.resolver.ResolvePrice(ctx, product, validated)
	if err != nil {
		if errors.Is(err, domain.ErrNoActivePrice) {
			return false, err
		}
		return false, domain.WrapError(err, domain.EINTERNAL, op, "failed to resolve price")
	}

	item.UnitPriceCents = price.UnitCents
	item.SubtotalCents = price.UnitCents * int64(item.Quantity)
	item.Obsolete = false
	return false, nil
}
