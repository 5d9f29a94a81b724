package cart

import (
	"context"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

// Cart-merge errors.
var (
	// ErrCrossStoreItem aborts a merge when a source item's product belongs
	// to a different store than the target cart.
	ErrCrossStoreItem = &domain.Error{
		Code:    domain.EFORBIDDEN,
		Message: "Cart item references a product from a different store",
	}
)

// MergeStore is the persistence surface the merger needs.
// domain.CartStore satisfies it.
type MergeStore interface {
	SaveCart(ctx context.Context, cart *domain.Cart) error
	DeleteCart(ctx context.Context, id pgtype.UUID) error
}

// Merger folds an anonymous session cart into an authenticated customer's
// cart at login time.
type Merger struct {
	catalog domain.CatalogReader
	carts   MergeStore
}

// NewMerger creates a Merger.
func NewMerger(catalog domain.CatalogReader, carts MergeStore) *Merger {
	return &Merger{catalog: catalog, carts: carts}
}

// MergeCarts merges source into target and deletes source.
//
// Both carts must belong to storeID. When both carts already belong to the
// same customer and both have items, the merge is a no-op: the target is
// returned unchanged and the source is kept (the user re-logged in with a
// cart that was already theirs).
//
// Every source item is validated against the catalog before anything is
// mutated: an unknown SKU fails the merge with ENOTFOUND, a product owned by
// a different store fails it with ErrCrossStoreItem, and in both cases
// neither cart has been touched.
//
// A source item whose product and attribute selections match an existing
// target line with a non-empty selection set is folded in by summing
// quantities; everything else is appended as a new line. The duplicate match
// is decided independently for each source item.
func (m *Merger) MergeCarts(ctx context.Context, target, source *domain.Cart, storeID pgtype.UUID) (*domain.Cart, error) {
	const op = "cart.merge"

	if target.StoreID != storeID || source.StoreID != storeID {
		return nil, domain.ErrStoreMismatch
	}

	if target.CustomerID.Valid && source.CustomerID.Valid &&
		target.CustomerID == source.CustomerID &&
		!target.Empty() && !source.Empty() {
		return target, nil
	}

	// Validation pass first: the merge either applies completely or not at
	// all, so no cart is mutated until every candidate checks out.
	for _, item := range source.Items {
		product, err := m.catalog.FindProductBySKU(ctx, item.SKU)
		if err != nil {
			if domain.IsCode(err, domain.ENOTFOUND) {
				return nil, domain.NotFound(op, "product", item.SKU)
			}
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to resolve product")
		}
		if product.StoreID != storeID {
			return nil, ErrCrossStoreItem
		}
	}

	for _, candidate := range source.Items {
		merged := false
		for i := range target.Items {
			existing := &target.Items[i]
			if existing.SKU != candidate.SKU {
				continue
			}
			if len(existing.Selections) == 0 {
				// Plain lines never quantity-merge; the candidate is
				// appended as its own line below.
				continue
			}
			if !existing.SameSelections(&candidate) {
				continue
			}
			existing.Quantity += candidate.Quantity
			merged = true
			break
		}
		if merged {
			continue
		}

		appended := domain.CartItem{
			CartID:     target.ID,
			SKU:        candidate.SKU,
			Quantity:   candidate.Quantity,
			Selections: cloneSelections(candidate.Selections),
		}
		target.Items = append(target.Items, appended)
	}

	if err := m.carts.SaveCart(ctx, target); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to persist merged cart")
	}
	if err := m.carts.DeleteCart(ctx, source.ID); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to delete source cart")
	}

	return target, nil
}

// cloneSelections copies selections for an appended line. Ids are zeroed so
// the store re-creates the rows under the new line item.
func cloneSelections(selections []domain.AttributeSelection) []domain.AttributeSelection {
	if len(selections) == 0 {
		return nil
	}
	cloned := make([]domain.AttributeSelection, len(selections))
	for i, sel := range selections {
		cloned[i] = domain.AttributeSelection{AttributeValueID: sel.AttributeValueID}
	}
	return cloned
}
