package cart

import (
	"context"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
)

// CartSaver persists a cart's refreshed item collection.
// domain.CartStore satisfies it.
type CartSaver interface {
	SaveCart(ctx context.Context, cart *domain.Cart) error
}

// Populator refreshes every line item of a cart and derives the cart-level
// obsolete flag. Callers that fetch a cart (by id, by code or for a customer)
// must run it through PopulateCart before handing it out, and must
// purge carts that come back obsolete instead of returning them.
type Populator struct {
	refresher *Refresher
	carts     CartSaver
}

// NewPopulator creates a Populator.
func NewPopulator(refresher *Refresher, carts CartSaver) *Populator {
	return &Populator{refresher: refresher, carts: carts}
}

// PopulateCart refreshes cart in place and returns it.
//
// An empty cart is obsolete by definition and returns immediately without
// touching the catalog or storage. Otherwise every item is refreshed; the
// cart is obsolete when any item is. A failure refreshing any single item
// aborts the whole populate; there is no partial result.
func (p *Populator) PopulateCart(ctx context.Context, cart *domain.Cart, storeID pgtype.UUID) (*domain.Cart, error) {
	const op = "cart.populate"

	if cart.Empty() {
		cart.Obsolete = true
		return cart, nil
	}

	obsolete := false
	for i := range cart.Items {
		itemObsolete, err := p.refresher.RefreshItem(ctx, &cart.Items[i], storeID)
		if err != nil {
			return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to refresh cart item")
		}
		obsolete = obsolete || itemObsolete
	}
	cart.Obsolete = obsolete

	if err := p.carts.SaveCart(ctx, cart); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to persist refreshed cart")
	}

	return cart, nil
}
