package shipping

import (
	"context"

	"github.com/dukerupert/vanir/internal/domain"
)

// ShippableItem is a cart line that needs physical fulfillment. The price is
// the refreshed unit price carried on the line, so insured or value-based
// rates quote against what the customer actually pays.
type ShippableItem struct {
	SKU            string
	Quantity       int32
	UnitPriceCents int64
	WeightGrams    int32
}

// Shippable projects a refreshed cart onto the lines that need physical
// fulfillment. Virtual and obsolete lines are excluded, as are products whose
// catalog record opts out of shipping. Weights come from the live catalog so
// a quote never uses stale product data.
//
// The cart must have been through a populate pass first; projecting an
// obsolete cart returns ErrCartNotRefreshed because its prices and flags
// cannot be trusted for a quote.
func Shippable(ctx context.Context, catalog domain.CatalogReader, cart *domain.Cart) ([]ShippableItem, error) {
	if cart.Obsolete {
		return nil, ErrCartNotRefreshed
	}

	var items []ShippableItem
	for _, line := range cart.Items {
		if line.Obsolete || line.Virtual {
			continue
		}

		product, err := catalog.FindProductBySKU(ctx, line.SKU)
		if err != nil {
			return nil, err
		}
		if !product.RequiresShipping {
			continue
		}

		var weight int32
		if product.WeightGrams.Valid {
			weight = product.WeightGrams.Int32
		}
		items = append(items, ShippableItem{
			SKU:            line.SKU,
			Quantity:       line.Quantity,
			UnitPriceCents: line.UnitPriceCents,
			WeightGrams:    weight,
		})
	}
	return items, nil
}

// BuildPackage folds shippable items into a single package with the summed
// weight. Dimensions are left zero; flat-rate quoting ignores them and
// carrier-backed stores configure a default box upstream.
func BuildPackage(items []ShippableItem) Package {
	var pkg Package
	for _, item := range items {
		pkg.WeightGrams += item.WeightGrams * item.Quantity
	}
	return pkg
}
