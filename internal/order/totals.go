// Package order turns a refreshed cart into order totals: merchandise
// subtotal, shipping, and tax.
package order

import (
	"context"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/tax"
)

// Totals is the money summary of an order about to be placed.
type Totals struct {
	SubtotalCents int64
	ShippingCents int64
	TaxCents      int64
	TotalCents    int64
}

// ErrObsoleteCart rejects total computation for a cart that failed its
// refresh pass. Totals over stale prices would be wrong by construction.
var ErrObsoleteCart = &domain.Error{
	Code:    domain.ECONFLICT,
	Message: "Cart contains obsolete items and cannot be totaled",
}

// TotalsCalculator computes order totals from a populated cart.
type TotalsCalculator struct {
	taxes tax.Calculator
}

// NewTotalsCalculator creates a TotalsCalculator.
func NewTotalsCalculator(taxes tax.Calculator) *TotalsCalculator {
	return &TotalsCalculator{taxes: taxes}
}

// Compute returns the totals for a refreshed cart plus the chosen shipping
// cost. The cart must not be obsolete; line prices are trusted as of the
// populate pass that produced them.
func (c *TotalsCalculator) Compute(ctx context.Context, cart *domain.Cart, shippingCents int64, shipTo tax.Address) (*Totals, error) {
	const op = "order.compute_totals"

	if cart.Obsolete {
		return nil, ErrObsoleteCart
	}

	lineItems := make([]tax.LineItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		lineItems = append(lineItems, tax.LineItem{
			SKU:           item.SKU,
			Quantity:      item.Quantity,
			UnitCents:     item.UnitPriceCents,
			SubtotalCents: item.SubtotalCents,
		})
	}

	taxResult, err := c.taxes.CalculateTax(ctx, tax.TaxParams{
		ShippingAddress: shipTo,
		LineItems:       lineItems,
		ShippingCents:   shippingCents,
	})
	if err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "tax calculation failed")
	}

	subtotal := cart.SubtotalCents()
	return &Totals{
		SubtotalCents: subtotal,
		ShippingCents: shippingCents,
		TaxCents:      taxResult.TotalTaxCents,
		TotalCents:    subtotal + shippingCents + taxResult.TotalTaxCents,
	}, nil
}
