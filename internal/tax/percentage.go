package tax

import (
	"context"
	"math"
)

// PercentageCalculator calculates tax using a simple percentage rate applied
// to the taxable base (line subtotals plus shipping).
type PercentageCalculator struct {
	rate float64 // e.g., 0.08 for 8%
}

// Compile-time check that PercentageCalculator implements Calculator.
var _ Calculator = (*PercentageCalculator)(nil)

// NewPercentageCalculator creates a new percentage-based tax calculator.
// The rate must lie in [0, 1).
func NewPercentageCalculator(rate float64) (*PercentageCalculator, error) {
	if rate < 0 || rate >= 1 {
		return nil, ErrInvalidTaxRate
	}
	return &PercentageCalculator{rate: rate}, nil
}

// CalculateTax computes tax on subtotal + shipping using the configured rate.
// The amount is rounded to the nearest cent.
func (c *PercentageCalculator) CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error) {
	if params.TaxExemptionID != "" {
		return &TaxResult{TotalTaxCents: 0}, nil
	}

	var taxable int64
	for _, item := range params.LineItems {
		taxable += item.SubtotalCents
	}
	taxable += params.ShippingCents

	amount := int64(math.Round(float64(taxable) * c.rate))

	return &TaxResult{
		TotalTaxCents: amount,
		Breakdown: []TaxBreakdown{
			{
				Jurisdiction: "state",
				Name:         "Default Sales Tax",
				Rate:         c.rate,
				AmountCents:  amount,
			},
		},
		IsEstimate: false,
	}, nil
}
