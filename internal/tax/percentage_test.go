package tax_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dukerupert/vanir/internal/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Subtotal $25 (2500 cents) + Shipping $5 (500 cents) * 8% = $2.40 (240 cents)
func Test_PercentageCalculator_BasicCalculation(t *testing.T) {
	calc, err := tax.NewPercentageCalculator(0.08)
	require.NoError(t, err)

	params := tax.TaxParams{
		LineItems: []tax.LineItem{
			{
				SKU:           "SKU-1",
				Description:   "Test Product",
				Quantity:      1,
				UnitCents:     2500,
				SubtotalCents: 2500,
			},
		},
		ShippingCents: 500,
	}

	result, err := calc.CalculateTax(context.Background(), params)

	assert.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, int64(240), result.TotalTaxCents, "(2500 + 500) * 0.08 = 240 cents")
	require.Len(t, result.Breakdown, 1, "Should have exactly one breakdown entry")
	assert.Equal(t, "state", result.Breakdown[0].Jurisdiction)
	assert.Equal(t, "Default Sales Tax", result.Breakdown[0].Name)
	assert.Equal(t, 0.08, result.Breakdown[0].Rate)
	assert.Equal(t, int64(240), result.Breakdown[0].AmountCents)
	assert.False(t, result.IsEstimate, "Percentage calculator provides exact amounts")
}

func Test_PercentageCalculator_DifferentTaxRates(t *testing.T) {
	tests := []struct {
		name        string
		rate        float64
		subtotal    int64
		shipping    int64
		expectedTax int64
		explanation string
	}{
		{
			name:        "zero percent rate",
			rate:        0.0,
			subtotal:    10000,
			shipping:    500,
			expectedTax: 0,
			explanation: "0% rate always yields zero tax",
		},
		{
			name:        "washington state rate",
			rate:        0.065,
			subtotal:    2500,
			shipping:    500,
			expectedTax: 195,
			explanation: "(2500 + 500) * 0.065 = 195",
		},
		{
			name:        "rounds to nearest cent",
			rate:        0.07,
			subtotal:    999,
			shipping:    0,
			expectedTax: 70,
			explanation: "999 * 0.07 = 69.93, rounds to 70",
		},
		{
			name:        "rounds half up",
			rate:        0.05,
			subtotal:    1010,
			shipping:    0,
			expectedTax: 51,
			explanation: "1010 * 0.05 = 50.5, rounds to 51",
		},
		{
			name:        "shipping only",
			rate:        0.08,
			subtotal:    0,
			shipping:    1000,
			expectedTax: 80,
			explanation: "shipping is part of the taxable base",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc, err := tax.NewPercentageCalculator(tt.rate)
			require.NoError(t, err)

			params := tax.TaxParams{
				LineItems: []tax.LineItem{
					{SKU: "SKU-1", Quantity: 1, UnitCents: tt.subtotal, SubtotalCents: tt.subtotal},
				},
				ShippingCents: tt.shipping,
			}

			result, err := calc.CalculateTax(context.Background(), params)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedTax, result.TotalTaxCents, tt.explanation)
		})
	}
}

func Test_PercentageCalculator_SumsAllLineItems(t *testing.T) {
	calc, err := tax.NewPercentageCalculator(0.10)
	require.NoError(t, err)

	params := tax.TaxParams{
		LineItems: []tax.LineItem{
			{SKU: "SKU-1", Quantity: 2, UnitCents: 1000, SubtotalCents: 2000},
			{SKU: "SKU-2", Quantity: 1, UnitCents: 500, SubtotalCents: 500},
		},
		ShippingCents: 500,
	}

	result, err := calc.CalculateTax(context.Background(), params)

	require.NoError(t, err)
	assert.Equal(t, int64(300), result.TotalTaxCents, "(2000 + 500 + 500) * 0.10 = 300")
}

func Test_PercentageCalculator_ExemptionZeroesTax(t *testing.T) {
	calc, err := tax.NewPercentageCalculator(0.08)
	require.NoError(t, err)

	params := tax.TaxParams{
		LineItems: []tax.LineItem{
			{SKU: "SKU-1", Quantity: 1, UnitCents: 2500, SubtotalCents: 2500},
		},
		ShippingCents:  500,
		TaxExemptionID: "EXEMPT-42",
	}

	result, err := calc.CalculateTax(context.Background(), params)

	require.NoError(t, err)
	assert.Equal(t, int64(0), result.TotalTaxCents)
}

func Test_NewPercentageCalculator_RejectsInvalidRates(t *testing.T) {
	for _, rate := range []float64{-0.01, 1.0, 1.5} {
		_, err := tax.NewPercentageCalculator(rate)
		assert.True(t, errors.Is(err, tax.ErrInvalidTaxRate), "rate %v must be rejected", rate)
	}
}
