// Package tax computes the tax portion of an order total. Calculators are
// pluggable per store; the percentage calculator covers the common flat-rate
// case and NoTax covers exempt customers.
package tax

import (
	"context"
)

// Calculator defines the interface for tax calculation.
// Implementations: PercentageCalculator, NoTaxCalculator, MockCalculator.
type Calculator interface {
	// CalculateTax computes tax for cart line items and shipping.
	// Returns tax amount in cents.
	CalculateTax(ctx context.Context, params TaxParams) (*TaxResult, error)
}

// TaxParams contains all information needed for tax calculation.
type TaxParams struct {
	ShippingAddress Address
	LineItems       []LineItem
	ShippingCents   int64
	TaxExemptionID  string // Optional exemption certificate
}

// Address represents a physical address for tax purposes.
type Address struct {
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

// LineItem represents a single cart line being taxed.
type LineItem struct {
	SKU           string
	Description   string
	Quantity      int32
	UnitCents     int64
	SubtotalCents int64
}

// TaxResult contains the calculated tax amount and breakdown.
type TaxResult struct {
	TotalTaxCents int64
	Breakdown     []TaxBreakdown
	IsEstimate    bool
}

// TaxBreakdown represents tax for a single jurisdiction.
type TaxBreakdown struct {
	Jurisdiction string  // "state", "county", "city"
	Name         string  // e.g., "Washington State"
	Rate         float64 // e.g., 0.065 for 6.5%
	AmountCents  int64
}
