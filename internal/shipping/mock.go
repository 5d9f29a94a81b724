package shipping

import (
	"context"
)

// MockProvider is a test implementation of Provider.
type MockProvider struct {
	GetRatesFunc      func(ctx context.Context, params RateParams) ([]Rate, error)
	TrackShipmentFunc func(ctx context.Context, trackingNumber string) (*TrackingInfo, error)
}

// Compile-time check that MockProvider implements Provider.
var _ Provider = (*MockProvider)(nil)

// NewMockProvider creates a new mock shipping provider for testing.
func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

// GetRates delegates to the configured function or returns a single default
// rate.
func (m *MockProvider) GetRates(ctx context.Context, params RateParams) ([]Rate, error) {
	if m.GetRatesFunc != nil {
		return m.GetRatesFunc(ctx, params)
	}
	return []Rate{{
		RateID:      "mock-standard",
		Carrier:     "Mock Carrier",
		ServiceName: "Standard",
		ServiceCode: "standard",
		CostCents:   500,
	}}, nil
}

// TrackShipment delegates to the configured function or returns an error.
func (m *MockProvider) TrackShipment(ctx context.Context, trackingNumber string) (*TrackingInfo, error) {
	if m.TrackShipmentFunc != nil {
		return m.TrackShipmentFunc(ctx, trackingNumber)
	}
	return nil, ErrNotImplemented
}
