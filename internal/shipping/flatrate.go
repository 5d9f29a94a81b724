package shipping

import (
	"context"
	"time"
)

// FlatRateProvider returns predefined flat-rate shipping options. Used by
// stores that have not configured a carrier integration.
type FlatRateProvider struct {
	rates []FlatRate
}

// FlatRate defines a single flat-rate shipping option.
type FlatRate struct {
	ServiceName string
	ServiceCode string
	CostCents   int64
	DaysMin     int
	DaysMax     int
}

// Compile-time check that FlatRateProvider implements Provider.
var _ Provider = (*FlatRateProvider)(nil)

// NewFlatRateProvider creates a new flat-rate shipping provider.
func NewFlatRateProvider(rates []FlatRate) *FlatRateProvider {
	return &FlatRateProvider{rates: rates}
}

// GetRates converts the configured flat rates to Rate objects.
func (p *FlatRateProvider) GetRates(ctx context.Context, params RateParams) ([]Rate, error) {
	if !params.StoreID.Valid {
		return nil, ErrStoreRequired
	}
	if len(params.Packages) == 0 {
		return nil, ErrNoPackages
	}

	result := make([]Rate, len(p.rates))
	for i, fr := range p.rates {
		result[i] = Rate{
			RateID:                fr.ServiceCode,
			Carrier:               "Flat Rate",
			ServiceName:           fr.ServiceName,
			ServiceCode:           fr.ServiceCode,
			CostCents:             fr.CostCents,
			EstimatedDaysMin:      fr.DaysMin,
			EstimatedDaysMax:      fr.DaysMax,
			EstimatedDeliveryDate: time.Now().AddDate(0, 0, fr.DaysMax),
			ExpiresAt:             nil, // Flat rates don't expire
		}
	}
	return result, nil
}

// TrackShipment is not supported for the flat-rate provider.
func (p *FlatRateProvider) TrackShipment(ctx context.Context, trackingNumber string) (*TrackingInfo, error) {
	return nil, ErrNotImplemented
}
