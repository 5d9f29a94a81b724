// Package shipping quotes delivery costs for the physical portion of a cart.
// A Provider integrates with a carrier API (or flat rates); the Shippable
// projection decides which cart lines need fulfillment at all.
package shipping

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Provider defines the interface for shipping rate operations.
type Provider interface {
	// GetRates returns available shipping options for a shipment.
	GetRates(ctx context.Context, params RateParams) ([]Rate, error)

	// TrackShipment gets tracking information for an existing shipment.
	TrackShipment(ctx context.Context, trackingNumber string) (*TrackingInfo, error)
}

// RateParams contains parameters for calculating shipping rates.
type RateParams struct {
	StoreID            pgtype.UUID
	OriginAddress      Address
	DestinationAddress Address
	Packages           []Package
	ServiceTypes       []string // Optional filter for specific service types
}

// Address represents a complete shipping address.
type Address struct {
	Name       string
	Company    string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
	Phone      string
	Email      string
}

// Package represents a physical package to be shipped.
type Package struct {
	WeightGrams int32
	LengthCm    int32
	WidthCm     int32
	HeightCm    int32
}

// Rate represents a shipping rate option.
type Rate struct {
	RateID                string
	Carrier               string
	ServiceName           string
	ServiceCode           string
	CostCents             int64
	EstimatedDaysMin      int
	EstimatedDaysMax      int
	EstimatedDeliveryDate time.Time
	ExpiresAt             *time.Time
}

// TrackingInfo contains shipment tracking information.
type TrackingInfo struct {
	TrackingNumber        string
	Status                string
	Events                []TrackingEvent
	EstimatedDeliveryDate time.Time
}

// TrackingEvent represents a single tracking event.
type TrackingEvent struct {
	Timestamp   time.Time
	Status      string
	Location    string
	Description string
}
