package api

import (
	"net/http"
	"time"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/events"
	"github.com/dukerupert/vanir/internal/middleware"
	"github.com/dukerupert/vanir/internal/order"
	"github.com/dukerupert/vanir/internal/router"
	"github.com/dukerupert/vanir/internal/service"
	"github.com/dukerupert/vanir/internal/shipping"
	"github.com/dukerupert/vanir/internal/tax"
	"github.com/dukerupert/vanir/internal/telemetry"
)

// QuoteHandler computes a checkout quote for a cart: shipping rate options
// for its physical items plus order totals at the cheapest rate.
type QuoteHandler struct {
	carts     service.CartService
	catalog   domain.CatalogReader
	rates     shipping.Provider
	totals    *order.TotalsCalculator
	origin    shipping.Address
	publisher events.Publisher
	metrics   *telemetry.BusinessMetrics
}

// NewQuoteHandler creates a new quote handler. origin is the warehouse
// address shipments quote from.
func NewQuoteHandler(
	carts service.CartService,
	catalog domain.CatalogReader,
	rates shipping.Provider,
	totals *order.TotalsCalculator,
	origin shipping.Address,
	publisher events.Publisher,
	metrics *telemetry.BusinessMetrics,
) *QuoteHandler {
	return &QuoteHandler{
		carts:     carts,
		catalog:   catalog,
		rates:     rates,
		totals:    totals,
		origin:    origin,
		publisher: publisher,
		metrics:   metrics,
	}
}

// RegisterRoutes registers quote routes on the given router group.
func (h *QuoteHandler) RegisterRoutes(r *router.Router) {
	r.Post("/api/v1/carts/{code}/quote", h.Quote)
}

type quoteRequest struct {
	ShippingAddress struct {
		Name       string `json:"name" validate:"required,max=128"`
		Line1      string `json:"line1" validate:"required,max=128"`
		Line2      string `json:"line2" validate:"omitempty,max=128"`
		City       string `json:"city" validate:"required,max=64"`
		State      string `json:"state" validate:"required,max=32"`
		PostalCode string `json:"postal_code" validate:"required,max=16"`
		Country    string `json:"country" validate:"required,len=2"`
	} `json:"shipping_address" validate:"required"`

	// ServiceTypes optionally narrows rate options (e.g. ["Priority"]).
	ServiceTypes []string `json:"service_types" validate:"omitempty,dive,max=64"`
}

type quoteResponse struct {
	Rates  []rateResponse `json:"rates"`
	Totals totalsResponse `json:"totals"`
}

type rateResponse struct {
	RateID      string `json:"rate_id"`
	Carrier     string `json:"carrier"`
	ServiceName string `json:"service_name"`
	CostCents   int64  `json:"cost_cents"`
}

type totalsResponse struct {
	SubtotalCents int64 `json:"subtotal_cents"`
	ShippingCents int64 `json:"shipping_cents"`
	TaxCents      int64 `json:"tax_cents"`
	TotalCents    int64 `json:"total_cents"`
}

// Quote handles POST /api/v1/carts/{code}/quote. Totals are computed at the
// cheapest available rate; a cart with only virtual items quotes zero
// shipping and no rate options.
func (h *QuoteHandler) Quote(w http.ResponseWriter, r *http.Request) {
	store, err := storeFromRequest(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var req quoteRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	cart, err := h.carts.GetCartByCode(r.Context(), store.ID, r.PathValue("code"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	shippable, err := shipping.Shippable(r.Context(), h.catalog, cart)
	if err != nil {
		respondError(w, r, err)
		return
	}

	var (
		rateOptions   []shipping.Rate
		shippingCents int64
	)
	if len(shippable) > 0 {
		rateOptions, err = h.rates.GetRates(r.Context(), shipping.RateParams{
			StoreID:       store.ID,
			OriginAddress: h.origin,
			DestinationAddress: shipping.Address{
				Name:       req.ShippingAddress.Name,
				Line1:      req.ShippingAddress.Line1,
				Line2:      req.ShippingAddress.Line2,
				City:       req.ShippingAddress.City,
				State:      req.ShippingAddress.State,
				PostalCode: req.ShippingAddress.PostalCode,
				Country:    req.ShippingAddress.Country,
			},
			Packages:     []shipping.Package{shipping.BuildPackage(shippable)},
			ServiceTypes: req.ServiceTypes,
		})
		if err != nil {
			respondError(w, r, err)
			return
		}
		shippingCents = cheapestRate(rateOptions)
	}

	totals, err := h.totals.Compute(r.Context(), cart, shippingCents, tax.Address{
		Line1:      req.ShippingAddress.Line1,
		Line2:      req.ShippingAddress.Line2,
		City:       req.ShippingAddress.City,
		State:      req.ShippingAddress.State,
		PostalCode: req.ShippingAddress.PostalCode,
		Country:    req.ShippingAddress.Country,
	})
	if err != nil {
		respondError(w, r, err)
		return
	}

	storeLabel := domain.UUIDString(store.ID)
	h.metrics.OrdersTotaled.WithLabelValues(storeLabel).Inc()
	h.metrics.OrderValue.WithLabelValues(storeLabel).Observe(float64(totals.TotalCents))

	if err := h.publisher.Publish(r.Context(), events.SubjectOrderTotaled, events.OrderTotaled{
		StoreID:       storeLabel,
		CartID:        domain.UUIDString(cart.ID),
		SubtotalCents: totals.SubtotalCents,
		ShippingCents: totals.ShippingCents,
		TaxCents:      totals.TaxCents,
		TotalCents:    totals.TotalCents,
		OccurredAt:    time.Now().UTC(),
	}); err != nil {
		middleware.GetLogger(r.Context()).Warn("failed to publish event",
			"subject", events.SubjectOrderTotaled, "error", err)
	}

	resp := quoteResponse{
		Rates: make([]rateResponse, 0, len(rateOptions)),
		Totals: totalsResponse{
			SubtotalCents: totals.SubtotalCents,
			ShippingCents: totals.ShippingCents,
			TaxCents:      totals.TaxCents,
			TotalCents:    totals.TotalCents,
		},
	}
	for _, rate := range rateOptions {
		resp.Rates = append(resp.Rates, rateResponse{
			RateID:      rate.RateID,
			Carrier:     rate.Carrier,
			ServiceName: rate.ServiceName,
			CostCents:   rate.CostCents,
		})
	}

	respondJSON(w, http.StatusOK, resp)
}

// cheapestRate returns the lowest rate cost, or 0 when no rates came back.
func cheapestRate(rates []shipping.Rate) int64 {
	if len(rates) == 0 {
		return 0
	}
	min := rates[0].CostCents
	for _, rate := range rates[1:] {
		if rate.CostCents < min {
			min = rate.CostCents
		}
	}
	return min
}
