package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// BusinessMetrics holds Prometheus metrics for business-level observability.
// All metrics carry a store_id label for multi-store dashboard segmentation.
type BusinessMetrics struct {
	// Cart lifecycle
	CartsCreated  *prometheus.CounterVec
	CartsMerged   *prometheus.CounterVec
	CartsPurged   *prometheus.CounterVec
	ItemsAdded    *prometheus.CounterVec
	ItemsObsolete *prometheus.CounterVec

	// Orders
	OrdersTotaled *prometheus.CounterVec
	OrderValue    *prometheus.HistogramVec
}

// NewBusinessMetrics creates and registers the business metric collectors.
// Pass prometheus.DefaultRegisterer in production; tests use a fresh registry
// so repeated construction does not collide.
func NewBusinessMetrics(reg prometheus.Registerer) *BusinessMetrics {
	m := &BusinessMetrics{
		CartsCreated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vanir",
				Name:      "carts_created_total",
				Help:      "Carts created",
			},
			[]string{"store_id"},
		),
		CartsMerged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vanir",
				Name:      "carts_merged_total",
				Help:      "Session carts merged into customer carts at login",
			},
			[]string{"store_id"},
		),
		CartsPurged: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vanir",
				Name:      "carts_purged_total",
				Help:      "Obsolete carts deleted on read",
			},
			[]string{"store_id"},
		),
		ItemsAdded: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vanir",
				Name:      "cart_items_added_total",
				Help:      "Line items added to carts",
			},
			[]string{"store_id"},
		),
		ItemsObsolete: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vanir",
				Name:      "cart_items_obsolete_total",
				Help:      "Line items flagged obsolete during refresh",
			},
			[]string{"store_id"},
		),
		OrdersTotaled: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "vanir",
				Name:      "orders_totaled_total",
				Help:      "Order total computations",
			},
			[]string{"store_id"},
		),
		OrderValue: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "vanir",
				Name:      "order_value_cents",
				Help:      "Computed order totals in cents",
				Buckets:   []float64{500, 1000, 2500, 5000, 10000, 25000, 50000, 100000},
			},
			[]string{"store_id"},
		),
	}

	reg.MustRegister(
		m.CartsCreated,
		m.CartsMerged,
		m.CartsPurged,
		m.ItemsAdded,
		m.ItemsObsolete,
		m.OrdersTotaled,
		m.OrderValue,
	)

	return m
}
