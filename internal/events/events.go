// Package events publishes domain events to NATS so downstream consumers
// (analytics, the recovery-email job) can react without coupling to the cart
// service. Publishing is best-effort: a failed publish is logged by the
// caller, never surfaced to the customer.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
)

// Event subjects.
const (
	SubjectCartMerged   = "cart.merged"
	SubjectCartPurged   = "cart.purged"
	SubjectOrderTotaled = "order.totaled"
)

// Publisher emits domain events.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
}

// CartMerged is emitted after a session cart has been folded into a customer
// cart at login.
type CartMerged struct {
	StoreID      string    `json:"store_id"`
	TargetCartID string    `json:"target_cart_id"`
	SourceCartID string    `json:"source_cart_id"`
	ItemCount    int       `json:"item_count"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// CartPurged is emitted when an obsolete cart is deleted on read.
type CartPurged struct {
	StoreID    string    `json:"store_id"`
	CartID     string    `json:"cart_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// OrderTotaled is emitted when order totals are computed for a cart.
type OrderTotaled struct {
	StoreID       string    `json:"store_id"`
	CartID        string    `json:"cart_id"`
	SubtotalCents int64     `json:"subtotal_cents"`
	ShippingCents int64     `json:"shipping_cents"`
	TaxCents      int64     `json:"tax_cents"`
	TotalCents    int64     `json:"total_cents"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// conn is the subset of *nats.Conn the publisher uses, split out so tests can
// substitute a recording fake.
type conn interface {
	Publish(subject string, data []byte) error
}

// NATSPublisher publishes JSON-encoded events to a NATS connection.
type NATSPublisher struct {
	conn conn
}

// Compile-time check that NATSPublisher implements Publisher.
var _ Publisher = (*NATSPublisher)(nil)

// NewNATSPublisher creates a publisher over an established NATS connection.
// *nats.Conn satisfies the parameter.
func NewNATSPublisher(nc conn) *NATSPublisher {
	return &NATSPublisher{conn: nc}
}

// Connect dials NATS and returns a publisher over the connection. Reconnects
// are handled by the client; buffered publishes flush on reconnect.
func Connect(url string) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return NewNATSPublisher(nc), nil
}

// Publish JSON-encodes the event and publishes it on the subject.
func (p *NATSPublisher) Publish(ctx context.Context, subject string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode event for %s: %w", subject, err)
	}
	if err := p.conn.Publish(subject, data); err != nil {
		return fmt.Errorf("failed to publish %s: %w", subject, err)
	}
	return nil
}

// NoopPublisher discards all events. Used in tests and when eventing is not
// configured.
type NoopPublisher struct{}

// Compile-time check that NoopPublisher implements Publisher.
var _ Publisher = (*NoopPublisher)(nil)

// Publish discards the event.
func (NoopPublisher) Publish(ctx context.Context, subject string, event any) error {
	return nil
}
