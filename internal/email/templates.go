package email

import "time"

// EmailTemplate defines the interface for email templates.
type EmailTemplate interface {
	Subject() string
	TemplateName() string
}

// OrderConfirmationEmail represents an order confirmation email.
type OrderConfirmationEmail struct {
	OrderNumber   string
	CustomerEmail string
	CustomerName  string
	OrderDate     time.Time
	Items         []OrderItem
	SubtotalCents int64
	ShippingCents int64
	TaxCents      int64
	TotalCents    int64
	ShippingAddr  Address
}

func (e OrderConfirmationEmail) Subject() string {
	return "Order Confirmation - " + e.OrderNumber
}

func (e OrderConfirmationEmail) TemplateName() string {
	return "order_confirmation.html"
}

// CartRecoveryEmail nudges a customer back to a cart they abandoned. Lines
// that went obsolete since the customer last saw the cart are listed
// separately so the email never promises stale prices.
type CartRecoveryEmail struct {
	CustomerEmail string
	CustomerName  string
	CartURL       string
	Items         []OrderItem
	RemovedItems  []string // names of lines that are no longer available
	SubtotalCents int64
}

func (e CartRecoveryEmail) Subject() string {
	return "You Left Something in Your Cart"
}

func (e CartRecoveryEmail) TemplateName() string {
	return "cart_recovery.html"
}

// Supporting types

// OrderItem represents a line item in an order or cart email.
type OrderItem struct {
	ProductName string
	OptionsName string // e.g., "gift wrap, coarse grind"
	Quantity    int32
	PriceCents  int64
	TotalCents  int64
}

// Address represents a shipping or billing address.
type Address struct {
	Name       string
	Company    string // Optional
	Line1      string
	Line2      string // Optional
	City       string
	State      string
	PostalCode string
	Country    string
}
