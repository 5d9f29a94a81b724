package domain

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// =============================================================================
// CART DOMAIN TYPES
// =============================================================================

// Cart represents a customer's (or anonymous session's) pending purchase.
//
// The Obsolete flag is derived, never a persisted source of truth: it is
// recomputed on every read by running the cart through the populator. An empty
// cart is always obsolete.
type Cart struct {
	ID      pgtype.UUID
	Code    string // stable external key, used by session cookies and merges
	StoreID pgtype.UUID

	// CustomerID is invalid (Valid=false) for anonymous session carts.
	CustomerID pgtype.UUID

	Items []CartItem

	// Obsolete is recomputed on populate: true when the cart is empty or any
	// line item references catalog data that no longer exists.
	Obsolete bool

	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// Empty reports whether the cart has no line items.
func (c *Cart) Empty() bool {
	return len(c.Items) == 0
}

// ItemBySKU returns the first line item for the given SKU, or nil.
func (c *Cart) ItemBySKU(sku string) *CartItem {
	for i := range c.Items {
		if c.Items[i].SKU == sku {
			return &c.Items[i]
		}
	}
	return nil
}

// SubtotalCents sums the line subtotals of all non-obsolete items.
func (c *Cart) SubtotalCents() int64 {
	var total int64
	for _, item := range c.Items {
		if !item.Obsolete {
			total += item.SubtotalCents
		}
	}
	return total
}

// CartItem is one product selection within a cart.
//
// The item holds the product's SKU, not an object reference: the live product
// is re-resolved on every refresh so catalog changes surface as obsolescence.
// Unit price and subtotal are consistent with catalog state as of the last
// refresh only; staleness between refreshes is expected and resolved by
// obsolete-flagging, not eager invalidation.
type CartItem struct {
	ID     pgtype.UUID
	CartID pgtype.UUID

	SKU      string
	Quantity int32

	// Selections are the chosen attribute values, possibly empty. Selections
	// that no longer resolve against the live product are pruned on refresh.
	Selections []AttributeSelection

	// Computed on refresh.
	UnitPriceCents int64
	SubtotalCents  int64
	Obsolete       bool
	Virtual        bool

	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

// AttributeSelection binds a line item to a chosen product attribute value.
type AttributeSelection struct {
	ID               pgtype.UUID
	CartItemID       pgtype.UUID
	AttributeValueID pgtype.UUID
}

// SelectionIDs returns the attribute value ids of all selections on the item.
func (i *CartItem) SelectionIDs() []pgtype.UUID {
	ids := make([]pgtype.UUID, 0, len(i.Selections))
	for _, sel := range i.Selections {
		ids = append(ids, sel.AttributeValueID)
	}
	return ids
}

// SameSelections reports whether two items carry the same set of attribute
// values, ignoring order. Used by the merger's duplicate detection.
func (i *CartItem) SameSelections(other *CartItem) bool {
	if len(i.Selections) != len(other.Selections) {
		return false
	}
	for _, sel := range i.Selections {
		found := false
		for _, osel := range other.Selections {
			if sel.AttributeValueID == osel.AttributeValueID {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// =============================================================================
// CART PERSISTENCE CONTRACT
// =============================================================================

// CartStore is the persistence contract for carts, line items and attribute
// selections. Implementations live in internal/postgres.
type CartStore interface {
	// CreateCart persists a new cart and assigns its id and code.
	CreateCart(ctx context.Context, cart *Cart) error

	// GetCartByID loads a cart with all items and selections.
	GetCartByID(ctx context.Context, id pgtype.UUID) (*Cart, error)

	// GetCartByCode loads a cart by its external code.
	GetCartByCode(ctx context.Context, code string) (*Cart, error)

	// GetCartForCustomer loads the customer's cart within a store.
	GetCartForCustomer(ctx context.Context, storeID, customerID pgtype.UUID) (*Cart, error)

	// SaveCart persists the cart's current item collection, including
	// refreshed prices and quantity changes.
	SaveCart(ctx context.Context, cart *Cart) error

	// DeleteCart removes the cart with all items and selections.
	DeleteCart(ctx context.Context, id pgtype.UUID) error

	// DeleteSelection removes a single attribute selection row. Orphaned
	// selections found during refresh are deleted through this explicit step,
	// never silently dropped in memory only.
	DeleteSelection(ctx context.Context, id pgtype.UUID) error
}

// =============================================================================
// DOMAIN ERRORS
// =============================================================================

var (
	ErrCartNotFound     = &Error{Code: ENOTFOUND, Message: "Cart not found"}
	ErrCartItemNotFound = &Error{Code: ENOTFOUND, Message: "Cart item not found"}
	ErrInvalidQuantity  = &Error{Code: EINVALID, Message: "Quantity must be greater than 0"}
)
