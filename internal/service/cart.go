// Package service exposes the cart subsystem as a single facade the transport
// layer talks to. Every read path runs the cart through populate and purges
// carts that come back obsolete, so callers never observe stale pricing.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/events"
	"github.com/dukerupert/vanir/internal/telemetry"
	"github.com/jackc/pgx/v5/pgtype"
)

// CartService provides business logic for shopping cart operations.
type CartService interface {
	// GetOrCreateCart loads the cart with the given code, or creates a fresh
	// empty cart when the code is blank, unknown, or resolves to a cart that
	// was purged as obsolete. The returned cart always belongs to storeID.
	GetOrCreateCart(ctx context.Context, storeID pgtype.UUID, code string) (*domain.Cart, error)

	// GetCartByCode loads a cart by its external code. Obsolete carts are
	// deleted and reported as not found.
	GetCartByCode(ctx context.Context, storeID pgtype.UUID, code string) (*domain.Cart, error)

	// GetCartForCustomer loads the customer's cart within a store. Obsolete
	// carts are deleted and reported as not found.
	GetCartForCustomer(ctx context.Context, storeID, customerID pgtype.UUID) (*domain.Cart, error)

	// AddItem appends a product selection to the cart, or sums quantities when
	// an identical line (same SKU, same attribute values) already exists.
	AddItem(ctx context.Context, storeID, cartID pgtype.UUID, params AddItemParams) (*domain.Cart, error)

	// UpdateItemQuantity changes a line item's quantity. Removal is explicit;
	// a non-positive quantity is rejected, not treated as a delete.
	UpdateItemQuantity(ctx context.Context, storeID, cartID, itemID pgtype.UUID, quantity int32) (*domain.Cart, error)

	// RemoveItem deletes a line item. Removing the last item empties the cart,
	// which makes it obsolete: the cart is purged and not found is returned.
	RemoveItem(ctx context.Context, storeID, cartID, itemID pgtype.UUID) (*domain.Cart, error)

	// MergeAtLogin folds the anonymous session cart identified by code into
	// the customer's cart. When the customer has no cart yet the session cart
	// is adopted instead of merged.
	MergeAtLogin(ctx context.Context, storeID, customerID pgtype.UUID, sessionCartCode string) (*domain.Cart, error)
}

// AddItemParams describes one add-to-cart request.
type AddItemParams struct {
	SKU               string
	Quantity          int32
	AttributeValueIDs []pgtype.UUID
}

// Populator is the refresh step every fetched cart passes through.
// *cart.Populator satisfies it.
type Populator interface {
	PopulateCart(ctx context.Context, cart *domain.Cart, storeID pgtype.UUID) (*domain.Cart, error)
}

// Merger folds a session cart into a customer cart.
// *cart.Merger satisfies it.
type Merger interface {
	MergeCarts(ctx context.Context, target, source *domain.Cart, storeID pgtype.UUID) (*domain.Cart, error)
}

type cartService struct {
	carts     domain.CartStore
	catalog   domain.CatalogReader
	populator Populator
	merger    Merger
	publisher events.Publisher
	metrics   *telemetry.BusinessMetrics
	logger    *slog.Logger
}

// NewCartService creates a new CartService instance.
func NewCartService(
	carts domain.CartStore,
	catalog domain.CatalogReader,
	populator Populator,
	merger Merger,
	publisher events.Publisher,
	metrics *telemetry.BusinessMetrics,
	logger *slog.Logger,
) CartService {
	return &cartService{
		carts:     carts,
		catalog:   catalog,
		populator: populator,
		merger:    merger,
		publisher: publisher,
		metrics:   metrics,
		logger:    logger,
	}
}

func (s *cartService) GetOrCreateCart(ctx context.Context, storeID pgtype.UUID, code string) (*domain.Cart, error) {
	const op = "service.cart.get_or_create"

	if code != "" {
		existing, err := s.carts.GetCartByCode(ctx, code)
		switch {
		case err == nil && existing.StoreID == storeID:
			populated, err := s.populateOrPurge(ctx, existing, storeID)
			if err == nil {
				return populated, nil
			}
			if !domain.IsCode(err, domain.ENOTFOUND) {
				return nil, err
			}
			// Purged as obsolete; fall through to a fresh cart.
		case err != nil && !domain.IsCode(err, domain.ENOTFOUND):
			return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to load cart")
		}
		// An unknown code, or a code from another store, gets a fresh cart
		// rather than an error: the cookie is simply stale.
	}

	fresh := &domain.Cart{StoreID: storeID}
	if err := s.carts.CreateCart(ctx, fresh); err != nil {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to create cart")
	}
	s.metrics.CartsCreated.WithLabelValues(domain.UUIDString(storeID)).Inc()
	return fresh, nil
}

func (s *cartService) GetCartByCode(ctx context.Context, storeID pgtype.UUID, code string) (*domain.Cart, error) {
	const op = "service.cart.get_by_code"

	loaded, err := s.carts.GetCartByCode(ctx, code)
	if err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to load cart")
	}
	// A cart from another store is invisible here, same as a missing one.
	if loaded.StoreID != storeID {
		return nil, domain.ErrCartNotFound
	}
	return s.populateOrPurge(ctx, loaded, storeID)
}

func (s *cartService) GetCartForCustomer(ctx context.Context, storeID, customerID pgtype.UUID) (*domain.Cart, error) {
	const op = "service.cart.get_for_customer"

	loaded, err := s.carts.GetCartForCustomer(ctx, storeID, customerID)
	if err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to load customer cart")
	}
	return s.populateOrPurge(ctx, loaded, storeID)
}

func (s *cartService) AddItem(ctx context.Context, storeID, cartID pgtype.UUID, params AddItemParams) (*domain.Cart, error) {
	const op = "service.cart.add_item"

	if params.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	loaded, err := s.loadOwnedCart(ctx, op, cartID, storeID)
	if err != nil {
		return nil, err
	}

	product, err := s.catalog.FindProductBySKU(ctx, params.SKU)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			return nil, domain.NotFound(op, "product", params.SKU)
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to resolve product")
	}
	if product.StoreID != storeID {
		return nil, domain.ErrStoreMismatch
	}

	selections := make([]domain.AttributeSelection, 0, len(params.AttributeValueIDs))
	for _, valueID := range params.AttributeValueIDs {
		if !product.HasAttributeValue(valueID) {
			return nil, ErrInvalidSelection
		}
		selections = append(selections, domain.AttributeSelection{AttributeValueID: valueID})
	}

	candidate := domain.CartItem{
		CartID:     loaded.ID,
		SKU:        params.SKU,
		Quantity:   params.Quantity,
		Selections: selections,
	}

	merged := false
	for i := range loaded.Items {
		existing := &loaded.Items[i]
		if existing.SKU == candidate.SKU && existing.SameSelections(&candidate) {
			existing.Quantity += candidate.Quantity
			merged = true
			break
		}
	}
	if !merged {
		loaded.Items = append(loaded.Items, candidate)
	}

	populated, err := s.populateOrPurge(ctx, loaded, storeID)
	if err != nil {
		return nil, err
	}
	s.metrics.ItemsAdded.WithLabelValues(domain.UUIDString(storeID)).Inc()
	return populated, nil
}

func (s *cartService) UpdateItemQuantity(ctx context.Context, storeID, cartID, itemID pgtype.UUID, quantity int32) (*domain.Cart, error) {
	const op = "service.cart.update_quantity"

	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}

	loaded, err := s.loadOwnedCart(ctx, op, cartID, storeID)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range loaded.Items {
		if loaded.Items[i].ID == itemID {
			loaded.Items[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, domain.ErrCartItemNotFound
	}

	return s.populateOrPurge(ctx, loaded, storeID)
}

func (s *cartService) RemoveItem(ctx context.Context, storeID, cartID, itemID pgtype.UUID) (*domain.Cart, error) {
	const op = "service.cart.remove_item"

	loaded, err := s.loadOwnedCart(ctx, op, cartID, storeID)
	if err != nil {
		return nil, err
	}

	kept := loaded.Items[:0]
	found := false
	for _, item := range loaded.Items {
		if item.ID == itemID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	if !found {
		return nil, domain.ErrCartItemNotFound
	}
	loaded.Items = kept

	if loaded.Empty() {
		// Persist the row removal before the purge path deletes the cart, so
		// a purge failure cannot leave the removed item behind.
		if err := s.carts.SaveCart(ctx, loaded); err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to persist cart")
		}
	}

	return s.populateOrPurge(ctx, loaded, storeID)
}

func (s *cartService) MergeAtLogin(ctx context.Context, storeID, customerID pgtype.UUID, sessionCartCode string) (*domain.Cart, error) {
	const op = "service.cart.merge_at_login"

	session, err := s.carts.GetCartByCode(ctx, sessionCartCode)
	if err != nil {
		if domain.IsCode(err, domain.ENOTFOUND) {
			// No session cart to fold in; the customer's own cart, if any, is
			// the result.
			return s.GetCartForCustomer(ctx, storeID, customerID)
		}
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to load session cart")
	}
	if session.StoreID != storeID {
		return nil, domain.ErrStoreMismatch
	}

	target, err := s.carts.GetCartForCustomer(ctx, storeID, customerID)
	if err != nil {
		if !domain.IsCode(err, domain.ENOTFOUND) {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to load customer cart")
		}
		// First login with a session cart: adopt it instead of merging.
		session.CustomerID = customerID
		if err := s.carts.SaveCart(ctx, session); err != nil {
			return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to adopt session cart")
		}
		return s.populateOrPurge(ctx, session, storeID)
	}

	sourceID := session.ID
	itemCount := len(session.Items)

	merged, err := s.merger.MergeCarts(ctx, target, session, storeID)
	if err != nil {
		return nil, err
	}

	s.metrics.CartsMerged.WithLabelValues(domain.UUIDString(storeID)).Inc()
	s.publish(ctx, events.SubjectCartMerged, events.CartMerged{
		StoreID:      domain.UUIDString(storeID),
		TargetCartID: domain.UUIDString(merged.ID),
		SourceCartID: domain.UUIDString(sourceID),
		ItemCount:    itemCount,
		OccurredAt:   time.Now().UTC(),
	})

	return s.populateOrPurge(ctx, merged, storeID)
}

// loadOwnedCart loads a cart by id and verifies it belongs to storeID.
// Foreign-store carts read as not found so ids cannot be probed across stores.
func (s *cartService) loadOwnedCart(ctx context.Context, op string, cartID, storeID pgtype.UUID) (*domain.Cart, error) {
	loaded, err := s.carts.GetCartByID(ctx, cartID)
	if err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to load cart")
	}
	if loaded.StoreID != storeID {
		return nil, domain.ErrCartNotFound
	}
	return loaded, nil
}

// populateOrPurge refreshes the cart and enforces the obsolete-purge contract:
// a cart that comes back obsolete is deleted and reported as not found, never
// handed to a caller.
func (s *cartService) populateOrPurge(ctx context.Context, c *domain.Cart, storeID pgtype.UUID) (*domain.Cart, error) {
	const op = "service.cart.populate"

	populated, err := s.populator.PopulateCart(ctx, c, storeID)
	if err != nil {
		return nil, domain.WrapError(err, domain.ErrorCode(err), op, "failed to refresh cart")
	}
	if !populated.Obsolete {
		return populated, nil
	}

	if err := s.carts.DeleteCart(ctx, populated.ID); err != nil && !domain.IsCode(err, domain.ENOTFOUND) {
		return nil, domain.WrapError(err, domain.EINTERNAL, op, "failed to purge obsolete cart")
	}

	s.metrics.CartsPurged.WithLabelValues(domain.UUIDString(storeID)).Inc()
	s.publish(ctx, events.SubjectCartPurged, events.CartPurged{
		StoreID:    domain.UUIDString(storeID),
		CartID:     domain.UUIDString(populated.ID),
		OccurredAt: time.Now().UTC(),
	})

	return nil, domain.ErrCartNotFound
}

// publish emits a domain event. Publishing is best-effort; failures are logged
// and never surfaced to the caller.
func (s *cartService) publish(ctx context.Context, subject string, event any) {
	if err := s.publisher.Publish(ctx, subject, event); err != nil {
		s.logger.Warn("failed to publish event", "subject", subject, "error", err)
	}
}
