package worker

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/email"
	"github.com/dukerupert/vanir/internal/service"
)

type stubFinder struct {
	carts     []AbandonedCart
	findErr   error
	marked    []pgtype.UUID
	olderThan time.Duration
	limit     int32
}

func (f *stubFinder) FindAbandonedCarts(ctx context.Context, olderThan time.Duration, limit int32) ([]AbandonedCart, error) {
	f.olderThan = olderThan
	f.limit = limit
	return f.carts, f.findErr
}

func (f *stubFinder) MarkRecoveryEmailSent(ctx context.Context, cartID pgtype.UUID) error {
	f.marked = append(f.marked, cartID)
	return nil
}

// stubCartService fails on everything except GetCartByCode.
type stubCartService struct {
	t                 *testing.T
	GetCartByCodeFunc func(ctx context.Context, storeID pgtype.UUID, code string) (*domain.Cart, error)
}

var _ service.CartService = (*stubCartService)(nil)

func (s *stubCartService) GetCartByCode(ctx context.Context, storeID pgtype.UUID, code string) (*domain.Cart, error) {
	if s.GetCartByCodeFunc == nil {
		s.t.Fatal("unexpected call to GetCartByCode")
	}
	return s.GetCartByCodeFunc(ctx, storeID, code)
}

func (s *stubCartService) GetOrCreateCart(ctx context.Context, storeID pgtype.UUID, code string) (*domain.Cart, error) {
	s.t.Fatal("unexpected call to GetOrCreateCart")
	return nil, nil
}

func (s *stubCartService) GetCartForCustomer(ctx context.Context, storeID, customerID pgtype.UUID) (*domain.Cart, error) {
	s.t.Fatal("unexpected call to GetCartForCustomer")
	return nil, nil
}

func (s *stubCartService) AddItem(ctx context.Context, storeID, cartID pgtype.UUID, params service.AddItemParams) (*domain.Cart, error) {
	s.t.Fatal("unexpected call to AddItem")
	return nil, nil
}

func (s *stubCartService) UpdateItemQuantity(ctx context.Context, storeID, cartID, itemID pgtype.UUID, quantity int32) (*domain.Cart, error) {
	s.t.Fatal("unexpected call to UpdateItemQuantity")
	return nil, nil
}

func (s *stubCartService) RemoveItem(ctx context.Context, storeID, cartID, itemID pgtype.UUID) (*domain.Cart, error) {
	s.t.Fatal("unexpected call to RemoveItem")
	return nil, nil
}

func (s *stubCartService) MergeAtLogin(ctx context.Context, storeID, customerID pgtype.UUID, sessionCartCode string) (*domain.Cart, error) {
	s.t.Fatal("unexpected call to MergeAtLogin")
	return nil, nil
}

type stubWorkerCatalog struct {
	products map[string]*domain.Product
	values   map[pgtype.UUID]*domain.AttributeValue
}

func (s *stubWorkerCatalog) FindProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	if p, ok := s.products[sku]; ok {
		return p, nil
	}
	return nil, domain.ErrProductNotFound
}

func (s *stubWorkerCatalog) FindAttributeValueByID(ctx context.Context, id pgtype.UUID) (*domain.AttributeValue, error) {
	if av, ok := s.values[id]; ok {
		return av, nil
	}
	return nil, domain.ErrAttributeValueNotFound
}

type recordingSender struct {
	sent []email.CartRecoveryEmail
	err  error
}

func (r *recordingSender) SendCartRecovery(ctx context.Context, data email.CartRecoveryEmail) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, data)
	return nil
}

func workerUUID(t *testing.T) pgtype.UUID {
	t.Helper()
	var id pgtype.UUID
	require.NoError(t, id.Scan(domain.NewUUID()))
	return id
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func Test_RecoveryWorker_SendsReminder(t *testing.T) {
	storeID := workerUUID(t)
	cartID := workerUUID(t)
	valueID := workerUUID(t)

	cart := &domain.Cart{
		ID:      cartID,
		Code:    "cart-abandoned",
		StoreID: storeID,
		Items: []domain.CartItem{{
			SKU:            "COFFEE-12",
			Quantity:       2,
			UnitPriceCents: 1600,
			SubtotalCents:  3200,
			Selections: []domain.AttributeSelection{
				{AttributeValueID: valueID},
			},
		}},
	}

	finder := &stubFinder{carts: []AbandonedCart{{
		CartID:        cartID,
		StoreID:       storeID,
		Code:          "cart-abandoned",
		CustomerEmail: "ada@example.com",
		CustomerName:  "Ada Lovelace",
	}}}
	svc := &stubCartService{t: t,
		GetCartByCodeFunc: func(ctx context.Context, sID pgtype.UUID, code string) (*domain.Cart, error) {
			assert.Equal(t, storeID, sID)
			assert.Equal(t, "cart-abandoned", code)
			return cart, nil
		},
	}
	catalog := &stubWorkerCatalog{
		products: map[string]*domain.Product{
			"COFFEE-12": {SKU: "COFFEE-12", Name: "House Blend 12oz", StoreID: storeID},
		},
		values: map[pgtype.UUID]*domain.AttributeValue{
			valueID: {ID: valueID, Name: "grind", Value: "coarse"},
		},
	}
	sender := &recordingSender{}

	w := NewRecoveryWorker(finder, svc, catalog, sender, Config{
		CartURLBase: "https://shop.example.com/cart/",
	}, discardLogger())

	require.NoError(t, w.Sweep(context.Background()))

	require.Len(t, sender.sent, 1)
	sent := sender.sent[0]
	assert.Equal(t, "ada@example.com", sent.CustomerEmail)
	assert.Equal(t, "https://shop.example.com/cart/cart-abandoned", sent.CartURL)
	assert.Equal(t, int64(3200), sent.SubtotalCents)
	require.Len(t, sent.Items, 1)
	assert.Equal(t, "House Blend 12oz", sent.Items[0].ProductName)
	assert.Equal(t, "coarse", sent.Items[0].OptionsName)
	assert.Equal(t, int32(2), sent.Items[0].Quantity)

	require.Len(t, finder.marked, 1)
	assert.Equal(t, cartID, finder.marked[0])
}

func Test_RecoveryWorker_SkipsPurgedCart(t *testing.T) {
	finder := &stubFinder{carts: []AbandonedCart{{
		CartID:        workerUUID(t),
		StoreID:       workerUUID(t),
		Code:          "cart-gone",
		CustomerEmail: "ada@example.com",
	}}}
	svc := &stubCartService{t: t,
		GetCartByCodeFunc: func(ctx context.Context, storeID pgtype.UUID, code string) (*domain.Cart, error) {
			return nil, domain.ErrCartNotFound
		},
	}
	sender := &recordingSender{}

	w := NewRecoveryWorker(finder, svc, &stubWorkerCatalog{}, sender, Config{}, discardLogger())

	require.NoError(t, w.Sweep(context.Background()))
	assert.Empty(t, sender.sent, "purged cart must not be reminded about")
	assert.Empty(t, finder.marked)
}

func Test_RecoveryWorker_SendFailureDoesNotMarkSent(t *testing.T) {
	storeID := workerUUID(t)
	cartID := workerUUID(t)
	cart := &domain.Cart{
		ID:      cartID,
		Code:    "cart-abandoned",
		StoreID: storeID,
		Items: []domain.CartItem{{
			SKU: "COFFEE-12", Quantity: 1, UnitPriceCents: 1600, SubtotalCents: 1600,
		}},
	}

	finder := &stubFinder{carts: []AbandonedCart{{
		CartID: cartID, StoreID: storeID, Code: "cart-abandoned", CustomerEmail: "ada@example.com",
	}}}
	svc := &stubCartService{t: t,
		GetCartByCodeFunc: func(ctx context.Context, sID pgtype.UUID, code string) (*domain.Cart, error) {
			return cart, nil
		},
	}
	catalog := &stubWorkerCatalog{products: map[string]*domain.Product{
		"COFFEE-12": {SKU: "COFFEE-12", Name: "House Blend 12oz", StoreID: storeID},
	}}
	sender := &recordingSender{err: assert.AnError}

	w := NewRecoveryWorker(finder, svc, catalog, sender, Config{}, discardLogger())

	// Sweep itself succeeds; the per-cart failure is logged and skipped.
	require.NoError(t, w.Sweep(context.Background()))
	assert.Empty(t, finder.marked, "failed send must stay eligible for the next sweep")
}

func Test_RecoveryWorker_FindFailurePropagates(t *testing.T) {
	finder := &stubFinder{findErr: assert.AnError}
	w := NewRecoveryWorker(finder, &stubCartService{t: t}, &stubWorkerCatalog{}, &recordingSender{}, Config{}, discardLogger())

	assert.Error(t, w.Sweep(context.Background()))
}

func Test_RecoveryWorker_SweepUsesConfiguredBatch(t *testing.T) {
	finder := &stubFinder{}
	w := NewRecoveryWorker(finder, &stubCartService{t: t}, &stubWorkerCatalog{}, &recordingSender{}, Config{
		AbandonAfter: 6 * time.Hour,
		BatchSize:    7,
	}, discardLogger())

	require.NoError(t, w.Sweep(context.Background()))
	assert.Equal(t, 6*time.Hour, finder.olderThan)
	assert.Equal(t, int32(7), finder.limit)
}

func Test_RecoveryWorker_MissingProductListedAsRemoved(t *testing.T) {
	storeID := workerUUID(t)
	cartID := workerUUID(t)
	cart := &domain.Cart{
		ID:      cartID,
		Code:    "cart-abandoned",
		StoreID: storeID,
		Items: []domain.CartItem{{
			SKU: "GONE-SKU", Quantity: 1, UnitPriceCents: 500, SubtotalCents: 500,
		}},
	}

	finder := &stubFinder{carts: []AbandonedCart{{
		CartID: cartID, StoreID: storeID, Code: "cart-abandoned", CustomerEmail: "ada@example.com",
	}}}
	svc := &stubCartService{t: t,
		GetCartByCodeFunc: func(ctx context.Context, sID pgtype.UUID, code string) (*domain.Cart, error) {
			return cart, nil
		},
	}
	sender := &recordingSender{}

	w := NewRecoveryWorker(finder, svc, &stubWorkerCatalog{}, sender, Config{}, discardLogger())

	require.NoError(t, w.Sweep(context.Background()))
	require.Len(t, sender.sent, 1)
	assert.Empty(t, sender.sent[0].Items)
	assert.Equal(t, []string{"GONE-SKU"}, sender.sent[0].RemovedItems)
}
