package service

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/telemetry"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// mockCartStore is an in-memory domain.CartStore; all operations succeed
// unless a func field overrides them.
type mockCartStore struct {
	t *testing.T

	byID       map[pgtype.UUID]*domain.Cart
	savedCarts []*domain.Cart
	deleted    []pgtype.UUID

	CreateCartFunc func(ctx context.Context, cart *domain.Cart) error
	SaveCartFunc   func(ctx context.Context, cart *domain.Cart) error
	DeleteCartFunc func(ctx context.Context, id pgtype.UUID) error
}

func newMockCartStore(t *testing.T, carts ...*domain.Cart) *mockCartStore {
	t.Helper()
	m := &mockCartStore{t: t, byID: make(map[pgtype.UUID]*domain.Cart)}
	for _, c := range carts {
		m.byID[c.ID] = c
	}
	return m
}

func (m *mockCartStore) CreateCart(ctx context.Context, cart *domain.Cart) error {
	if m.CreateCartFunc != nil {
		return m.CreateCartFunc(ctx, cart)
	}
	cart.ID = mustUUID(m.t, domain.NewUUID())
	cart.Code = domain.NewUUID()
	m.byID[cart.ID] = cart
	return nil
}

func (m *mockCartStore) GetCartByID(ctx context.Context, id pgtype.UUID) (*domain.Cart, error) {
	if c, ok := m.byID[id]; ok {
		return c, nil
	}
	return nil, domain.ErrCartNotFound
}

func (m *mockCartStore) GetCartByCode(ctx context.Context, code string) (*domain.Cart, error) {
	for _, c := range m.byID {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, domain.ErrCartNotFound
}

func (m *mockCartStore) GetCartForCustomer(ctx context.Context, storeID, customerID pgtype.UUID) (*domain.Cart, error) {
	for _, c := range m.byID {
		if c.StoreID == storeID && c.CustomerID == customerID {
			return c, nil
		}
	}
	return nil, domain.ErrCartNotFound
}

func (m *mockCartStore) SaveCart(ctx context.Context, cart *domain.Cart) error {
	if m.SaveCartFunc != nil {
		return m.SaveCartFunc(ctx, cart)
	}
	m.savedCarts = append(m.savedCarts, cart)
	return nil
}

func (m *mockCartStore) DeleteCart(ctx context.Context, id pgtype.UUID) error {
	if m.DeleteCartFunc != nil {
		return m.DeleteCartFunc(ctx, id)
	}
	delete(m.byID, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockCartStore) DeleteSelection(ctx context.Context, id pgtype.UUID) error {
	return nil
}

// mockCatalog implements domain.CatalogReader over a fixed product set.
type mockCatalog struct {
	products map[string]*domain.Product
}

func newMockCatalog(products ...*domain.Product) *mockCatalog {
	m := &mockCatalog{products: make(map[string]*domain.Product)}
	for _, p := range products {
		m.products[p.SKU] = p
	}
	return m
}

func (m *mockCatalog) FindProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	if p, ok := m.products[sku]; ok {
		return p, nil
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockCatalog) FindAttributeValueByID(ctx context.Context, id pgtype.UUID) (*domain.AttributeValue, error) {
	for _, p := range m.products {
		if v := p.AttributeValueByID(id); v != nil {
			return v, nil
		}
	}
	return nil, domain.ErrAttributeValueNotFound
}

// mockPopulator mimics the real populate semantics: an empty cart is
// obsolete, otherwise the cart inherits its items' obsolete flags.
type mockPopulator struct {
	calls            int
	PopulateCartFunc func(ctx context.Context, cart *domain.Cart, storeID pgtype.UUID) (*domain.Cart, error)
}

func (m *mockPopulator) PopulateCart(ctx context.Context, cart *domain.Cart, storeID pgtype.UUID) (*domain.Cart, error) {
	m.calls++
	if m.PopulateCartFunc != nil {
		return m.PopulateCartFunc(ctx, cart, storeID)
	}
	if cart.Empty() {
		cart.Obsolete = true
		return cart, nil
	}
	obsolete := false
	for _, item := range cart.Items {
		obsolete = obsolete || item.Obsolete
	}
	cart.Obsolete = obsolete
	return cart, nil
}

// mockMerger appends all source items to the target.
type mockMerger struct {
	calls          int
	MergeCartsFunc func(ctx context.Context, target, source *domain.Cart, storeID pgtype.UUID) (*domain.Cart, error)
}

func (m *mockMerger) MergeCarts(ctx context.Context, target, source *domain.Cart, storeID pgtype.UUID) (*domain.Cart, error) {
	m.calls++
	if m.MergeCartsFunc != nil {
		return m.MergeCartsFunc(ctx, target, source, storeID)
	}
	target.Items = append(target.Items, source.Items...)
	return target, nil
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	subjects []string
	events   []any
	err      error
}

func (p *recordingPublisher) Publish(ctx context.Context, subject string, event any) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, event)
	return nil
}

// testEnv bundles the facade with its mocks.
type testEnv struct {
	svc       CartService
	carts     *mockCartStore
	catalog   *mockCatalog
	populator *mockPopulator
	merger    *mockMerger
	publisher *recordingPublisher
	metrics   *telemetry.BusinessMetrics
}

func newTestEnv(t *testing.T, carts *mockCartStore, catalog *mockCatalog) *testEnv {
	t.Helper()
	env := &testEnv{
		carts:     carts,
		catalog:   catalog,
		populator: &mockPopulator{},
		merger:    &mockMerger{},
		publisher: &recordingPublisher{},
		metrics:   telemetry.NewBusinessMetrics(prometheus.NewRegistry()),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	env.svc = NewCartService(env.carts, env.catalog, env.populator, env.merger, env.publisher, env.metrics, logger)
	return env
}

// --- fixture helpers ---

func pgtypeUUIDs(ids ...pgtype.UUID) []pgtype.UUID {
	return ids
}

func mustUUID(t *testing.T, s string) pgtype.UUID {
	t.Helper()
	var id pgtype.UUID
	require.NoError(t, id.Scan(s))
	return id
}

var (
	storeA = "aaaaaaaa-0000-0000-0000-000000000001"
	storeB = "aaaaaaaa-0000-0000-0000-000000000002"
)

func fixtureProduct(t *testing.T, storeID pgtype.UUID, sku string, priceCents int64, values ...domain.AttributeValue) *domain.Product {
	t.Helper()
	return &domain.Product{
		ID:      mustUUID(t, domain.NewUUID()),
		StoreID: storeID,
		SKU:     sku,
		Name:    sku,
		Status:  domain.ProductStatusActive,
		Price: &domain.ProductPrice{
			AmountCents: priceCents,
			Active:      true,
		},
		AttributeValues: values,
	}
}

func fixtureValue(t *testing.T, productID pgtype.UUID, name, value string, surcharge int64) domain.AttributeValue {
	t.Helper()
	return domain.AttributeValue{
		ID:             mustUUID(t, domain.NewUUID()),
		ProductID:      productID,
		Name:           name,
		Value:          value,
		SurchargeCents: surcharge,
	}
}

func fixtureItem(t *testing.T, sku string, qty int32, valueIDs ...pgtype.UUID) domain.CartItem {
	t.Helper()
	item := domain.CartItem{
		ID:       mustUUID(t, domain.NewUUID()),
		SKU:      sku,
		Quantity: qty,
	}
	for _, vid := range valueIDs {
		item.Selections = append(item.Selections, domain.AttributeSelection{
			ID:               mustUUID(t, domain.NewUUID()),
			CartItemID:       item.ID,
			AttributeValueID: vid,
		})
	}
	return item
}

func fixtureCart(t *testing.T, storeID pgtype.UUID, items ...domain.CartItem) *domain.Cart {
	t.Helper()
	cart := &domain.Cart{
		ID:      mustUUID(t, domain.NewUUID()),
		Code:    domain.NewUUID(),
		StoreID: storeID,
		Items:   items,
	}
	for i := range cart.Items {
		cart.Items[i].CartID = cart.ID
	}
	return cart
}
