package cart

import (
	"context"
	"testing"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/pricing"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/require"
)

// mockCatalog implements domain.CatalogReader for testing.
type mockCatalog struct {
	products map[string]*domain.Product
	values   map[pgtype.UUID]*domain.AttributeValue

	FindProductBySKUFunc       func(ctx context.Context, sku string) (*domain.Product, error)
	FindAttributeValueByIDFunc func(ctx context.Context, id pgtype.UUID) (*domain.AttributeValue, error)
}

func newMockCatalog() *mockCatalog {
	return &mockCatalog{
		products: make(map[string]*domain.Product),
		values:   make(map[pgtype.UUID]*domain.AttributeValue),
	}
}

func (m *mockCatalog) addProduct(p *domain.Product) {
	m.products[p.SKU] = p
	for i := range p.AttributeValues {
		m.values[p.AttributeValues[i].ID] = &p.AttributeValues[i]
	}
}

func (m *mockCatalog) FindProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	if m.FindProductBySKUFunc != nil {
		return m.FindProductBySKUFunc(ctx, sku)
	}
	if p, ok := m.products[sku]; ok {
		return p, nil
	}
	return nil, domain.ErrProductNotFound
}

func (m *mockCatalog) FindAttributeValueByID(ctx context.Context, id pgtype.UUID) (*domain.AttributeValue, error) {
	if m.FindAttributeValueByIDFunc != nil {
		return m.FindAttributeValueByIDFunc(ctx, id)
	}
	if v, ok := m.values[id]; ok {
		return v, nil
	}
	return nil, domain.ErrAttributeValueNotFound
}

// countingResolver wraps the real resolver and counts invocations.
type countingResolver struct {
	inner pricing.Resolver
	calls int
}

func newCountingResolver() *countingResolver {
	return &countingResolver{inner: pricing.NewResolver()}
}

func (r *countingResolver) ResolvePrice(ctx context.Context, product *domain.Product, selections []domain.AttributeValue) (pricing.FinalPrice, error) {
	r.calls++
	return r.inner.ResolvePrice(ctx, product, selections)
}

// mockCartStore records persistence calls; all operations succeed unless a
// func field overrides them.
type mockCartStore struct {
	savedCarts        []*domain.Cart
	deletedCarts      []pgtype.UUID
	deletedSelections []pgtype.UUID

	SaveCartFunc        func(ctx context.Context, cart *domain.Cart) error
	DeleteCartFunc      func(ctx context.Context, id pgtype.UUID) error
	DeleteSelectionFunc func(ctx context.Context, id pgtype.UUID) error
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
	m.deletedCarts = append(m.deletedCarts, id)
	return nil
}

func (m *mockCartStore) DeleteSelection(ctx context.Context, id pgtype.UUID) error {
	if m.DeleteSelectionFunc != nil {
		return m.DeleteSelectionFunc(ctx, id)
	}
	m.deletedSelections = append(m.deletedSelections, id)
	return nil
}

// --- fixture helpers ---

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
