package cart

import (
	"context"
	"testing"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_MergeCarts_NoOpWhenSameCustomerAndBothNonEmpty(t *testing.T) {
	storeID := mustUUID(t, storeA)
	customerID := mustUUID(t, "cccccccc-0000-0000-0000-000000000001")

	catalog := newMockCatalog()
	catalog.addProduct(fixtureProduct(t, storeID, "SKU-A", 1000))

	target := fixtureCart(t, storeID, fixtureItem(t, "SKU-A", 1))
	target.CustomerID = customerID
	source := fixtureCart(t, storeID, fixtureItem(t, "SKU-A", 4))
	source.CustomerID = customerID

	store := &mockCartStore{}
	merger := NewMerger(catalog, store)

	result, err := merger.MergeCarts(context.Background(), target, source, storeID)

	require.NoError(t, err)
	assert.Same(t, target, result)
	require.Len(t, result.Items, 1, "target must be unmodified")
	assert.Equal(t, int32(1), result.Items[0].Quantity)
	assert.Empty(t, store.savedCarts, "no-op merge persists nothing")
	assert.Empty(t, store.deletedCarts, "source cart survives the no-op")
}

func Test_MergeCarts_AppendsNonDuplicateItems(t *testing.T) {
	storeID := mustUUID(t, storeA)
	catalog := newMockCatalog()
	catalog.addProduct(fixtureProduct(t, storeID, "SKU-A", 1000))
	catalog.addProduct(fixtureProduct(t, storeID, "SKU-B", 700))

	target := fixtureCart(t, storeID, fixtureItem(t, "SKU-A", 1))
	source := fixtureCart(t, storeID, fixtureItem(t, "SKU-B", 3))

	store := &mockCartStore{}
	merger := NewMerger(catalog, store)

	result, err := merger.MergeCarts(context.Background(), target, source, storeID)

	require.NoError(t, err)
	require.Len(t, result.Items, 2)
	assert.Equal(t, "SKU-A", result.Items[0].SKU)
	assert.Equal(t, int32(1), result.Items[0].Quantity)
	assert.Equal(t, "SKU-B", result.Items[1].SKU)
	assert.Equal(t, int32(3), result.Items[1].Quantity)

	require.Len(t, store.savedCarts, 1)
	require.Len(t, store.deletedCarts, 1, "session cart is deleted after the merge")
	assert.Equal(t, source.ID, store.deletedCarts[0])
}

func Test_MergeCarts_SumsQuantityForMatchingAttributeLines(t *testing.T) {
	storeID := mustUUID(t, storeA)
	product := fixtureProduct(t, storeID, "SKU-A", 1000)
	wrap := fixtureValue(t, product.ID, "wrap", "gift", 150)
	product.AttributeValues = []domain.AttributeValue{wrap}

	catalog := newMockCatalog()
	catalog.addProduct(product)

	target := fixtureCart(t, storeID, fixtureItem(t, "SKU-A", 2, wrap.ID))
	source := fixtureCart(t, storeID, fixtureItem(t, "SKU-A", 3, wrap.ID))

	store := &mockCartStore{}
	merger := NewMerger(catalog, store)

	result, err := merger.MergeCarts(context.Background(), target, source, storeID)

	require.NoError(t, err)
	require.Len(t, result.Items, 1, "matching product + attribute set folds into one line")
	assert.Equal(t, int32(5), result.Items[0].Quantity)
}

func Test_MergeCarts_PlainLinesNeverQuantityMerge(t *testing.T) {
	storeID := mustUUID(t, storeA)
	catalog := newMockCatalog()
	catalog.addProduct(fixtureProduct(t, storeID, "SKU-A", 1000))

	target := fixtureCart(t, storeID, fixtureItem(t, "SKU-A", 1))
	source := fixtureCart(t, storeID, fixtureItem(t, "SKU-A", 2))

	merger := NewMerger(catalog, &mockCartStore{})
	result, err := merger.MergeCarts(context.Background(), target, source, storeID)

	require.NoError(t, err)
	// Duplicate matching requires the existing line to carry attribute
	// selections, so two plain lines of the same product stay separate.
	require.Len(t, result.Items, 2)
	assert.Equal(t, int32(1), result.Items[0].Quantity)
	assert.Equal(t, int32(2), result.Items[1].Quantity)
}

func Test_MergeCarts_MatchDecidedPerSourceItem(t *testing.T) {
	storeID := mustUUID(t, storeA)
	productA := fixtureProduct(t, storeID, "SKU-A", 1000)
	wrap := fixtureValue(t, productA.ID, "wrap", "gift", 150)
	productA.AttributeValues = []domain.AttributeValue{wrap}

	catalog := newMockCatalog()
	catalog.addProduct(productA)
	catalog.addProduct(fixtureProduct(t, storeID, "SKU-B", 700))
	catalog.addProduct(fixtureProduct(t, storeID, "SKU-C", 300))

	target := fixtureCart(t, storeID, fixtureItem(t, "SKU-A", 1, wrap.ID))
	source := fixtureCart(t, storeID,
		fixtureItem(t, "SKU-A", 2, wrap.ID), // quantity-merges into the target line
		fixtureItem(t, "SKU-B", 1),          // must be appended, not dropped
		fixtureItem(t, "SKU-C", 4),          // must be appended, not dropped
	)

	merger := NewMerger(catalog, &mockCartStore{})
	result, err := merger.MergeCarts(context.Background(), target, source, storeID)

	require.NoError(t, err)
	require.Len(t, result.Items, 3, "items after a duplicate match must still be appended")
	assert.Equal(t, int32(3), result.Items[0].Quantity, "1 + 2 merged")
	assert.Equal(t, "SKU-B", result.Items[1].SKU)
	assert.Equal(t, "SKU-C", result.Items[2].SKU)
	assert.Equal(t, int32(4), result.Items[2].Quantity)
}

func Test_MergeCarts_UnknownSKUAbortsMerge(t *testing.T) {
	storeID := mustUUID(t, storeA)
	catalog := newMockCatalog()
	catalog.addProduct(fixtureProduct(t, storeID, "SKU-A", 1000))

	target := fixtureCart(t, storeID, fixtureItem(t, "SKU-A", 1))
	source := fixtureCart(t, storeID, fixtureItem(t, "GONE-SKU", 1))

	store := &mockCartStore{}
	merger := NewMerger(catalog, store)

	_, err := merger.MergeCarts(context.Background(), target, source, storeID)

	require.Error(t, err)
	assert.Equal(t, domain.ENOTFOUND, domain.ErrorCode(err))
	assert.Empty(t, store.savedCarts)
	assert.Empty(t, store.deletedCarts)
	assert.Len(t, target.Items, 1, "target untouched on abort")
}

func Test_MergeCarts_RejectsCrossStoreItems(t *testing.T) {
	storeID := mustUUID(t, storeA)
	otherStore := mustUUID(t, storeB)

	catalog := newMockCatalog()
	catalog.addProduct(fixtureProduct(t, storeID, "SKU-A", 1000))
	catalog.addProduct(fixtureProduct(t, otherStore, "FOREIGN-SKU", 900))

	target := fixtureCart(t, storeID, fixtureItem(t, "SKU-A", 1))
	source := fixtureCart(t, storeID, fixtureItem(t, "FOREIGN-SKU", 1))

	store := &mockCartStore{}
	merger := NewMerger(catalog, store)

	_, err := merger.MergeCarts(context.Background(), target, source, storeID)

	require.ErrorIs(t, err, ErrCrossStoreItem)
	assert.Equal(t, domain.EFORBIDDEN, domain.ErrorCode(err))
	assert.Empty(t, store.savedCarts, "neither cart is mutated")
	assert.Empty(t, store.deletedCarts)
	assert.Len(t, target.Items, 1)
	assert.Len(t, source.Items, 1)
}

func Test_MergeCarts_StoreMismatchPrecondition(t *testing.T) {
	storeID := mustUUID(t, storeA)
	otherStore := mustUUID(t, storeB)

	target := fixtureCart(t, storeID, fixtureItem(t, "SKU-A", 1))
	source := fixtureCart(t, otherStore, fixtureItem(t, "SKU-B", 1))

	merger := NewMerger(newMockCatalog(), &mockCartStore{})
	_, err := merger.MergeCarts(context.Background(), target, source, storeID)

	require.ErrorIs(t, err, domain.ErrStoreMismatch)
}

func Test_MergeCarts_EmptySourceStillDeletesSource(t *testing.T) {
	storeID := mustUUID(t, storeA)
	catalog := newMockCatalog()
	catalog.addProduct(fixtureProduct(t, storeID, "SKU-A", 1000))

	target := fixtureCart(t, storeID, fixtureItem(t, "SKU-A", 1))
	source := fixtureCart(t, storeID)

	store := &mockCartStore{}
	merger := NewMerger(catalog, store)

	result, err := merger.MergeCarts(context.Background(), target, source, storeID)

	require.NoError(t, err)
	assert.Len(t, result.Items, 1)
	require.Len(t, store.deletedCarts, 1, "an empty session cart is still cleaned up")
	assert.Equal(t, source.ID, store.deletedCarts[0])
}
