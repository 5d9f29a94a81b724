package postgres

import (
	"context"
	"errors"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogStore implements domain.CatalogReader using PostgreSQL.
type CatalogStore struct {
	pool *pgxpool.Pool
}

// Compile-time check that CatalogStore implements domain.CatalogReader.
var _ domain.CatalogReader = (*CatalogStore)(nil)

// NewCatalogStore creates a new PostgreSQL-backed catalog reader.
func NewCatalogStore(pool *pgxpool.Pool) *CatalogStore {
	return &CatalogStore{pool: pool}
}

// FindProductBySKU loads a product by SKU together with its active price and
// current attribute values. SKUs are globally unique; the returned product
// carries its owning StoreID so callers can detect cross-store references.
func (s *CatalogStore) FindProductBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	const op = "catalog.find_product_by_sku"

	row := s.pool.QueryRow(ctx, `
		SELECT id, store_id, sku, name, slug, status,
		       virtual, requires_shipping, weight_grams,
		       created_at, updated_at
		FROM products
		WHERE sku = $1`, sku)

	var p domain.Product
	err := row.Scan(
		&p.ID, &p.StoreID, &p.SKU, &p.Name, &p.Slug, &p.Status,
		&p.Virtual, &p.RequiresShipping, &p.WeightGrams,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductNotFound
		}
		return nil, domain.Internal(err, op, "failed to get product by SKU")
	}

	price, err := s.activePrice(ctx, p.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to get active price")
	}
	p.Price = price

	values, err := s.attributeValues(ctx, p.ID)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to get attribute values")
	}
	p.AttributeValues = values

	return &p, nil
}

// FindAttributeValueByID loads a single product attribute value.
func (s *CatalogStore) FindAttributeValueByID(ctx context.Context, id pgtype.UUID) (*domain.AttributeValue, error) {
	const op = "catalog.find_attribute_value"

	row := s.pool.QueryRow(ctx, `
		SELECT id, product_id, name, value, surcharge_cents
		FROM product_attribute_values
		WHERE id = $1`, id)

	var av domain.AttributeValue
	err := row.Scan(&av.ID, &av.ProductID, &av.Name, &av.Value, &av.SurchargeCents)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAttributeValueNotFound
		}
		return nil, domain.Internal(err, op, "failed to get attribute value")
	}

	return &av, nil
}

// activePrice returns the product's active price record, or nil when none is
// configured. The partial unique index on (product_id) WHERE active guarantees
// at most one row.
func (s *CatalogStore) activePrice(ctx context.Context, productID pgtype.UUID) (*domain.ProductPrice, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, product_id, amount_cents, active
		FROM product_prices
		WHERE product_id = $1 AND active`, productID)

	var price domain.ProductPrice
	err := row.Scan(&price.ID, &price.ProductID, &price.AmountCents, &price.Active)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &price, nil
}

func (s *CatalogStore) attributeValues(ctx context.Context, productID pgtype.UUID) ([]domain.AttributeValue, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, product_id, name, value, surcharge_cents
		FROM product_attribute_values
		WHERE product_id = $1
		ORDER BY name, value`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var values []domain.AttributeValue
	for rows.Next() {
		var av domain.AttributeValue
		if err := rows.Scan(&av.ID, &av.ProductID, &av.Name, &av.Value, &av.SurchargeCents); err != nil {
			return nil, err
		}
		values = append(values, av)
	}
	return values, rows.Err()
}
