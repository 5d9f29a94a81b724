package postgres

import (
	"context"
	"errors"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CartDB implements domain.CartStore using PostgreSQL. Carts, line items and
// attribute selections live in three tables; writes that touch more than one
// of them run inside a transaction.
type CartDB struct {
	pool *pgxpool.Pool
}

// Compile-time check that CartDB implements domain.CartStore.
var _ domain.CartStore = (*CartDB)(nil)

// NewCartDB creates a new PostgreSQL-backed cart store.
func NewCartDB(pool *pgxpool.Pool) *CartDB {
	return &CartDB{pool: pool}
}

// CreateCart inserts a new cart and its items. Missing ids and the external
// code are assigned before the insert.
func (s *CartDB) CreateCart(ctx context.Context, cart *domain.Cart) error {
	const op = "cart.create"

	if !cart.ID.Valid {
		cart.ID = newID()
	}
	if cart.Code == "" {
		cart.Code = domain.NewUUID()
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, op, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO carts (id, code, store_id, customer_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())`,
		cart.ID, cart.Code, cart.StoreID, cart.CustomerID)
	if err != nil {
		return domain.Internal(err, op, "failed to insert cart")
	}

	if err := s.saveItems(ctx, tx, cart); err != nil {
		return domain.Internal(err, op, "failed to insert cart items")
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, op, "failed to commit")
	}
	return nil
}

// GetCartByID loads a cart with all items and selections.
func (s *CartDB) GetCartByID(ctx context.Context, id pgtype.UUID) (*domain.Cart, error) {
	return s.loadCart(ctx, "cart.get_by_id", "id = $1", id)
}

// GetCartByCode loads a cart by its stable external code.
func (s *CartDB) GetCartByCode(ctx context.Context, code string) (*domain.Cart, error) {
	return s.loadCart(ctx, "cart.get_by_code", "code = $1", code)
}

// GetCartForCustomer loads the customer's cart within a store. A customer has
// at most one cart per store.
func (s *CartDB) GetCartForCustomer(ctx context.Context, storeID, customerID pgtype.UUID) (*domain.Cart, error) {
	return s.loadCart(ctx, "cart.get_for_customer", "store_id = $1 AND customer_id = $2", storeID, customerID)
}

// SaveCart persists the cart's current item collection: removed lines are
// deleted, changed lines updated, appended lines inserted. Selections carried
// by appended lines are inserted alongside them. Derived obsolete flags are
// not persisted; they are recomputed on every read.
func (s *CartDB) SaveCart(ctx context.Context, cart *domain.Cart) error {
	const op = "cart.save"

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return domain.Internal(err, op, "failed to begin transaction")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE carts SET customer_id = $2, updated_at = now()
		WHERE id = $1`, cart.ID, cart.CustomerID)
	if err != nil {
		return domain.Internal(err, op, "failed to update cart")
	}

	if err := s.saveItems(ctx, tx, cart); err != nil {
		return domain.Internal(err, op, "failed to save cart items")
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Internal(err, op, "failed to commit")
	}
	return nil
}

// DeleteCart removes the cart. Items and selections go with it through the
// ON DELETE CASCADE constraints.
func (s *CartDB) DeleteCart(ctx context.Context, id pgtype.UUID) error {
	const op = "cart.delete"

	tag, err := s.pool.Exec(ctx, `DELETE FROM carts WHERE id = $1`, id)
	if err != nil {
		return domain.Internal(err, op, "failed to delete cart")
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrCartNotFound
	}
	return nil
}

// DeleteSelection removes a single attribute selection row.
func (s *CartDB) DeleteSelection(ctx context.Context, id pgtype.UUID) error {
	const op = "cart.delete_selection"

	_, err := s.pool.Exec(ctx, `DELETE FROM cart_item_selections WHERE id = $1`, id)
	if err != nil {
		return domain.Internal(err, op, "failed to delete selection")
	}
	return nil
}

func (s *CartDB) loadCart(ctx context.Context, op, where string, args ...any) (*domain.Cart, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, code, store_id, customer_id, created_at, updated_at
		FROM carts
		WHERE `+where, args...)

	var cart domain.Cart
	err := row.Scan(&cart.ID, &cart.Code, &cart.StoreID, &cart.CustomerID, &cart.CreatedAt, &cart.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCartNotFound
		}
		return nil, domain.Internal(err, op, "failed to get cart")
	}

	if err := s.loadItems(ctx, &cart); err != nil {
		return nil, domain.Internal(err, op, "failed to load cart items")
	}
	return &cart, nil
}

func (s *CartDB) loadItems(ctx context.Context, cart *domain.Cart) error {
	rows, err := s.pool.Query(ctx, `
		SELECT id, cart_id, sku, quantity, unit_price_cents, created_at, updated_at
		FROM cart_items
		WHERE cart_id = $1
		ORDER BY created_at, id`, cart.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item domain.CartItem
		if err := rows.Scan(&item.ID, &item.CartID, &item.SKU, &item.Quantity,
			&item.UnitPriceCents, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return err
		}
		item.SubtotalCents = item.UnitPriceCents * int64(item.Quantity)
		cart.Items = append(cart.Items, item)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	return s.loadSelections(ctx, cart)
}

func (s *CartDB) loadSelections(ctx context.Context, cart *domain.Cart) error {
	if len(cart.Items) == 0 {
		return nil
	}

	rows, err := s.pool.Query(ctx, `
		SELECT s.id, s.cart_item_id, s.attribute_value_id
		FROM cart_item_selections s
		JOIN cart_items i ON i.id = s.cart_item_id
		WHERE i.cart_id = $1`, cart.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	byItem := make(map[pgtype.UUID][]domain.AttributeSelection)
	for rows.Next() {
		var sel domain.AttributeSelection
		if err := rows.Scan(&sel.ID, &sel.CartItemID, &sel.AttributeValueID); err != nil {
			return err
		}
		byItem[sel.CartItemID] = append(byItem[sel.CartItemID], sel)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for i := range cart.Items {
		cart.Items[i].Selections = byItem[cart.Items[i].ID]
	}
	return nil
}

// saveItems synchronizes the cart_items rows with the in-memory collection.
// Rows absent from the collection are deleted; appended items (invalid id)
// get fresh ids before the upsert.
func (s *CartDB) saveItems(ctx context.Context, tx pgx.Tx, cart *domain.Cart) error {
	keep := make([]pgtype.UUID, 0, len(cart.Items))
	for i := range cart.Items {
		if !cart.Items[i].ID.Valid {
			cart.Items[i].ID = newID()
			cart.Items[i].CartID = cart.ID
		}
		keep = append(keep, cart.Items[i].ID)
	}

	_, err := tx.Exec(ctx, `
		DELETE FROM cart_items WHERE cart_id = $1 AND id != ALL($2)`,
		cart.ID, keep)
	if err != nil {
		return err
	}

	for i := range cart.Items {
		item := &cart.Items[i]
		_, err := tx.Exec(ctx, `
			INSERT INTO cart_items (id, cart_id, sku, quantity, unit_price_cents, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, now(), now())
			ON CONFLICT (id) DO UPDATE
			SET quantity = EXCLUDED.quantity,
			    unit_price_cents = EXCLUDED.unit_price_cents,
			    updated_at = now()`,
			item.ID, item.CartID, item.SKU, item.Quantity, item.UnitPriceCents)
		if err != nil {
			return err
		}

		for j := range item.Selections {
			sel := &item.Selections[j]
			if !sel.ID.Valid {
				sel.ID = newID()
				sel.CartItemID = item.ID
			}
			_, err := tx.Exec(ctx, `
				INSERT INTO cart_item_selections (id, cart_item_id, attribute_value_id)
				VALUES ($1, $2, $3)
				ON CONFLICT (id) DO NOTHING`,
				sel.ID, sel.CartItemID, sel.AttributeValueID)
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// newID generates a fresh uuid as pgtype.UUID.
func newID() pgtype.UUID {
	return pgtype.UUID{Bytes: uuid.New(), Valid: true}
}
