package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/worker"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RecoveryDB finds customer carts eligible for an abandoned-cart reminder.
type RecoveryDB struct {
	pool *pgxpool.Pool
}

// Compile-time check that RecoveryDB implements worker.CartFinder.
var _ worker.CartFinder = (*RecoveryDB)(nil)

// NewRecoveryDB creates a new PostgreSQL-backed abandoned cart finder.
func NewRecoveryDB(pool *pgxpool.Pool) *RecoveryDB {
	return &RecoveryDB{pool: pool}
}

// FindAbandonedCarts returns customer carts with at least one item that have
// not been touched since the cutoff and have not yet been reminded. Guest
// carts are skipped; there is no address to send to.
func (s *RecoveryDB) FindAbandonedCarts(ctx context.Context, olderThan time.Duration, limit int32) ([]worker.AbandonedCart, error) {
	const op = "recovery.find_abandoned_carts"

	cutoff := time.Now().Add(-olderThan)
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.store_id, c.code, cu.email, cu.first_name, cu.last_name
		FROM carts c
		JOIN customers cu ON cu.id = c.customer_id
		WHERE c.customer_id IS NOT NULL
		  AND c.recovery_email_sent_at IS NULL
		  AND c.updated_at < $1
		  AND EXISTS (SELECT 1 FROM cart_items ci WHERE ci.cart_id = c.id)
		ORDER BY c.updated_at
		LIMIT $2`,
		cutoff, limit)
	if err != nil {
		return nil, domain.Internal(err, op, "failed to query abandoned carts")
	}
	defer rows.Close()

	var carts []worker.AbandonedCart
	for rows.Next() {
		var (
			ac                  worker.AbandonedCart
			firstName, lastName string
		)
		if err := rows.Scan(&ac.CartID, &ac.StoreID, &ac.Code, &ac.CustomerEmail, &firstName, &lastName); err != nil {
			return nil, domain.Internal(err, op, "failed to scan abandoned cart")
		}
		ac.CustomerName = strings.TrimSpace(firstName + " " + lastName)
		carts = append(carts, ac)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Internal(err, op, "failed to read abandoned carts")
	}
	return carts, nil
}

// MarkRecoveryEmailSent records that the cart's reminder went out so the next
// sweep does not pick it up again.
func (s *RecoveryDB) MarkRecoveryEmailSent(ctx context.Context, cartID pgtype.UUID) error {
	const op = "recovery.mark_sent"

	_, err := s.pool.Exec(ctx, `
		UPDATE carts SET recovery_email_sent_at = now() WHERE id = $1`, cartID)
	if err != nil {
		return domain.Internal(err, op, "failed to mark recovery email sent")
	}
	return nil
}
