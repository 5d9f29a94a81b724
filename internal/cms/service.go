package cms

import (
	"context"
	"errors"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Service implements Provider against PostgreSQL.
type Service struct {
	pool *pgxpool.Pool
}

// Compile-time check that Service implements Provider.
var _ Provider = (*Service)(nil)

// NewService creates a new database-backed content provider.
func NewService(pool *pgxpool.Pool) *Service {
	return &Service{pool: pool}
}

// GetContent returns the published content block for a store and slug.
func (s *Service) GetContent(ctx context.Context, storeID pgtype.UUID, slug string) (*Content, error) {
	const op = "cms.get_content"

	row := s.pool.QueryRow(ctx, `
		SELECT id, store_id, slug, title, body, published, updated_at
		FROM content_blocks
		WHERE store_id = $1 AND slug = $2 AND published`, storeID, slug)

	var c Content
	err := row.Scan(&c.ID, &c.StoreID, &c.Slug, &c.Title, &c.Body, &c.Published, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrContentNotFound
		}
		return nil, domain.Internal(err, op, "failed to get content block")
	}
	return &c, nil
}
