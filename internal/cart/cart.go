// Package cart implements read-time cart consolidation: refreshing line items
// against the live catalog, deriving cart obsolescence, and folding anonymous
// session carts into customer carts at login.
//
// Line items reference products by SKU, never by object reference. Every read
// re-resolves that key, so catalog changes degrade items to obsolete instead
// of serving stale prices. Staleness between reads is expected; the populate
// step is the only place it gets resolved.
package cart

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// SelectionRemover deletes persisted attribute selection rows. Orphaned
// selections found during refresh go through this explicit step so the
// database never retains selections the catalog no longer backs.
// domain.CartStore satisfies it.
type SelectionRemover interface {
	DeleteSelection(ctx context.Context, id pgtype.UUID) error
}
