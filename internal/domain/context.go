// Package domain provides core business types and context helpers for Vanir.
//
// Context helpers centralize request-scoped data access, making store
// isolation bugs harder to write and providing consistent patterns throughout
// the codebase.
package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// contextKey is an unexported type for context keys to prevent collisions.
type contextKey int

const (
	// storeContextKey stores the resolved store in context.
	storeContextKey contextKey = iota

	// requestIDContextKey stores the request ID for tracing.
	requestIDContextKey
)

// NewContextWithStore returns a new context with the store attached.
func NewContextWithStore(ctx context.Context, store *Store) context.Context {
	return context.WithValue(ctx, storeContextKey, store)
}

// StoreFromContext retrieves the store from context.
// Returns nil if no store is present.
func StoreFromContext(ctx context.Context) *Store {
	store, _ := ctx.Value(storeContextKey).(*Store)
	return store
}

// MustStoreFromContext retrieves the store from context or returns
// ErrStoreRequired. Use in handlers that only run behind store resolution.
func MustStoreFromContext(ctx context.Context) (*Store, error) {
	store := StoreFromContext(ctx)
	if store == nil {
		return nil, ErrStoreRequired
	}
	return store, nil
}

// NewContextWithRequestID returns a new context with the request ID attached.
func NewContextWithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDContextKey, requestID)
}

// RequestIDFromContext retrieves the request ID from context.
// Returns an empty string if none is present.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// NewUUID generates a random UUID as a string. Convenience wrapper so callers
// outside the persistence layer do not import the uuid package directly.
func NewUUID() string {
	return uuid.New().String()
}

// UUIDString renders a pgtype.UUID in canonical form, or "" when invalid.
func UUIDString(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	return uuid.UUID(id.Bytes).String()
}
