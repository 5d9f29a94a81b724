package middleware

import (
	"context"
	"net/http"
	"time"
)

// Common size limits.
const (
	kb = 1024
	mb = 1024 * kb

	// DefaultMaxBodySize caps request bodies at 1MB; cart payloads are small.
	DefaultMaxBodySize = 1 * mb
)

// MaxBodySize rejects request bodies larger than maxBytes with 413.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Body != nil && r.ContentLength > maxBytes {
				http.Error(w, "Request body too large", http.StatusRequestEntityTooLarge)
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// DefaultTimeout is the default request timeout.
const DefaultTimeout = 30 * time.Second

// Timeout cancels the request context after the given duration. Handlers see
// the cancellation through their database and catalog calls; the deadline is
// enforced cooperatively rather than by abandoning the handler goroutine.
func Timeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
