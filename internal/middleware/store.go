package middleware

import (
	"net/http"
	"strings"

	"github.com/dukerupert/vanir/internal/domain"
	"github.com/dukerupert/vanir/internal/service"
)

// StoreCodeHeader names the store a request operates on. Every cart and
// catalog route requires it.
const StoreCodeHeader = "X-Store-Code"

// StoreConfig holds configuration for store resolution middleware.
type StoreConfig struct {
	// Stores resolves store codes against the database.
	Stores service.StoreService

	// BaseDomain, when set, enables subdomain resolution as a fallback:
	// a request to {code}.BaseDomain without an explicit header resolves
	// the store with that code.
	BaseDomain string
}

// ResolveStore resolves the request's store and attaches it to the context.
//
// Resolution order:
//  1. The X-Store-Code header, when present.
//  2. The subdomain of BaseDomain, when configured.
//
// A request that names no store passes through unresolved; routes that need
// store context enforce it with RequireStore.
func ResolveStore(cfg StoreConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			code := r.Header.Get(StoreCodeHeader)
			if code == "" && cfg.BaseDomain != "" {
				code = extractSubdomain(r.Host, cfg.BaseDomain)
			}
			if code == "" {
				next.ServeHTTP(w, r)
				return
			}

			store, err := cfg.Stores.GetStoreByCode(r.Context(), code)
			if err != nil {
				respondWithError(w, r, err)
				return
			}

			ctx := domain.NewContextWithStore(r.Context(), store)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireStore rejects requests that reach a store-scoped route without a
// resolved store. Apply after ResolveStore.
func RequireStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if domain.StoreFromContext(r.Context()) == nil {
			respondWithError(w, r, domain.Errorf(domain.EINVALID, "", "Store code required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// extractSubdomain extracts a single-level subdomain of baseDomain from host.
// Returns "" for the apex, nested subdomains and foreign hosts.
func extractSubdomain(host, baseDomain string) string {
	host = stripPort(host)
	suffix := "." + stripPort(baseDomain)
	if !strings.HasSuffix(host, suffix) {
		return ""
	}
	subdomain := strings.TrimSuffix(host, suffix)
	if subdomain == "" || subdomain == "www" || strings.Contains(subdomain, ".") {
		return ""
	}
	return subdomain
}

func stripPort(host string) string {
	if i := strings.Index(host, ":"); i != -1 {
		return host[:i]
	}
	return host
}
