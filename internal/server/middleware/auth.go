// Package middleware contains HTTP middleware for the API server.
package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"postflow/internal/auth"
	"postflow/internal/store"
	"postflow/pkg/api"
)

// tenantKey is the context key for the authenticated tenant.
type tenantKey struct{}

// AuthMiddleware resolves the Bearer API key to a tenant and puts it on
// the request context. Every operation downstream is scoped by that tenant.
func AuthMiddleware(s store.TenantStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w)
				return
			}

			parts := strings.Fields(header)
			if len(parts) != 2 || parts[0] != "Bearer" {
				unauthorized(w)
				return
			}

			tenant, err := s.GetTenantByAPIKeyHash(r.Context(), auth.HashKey(parts[1]))
			if err != nil {
				if err == store.ErrNotFound {
					unauthorized(w)
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(api.ErrorResponse{Error: "Internal error", Code: "500"})
				return
			}
			if tenant == nil {
				unauthorized(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(NewContextWithTenant(r.Context(), tenant)))
		})
	}
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(api.ErrorResponse{Error: "Unauthorized", Code: "401"})
}

// NewContextWithTenant returns a context carrying the tenant.
func NewContextWithTenant(ctx context.Context, tenant *store.Tenant) context.Context {
	return context.WithValue(ctx, tenantKey{}, tenant)
}

// TenantFromContext extracts the authenticated tenant from the context.
func TenantFromContext(ctx context.Context) (*store.Tenant, bool) {
	t, ok := ctx.Value(tenantKey{}).(*store.Tenant)
	return t, ok
}
