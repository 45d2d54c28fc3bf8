package middleware

import (
	"net/http"
	"strings"

	"github.com/gosuda/parley/internal/domain"
)

// HeaderTenantID names the request header carrying the tenant identifier.
const HeaderTenantID = "X-Tenant-Id"

// ExplicitTenant returns the tenant named by the request itself. The header
// wins over the tenantId query parameter, which exists for EventSource
// clients that cannot set headers.
func ExplicitTenant(r *http.Request) (string, bool) {
	if v := strings.TrimSpace(r.Header.Get(HeaderTenantID)); v != "" {
		return v, true
	}
	if v := strings.TrimSpace(r.URL.Query().Get("tenantId")); v != "" {
		return v, true
	}
	return "", false
}

// ResolveTenant stores the request's tenant in the context. Requests that
// name no tenant belong to the default tenant.
func ResolveTenant() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := ExplicitTenant(r)
			ctx := WithTenantID(r.Context(), domain.NormalizeTenantID(raw))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
