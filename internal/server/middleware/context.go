package middleware

import (
	"context"
)

type contextKey string

const ContextKeyTenantID contextKey = "tenant_id"

// WithTenantID returns a copy of ctx carrying the resolved tenant.
func WithTenantID(ctx context.Context, tenantID string) context.Context {
	return context.WithValue(ctx, ContextKeyTenantID, tenantID)
}

func TenantIDFromContext(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(ContextKeyTenantID).(string)
	return v, ok
}
