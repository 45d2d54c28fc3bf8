package domain

import "strings"

// DefaultTenantID is used for requests that do not name a tenant.
const DefaultTenantID = "default"

// NormalizeTenantID trims raw and falls back to DefaultTenantID when empty.
func NormalizeTenantID(raw string) string {
	id := strings.TrimSpace(raw)
	if id == "" {
		return DefaultTenantID
	}
	return id
}
