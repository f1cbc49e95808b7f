package tenancy

import "fmt"

// FilterByOrganization returns the items visible to organizationID, preserving
// their order. The input slice is never modified. An empty organizationID
// yields an empty result.
func FilterByOrganization[T Scoped](items []T, organizationID string) []T {
	out := make([]T, 0, len(items))
	if organizationID == "" {
		return out
	}
	for _, item := range items {
		if item.TenantScope().Allows(organizationID) {
			out = append(out, item)
		}
	}
	return out
}

// AccessAllowed is the single-item form of FilterByOrganization.
func AccessAllowed(item Scoped, organizationID string) bool {
	if item == nil {
		return false
	}
	return item.TenantScope().Allows(organizationID)
}

// EnsureOrganizationContext returns a copy of data owned by organizationID,
// overwriting whatever organization the caller supplied.
func EnsureOrganizationContext[T Stampable[T]](data T, organizationID string) (T, error) {
	if organizationID == "" {
		var zero T
		return zero, ErrMissingOrganizationContext
	}
	return data.WithOrganizationID(organizationID), nil
}

// NamespacedCacheKey builds a cache key that is unique per user and organization.
// User ids are numeric, so the user segment never contains the separator and
// the organization segment is always the remainder of the key.
func NamespacedCacheKey(baseKey string, userID uint64, organizationID string) string {
	return fmt.Sprintf("%s:%d:%s", baseKey, userID, organizationID)
}

// OrganizationCachePattern matches every user's key for baseKey within one
// organization. It is a glob in the syntax understood by Redis SCAN MATCH.
func OrganizationCachePattern(baseKey, organizationID string) string {
	return baseKey + ":*:" + organizationID
}

// MutationAllowed reports whether organizationID may change or delete item.
// Unlike reads, legacy unscoped records are shared by every organization and
// are therefore read-only.
func MutationAllowed(item Scoped, organizationID string) bool {
	if item == nil || organizationID == "" {
		return false
	}
	scope := item.TenantScope()
	return scope.IsScoped() && scope.OrganizationID() == organizationID
}
