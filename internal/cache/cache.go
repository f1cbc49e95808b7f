package cache

import (
	"context"
	"fmt"
	"strings"
)

// Cache is a shared key/value accelerator for tenant-scoped reads. It is never
// a system of record: callers must treat every miss or error as a reason to
// read from the database. Keys are built with tenancy.NamespacedCacheKey.
type Cache interface {
	// Get decodes the value stored under key into dest and reports whether it
	// was found. An entry that cannot be decoded is evicted.
	Get(ctx context.Context, key string, dest any) (bool, error)

	// Set stores value under key.
	Set(ctx context.Context, key string, value any) error

	// Delete removes key.
	Delete(ctx context.Context, key string) error

	// DeleteOrganization removes every user's entry for baseKey within one organization.
	DeleteOrganization(ctx context.Context, baseKey, organizationID string) error
}

// organizationKeyMatches reports whether key was built for baseKey and organizationID.
func organizationKeyMatches(key, baseKey, organizationID string) bool {
	rest, ok := strings.CutPrefix(key, baseKey+":")
	if !ok {
		return false
	}
	userPart, orgPart, ok := strings.Cut(rest, ":")
	if !ok || userPart == "" {
		return false
	}
	for _, r := range userPart {
		if r < '0' || r > '9' {
			return false
		}
	}
	return orgPart == organizationID
}

// Noop never stores anything.
type Noop struct{}

var _ Cache = Noop{}

func (Noop) Get(context.Context, string, any) (bool, error)           { return false, nil }
func (Noop) Set(context.Context, string, any) error                   { return nil }
func (Noop) Delete(context.Context, string) error                     { return nil }
func (Noop) DeleteOrganization(context.Context, string, string) error { return nil }

func errDecode(key string, err error) error {
	return fmt.Errorf("cache: failed to decode %s: %w", key, err)
}
