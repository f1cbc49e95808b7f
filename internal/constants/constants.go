package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID         = "user_id"
	ContextKeyRequestContext = "request_context"

	SessionCookieName             = "dana_session"
	SessionKeyCurrentOrganization = "current_organization_id"
)

// HeaderOrganizationID carries the client's organization selection.
const HeaderOrganizationID = "X-Organization-ID"

// Auth
const (
	MinPasswordLength = 8
	BearerPrefix      = "Bearer "
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Cache base keys for tenant-scoped lists
const (
	CacheKeyPlatforms     = "platforms"
	CacheKeyConversations = "conversations"
	CacheKeyKnowledgeBase = "knowledge_base"
)

// DefaultInviteTTL is used when no invite TTL is configured.
const DefaultInviteTTL = 7 * 24 * time.Hour
