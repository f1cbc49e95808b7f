package tenancy

// Scope is the tenant binding of a stored record. A record is either
// unscoped (legacy rows written before organizations existed) or scoped
// to exactly one organization.
type Scope struct {
	organizationID string
	scoped         bool
}

// Unscoped returns the scope of a record without an organization.
func Unscoped() Scope {
	return Scope{}
}

// ScopedTo returns the scope of a record owned by organizationID.
// An empty id yields Unscoped.
func ScopedTo(organizationID string) Scope {
	if organizationID == "" {
		return Unscoped()
	}
	return Scope{organizationID: organizationID, scoped: true}
}

// ScopeOf converts a nullable organization_id column into a Scope.
func ScopeOf(organizationID *string) Scope {
	if organizationID == nil {
		return Unscoped()
	}
	return ScopedTo(*organizationID)
}

// IsScoped reports whether the record belongs to an organization.
func (s Scope) IsScoped() bool {
	return s.scoped
}

// OrganizationID returns the owning organization, or "" when unscoped.
func (s Scope) OrganizationID() string {
	return s.organizationID
}

// Allows reports whether a request resolved to organizationID may see the record.
// Unscoped records are visible to every resolved organization; nothing is
// visible without one.
func (s Scope) Allows(organizationID string) bool {
	if organizationID == "" {
		return false
	}
	return !s.scoped || s.organizationID == organizationID
}

func (s Scope) String() string {
	if !s.scoped {
		return "unscoped"
	}
	return "scoped:" + s.organizationID
}

// Scoped is implemented by every tenant-scoped record.
type Scoped interface {
	TenantScope() Scope
}

// Stampable is implemented by records that can be bound to an organization.
// WithOrganizationID must return a shallow copy and leave the receiver untouched.
type Stampable[T any] interface {
	WithOrganizationID(organizationID string) T
}
