package tenancy

import "errors"

// Error kinds shared by the resolver, the guard and the services built on them.
var (
	ErrValidation     = errors.New("validation error")
	ErrAuthentication = errors.New("authentication error")
	ErrAuthorization  = errors.New("authorization error")
	ErrNotFound       = errors.New("not found")

	// ErrMissingOrganizationContext means a write reached the data layer
	// without a resolved organization. It is a programming error.
	ErrMissingOrganizationContext = errors.New("organization context is required")
)
