package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/dana-ai-api/internal/config"
	"github.com/yukikurage/dana-ai-api/internal/metrics"
	"github.com/yukikurage/dana-ai-api/internal/models"
	"github.com/yukikurage/dana-ai-api/internal/tenancy"
)

const maxOrganizationHintLength = 64

var (
	ErrMalformedOrganizationHint = fmt.Errorf("%w: malformed organization id", tenancy.ErrValidation)
	ErrOrganizationHintRequired  = fmt.Errorf("%w: organization id is required", tenancy.ErrValidation)
	ErrNoPrincipal               = fmt.Errorf("%w: no authenticated user", tenancy.ErrAuthentication)
)

// MembershipDirectory answers the membership queries the resolver needs.
type MembershipDirectory interface {
	AcceptedMembership(ctx context.Context, userID uint64, orgID string) (*models.OrganizationMember, error)
	DefaultMembership(ctx context.Context, userID uint64) (*models.OrganizationMember, error)
}

// ContextResolver turns an authenticated user and an untrusted organization
// hint into a RequestContext. The hint is only ever a claim: every request is
// checked against the membership table.
type ContextResolver struct {
	directory     MembershipDirectory
	defaultPolicy string
	metrics       *metrics.Metrics
}

// NewContextResolver creates a ContextResolver. defaultPolicy decides what
// happens when a request carries no hint: config.DefaultOrgFirst picks the
// user's earliest accepted membership, config.DefaultOrgNone rejects the
// request with a validation error.
func NewContextResolver(directory MembershipDirectory, defaultPolicy string, m *metrics.Metrics) *ContextResolver {
	if defaultPolicy != config.DefaultOrgNone {
		defaultPolicy = config.DefaultOrgFirst
	}
	return &ContextResolver{
		directory:     directory,
		defaultPolicy: defaultPolicy,
		metrics:       m,
	}
}

// Resolve returns the request context for userID acting in the organization
// named by hint.
func (r *ContextResolver) Resolve(ctx context.Context, userID uint64, hint string) (tenancy.RequestContext, error) {
	rc, err := r.resolve(ctx, userID, hint)
	r.metrics.Resolution(resolutionOutcome(err))
	return rc, err
}

func (r *ContextResolver) resolve(ctx context.Context, userID uint64, hint string) (tenancy.RequestContext, error) {
	if userID == 0 {
		return tenancy.RequestContext{}, ErrNoPrincipal
	}

	hint = strings.TrimSpace(hint)

	var (
		member *models.OrganizationMember
		err    error
	)
	if hint == "" {
		if r.defaultPolicy == config.DefaultOrgNone {
			return tenancy.RequestContext{}, ErrOrganizationHintRequired
		}
		member, err = r.directory.DefaultMembership(ctx, userID)
	} else {
		if !validOrganizationHint(hint) {
			return tenancy.RequestContext{}, ErrMalformedOrganizationHint
		}
		member, err = r.directory.AcceptedMembership(ctx, userID, hint)
	}
	if err != nil {
		return tenancy.RequestContext{}, err
	}

	// Membership is re-checked here rather than trusted from the directory.
	if !member.IsAccepted() || member.UserID != userID || member.OrganizationID == "" {
		return tenancy.RequestContext{}, ErrNotOrganizationMember
	}

	return tenancy.RequestContext{
		UserID:         userID,
		OrganizationID: member.OrganizationID,
		Role:           member.Role,
	}, nil
}

// validOrganizationHint accepts ids made of letters, digits, '-' and '_'.
func validOrganizationHint(hint string) bool {
	if len(hint) > maxOrganizationHintLength {
		return false
	}
	for _, c := range hint {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

func resolutionOutcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeAllowed
	case errors.Is(err, ErrNoOrganization):
		return metrics.OutcomeNoTenant
	case errors.Is(err, tenancy.ErrAuthorization), errors.Is(err, tenancy.ErrAuthentication):
		return metrics.OutcomeDenied
	case errors.Is(err, tenancy.ErrValidation):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
