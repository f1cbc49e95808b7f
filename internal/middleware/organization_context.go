package middleware

import (
	"context"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/yukikurage/dana-ai-api/internal/constants"
	apierrors "github.com/yukikurage/dana-ai-api/internal/errors"
	"github.com/yukikurage/dana-ai-api/internal/tenancy"
)

// OrganizationContextResolver resolves the organization a user acts in.
type OrganizationContextResolver interface {
	Resolve(ctx context.Context, userID uint64, hint string) (tenancy.RequestContext, error)
}

// RequireOrganizationContext resolves the request's organization from the
// X-Organization-ID header, or the session's current organization when the
// header is absent, and rejects the request unless the user holds an accepted
// membership in it. Must run after RequireAuth.
func RequireOrganizationContext(resolver OrganizationContextResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		hint := organizationHint(c)
		ctx := c.Request.Context()

		rc, err := resolver.Resolve(ctx, userID, hint)
		if err != nil {
			level := zerolog.WarnLevel
			if !apierrors.RespondWithKind(c, err) {
				apierrors.InternalError(c, "")
				level = zerolog.ErrorLevel
			}
			zerolog.Ctx(ctx).WithLevel(level).
				Err(err).
				Uint64("user_id", userID).
				Str("organization_hint", hint).
				Msg("organization context rejected")
			return
		}

		logger := zerolog.Ctx(ctx).With().
			Str("organization_id", rc.OrganizationID).
			Logger()
		ctx = logger.WithContext(tenancy.WithRequestContext(ctx, rc))

		c.Request = c.Request.WithContext(ctx)
		c.Set(constants.ContextKeyRequestContext, rc)
		c.Next()
	}
}

// RequireRole rejects requests whose resolved role is below min. Must run
// after RequireOrganizationContext.
func RequireRole(min tenancy.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		rc, ok := GetRequestContext(c)
		if !ok || !rc.Role.AtLeast(min) {
			apierrors.Forbidden(c)
			return
		}
		c.Next()
	}
}

// GetRequestContext returns the context resolved by RequireOrganizationContext.
func GetRequestContext(c *gin.Context) (tenancy.RequestContext, bool) {
	value, exists := c.Get(constants.ContextKeyRequestContext)
	if !exists {
		return tenancy.RequestContext{}, false
	}
	rc, ok := value.(tenancy.RequestContext)
	return rc, ok
}

func organizationHint(c *gin.Context) string {
	if hint := strings.TrimSpace(c.GetHeader(constants.HeaderOrganizationID)); hint != "" {
		return hint
	}
	if !hasSession(c) {
		return ""
	}
	if current, ok := sessions.Default(c).Get(constants.SessionKeyCurrentOrganization).(string); ok {
		return current
	}
	return ""
}
