package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	apierrors "github.com/yukikurage/dana-ai-api/internal/errors"
	"github.com/yukikurage/dana-ai-api/internal/middleware"
	"github.com/yukikurage/dana-ai-api/internal/services"
	"github.com/yukikurage/dana-ai-api/internal/tenancy"
)

// requestContext returns the resolved organization context, answering 500
// when the route was wired without RequireOrganizationContext.
func requestContext(c *gin.Context) (tenancy.RequestContext, bool) {
	rc, ok := middleware.GetRequestContext(c)
	if !ok {
		apierrors.InternalError(c, "Organization context missing")
		return tenancy.RequestContext{}, false
	}
	return rc, true
}

func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// respondServiceError maps service errors onto API errors.
func respondServiceError(c *gin.Context, err error) {
	if apierrors.RespondWithKind(c, err) {
		return
	}

	switch {
	case errors.Is(err, services.ErrAlreadyOrganizationMember),
		errors.Is(err, services.ErrUsernameTaken):
		apierrors.Conflict(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("request failed")
		apierrors.InternalError(c, "")
	}
}
