package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/dana-ai-api/internal/constants"
	apierrors "github.com/yukikurage/dana-ai-api/internal/errors"
	"github.com/yukikurage/dana-ai-api/internal/utils"
)

// RequireAuth establishes the acting user from a bearer token or, failing
// that, from the session.
func RequireAuth(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			tokenString, ok := strings.CutPrefix(header, constants.BearerPrefix)
			if !ok {
				apierrors.Unauthorized(c, "Invalid authorization header format")
				return
			}
			userID, err := utils.ParseToken(tokenString, jwtSecret)
			if err != nil {
				apierrors.Unauthorized(c, "Invalid token")
				return
			}
			c.Set(constants.ContextKeyUserID, userID)
			c.Next()
			return
		}

		if !hasSession(c) {
			apierrors.Unauthorized(c, "")
			return
		}

		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)
		if userID == nil {
			apierrors.Unauthorized(c, "")
			return
		}

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, v != 0
	case uint:
		return uint64(v), v != 0
	case int:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	case int64:
		if v <= 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

// hasSession reports whether the sessions middleware runs on this route.
func hasSession(c *gin.Context) bool {
	_, ok := c.Get(sessions.DefaultKey)
	return ok
}
