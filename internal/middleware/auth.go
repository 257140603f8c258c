package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ufoundit-dev/ufoundit/internal/auth"
	"github.com/ufoundit-dev/ufoundit/internal/models"
	apperrors "github.com/ufoundit-dev/ufoundit/pkg/errors"
	"github.com/ufoundit-dev/ufoundit/pkg/response"
)

// Context keys populated by the auth middleware.
const (
	CtxUserIDKey   = "auth.user_id"
	CtxUserNameKey = "auth.user_name"
	CtxRoleKey     = "auth.role"
)

// RequireAuth validates the bearer token and stores the caller's identity on
// the request context. Websocket clients may pass the token as a query
// parameter since browsers cannot set headers on upgrade requests.
func RequireAuth(jwt *auth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxUserIDKey, claims.UserID)
		c.Set(CtxUserNameKey, claims.FullName)
		c.Set(CtxRoleKey, claims.Role)
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. Must run after
// RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(CtxRoleKey) != models.RoleAdmin {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
