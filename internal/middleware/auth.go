package middleware

import (
	"context"
	"net/http"
	"strings"

	"backend/internal/auth"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
)

const identityKey = "identity"

// SessionResolver resolves a presented access token into an Identity.
type SessionResolver interface {
	Resolve(ctx context.Context, accessToken string) (auth.Identity, error)
}

// RequireAuth validates the bearer token through the session resolver and
// stores the resolved Identity in the request context. Every protected
// route sits behind this single gate.
func RequireAuth(resolver SessionResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return
		}

		identity, err := resolver.Resolve(c.Request.Context(), parts[1])
		if err != nil {
			// An unreachable user store must surface as a 5xx, not as a
			// rejected token.
			c.AbortWithStatusJSON(response.FromError(err))
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireAdmin aborts with 403 unless the resolved identity is an admin.
// Must be chained after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := GetIdentity(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Identity not resolved"))
			return
		}
		if !identity.IsAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Access denied: admin only"))
			return
		}
		c.Next()
	}
}

// GetIdentity returns the Identity stored by RequireAuth.
func GetIdentity(c *gin.Context) (auth.Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return auth.Identity{}, false
	}
	identity, ok := value.(auth.Identity)
	return identity, ok
}
