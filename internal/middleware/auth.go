package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/barber-loyalty/internal/auth"
	"github.com/BruksfildServices01/barber-loyalty/internal/httperr"
	"github.com/BruksfildServices01/barber-loyalty/internal/models"
)

const (
	ContextUserID   = "userID"
	ContextUserRole = "userRole"
)

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(tokens *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, code := bearer(c)
		if code != "" {
			httperr.Abort(c, http.StatusUnauthorized, code, "Authentication required.")
			return
		}

		claims, err := tokens.Parse(raw)
		if err != nil {
			httperr.Abort(c, http.StatusUnauthorized, "invalid_token", "Invalid or expired token.")
			return
		}

		setClaims(c, claims)
		c.Next()
	}
}

// OptionalAuth identifies the caller when a valid token is present and
// lets anonymous requests through. A bad token is still rejected.
func OptionalAuth(tokens *auth.Issuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" && c.Query("access_token") == "" {
			c.Next()
			return
		}
		AuthMiddleware(tokens)(c)
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextUserRole) != role {
			httperr.Abort(c, http.StatusForbidden, "forbidden", "Not allowed.")
			return
		}
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}

// bearer reads the token from the Authorization header, or from the
// access_token (or token) query parameter for EventSource clients that
// cannot set headers.
func bearer(c *gin.Context) (string, string) {
	header := c.GetHeader("Authorization")
	if header == "" {
		for _, key := range []string{"access_token", "token"} {
			if q := c.Query(key); q != "" {
				return q, ""
			}
		}
		return "", "missing_authorization_header"
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", "invalid_authorization_header"
	}
	return strings.TrimSpace(parts[1]), ""
}

func setClaims(c *gin.Context, claims auth.Claims) {
	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUserRole, claims.Role)
}

// UserID returns the authenticated caller, if any.
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
