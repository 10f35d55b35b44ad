package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fanvault/user-service/internal/service"
	"github.com/fanvault/user-service/pkg/response"
)

// Context keys set by the auth checkpoint.
const (
	UserIDKey      = "user_id"
	UsernameKey    = "username"
	RoleKey        = "role"
	PermissionsKey = "permissions"
	SessionIDKey   = "session_id"
)

// Auth validates the bearer token on every request whose path is not in
// the public allowlist. Paths match by prefix. Valid claims are placed
// in the gin context for downstream handlers.
func Auth(auth service.AuthService, publicPaths []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isPublicPath(c.Request.URL.Path, publicPaths) {
			c.Next()
			return
		}

		tokenString := ExtractBearerToken(c)
		if tokenString == "" {
			response.Unauthorized(c, "Missing or malformed Authorization header")
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(c.Request.Context(), tokenString)
		if err != nil {
			response.Unauthorized(c, "Invalid or expired token")
			c.Abort()
			return
		}

		c.Set(UserIDKey, claims.Subject)
		c.Set(UsernameKey, claims.Username)
		c.Set(RoleKey, claims.Role)
		c.Set(PermissionsKey, claims.Permissions)
		c.Set(SessionIDKey, claims.SessionID)

		c.Next()
	}
}

// RequireRole refuses requests whose token does not carry the role.
// Must run after Auth.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(RoleKey) != role {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Insufficient role", "")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequirePermission refuses requests whose token does not carry the
// permission. Must run after Auth.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if perms, ok := c.Get(PermissionsKey); ok {
			if list, ok := perms.([]string); ok {
				for _, p := range list {
					if p == permission {
						c.Next()
						return
					}
				}
			}
		}
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Insufficient permissions", "")
		c.Abort()
	}
}

func isPublicPath(path string, publicPaths []string) bool {
	for _, prefix := range publicPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// ExtractBearerToken pulls the token out of the Authorization header.
// Returns "" when the header is absent or not a Bearer scheme.
func ExtractBearerToken(c *gin.Context) string {
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
