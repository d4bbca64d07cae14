package routes

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"estatewatch/internal/access"
	"estatewatch/internal/auth"
)

// RequireRoute creates middleware that checks the session role against
// the route policy table. The check runs on every request so a role
// change is never served a stale decision.
func RequireRoute(route string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetRole(c)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		policy := c.MustGet("Policy").(*access.Policy)
		if !policy.Allowed(role, route) {
			slog.Warn("Route denied by policy",
				"role", role,
				"route", route)
			AbortWithError(c, ErrInsufficientPermissions)
			return
		}

		slog.Debug("Route permitted",
			"role", role,
			"route", route)

		c.Next()
	}
}

// RequireRole creates middleware that admits only the listed roles.
// Used for actions that have no route of their own, like the manual
// expiry sweep.
func RequireRole(roles ...auth.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, err := GetRole(c)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		slog.Warn("Role denied", "role", role)
		AbortWithError(c, ErrInsufficientPermissions)
	}
}
