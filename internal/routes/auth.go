// Session middleware and login routes.
// A session is a signed JWT carrying the selected role, stored in a
// cookie. The jti claim doubles as a nonce so logout actually revokes
// the token instead of waiting for expiry.
package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"estatewatch/internal/auth"
	. "estatewatch/internal/config"
	"estatewatch/internal/jwt"
)

const AUTH_COOKIE_NAME = "estatewatch_session"

const AUTH_FAIL_STATUS = http.StatusUnauthorized // HTTP status code for authentication failure

var (
	ErrRoleNotFound = errors.New("role not found in context")
	ErrRoleNotValid = errors.New("role in context is not valid")
)

// Get session TTL in seconds
func sessionTTL() uint {
	// Convert hours to seconds
	return Cfg.SessionTTL * 60 * 60
}

// Set session cookie
// The cookie is set to expire when the token expires
func setSessionCookie(c *gin.Context, token string) {
	ttl := sessionTTL()
	secure := c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https"

	c.SetCookie(
		AUTH_COOKIE_NAME,
		token,
		int(ttl),
		"/",
		"",
		secure,
		true,
	)
}

// GetRole returns the authenticated role stored in the request context
// by SessionMiddleware.
func GetRole(c *gin.Context) (auth.Role, error) {
	r, exists := c.Get("role")
	if !exists {
		return "", ErrRoleNotFound
	}
	role, ok := r.(auth.Role)
	if !ok || !role.Valid() {
		slog.Warn("GetRole: Role in context is not valid")
		return "", ErrRoleNotValid
	}
	return role, nil
}

// SessionRole decodes the session cookie directly. For page handlers
// that sit outside SessionMiddleware and redirect instead of failing.
func SessionRole(c *gin.Context) (auth.Role, error) {
	claims, err := verifySession(c)
	if err != nil {
		return "", err
	}
	return claims.GetRole()
}

// NewSession issues a signed session token for role and sets the cookie.
func NewSession(c *gin.Context, role auth.Role) error {
	claim := jwt.NewSessionClaim(role)
	token, err := jwt.GenerateJWT(&claim)
	if err != nil {
		return err
	}
	setSessionCookie(c, token)
	return nil
}

func verifySession(c *gin.Context) (*jwt.SessionClaim, error) {
	token, err := c.Cookie(AUTH_COOKIE_NAME)
	if err != nil {
		return nil, err
	}
	claims, err := jwt.DecodeSessionJWT(token)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

func renewSession(c *gin.Context, role auth.Role, forceRenew bool) error {
	claims, err := verifySession(c)
	if err == nil {
		// Log odd behavior, where the role in the token does not match the
		// expected role
		tokenRole, roleErr := claims.GetRole()
		if roleErr != nil || tokenRole != role {
			slog.Warn("renewSession: Role mismatch in token", "tokenRole", claims.Role, "expectedRole", role)
			return nil
		}

		renewAge := time.Duration(sessionTTL()/2) * time.Second
		if forceRenew || time.Until(claims.ExpiresAt.Time) < renewAge {
			slog.Debug("Renewing session token", "role", role)

			// Invalidate old token by consuming its nonce
			jwt.RevokeSession(claims)

			forceRenew = true
		}
	} else if !forceRenew {
		slog.Warn("renewSession: No existing session token found", "error", err)
		c.AbortWithError(AUTH_FAIL_STATUS, err)
	}

	if !forceRenew {
		// Early stop: No need to renew
		slog.Debug("renewSession: No need to renew session token", "role", role)
		return nil
	}

	return NewSession(c, role)
}

func SessionLogout(c *gin.Context) {
	// Consume the nonce to invalidate the token
	token, err := c.Cookie(AUTH_COOKIE_NAME)
	if err != nil {
		slog.Warn("SessionLogout: No session token found to consume nonce", "error", err)
	} else {
		claims, err := jwt.DecodeSessionJWT(token)
		if err == nil {
			jwt.RevokeSession(claims)
		}
	}

	// Clear session cookie by setting it to expire in the past
	c.SetCookie(
		AUTH_COOKIE_NAME,
		"",
		-1,
		"/",
		"",
		false,
		true,
	)
}

// SessionMiddleware requires a valid session token and sets the role in
// the request context.
func SessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := verifySession(c)
		if err != nil {
			slog.Warn("SessionMiddleware: Invalid or missing session token", "error", err)
			AbortWithError(c, ErrUnauthorized)
			return
		}
		role, err := claims.GetRole()
		if err != nil {
			slog.Warn("SessionMiddleware: Session token carries an unknown role", "error", err)
			AbortWithError(c, ErrUnauthorized)
			return
		}

		c.Set("role", role)
		c.Next()
	}
}

type loginRequest struct {
	Role     string `json:"role" binding:"required"`
	Passcode string `json:"passcode"`
}

func AuthRoutes(r *gin.RouterGroup) {
	// Role login. The deployment decides how much to trust role selection:
	// with no passcodes configured any known role logs straight in
	// (kiosk-style, single shared terminal), otherwise the per-role
	// passcode must match.
	r.POST("/login", func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		role, err := auth.ParseRole(req.Role)
		if err != nil {
			AbortWithError(c, ErrUnknownRole)
			return
		}

		ok, err := auth.CheckPasscode(Cfg.Passcodes, role, req.Passcode)
		if err != nil {
			slog.Error("Passcode verification failed", "role", role, "error", err)
			AbortWithError(c, ErrInternalServer)
			return
		}
		if !ok {
			AbortWithError(c, ErrInvalidCredentials)
			return
		}

		if err := NewSession(c, role); err != nil {
			slog.Error("Failed to issue session token", "role", role, "error", err)
			AbortWithError(c, ErrInternalServer)
			return
		}

		slog.Info("Role logged in", "role", role)
		c.JSON(http.StatusOK, gin.H{"status": "authenticated", "role": role})
	})

	// Route to renew the session token
	r.GET("/renew", SessionMiddleware(), func(c *gin.Context) {
		role, err := GetRole(c)
		if err != nil {
			slog.Warn("AuthRoutes: Role not found in context", "error", err)
			c.AbortWithStatus(AUTH_FAIL_STATUS)
			return
		}

		if err := renewSession(c, role, true); err != nil {
			slog.Error("AuthRoutes: Failed to renew session token", "error", err)
			c.AbortWithStatus(500)
			return
		}
		c.Status(200)
	})

	// Route to check authentication status
	r.GET("/status", SessionMiddleware(), func(c *gin.Context) {
		role, _ := GetRole(c)
		c.JSON(200, gin.H{"status": "authenticated", "role": role})
	})

	r.POST("/logout", func(c *gin.Context) {
		SessionLogout(c)
		c.JSON(200, gin.H{"status": "logged out"})
	})
}
