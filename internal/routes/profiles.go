package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"estatewatch/internal/access"
	"estatewatch/internal/auth"
	"estatewatch/internal/storage"
)

type upsertProfileRequest struct {
	Email string `json:"email" binding:"required"`
	Role  string `json:"role" binding:"required"`
}

// ProfileRoutes exposes the estate resident directory.
func ProfileRoutes(r *gin.RouterGroup) {

	r.GET("", RequireRoute(access.RouteManageResidents), func(c *gin.Context) {
		profiles, err := getStorage(c).ListProfiles(c.Request.Context())
		if err != nil {
			AbortWithError(c, ErrDatabaseError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"profiles": profiles, "total": len(profiles)})
	})

	r.POST("", RequireRoute(access.RouteManageResidents), func(c *gin.Context) {
		var req upsertProfileRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		if err := access.ValidEmail(req.Email); err != nil {
			AbortWithError(c, NewHTTPError(http.StatusBadRequest, err, "Invalid e-mail address", "INVALID_EMAIL"))
			return
		}
		role, err := auth.ParseRole(req.Role)
		if err != nil {
			AbortWithError(c, ErrUnknownRole)
			return
		}

		if err := getStorage(c).UpsertProfile(c.Request.Context(), storage.Profile{
			Email: req.Email,
			Role:  string(role),
		}); err != nil {
			AbortWithError(c, ErrDatabaseError)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "saved"})
	})
}

// NavigationRoute returns the guarded routes the session role may use,
// for building the role-filtered sidebar.
func NavigationRoute(r *gin.RouterGroup) {
	r.GET("/navigation", func(c *gin.Context) {
		role, err := GetRole(c)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		policy := c.MustGet("Policy").(*access.Policy)
		c.JSON(http.StatusOK, gin.H{
			"role":   role,
			"routes": policy.Routes(role),
		})
	})
}
