package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"estatewatch/internal/access"
	"estatewatch/internal/auth"
	"estatewatch/internal/config"
	"estatewatch/internal/storage"
	"estatewatch/internal/visitor"
)

type createVisitorRequest struct {
	Name      string `json:"name" binding:"required"`
	Purpose   string `json:"purpose" binding:"required"`
	VisitDate string `json:"visitDate" binding:"required"`

	// Optional, administrative roles only: attribute the authorization
	// to a named resident instead of the session role.
	AuthorizedBy string `json:"authorizedBy"`
	// Optional: where to send the generated access code
	NotifyEmail string `json:"notifyEmail"`
}

type verifyRequest struct {
	AccessCode string `json:"accessCode" binding:"required"`
}

// parseVisitDate accepts the date-picker format (2006-01-02) or a full
// RFC3339 timestamp.
func parseVisitDate(s string) (time.Time, error) {
	if t, err := time.ParseInLocation("2006-01-02", s, time.Local); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized visit date %q", s)
	}
	return t, nil
}

func getEngine(c *gin.Context) *visitor.Engine {
	return c.MustGet("Engine").(*visitor.Engine)
}

func getStorage(c *gin.Context) storage.Provider {
	return c.MustGet("Storage").(storage.Provider)
}

func VisitorRoutes(r *gin.RouterGroup) {

	// Pre-authorize a new visitor
	r.POST("", RequireRoute(access.RoutePreAuthorize), func(c *gin.Context) {
		var req createVisitorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		visitDate, err := parseVisitDate(req.VisitDate)
		if err != nil {
			AbortWithError(c, NewHTTPError(http.StatusBadRequest, err, "Visit date must be YYYY-MM-DD", "INVALID_VISIT_DATE"))
			return
		}

		role, err := GetRole(c)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		// The authorizer identity comes from the session. Administrative
		// roles may attribute the record to a named resident.
		authorizedBy := role.String()
		if requested := strings.TrimSpace(req.AuthorizedBy); requested != "" {
			if !role.Administrative() {
				AbortWithError(c, NewHTTPError(http.StatusForbidden, ErrForbidden,
					"Only administrative roles may authorize on behalf of a resident", "AUTHORIZER_OVERRIDE_DENIED"))
				return
			}
			authorizedBy = requested
		}

		record, err := getEngine(c).Create(c.Request.Context(), visitor.CreateInput{
			Name:        req.Name,
			Purpose:     req.Purpose,
			VisitDate:   visitDate,
			NotifyEmail: req.NotifyEmail,
		}, authorizedBy)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusCreated, record)
	})

	// List visitor records, newest first. Optional status and
	// authorizedBy query filters.
	r.GET("", RequireRoute(access.RouteVisitorManagement), func(c *gin.Context) {
		records, err := getEngine(c).List(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}

		status := c.Query("status")
		authorizedBy := c.Query("authorizedBy")

		filtered := make([]visitor.Visitor, 0, len(records))
		for _, r := range records {
			if status != "" && string(r.Status) != status {
				continue
			}
			if authorizedBy != "" && r.AuthorizedBy != authorizedBy {
				continue
			}
			filtered = append(filtered, r)
		}

		c.JSON(http.StatusOK, gin.H{"visitors": filtered, "total": len(filtered)})
	})

	// Full record log for oversight roles
	r.GET("/logs", RequireRoute(access.RouteVisitorLogs), func(c *gin.Context) {
		records, err := getEngine(c).List(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"visitors": records, "total": len(records)})
	})

	// Verify an access code at the gate. Read-only: repeating the call
	// does not change anything.
	r.POST("/verify", RequireRoute(access.RouteCheckInOut), func(c *gin.Context) {
		var req verifyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}

		code := strings.ToUpper(strings.TrimSpace(req.AccessCode))
		record, err := getEngine(c).Verify(c.Request.Context(), code)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, record)
	})

	// Trigger the overdue sweep manually
	r.POST("/expire", RequireRole(auth.RoleEstateManager, auth.RoleAdmin, auth.RoleSuperAdmin), func(c *gin.Context) {
		expired, err := getEngine(c).ExpireOverdue(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"expired": expired})
	})

	r.GET("/:id", RequireRoute(access.RouteVisitorManagement), func(c *gin.Context) {
		record, err := getStorage(c).Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %v", visitor.ErrStorageUnavailable, err))
			return
		}
		if record == nil {
			AbortWithError(c, visitor.ErrNotFound)
			return
		}
		c.JSON(http.StatusOK, record)
	})

	// Revoke a pre-authorization. Revoking an already-removed record
	// succeeds quietly. The requester identity always comes from the
	// session, never from the request.
	r.DELETE("/:id", RequireRoute(access.RouteVisitorManagement), func(c *gin.Context) {
		role, err := GetRole(c)
		if err != nil {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		if err := getEngine(c).Revoke(c.Request.Context(), c.Param("id"), role.String(), role); err != nil {
			AbortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": "revoked"})
	})

	// Record arrival
	r.POST("/:id/checkin", RequireRoute(access.RouteCheckInOut), func(c *gin.Context) {
		record, err := getEngine(c).CheckIn(c.Request.Context(), c.Param("id"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		slog.Info("Visitor checked in", "id", record.ID, "name", record.Name)
		c.JSON(http.StatusOK, record)
	})

	// Record departure
	r.POST("/:id/checkout", RequireRoute(access.RouteCheckInOut), func(c *gin.Context) {
		record, err := getEngine(c).CheckOut(c.Request.Context(), c.Param("id"))
		if err != nil {
			AbortWithError(c, err)
			return
		}
		slog.Info("Visitor checked out", "id", record.ID, "name", record.Name)
		c.JSON(http.StatusOK, record)
	})

	// PNG QR code of the access code, for sharing with the visitor
	r.GET("/:id/qr", RequireRoute(access.RouteVisitorManagement), func(c *gin.Context) {
		record, err := getStorage(c).Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: %v", visitor.ErrStorageUnavailable, err))
			return
		}
		if record == nil {
			AbortWithError(c, visitor.ErrNotFound)
			return
		}

		png, err := qrcode.Encode(record.AccessCode, qrcode.Medium, config.QR_IMAGE_SIZE)
		if err != nil {
			slog.Error("Error generating access code QR", "id", record.ID, "error", err)
			AbortWithError(c, ErrInternalServer)
			return
		}

		c.Data(http.StatusOK, "image/png", png)
	})
}
