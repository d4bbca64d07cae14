package app

import (
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"

	"estatewatch/internal/access"
	. "estatewatch/internal/config"
	routes "estatewatch/internal/routes"
	"estatewatch/internal/utils"
	"estatewatch/internal/visitor"
)

func securityHeaders(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("X-XSS-Protection", "1; mode=block")

	// Disable caching: visitor statuses and permissions must never be
	// served stale
	c.Header("Cache-Control", "no-store, no-cache, must-revalidate, proxy-revalidate")
	c.Header("Pragma", "no-cache")
	c.Header("Expires", "0")
	c.Next()
}

// Middleware to check if the IP is allowed.
func IPAccessControl(allowedCIDRs []string) gin.HandlerFunc {
	// Parse allowed CIDRs
	var parsedCIDRs []*net.IPNet

	// Allow local networks in debug mode
	if os.Getenv("GIN_MODE") != "release" {
		localhostCIDRs := []string{"127.0.0.1/8", "::1/128"}
		allowedCIDRs = append(allowedCIDRs, localhostCIDRs...)
	}

	for _, cidr := range allowedCIDRs {
		_, net, err := net.ParseCIDR(cidr)
		if err != nil {
			slog.Warn("Invalid CIDR", "cidr", cidr)
			continue
		}
		slog.Debug("Allowed CIDR", "cidr", cidr)
		parsedCIDRs = append(parsedCIDRs, net)
	}

	return func(c *gin.Context) {
		clientIP := net.ParseIP(c.ClientIP())
		if clientIP == nil {
			// Should not happen
			slog.Warn("Invalid client IP", "ip", c.ClientIP())
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			return
		}

		for _, cidr := range parsedCIDRs {
			if cidr.Contains(clientIP) {
				c.Next()
				return
			}
		}
		slog.Warn("IP not allowed", "ip", clientIP)
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	}
}

// Each page template is composed with the shared layout.
func createRenderer() multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	layout := "web/templates/layout.html.tmpl"
	for _, page := range []string{"login", "dashboard", "error"} {
		name := page + ".html.tmpl"
		r.AddFromFiles(name, layout, "web/templates/"+name)
	}
	return r
}

func HTTPServer() *gin.Engine {
	r := gin.Default()

	r.Static("/assets/", "./web/assets/")
	r.HTMLRender = createRenderer()

	if Cfg.AllowedNetworks != "" {
		slog.Debug("Enabling IP access control", "allowed_networks", Cfg.AllowedNetworks)
		var allowedCIDRs []string

		for cidr := range strings.SplitSeq(Cfg.AllowedNetworks, ",") {
			// Remove spaces and ignore empty sets
			if cidr := strings.TrimSpace(cidr); cidr != "" {
				allowedCIDRs = append(allowedCIDRs, cidr)
			}
		}

		r.Use(IPAccessControl(allowedCIDRs))
	}
	r.Use(securityHeaders)

	r.Use(func(c *gin.Context) {
		c.Set("BaseURL", utils.GetBaseURL(c, Cfg.BaseURL))
		c.Next()
	})

	r.Use(routes.ErrorHandler())

	r.GET("/config.json", func(c *gin.Context) {
		// Provide an initial config for the dashboard client
		var clientCfg = gin.H{
			"SessionTTL":        Cfg.SessionTTL,
			"SupportURL":        Cfg.SupportURL,
			"AccessCodePattern": visitor.CodePattern.String(),
		}

		c.JSON(http.StatusOK, clientCfg)
	})

	return r
}

// RegisterRoutes attaches the page and API route groups. Expects the
// Engine, Storage and Policy context middleware to be installed.
func RegisterRoutes(r *gin.Engine) {

	r.GET("/", func(c *gin.Context) {
		c.Redirect(http.StatusFound, "/dashboard")
	})

	r.GET("/login", func(c *gin.Context) {
		routes.HTML(c, http.StatusOK, "login.html.tmpl", gin.H{
			"SupportURL": Cfg.SupportURL,
		})
	})

	r.GET("/dashboard", func(c *gin.Context) {
		role, err := routes.SessionRole(c)
		if err != nil {
			c.Redirect(http.StatusFound, "/login")
			return
		}

		policy := c.MustGet("Policy").(*access.Policy)
		routes.HTML(c, http.StatusOK, "dashboard.html.tmpl", gin.H{
			"Role":   role.String(),
			"Routes": policy.Routes(role),
		})
	})

	rg := r.Group("/")
	routes.Health(rg)

	// Authentication routes
	auth_rg := r.Group("/auth")
	routes.AuthRoutes(auth_rg)

	// JSON API, session required
	api_rg := r.Group("/api", routes.SessionMiddleware())
	routes.NavigationRoute(api_rg)

	visitors_rg := api_rg.Group("/visitors")
	routes.VisitorRoutes(visitors_rg)

	profiles_rg := api_rg.Group("/profiles")
	routes.ProfileRoutes(profiles_rg)
}
