package utils

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// GetBaseURL returns the configured base URL, or derives one from the
// request scheme and host when none is configured.
func GetBaseURL(c *gin.Context, configBaseURL string) string {
	if configBaseURL != "" {
		return configBaseURL
	}

	scheme := "http"
	if c.Request.TLS != nil || c.GetHeader("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s", scheme, c.Request.Host)
}
