package middleware

import (
	"net/http"
	"strings"

	"github.com/aman-churiwal/storefront-gateway/internal/models"
	"github.com/gin-gonic/gin"
)

// OriginGuard is the second gate stage: a CSRF check on mutating API
// requests. The declared Origin must contain the serving host. GET and
// HEAD pass through, as does anything outside the API prefix.
func OriginGuard(apiPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !strings.HasPrefix(c.Request.URL.Path, apiPrefix) {
			c.Next()
			return
		}

		method := c.Request.Method
		if method == http.MethodGet || method == http.MethodHead {
			c.Next()
			return
		}

		origin := c.GetHeader("Origin")
		host := c.Request.Host

		if origin == "" || host == "" || !strings.Contains(origin, host) {
			c.Set("gate_outcome", models.OutcomeBadOrigin)
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Origin check failed",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
