package middleware

import (
	"log"
	"net/http"
	"net/url"

	"github.com/aman-churiwal/storefront-gateway/internal/identity"
	"github.com/aman-churiwal/storefront-gateway/internal/models"
	"github.com/aman-churiwal/storefront-gateway/internal/routes"
	"github.com/gin-gonic/gin"
)

// Authorize is the final gate stage. Public paths pass untouched; everything
// else needs a session, and privileged paths need the staff flag on top. A
// failed role lookup denies: it must never silently grant admin access.
func Authorize(table *routes.Table, provider identity.Provider, loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		class := table.Classify(path)

		if class == routes.ClassPublic {
			applySecurityHeaders(c)
			c.Next()
			return
		}

		sess := SessionFrom(c)
		if sess == nil {
			redirectToLogin(c, loginPath)
			return
		}

		if class == routes.ClassPrivileged {
			role, err := provider.GetRole(c.Request.Context(), sess.UserID)
			if err != nil {
				log.Printf("[%s] role lookup failed, denying: %v", c.GetString("request_id"), err)
				c.Set("gate_outcome", models.OutcomeError)
				c.JSON(http.StatusInternalServerError, gin.H{
					"error": "Internal Server Error",
				})
				c.Abort()
				return
			}

			if !role.IsStaff {
				c.Set("gate_outcome", models.OutcomeForbidden)
				c.JSON(http.StatusForbidden, gin.H{
					"error": "Staff access required",
				})
				c.Abort()
				return
			}
		}

		applySecurityHeaders(c)
		c.Next()
	}
}

func redirectToLogin(c *gin.Context, loginPath string) {
	target := c.Request.URL.Path
	if query := c.Request.URL.RawQuery; query != "" {
		target += "?" + query
	}

	c.Set("gate_outcome", models.OutcomeRedirected)
	c.Redirect(http.StatusFound, loginPath+"?returnTo="+url.QueryEscape(target))
	c.Abort()
}

// Fixed security headers attached to every non-denied response.
func applySecurityHeaders(c *gin.Context) {
	c.Header("X-Frame-Options", "DENY")
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Header("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
	c.Header("Strict-Transport-Security", "max-age=63072000; includeSubDomains")
}
