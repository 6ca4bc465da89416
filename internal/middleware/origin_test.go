package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func originRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(OriginGuard("/api"))
	router.Any("/api/orders", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	router.Any("/Order", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return router
}

func TestOriginGuard(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		origin     string
		wantStatus int
	}{
		{"read methods skip the check", http.MethodGet, "/api/orders", "", http.StatusOK},
		{"head skips the check", http.MethodHead, "/api/orders", "", http.StatusOK},
		{"matching origin allowed", http.MethodPost, "/api/orders", "https://shop.example.com", http.StatusOK},
		{"origin containing host allowed", http.MethodPost, "/api/orders", "https://shop.example.com:443", http.StatusOK},
		{"missing origin denied", http.MethodPost, "/api/orders", "", http.StatusForbidden},
		{"foreign origin denied", http.MethodPost, "/api/orders", "https://evil.example.net", http.StatusForbidden},
		{"delete with foreign origin denied", http.MethodDelete, "/api/orders", "https://evil.example.net", http.StatusForbidden},
		{"non-API paths bypass entirely", http.MethodPost, "/Order", "https://evil.example.net", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := originRouter()

			r := httptest.NewRequest(tt.method, tt.path, nil)
			r.Host = "shop.example.com"
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}

			w := httptest.NewRecorder()
			router.ServeHTTP(w, r)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
			}
		})
	}
}
