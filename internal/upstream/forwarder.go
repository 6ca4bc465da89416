package upstream

import (
	"errors"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"

	"github.com/gin-gonic/gin"
)

// Forwarder sends gated requests on to a storefront instance chosen from the
// pool, recording backend 5xx responses as breaker failures.
type Forwarder struct {
	pool    *Pool
	proxies map[string]*httputil.ReverseProxy
}

func NewForwarder(pool *Pool) (*Forwarder, error) {
	proxies := make(map[string]*httputil.ReverseProxy)
	for target := range pool.Targets() {
		parsed, err := url.Parse(target)
		if err != nil {
			return nil, err
		}
		proxies[target] = httputil.NewSingleHostReverseProxy(parsed)
	}

	return &Forwarder{
		pool:    pool,
		proxies: proxies,
	}, nil
}

// Handle forwards the request. The gate pipeline has already allowed it.
func (f *Forwarder) Handle(c *gin.Context) {
	target, err := f.pool.Pick()
	if err != nil {
		log.Printf("[%s] %v", c.GetString("request_id"), err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Storefront temporarily unavailable",
		})
		return
	}

	f.pool.Acquire(target)
	defer f.pool.Release(target)

	proxy := f.proxies[target]

	err = f.pool.Breaker(target).Call(func() error {
		recorder := &statusRecorder{
			ResponseWriter: c.Writer,
			statusCode:     http.StatusOK,
		}

		req := c.Request
		req.Header.Set("X-Forwarded-Host", req.Host)
		c.Header("X-Backend-Server", target)

		c.Writer = recorder
		proxy.ServeHTTP(c.Writer, req)

		if recorder.statusCode >= http.StatusInternalServerError {
			return errors.New("backend error")
		}
		return nil
	})

	if errors.Is(err, ErrBreakerOpen) {
		log.Printf("[%s] circuit open for %s", c.GetString("request_id"), target)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Storefront temporarily unavailable",
		})
	}
}

// Captures the response status code for breaker accounting
type statusRecorder struct {
	gin.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}
