package middleware

import (
	"context"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/aman-churiwal/storefront-gateway/internal/models"
	"github.com/aman-churiwal/storefront-gateway/internal/ratelimit"
	"github.com/gin-gonic/gin"
)

const limiterStoreTimeout = 2 * time.Second

// RateLimit is the first gate stage. API paths are classified into a limiter
// class and counted against that class's sliding window per client. A store
// failure fails open: blocking all traffic on a counter hiccup is worse than
// briefly not limiting it.
func RateLimit(limiters map[ratelimit.Class]ratelimit.Limiter, classifier *ratelimit.Classifier, apiPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		// Only API traffic is rate limited
		if !strings.HasPrefix(path, apiPrefix) {
			c.Next()
			return
		}

		class := classifier.Classify(path)
		limiter := limiters[class]
		key := string(class) + ":" + ClientIdentifier(c.Request)

		ctx, cancel := context.WithTimeout(c.Request.Context(), limiterStoreTimeout)
		defer cancel()

		allowed, err := limiter.Allow(ctx, key)
		if err != nil {
			log.Printf("[%s] rate limiter store unavailable, failing open: %v",
				c.GetString("request_id"), err)
			c.Next()
			return
		}

		remaining, _ := limiter.Remaining(ctx, key)
		resetTime, _ := limiter.Reset(ctx, key)

		c.Header("X-RateLimit-Limit", fmt.Sprintf("%d", limiter.Limit()))
		c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		c.Header("X-RateLimit-Reset", fmt.Sprintf("%d", resetTime.Unix()))

		if !allowed {
			retryAfter := int(math.Ceil(time.Until(resetTime).Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}

			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.Set("gate_outcome", models.OutcomeRateLimited)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"limit":       limiter.Limit(),
				"retry_after": retryAfter,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
