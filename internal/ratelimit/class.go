package ratelimit

import (
	"strings"

	"github.com/aman-churiwal/storefront-gateway/internal/config"
	"github.com/aman-churiwal/storefront-gateway/internal/storage"
)

// Class partitions request paths into separate rate-limit budgets.
type Class string

const (
	ClassDefault Class = "default"
	ClassAuth    Class = "auth"
	ClassOrder   Class = "order"
)

// Classifier assigns a Class to API paths by substring marker, auth taking
// precedence over order.
type Classifier struct {
	authMarker  string
	orderMarker string
}

func NewClassifier(authMarker, orderMarker string) *Classifier {
	return &Classifier{
		authMarker:  authMarker,
		orderMarker: orderMarker,
	}
}

func (c *Classifier) Classify(path string) Class {
	if strings.Contains(path, c.authMarker) {
		return ClassAuth
	}
	if strings.Contains(path, c.orderMarker) {
		return ClassOrder
	}
	return ClassDefault
}

// NewClassLimiters builds one sliding-window limiter per class from the
// pipeline configuration.
func NewClassLimiters(redis *storage.RedisClient, cfg config.PipelineConfig) map[Class]Limiter {
	return map[Class]Limiter{
		ClassDefault: NewSlidingWindowLimiter(redis, cfg.DefaultLimit.Max, cfg.DefaultLimit.Window()),
		ClassAuth:    NewSlidingWindowLimiter(redis, cfg.AuthLimit.Max, cfg.AuthLimit.Window()),
		ClassOrder:   NewSlidingWindowLimiter(redis, cfg.OrderLimit.Max, cfg.OrderLimit.Window()),
	}
}
