package ratelimit

import (
	"testing"
	"time"

	"github.com/aman-churiwal/storefront-gateway/internal/config"
	"github.com/stretchr/testify/assert"
)

func TestClassifier_Precedence(t *testing.T) {
	classifier := NewClassifier("/auth", "/order")

	tests := []struct {
		path string
		want Class
	}{
		{"/api/auth/login", ClassAuth},
		{"/api/orders", ClassOrder},
		{"/api/orders/123", ClassOrder},
		{"/api/profile", ClassDefault},
		{"/api/auth/order", ClassAuth}, // auth marker wins over order
		{"/api/menu", ClassDefault},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, classifier.Classify(tt.path), "path %s", tt.path)
	}
}

func TestNewClassLimiters(t *testing.T) {
	client, _ := setupRedisTest(t)

	cfg := config.PipelineConfig{
		DefaultLimit: config.LimiterClassConfig{Max: 10, WindowSeconds: 10},
		AuthLimit:    config.LimiterClassConfig{Max: 5, WindowSeconds: 60},
		OrderLimit:   config.LimiterClassConfig{Max: 20, WindowSeconds: 60},
	}

	limiters := NewClassLimiters(client, cfg)

	assert.Equal(t, 10, limiters[ClassDefault].Limit())
	assert.Equal(t, 10*time.Second, limiters[ClassDefault].Window())
	assert.Equal(t, 5, limiters[ClassAuth].Limit())
	assert.Equal(t, time.Minute, limiters[ClassAuth].Window())
	assert.Equal(t, 20, limiters[ClassOrder].Limit())
	assert.Equal(t, time.Minute, limiters[ClassOrder].Window())
}
