package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/aman-churiwal/storefront-gateway/internal/storage"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type SlidingWindowLimiter struct {
	redis  *storage.RedisClient
	limit  int
	window time.Duration
}

func NewSlidingWindowLimiter(redis *storage.RedisClient, limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		redis:  redis,
		limit:  limit,
		window: window,
	}
}

// Allow records the request and reports whether it fits in the trailing
// window. Trim, add and count run in one pipeline so concurrent requests on
// the same key never read-modify-write in application code.
func (s *SlidingWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := fmt.Sprintf("ratelimit:sliding:%s", key)
	now := time.Now()

	windowStart := now.Add(-s.window)

	// Sorted set with timestamps as scores, one member per request
	pipe := s.redis.Pipeline()

	// Remove entries that have left the window
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.UnixNano()))

	// Record this request
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})

	// Count requests in the current window, including this one
	countCmd := pipe.ZCard(ctx, redisKey)

	pipe.Expire(ctx, redisKey, s.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return countCmd.Val() <= int64(s.limit), nil
}

func (s *SlidingWindowLimiter) Remaining(ctx context.Context, key string) (int, error) {
	redisKey := fmt.Sprintf("ratelimit:sliding:%s", key)
	now := time.Now()
	windowStart := now.Add(-s.window)

	count, err := s.redis.ZCount(ctx, redisKey, fmt.Sprintf("%d", windowStart.UnixNano()), fmt.Sprintf("%d", now.UnixNano()))
	if err != nil {
		return 0, err
	}

	remaining := s.limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (s *SlidingWindowLimiter) Limit() int {
	return s.limit
}

func (s *SlidingWindowLimiter) Window() time.Duration {
	return s.window
}

// Reset reports when the oldest recorded request leaves the window.
func (s *SlidingWindowLimiter) Reset(ctx context.Context, key string) (time.Time, error) {
	redisKey := fmt.Sprintf("ratelimit:sliding:%s", key)

	oldest, err := s.redis.ZRangeWithScores(ctx, redisKey, 0, 0)
	if err != nil || len(oldest) == 0 {
		// No entries, window resets now
		return time.Now(), nil
	}

	resetTime := time.Unix(0, int64(oldest[0].Score)).Add(s.window)
	return resetTime, nil
}
