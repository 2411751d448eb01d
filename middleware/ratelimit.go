package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"fdv-chatbot-platform/internal/logger"
	"fdv-chatbot-platform/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

// RateLimiter limits requests per client IP and route. With a Redis client
// the counters are shared across replicas; without one each process keeps
// token buckets in memory.
type RateLimiter struct {
	rdb    redis.Cmdable
	limit  int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*rate.Limiter
}

func NewRateLimiter(rdb redis.Cmdable, limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		rdb:     rdb,
		limit:   limit,
		window:  window,
		buckets: make(map[string]*rate.Limiter),
	}
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if rl.limit <= 0 || c.FullPath() == "/health" || c.FullPath() == "/metrics" {
			c.Next()
			return
		}

		key := "ratelimit:" + c.ClientIP() + ":" + c.FullPath()
		allowed, remaining := rl.allow(c.Request.Context(), key)

		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.limit))
		if !allowed {
			c.Header("X-RateLimit-Remaining", "0")
			c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(rl.window).Unix(), 10))
			utils.RespondWithError(c, http.StatusTooManyRequests,
				"rate_limit_exceeded",
				"Too many requests. Please try again later.",
				gin.H{
					"retry_after": int(rl.window.Seconds()),
					"limit":       rl.limit,
				})
			return
		}
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		c.Next()
	}
}

func (rl *RateLimiter) allow(ctx context.Context, key string) (bool, int) {
	if rl.rdb != nil {
		count, err := rl.rdb.Incr(ctx, key).Result()
		if err == nil {
			if count == 1 {
				rl.rdb.Expire(ctx, key, rl.window)
			}
			return count <= int64(rl.limit), max(rl.limit-int(count), 0)
		}
		// fail open to the local limiter
		logger.Warn("Rate limit store unavailable", "error", err)
	}

	b := rl.bucket(key)
	if !b.Allow() {
		return false, 0
	}
	return true, int(b.Tokens())
}

func (rl *RateLimiter) bucket(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.buckets[key]
	if !ok {
		every := rl.window / time.Duration(rl.limit)
		b = rate.NewLimiter(rate.Every(every), rl.limit)
		rl.buckets[key] = b
	}
	return b
}
