package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/AlexTsikhun/social-media-api/internal/logs"
	"github.com/AlexTsikhun/social-media-api/internal/metrics"
)

type Limiter struct {
	rdb    *redis.Client
	limit  int64
	window time.Duration
}

func New(rdb *redis.Client, limit int64, window time.Duration) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, window: window}
}

// Allow counts one hit for key in the current fixed window.
// The TTL is only set by the hit that opens the window, so later hits never extend it.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	k := "rl:" + key
	pipe := l.rdb.TxPipeline()
	incr := pipe.Incr(ctx, k)
	pipe.ExpireNX(ctx, k, l.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}
	n := incr.Val()
	return n <= l.limit, n, nil
}

// Middleware limits unsafe requests per authenticated user, falling back to the client IP.
// Reads pass through. When Redis is unreachable the request is let through.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		key := c.GetString("user_id")
		if key == "" {
			key = "ip:" + c.ClientIP()
		}

		ok, n, err := l.Allow(c.Request.Context(), key)
		if err != nil {
			logs.LogJSON("WARN", "Rate limiter unavailable", map[string]interface{}{
				"error":  err.Error(),
				"route":  c.FullPath(),
				"userID": c.GetString("user_id"),
			})
			c.Next()
			return
		}

		remaining := l.limit - n
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.FormatInt(l.limit, 10))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if !ok {
			metrics.RecordRateLimited()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Request was throttled."})
			logs.LogJSON("WARN", "Rate limit exceeded", map[string]interface{}{
				"route":  c.FullPath(),
				"userID": c.GetString("user_id"),
				"extra":  "count: " + strconv.FormatInt(n, 10),
			})
			return
		}
		c.Next()
	}
}
