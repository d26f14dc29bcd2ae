package middleware

import (
	"net/http"
	"strconv"
	"time"

	"mentorlink/backend/internal/apperr"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const rateLimitKeyPrefix = "ratelimit:"

// RateLimit allows maxRequests per client IP in each fixed window. Counters
// live in Redis; if Redis is unreachable the request is let through.
func RateLimit(rdb redis.Cmdable, maxRequests int, window time.Duration, log *logrus.Logger) gin.HandlerFunc {
	if rdb == nil {
		panic("redis client cannot be nil for RateLimit middleware")
	}
	if maxRequests <= 0 {
		panic("maxRequests must be positive for RateLimit middleware")
	}
	if window <= 0 {
		panic("window must be positive for RateLimit middleware")
	}
	entry := loggerOrDefault(log).WithField("component", "ratelimit")

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := rateLimitKeyPrefix + c.ClientIP()

		count, err := rdb.Incr(ctx, key).Result()
		if err == nil && count == 1 {
			// First hit opens the window.
			err = rdb.Expire(ctx, key, window).Err()
		}
		if err != nil {
			entry.WithError(err).Error("rate limit counter failed")
			c.Next()
			return
		}

		remaining := int64(maxRequests) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(maxRequests))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(maxRequests) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests", "code": apperr.CodeRateLimited})
			return
		}
		c.Next()
	}
}
