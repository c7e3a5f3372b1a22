package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/mhsanaei/taskpanel/logger"
	"github.com/mhsanaei/taskpanel/web/cache"

	"github.com/gin-gonic/gin"
)

// RateLimitConfig configures rate limiting
type RateLimitConfig struct {
	RequestsPerMinute int
	KeyFunc           func(c *gin.Context) string
	// Message renders the body of a 429 response.
	Message func(c *gin.Context) string
}

// DefaultRateLimitConfig limits each client IP to limit requests per minute and path.
func DefaultRateLimitConfig(limit int) RateLimitConfig {
	return RateLimitConfig{
		RequestsPerMinute: limit,
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
		Message: func(c *gin.Context) string {
			return "Rate limit exceeded. Please try again later."
		},
	}
}

// RateLimitMiddleware counts requests in store over fixed one-minute windows.
// Requests pass through when the store is unavailable.
func RateLimitMiddleware(store *cache.Cache, config RateLimitConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if config.RequestsPerMinute <= 0 {
			c.Next()
			return
		}

		key := config.KeyFunc(c)
		rateLimitKey := cache.KeyRateLimitPrefix + key + ":" + c.Request.URL.Path

		count, err := store.Incr(c.Request.Context(), rateLimitKey, time.Minute)
		if err != nil {
			logger.Warning("Rate limit increment failed:", err)
			c.Next()
			return
		}

		remaining := int64(config.RequestsPerMinute) - count
		if remaining < 0 {
			remaining = 0
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(config.RequestsPerMinute))
		c.Header("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

		if count > int64(config.RequestsPerMinute) {
			logger.Warningf("Rate limit exceeded for %s on %s (count: %d)", key, c.Request.URL.Path, count)
			c.String(http.StatusTooManyRequests, config.Message(c))
			c.Abort()
			return
		}

		c.Next()
	}
}
