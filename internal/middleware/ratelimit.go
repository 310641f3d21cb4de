package middleware

import (
	"net/http" // HTTP status codes
	"strconv"  // Building cache keys
	"time"     // Window durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
)

// Rate limits mirror the deployment defaults: tight on the auth
// endpoints, loose on the rest of the API
const (
	AuthLimitMax   = 20               // Auth requests per window per IP
	APILimitMax    = 200              // API requests per window per IP
	RateWindow     = 15 * time.Second // Fixed window length
	rateKeyPrefix  = "ratelimit:"     // Redis key prefix
)

// RateLimitMiddleware enforces a fixed-window per-IP request limit backed
// by Redis. The first request in a window creates the counter with a TTL;
// later requests increment it. Redis being unreachable fails open so a
// cache outage never takes the API down with it.
func RateLimitMiddleware(rdb *redis.Client, name string, max int64, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rateKeyPrefix + name + ":" + c.ClientIP() // Per-IP counter key
		ctx := c.Request.Context()

		count, err := rdb.Incr(ctx, key).Result() // Increment the window counter
		if err != nil {
			// Fail open on Redis errors
			logrus.WithFields(logrus.Fields{
				"key":   key,         // Counter key
				"error": err.Error(), // Error message
			}).Warn("Rate limiter unavailable")
			c.Next()
			return
		}
		if count == 1 {
			// First hit in this window starts the expiry clock
			_ = rdb.Expire(ctx, key, window).Err()
		}
		if count > max {
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds()))) // Hint when to retry
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later"})
			return
		}
		c.Next() // Proceed to the next handler
	}
}
