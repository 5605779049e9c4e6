package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/magicprice/magicprice/config"
	"github.com/magicprice/magicprice/models"
)

// bucket is one caller's token bucket, with its last-use time for sweeping.
type bucket struct {
	limiter *rate.Limiter
	touched time.Time
}

// RateLimit applies a per-caller token bucket (golang.org/x/time/rate).
// Identity is the authenticated API key when Auth ran first, the client IP
// otherwise. A scan holds the single browser for its whole duration, which
// is why the configured defaults are tight.
//
// Buckets idle for an hour are dropped by a sweeper goroutine so the map
// cannot grow without bound.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	var mu sync.Mutex
	buckets := make(map[string]*bucket)

	take := func(identity string) bool {
		mu.Lock()
		defer mu.Unlock()
		b, ok := buckets[identity]
		if !ok {
			b = &bucket{limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst)}
			buckets[identity] = b
		}
		b.touched = time.Now()
		return b.limiter.Allow()
	}

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-1 * time.Hour)
			mu.Lock()
			for id, b := range buckets {
				if b.touched.Before(cutoff) {
					delete(buckets, id)
				}
			}
			mu.Unlock()
		}
	}()

	return func(c *gin.Context) {
		identity := c.GetString("api_key")
		if identity == "" {
			identity = c.ClientIP()
		}

		if !take(identity) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ErrorResponse{
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "rate limit exceeded, please slow down",
				},
			})
			return
		}

		c.Next()
	}
}
