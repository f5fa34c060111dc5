package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "ratelimit:"

// Limiter is a fixed-window request limiter backed by Redis, keyed by
// client IP. Counters live for one window and expire on their own.
type Limiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
}

// NewLimiter returns a Limiter allowing limit requests per window.
func NewLimiter(rdb *redis.Client, limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 100
	}
	if window < time.Second {
		window = time.Minute
	}
	return &Limiter{rdb: rdb, limit: limit, window: window}
}

// Middleware rejects requests over the limit with 429 and a Retry-After
// hint. Redis failures fail open: limiting is protection, not a
// correctness guarantee.
func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		key := keyPrefix + c.ClientIP() + ":" + l.windowBucket(time.Now())

		n, err := l.rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warn().Err(err).Msg("rate limiter unavailable, allowing request")
			c.Next()
			return
		}
		if n == 1 {
			if err := l.rdb.Expire(ctx, key, l.window).Err(); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("rate limiter expire failed")
			}
		}
		if n > int64(l.limit) {
			c.Header("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (l *Limiter) windowBucket(now time.Time) string {
	return strconv.FormatInt(now.Unix()/int64(l.window.Seconds()), 10)
}
