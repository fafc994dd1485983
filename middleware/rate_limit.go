package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jakeh134/motionflow/pkg/logger"
)

// RateLimiter counts requests per client in fixed windows.
type RateLimiter struct {
	mu          sync.Mutex
	counts      map[string]int
	windowStart time.Time
	rate        int
	window      time.Duration
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		counts:      make(map[string]int),
		windowStart: time.Now(),
		rate:        rate,
		window:      window,
	}
}

// Allow records one request from key at now. It returns how many requests
// key has left in the window and when the window resets.
func (l *RateLimiter) Allow(key string, now time.Time) (ok bool, remaining int, reset time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.windowStart) >= l.window {
		l.counts = make(map[string]int)
		l.windowStart = now
	}
	reset = l.windowStart.Add(l.window)

	count := l.counts[key]
	if count >= l.rate {
		return false, 0, reset
	}
	l.counts[key] = count + 1
	return true, l.rate - count - 1, reset
}

// clientKey identifies the caller: the clerk once authenticated, the IP
// before that.
func clientKey(c *gin.Context) string {
	if sess := GetSession(c); sess != nil {
		return "user:" + sess.UserID
	}
	return "ip:" + c.ClientIP()
}

// RateLimit allows rate requests per window for each client and reports the
// budget in X-RateLimit-* headers.
func RateLimit(rate int, window time.Duration) gin.HandlerFunc {
	limiter := NewRateLimiter(rate, window)

	return func(c *gin.Context) {
		key := clientKey(c)
		now := time.Now()
		ok, remaining, reset := limiter.Allow(key, now)

		c.Header("X-RateLimit-Limit", strconv.Itoa(rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			retry := int(math.Ceil(reset.Sub(now).Seconds()))
			c.Header("Retry-After", strconv.Itoa(retry))
			logger.Warn(c.Request.Context(), "rate limit exceeded", "client", key, "retry_after_s", retry)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}

		c.Next()
	}
}
