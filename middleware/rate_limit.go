package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type RateLimiterConfig struct {
	RequestsPerSecond int
	Burst             int
	CleanupInterval   time.Duration
	TTL               time.Duration
}

// visitorLimiters keeps one token bucket per client IP and drops
// buckets that haven't been seen for a while
type visitorLimiters struct {
	mu  sync.Mutex
	cfg RateLimiterConfig

	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
}

func (v *visitorLimiters) get(ip string) *rate.Limiter {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.lastSeen[ip] = time.Now()

	l, ok := v.limiters[ip]
	if !ok {
		l = rate.NewLimiter(rate.Limit(v.cfg.RequestsPerSecond), v.cfg.Burst)
		v.limiters[ip] = l
	}

	return l
}

func (v *visitorLimiters) cleanupLoop() {
	for {
		time.Sleep(v.cfg.CleanupInterval)

		v.mu.Lock()
		for ip, seen := range v.lastSeen {
			if time.Since(seen) > v.cfg.TTL {
				delete(v.limiters, ip)
				delete(v.lastSeen, ip)
			}
		}
		v.mu.Unlock()
	}
}

// RateLimiterMiddleware limits requests per client IP, answering 429
// once a client runs out of tokens
func RateLimiterMiddleware(config RateLimiterConfig) gin.HandlerFunc {
	if config.CleanupInterval == 0 {
		config.CleanupInterval = time.Minute
	}
	if config.TTL == 0 {
		config.TTL = 3 * time.Minute
	}

	v := &visitorLimiters{
		cfg:      config,
		limiters: map[string]*rate.Limiter{},
		lastSeen: map[string]time.Time{},
	}
	go v.cleanupLoop()

	return func(c *gin.Context) {
		if !v.get(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}

		c.Next()
	}
}
