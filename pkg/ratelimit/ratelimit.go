// Package ratelimit provides per-client token-bucket rate limiting
// middleware for the review endpoint, with automatic stale-entry cleanup.
package ratelimit

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/telekom/k8s-podsec-admission/pkg/apiresponses"
	"github.com/telekom/k8s-podsec-admission/pkg/metrics"
)

// Config holds rate limiter configuration.
type Config struct {
	// Rate is the number of requests allowed per second.
	Rate float64
	// Burst is the maximum number of requests allowed in a burst.
	Burst int
	// CleanupInterval is how often to clean up stale entries.
	CleanupInterval time.Duration
	// MaxAge is how long to keep an entry after last access.
	MaxAge time.Duration
}

// DefaultReviewConfig returns the default config for the admission review
// endpoint. The API server calls it on every pod create, so the limits are
// generous; they exist to contain misconfigured callers, not to throttle
// normal traffic.
func DefaultReviewConfig() Config {
	return Config{
		Rate:            1000,
		Burst:           5000,
		CleanupInterval: time.Minute,
		MaxAge:          5 * time.Minute,
	}
}

type entry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// ClientRateLimiter implements per-client rate limiting with automatic
// cleanup of idle clients.
type ClientRateLimiter struct {
	mu      sync.RWMutex
	entries map[string]*entry
	config  Config
	done    chan struct{}
}

// New creates a per-client rate limiter with the given configuration.
func New(cfg Config) *ClientRateLimiter {
	if cfg.CleanupInterval == 0 {
		cfg.CleanupInterval = time.Minute
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = 5 * time.Minute
	}

	rl := &ClientRateLimiter{
		entries: make(map[string]*entry),
		config:  cfg,
		done:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow reports whether a request from the given client should be admitted.
func (rl *ClientRateLimiter) Allow(client string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	e, exists := rl.entries[client]
	if !exists {
		e = &entry{
			limiter: rate.NewLimiter(rate.Limit(rl.config.Rate), rl.config.Burst),
		}
		rl.entries[client] = e
	}
	e.lastAccess = time.Now()

	return e.limiter.Allow()
}

// Middleware returns a Gin middleware applying per-client-IP rate limiting.
func (rl *ClientRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			metrics.RateLimited.Inc()
			apiresponses.RespondTooManyRequests(c)
			return
		}
		c.Next()
	}
}

// Stop stops the cleanup goroutine.
func (rl *ClientRateLimiter) Stop() {
	close(rl.done)
}

func (rl *ClientRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.cleanupStaleEntries()
		}
	}
}

func (rl *ClientRateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for client, e := range rl.entries {
		if now.Sub(e.lastAccess) > rl.config.MaxAge {
			delete(rl.entries, client)
		}
	}
}

// Len returns the current number of tracked clients.
func (rl *ClientRateLimiter) Len() int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()
	return len(rl.entries)
}
