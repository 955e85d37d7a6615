package middleware

import (
	"net/http"
	"sync"
	"time"
)

// rateLimiter counts requests per client over fixed windows.
type rateLimiter struct {
	mu     sync.Mutex
	limit  int
	window time.Duration
	hits   map[string]*windowCount
}

type windowCount struct {
	start time.Time
	n     int
}

// NewRateLimiter allows up to limit requests per client in each window.
func NewRateLimiter(limit int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		limit:  limit,
		window: window,
		hits:   make(map[string]*windowCount),
	}

	// Drop stale windows so idle clients don't accumulate
	go func() {
		ticker := time.NewTicker(window)
		defer ticker.Stop()
		for range ticker.C {
			rl.cleanup()
		}
	}()

	return rl
}

func (rl *rateLimiter) cleanup() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	for ip, wc := range rl.hits {
		if now.Sub(wc.start) >= rl.window {
			delete(rl.hits, ip)
		}
	}
}

// Allow reports whether another request from ip fits in its current window.
func (rl *rateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	wc, ok := rl.hits[ip]
	if !ok || now.Sub(wc.start) >= rl.window {
		rl.hits[ip] = &windowCount{start: now, n: 1}
		return true
	}

	wc.n++
	return wc.n <= rl.limit
}

// RateLimit rejects requests over the limiter's budget with 429.
func RateLimit(limiter *rateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(r.RemoteAddr) {
				http.Error(w, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
