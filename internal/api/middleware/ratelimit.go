package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

// idleEviction is how long a client may stay quiet before its window entry is
// purged, bounding the table's memory.
const idleEviction = time.Hour

// RateLimiter is a process-wide sliding-window counter. It is deliberately
// single-process and in-memory: a multi-instance deployment needs a shared
// store (Redis INCR+EXPIRE) instead.
type RateLimiter struct {
	requests      int           // Maximum requests per window
	window        time.Duration // Window duration
	clients       map[string]*clientWindow
	mu            sync.RWMutex
	cleanupTicker *time.Ticker
	now           func() time.Time
}

type clientWindow struct {
	timestamps []time.Time
	mu         sync.Mutex
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	if requests <= 0 {
		requests = 10 // Default
	}
	if window <= 0 {
		window = 15 * time.Minute // Default
	}

	rl := &RateLimiter{
		requests: requests,
		window:   window,
		clients:  make(map[string]*clientWindow),
		now:      time.Now,
	}

	// Start cleanup goroutine to remove idle entries
	rl.cleanupTicker = time.NewTicker(time.Minute)
	go rl.cleanup()

	return rl
}

// cleanup removes entries whose last request is older than the eviction age
func (rl *RateLimiter) cleanup() {
	for range rl.cleanupTicker.C {
		rl.mu.Lock()
		now := rl.now()
		for key, client := range rl.clients {
			client.mu.Lock()
			if len(client.timestamps) == 0 ||
				now.Sub(client.timestamps[len(client.timestamps)-1]) > idleEviction {
				delete(rl.clients, key)
			}
			client.mu.Unlock()
		}
		rl.mu.Unlock()
	}
}

// Allow prunes timestamps outside the window for the given client key, then
// records and accepts the request if the count is under the limit.
func (rl *RateLimiter) Allow(key string) (bool, int) {
	rl.mu.RLock()
	client, exists := rl.clients[key]
	rl.mu.RUnlock()

	if !exists {
		rl.mu.Lock()
		// Double-check after acquiring write lock
		if client, exists = rl.clients[key]; !exists {
			client = &clientWindow{
				timestamps: make([]time.Time, 0, rl.requests),
			}
			rl.clients[key] = client
		}
		rl.mu.Unlock()
	}

	client.mu.Lock()
	defer client.mu.Unlock()

	now := rl.now()
	windowStart := now.Add(-rl.window)

	// Remove timestamps outside the window
	valid := client.timestamps[:0]
	for _, ts := range client.timestamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	client.timestamps = valid

	if len(client.timestamps) >= rl.requests {
		return false, 0
	}

	client.timestamps = append(client.timestamps, now)
	return true, rl.requests - len(client.timestamps)
}

// RateLimit returns a middleware that applies sliding-window rate limiting.
// It is mounted on authentication endpoints only.
func RateLimit(requests int, window time.Duration) func(http.Handler) http.Handler {
	limiter := NewRateLimiter(requests, window)
	return limiter.Middleware()
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	retryAfter := strconv.Itoa(int(rl.window.Seconds()))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)

			allowed, remaining := rl.Allow(key)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.requests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))

			if !allowed {
				w.Header().Set("Retry-After", retryAfter)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]interface{}{
					"error":       "Too many requests. Please try again later.",
					"retry_after": int(rl.window.Seconds()),
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller: first X-Forwarded-For entry when present
// (proxies and load balancers), else the connection address without port.
func clientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if idx := strings.Index(xff, ","); idx >= 0 {
			return strings.TrimSpace(xff[:idx])
		}
		return strings.TrimSpace(xff)
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx >= 0 {
		return ip[:idx]
	}
	return ip
}
