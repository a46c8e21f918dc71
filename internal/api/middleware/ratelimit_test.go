package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStaticLimiter builds a limiter with a controllable clock and no cleanup
// goroutine.
func newStaticLimiter(requests int, window time.Duration, clock *time.Time) *RateLimiter {
	return &RateLimiter{
		requests: requests,
		window:   window,
		clients:  make(map[string]*clientWindow),
		now:      func() time.Time { return *clock },
	}
}

func TestRateLimiter_Allow(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := newStaticLimiter(10, 15*time.Minute, &clock)

	t.Run("allows up to the limit", func(t *testing.T) {
		for i := 0; i < 10; i++ {
			allowed, remaining := rl.Allow("1.2.3.4")
			assert.True(t, allowed, "request %d should be allowed", i+1)
			assert.Equal(t, 10-(i+1), remaining)
		}
	})

	t.Run("rejects the eleventh", func(t *testing.T) {
		allowed, remaining := rl.Allow("1.2.3.4")
		assert.False(t, allowed)
		assert.Equal(t, 0, remaining)
	})

	t.Run("other clients are unaffected", func(t *testing.T) {
		allowed, _ := rl.Allow("5.6.7.8")
		assert.True(t, allowed)
	})

	t.Run("window expiry frees the budget", func(t *testing.T) {
		clock = clock.Add(15*time.Minute + time.Second)
		allowed, remaining := rl.Allow("1.2.3.4")
		assert.True(t, allowed)
		assert.Equal(t, 9, remaining)
	})
}

func TestRateLimiter_SlidingWindow(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := newStaticLimiter(2, 10*time.Minute, &clock)

	allowed, _ := rl.Allow("a")
	require.True(t, allowed)

	clock = clock.Add(6 * time.Minute)
	allowed, _ = rl.Allow("a")
	require.True(t, allowed)

	// First request still in window
	allowed, _ = rl.Allow("a")
	require.False(t, allowed)

	// Five more minutes slide the first request out, the second remains
	clock = clock.Add(5 * time.Minute)
	allowed, _ = rl.Allow("a")
	assert.True(t, allowed)
}

func TestRateLimitMiddleware(t *testing.T) {
	clock := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	rl := newStaticLimiter(2, 15*time.Minute, &clock)

	handler := rl.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remoteAddr, xff string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/auth/login", nil)
		req.RemoteAddr = remoteAddr
		if xff != "" {
			req.Header.Set("X-Forwarded-For", xff)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	t.Run("sets rate limit headers", func(t *testing.T) {
		rec := do("10.0.0.1:1234", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "2", rec.Header().Get("X-RateLimit-Limit"))
		assert.Equal(t, "1", rec.Header().Get("X-RateLimit-Remaining"))
	})

	t.Run("rejects over the limit with retry hint", func(t *testing.T) {
		do("10.0.0.1:1234", "")
		rec := do("10.0.0.1:1234", "")

		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
		assert.Equal(t, "900", rec.Header().Get("Retry-After"))
		assert.Contains(t, rec.Body.String(), "retry_after")
	})

	t.Run("forwarded header identifies the client", func(t *testing.T) {
		// Same connection address, different forwarded client
		rec := do("10.0.0.1:1234", "203.0.113.7, 10.0.0.1")
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("port does not split the budget", func(t *testing.T) {
		rec := do("10.0.0.1:9999", "")
		assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		want       string
	}{
		{"plain remote addr", "192.0.2.1:5000", "", "192.0.2.1"},
		{"single forwarded", "10.0.0.1:80", "203.0.113.7", "203.0.113.7"},
		{"forwarded chain uses first", "10.0.0.1:80", "203.0.113.7, 70.41.3.18, 150.172.238.178", "203.0.113.7"},
		{"forwarded with spaces", "10.0.0.1:80", "  203.0.113.7  ", "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			assert.Equal(t, tt.want, clientKey(req))
		})
	}
}
