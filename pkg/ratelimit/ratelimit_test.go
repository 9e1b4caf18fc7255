package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsLimited(t *testing.T) {
	current := time.Unix(1700000000, 0)
	l := NewWithClock(func() time.Time { return current })

	// Three attempts inside the budget, the fourth is refused.
	for i := 0; i < 3; i++ {
		assert.False(t, l.IsLimited("login", 3, time.Second), "attempt %d should pass", i+1)
	}
	assert.True(t, l.IsLimited("login", 3, time.Second))

	// A limited call must not consume an attempt: once the window
	// elapses all three slots are free again.
	current = current.Add(1100 * time.Millisecond)
	assert.False(t, l.IsLimited("login", 3, time.Second))
}

func TestIsLimitedKeysAreIndependent(t *testing.T) {
	current := time.Unix(1700000000, 0)
	l := NewWithClock(func() time.Time { return current })

	assert.False(t, l.IsLimited("a", 1, time.Minute))
	assert.True(t, l.IsLimited("a", 1, time.Minute))
	assert.False(t, l.IsLimited("b", 1, time.Minute))
}

func TestIsLimitedSlidingWindow(t *testing.T) {
	current := time.Unix(1700000000, 0)
	l := NewWithClock(func() time.Time { return current })

	assert.False(t, l.IsLimited("k", 2, time.Second))
	current = current.Add(600 * time.Millisecond)
	assert.False(t, l.IsLimited("k", 2, time.Second))
	assert.True(t, l.IsLimited("k", 2, time.Second))

	// First attempt ages out, the second is still inside the window.
	current = current.Add(500 * time.Millisecond)
	assert.False(t, l.IsLimited("k", 2, time.Second))
	assert.True(t, l.IsLimited("k", 2, time.Second))
}

func TestReset(t *testing.T) {
	l := New()
	assert.False(t, l.IsLimited("k", 1, time.Minute))
	assert.True(t, l.IsLimited("k", 1, time.Minute))
	l.Reset("k")
	assert.False(t, l.IsLimited("k", 1, time.Minute))
}

func TestIPLimiterMiddleware(t *testing.T) {
	il := NewIPLimiter(2, time.Minute)
	handler := il.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
		req.Header.Set("X-Forwarded-For", ip)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("1.2.3.4"))
	assert.Equal(t, http.StatusOK, do("1.2.3.4"))
	assert.Equal(t, http.StatusTooManyRequests, do("1.2.3.4"))

	// A different client is unaffected.
	assert.Equal(t, http.StatusOK, do("5.6.7.8"))
}
