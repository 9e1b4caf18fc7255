// Package ratelimit implements a sliding-window attempt counter keyed by
// action identifier, plus HTTP middleware that applies it per client IP.
// State is process-wide and not persisted across restarts; the limiter
// dampens abuse, it does not account durable quotas.
package ratelimit

import (
	"net/http"
	"sync"
	"time"
)

// Limiter records attempt timestamps per key and answers whether a new
// attempt is allowed inside the configured window.
type Limiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	now      func() time.Time
}

// New creates an empty limiter.
func New() *Limiter {
	return &Limiter{
		attempts: make(map[string][]time.Time),
		now:      time.Now,
	}
}

// NewWithClock creates a limiter with an injected time source.
func NewWithClock(now func() time.Time) *Limiter {
	return &Limiter{
		attempts: make(map[string][]time.Time),
		now:      now,
	}
}

// IsLimited prunes attempts older than the window for the key, then
// reports whether the key has exhausted maxAttempts. A limited call is
// not recorded as an attempt; an allowed call is.
func (l *Limiter) IsLimited(key string, maxAttempts int, window time.Duration) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	valid := l.attempts[key][:0]
	for _, at := range l.attempts[key] {
		if now.Sub(at) < window {
			valid = append(valid, at)
		}
	}

	if len(valid) >= maxAttempts {
		l.attempts[key] = valid
		return true
	}

	l.attempts[key] = append(valid, now)
	return false
}

// Reset drops all recorded attempts for the key.
func (l *Limiter) Reset(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.attempts, key)
}

// IPLimiter wraps a Limiter with a fixed budget and applies it per client
// IP as HTTP middleware.
type IPLimiter struct {
	limiter     *Limiter
	maxAttempts int
	window      time.Duration
}

// NewIPLimiter creates a per-IP middleware limiter with the given budget.
func NewIPLimiter(maxAttempts int, window time.Duration) *IPLimiter {
	return &IPLimiter{
		limiter:     New(),
		maxAttempts: maxAttempts,
		window:      window,
	}
}

// Middleware rejects requests over budget with 429 before they reach the
// wrapped handler.
func (il *IPLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if il.limiter.IsLimited(clientIP(r), il.maxAttempts, il.window) {
			http.Error(w, "Too many requests. Please wait before trying again.", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	if ip := r.Header.Get("X-Forwarded-For"); ip != "" {
		return ip
	}
	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}
	return r.RemoteAddr
}

// Per-endpoint-class budgets, matching the client-facing API surface.
var (
	// General API budget: 100 requests per minute.
	General = NewIPLimiter(100, time.Minute)
	// Auth budget: 5 attempts per minute, login brute force dampening.
	Auth = NewIPLimiter(5, time.Minute)
	// Metadata budget: 30 requests per minute, outbound fetches are costly.
	Metadata = NewIPLimiter(30, time.Minute)
)
