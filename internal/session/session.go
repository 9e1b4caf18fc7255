// Package session holds the client-side authentication state: either
// anonymous or a single authenticated user with a bearer token. Sessions
// are replaced wholesale, never mutated in place.
package session

import (
	"encoding/json"
	"errors"
	"net/url"
	"sync"

	"LinkBoard-Backend/internal/domain"
)

var ErrNoCallbackParams = errors.New("callback carries no session parameters")

// Session is one authenticated identity with its opaque bearer token.
type Session struct {
	User  domain.User
	Token string
}

// Gate decides between the authenticated and anonymous view and performs
// the forced-logout transition on authorization failures. It holds exactly
// one session per process.
type Gate struct {
	mu      sync.Mutex
	current *Session

	// onInvalidate runs once per forced logout, outside any network
	// path, so the owner can discard view state tied to the session.
	onInvalidate func()
}

// NewGate creates an anonymous gate. onInvalidate may be nil.
func NewGate(onInvalidate func()) *Gate {
	return &Gate{onInvalidate: onInvalidate}
}

// Establish replaces any current session with a fresh one.
func (g *Gate) Establish(user domain.User, token string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.current = &Session{User: user, Token: token}
}

// Session returns the current session, or nil when anonymous.
func (g *Gate) Session() *Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current
}

// Token returns the current bearer token, empty when anonymous.
func (g *Gate) Token() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current == nil {
		return ""
	}
	return g.current.Token
}

// IsAuthenticated reports whether a session is held.
func (g *Gate) IsAuthenticated() bool {
	return g.Session() != nil
}

// Logout drops the current session. Used for the explicit user action.
func (g *Gate) Logout() {
	g.mu.Lock()
	g.current = nil
	g.mu.Unlock()
}

// Invalidate performs the forced-logout transition after an authorization
// failure. It is idempotent: rapid repeated failures trigger the side
// effects exactly once, and the return value reports whether this call
// performed the transition.
func (g *Gate) Invalidate() bool {
	g.mu.Lock()
	if g.current == nil {
		g.mu.Unlock()
		return false
	}
	g.current = nil
	callback := g.onInvalidate
	g.mu.Unlock()

	if callback != nil {
		callback()
	}
	return true
}

// AdoptOAuthCallback parses the token and URL-encoded JSON user query
// parameters an OAuth redirect lands with, establishes the session, and
// returns the URL stripped of both parameters so the caller can replace
// its location and prevent replay on refresh or share.
func (g *Gate) AdoptOAuthCallback(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	params := parsed.Query()
	token := params.Get("token")
	userStr := params.Get("user")
	if token == "" || userStr == "" {
		return "", ErrNoCallbackParams
	}

	var user domain.User
	if err := json.Unmarshal([]byte(userStr), &user); err != nil {
		return "", err
	}

	g.Establish(user, token)

	params.Del("token")
	params.Del("user")
	parsed.RawQuery = params.Encode()
	return parsed.String(), nil
}
