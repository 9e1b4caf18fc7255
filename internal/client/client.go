// Package client is the HTTP consumer of the links API: it attaches
// bearer credentials from the session gate, rate-limits repeated calls
// per endpoint, and maintains the in-memory link store the query engine
// reads from. Store updates follow a fetch-then-replace discipline; only
// the favorite and access-count operations patch locally, and only after
// the server acknowledged them.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"LinkBoard-Backend/internal/domain"
	"LinkBoard-Backend/internal/query"
	"LinkBoard-Backend/internal/session"
	"LinkBoard-Backend/pkg/ratelimit"
	"LinkBoard-Backend/pkg/validate"
)

var (
	ErrRateLimited  = errors.New("too many requests, wait before trying again")
	ErrUnauthorized = errors.New("session expired")
	ErrNotFound     = errors.New("not found")
)

// ServerError carries a non-2xx response through to the caller with the
// server's message where one was provided.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("server error %d", e.Status)
}

const (
	defaultTimeout  = 10 * time.Second
	requestsPerMin  = 10
	rateLimitWindow = time.Minute
)

// Client talks to the links API on behalf of one session.
type Client struct {
	baseURL string
	httpc   *http.Client
	gate    *session.Gate
	limiter *ratelimit.Limiter
	log     *zap.Logger

	storeMu sync.Mutex
	store   query.Store
}

// New creates a client for the API at baseURL. The client owns its
// session gate; a forced logout clears the held store.
func New(baseURL string, log *zap.Logger) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
		limiter: ratelimit.New(),
		log:     log,
		store:   query.Store{},
	}
	c.gate = session.NewGate(c.clearStore)
	return c
}

// Gate exposes the session gate, e.g. for OAuth callback adoption.
func (c *Client) Gate() *session.Gate {
	return c.gate
}

// Store returns the current authoritative local view.
func (c *Client) Store() query.Store {
	c.storeMu.Lock()
	defer c.storeMu.Unlock()
	return c.store
}

// View recomputes the grouped display view for the criteria. Cheap and
// idempotent, safe to call on every criteria change.
func (c *Client) View(criteria query.Criteria) query.View {
	return query.ComputeView(c.Store(), criteria)
}

// Categories lists the filter options derived from the unfiltered store.
func (c *Client) Categories() []string {
	return c.Store().Categories()
}

// --- Auth ---

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

// Login authenticates with username/password and establishes the session.
func (c *Client) Login(ctx context.Context, username, password string) error {
	sanitized, err := validate.Credentials(username, password)
	if err != nil {
		return err
	}

	var resp authResponse
	if err := c.request(ctx, http.MethodPost, "/api/login", credentialsRequest{Username: sanitized, Password: password}, &resp); err != nil {
		return err
	}

	c.gate.Establish(resp.User, resp.Token)
	c.log.Info("logged in", zap.String("username", resp.User.Username))
	return nil
}

// Register creates an account and establishes the session.
func (c *Client) Register(ctx context.Context, username, password string) error {
	sanitized, err := validate.RegistrationCredentials(username, password)
	if err != nil {
		return err
	}

	var resp authResponse
	if err := c.request(ctx, http.MethodPost, "/api/register", credentialsRequest{Username: sanitized, Password: password}, &resp); err != nil {
		return err
	}

	c.gate.Establish(resp.User, resp.Token)
	return nil
}

// Logout drops the session and discards the store.
func (c *Client) Logout() {
	c.gate.Logout()
	c.clearStore()
}

// --- Links ---

// FetchLinks retrieves the authenticated user's links and replaces the
// store with the response. When fetches race, the most recently completed
// response wins.
func (c *Client) FetchLinks(ctx context.Context) error {
	var grouped map[string][]domain.Link
	if err := c.request(ctx, http.MethodGet, "/api/links", nil, &grouped); err != nil {
		return err
	}
	c.commitStore(grouped)
	return nil
}

// FetchPublicLinks retrieves the anonymous read-only view. It does not
// touch the session-owned store.
func (c *Client) FetchPublicLinks(ctx context.Context) (query.Store, error) {
	var grouped map[string][]domain.Link
	if err := c.request(ctx, http.MethodGet, "/api/public-links", nil, &grouped); err != nil {
		return nil, err
	}
	return query.Store(grouped), nil
}

// CreateLinkInput is the raw user input for a new bookmark.
type CreateLinkInput struct {
	URL         string
	Description string
	Tags        string
	Category    string
	IsPrivate   bool
}

type createLinkRequest struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Tags        string `json:"tags,omitempty"`
	Category    string `json:"category,omitempty"`
	IsPrivate   bool   `json:"is_private"`
}

// CreateLink validates and sanitizes the input, submits it, and re-fetches
// the store on success. A failed create leaves the store untouched.
func (c *Client) CreateLink(ctx context.Context, input CreateLinkInput) (*domain.Link, error) {
	sanitizedURL, err := validate.URL(input.URL)
	if err != nil {
		return nil, err
	}
	category, err := validate.Category(input.Category)
	if err != nil {
		return nil, err
	}

	req := createLinkRequest{
		URL:         sanitizedURL,
		Description: validate.TextMax(input.Description, validate.MaxDescriptionLen),
		Tags:        validate.Tags(input.Tags),
		Category:    category,
		IsPrivate:   input.IsPrivate,
	}

	var created domain.Link
	if err := c.request(ctx, http.MethodPost, "/api/links", req, &created); err != nil {
		return nil, err
	}

	if err := c.FetchLinks(ctx); err != nil {
		return &created, err
	}
	return &created, nil
}

// DeleteLink removes a link and re-fetches the store on success.
func (c *Client) DeleteLink(ctx context.Context, id int64) error {
	if err := c.request(ctx, http.MethodDelete, fmt.Sprintf("/api/links/%d", id), nil, nil); err != nil {
		return err
	}
	return c.FetchLinks(ctx)
}

type favoriteRequest struct {
	IsFavorite bool `json:"is_favorite"`
}

// ToggleFavorite flips the favorite flag. After the server acknowledges,
// the held copy is patched in place instead of re-fetching.
func (c *Client) ToggleFavorite(ctx context.Context, id int64, favorite bool) error {
	path := fmt.Sprintf("/api/links/%d/favorite", id)
	if err := c.request(ctx, http.MethodPut, path, favoriteRequest{IsFavorite: favorite}, nil); err != nil {
		return err
	}

	c.patchLink(id, func(link *domain.Link) {
		link.IsFavorite = favorite
	})
	return nil
}

// IncrementAccess bumps a link's access count. After the server
// acknowledges, the held copy is patched in place.
func (c *Client) IncrementAccess(ctx context.Context, id int64) error {
	path := fmt.Sprintf("/api/links/%d/access", id)
	if err := c.request(ctx, http.MethodPut, path, struct{}{}, nil); err != nil {
		return err
	}

	c.patchLink(id, func(link *domain.Link) {
		link.AccessCount++
	})
	return nil
}

// Metadata is the auto-fill payload extracted from a target page.
type Metadata struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Domain      string   `json:"domain"`
}

// FetchMetadata asks the server to extract page metadata for auto-fill.
// Callers treat failures as ignorable.
func (c *Client) FetchMetadata(ctx context.Context, target string) (*Metadata, error) {
	sanitized, err := validate.URL(target)
	if err != nil {
		return nil, err
	}

	var meta Metadata
	path := "/api/metadata?url=" + url.QueryEscape(sanitized)
	if err := c.request(ctx, http.MethodGet, path, nil, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// --- internals ---

func (c *Client) request(ctx context.Context, method, path string, body, out any) error {
	endpoint := path
	if i := strings.IndexByte(endpoint, '?'); i >= 0 {
		endpoint = endpoint[:i]
	}
	if c.limiter.IsLimited("api_"+endpoint, requestsPerMin, rateLimitWindow) {
		return ErrRateLimited
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.gate.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		if c.gate.Invalidate() {
			c.log.Warn("authorization failure, session invalidated", zap.String("path", path))
		}
		return ErrUnauthorized
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		message := readErrorMessage(resp.Body)
		if resp.StatusCode == http.StatusNotFound {
			return fmt.Errorf("%w: %s", ErrNotFound, message)
		}
		if resp.StatusCode == http.StatusTooManyRequests {
			return ErrRateLimited
		}
		return &ServerError{Status: resp.StatusCode, Message: message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func readErrorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func (c *Client) commitStore(grouped map[string][]domain.Link) {
	c.storeMu.Lock()
	defer c.storeMu.Unlock()
	if grouped == nil {
		grouped = map[string][]domain.Link{}
	}
	c.store = query.Store(grouped)
}

func (c *Client) clearStore() {
	c.commitStore(nil)
}

func (c *Client) patchLink(id int64, patch func(*domain.Link)) {
	c.storeMu.Lock()
	defer c.storeMu.Unlock()
	for date := range c.store {
		bucket := c.store[date]
		for i := range bucket {
			if bucket[i].ID == id {
				patch(&bucket[i])
				return
			}
		}
	}
}
