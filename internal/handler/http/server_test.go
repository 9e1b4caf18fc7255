package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"LinkBoard-Backend/internal/analytics"
	"LinkBoard-Backend/internal/auth"
	"LinkBoard-Backend/internal/domain"
	"LinkBoard-Backend/internal/repository/memory"
	"LinkBoard-Backend/internal/service"
	"LinkBoard-Backend/pkg/ratelimit"
)

type testEnv struct {
	server  *Server
	routes  http.Handler
	storage *memory.Storage
	jwt     *auth.JWTService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	storage := memory.New()
	jwtService := auth.NewJWTService(&auth.JWTConfig{
		SecretKey:     []byte("test-secret"),
		TokenDuration: time.Hour,
		Issuer:        "linkboard-test",
	})

	processor := analytics.NewProcessor(storage, zap.NewNop(), analytics.ProcessorConfig{
		WorkerCount:     1,
		BufferSize:      16,
		RetryAttempts:   1,
		RetryDelay:      time.Millisecond,
		ShutdownTimeout: 5 * time.Second,
	})
	require.NoError(t, processor.Start())
	t.Cleanup(func() { _ = processor.Stop() })

	srv := NewServer(
		storage,
		service.NewLinkService(storage),
		processor,
		jwtService,
		auth.NewPasswordServiceWithCost(4),
		&auth.OAuthConfig{FrontendURL: "http://localhost:8080"},
		zap.NewNop(),
	)

	// Generous budgets so unrelated tests never trip the shared limiters.
	srv.generalLimit = ratelimit.NewIPLimiter(10000, time.Minute)
	srv.authLimit = ratelimit.NewIPLimiter(10000, time.Minute)
	srv.metadataLimit = ratelimit.NewIPLimiter(10000, time.Minute)

	return &testEnv{server: srv, routes: srv.SetupRoutes(), storage: storage, jwt: jwtService}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.routes.ServeHTTP(rec, req)
	return rec
}

func (e *testEnv) register(t *testing.T, username, password string) (string, domain.User) {
	t.Helper()
	rec := e.do(t, http.MethodPost, "/api/register", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp auth.AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Token, resp.User
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	hash := "h"
	admin := &domain.User{Username: "admin", PasswordHash: &hash, IsAdmin: true}
	require.NoError(t, e.storage.CreateUser(context.Background(), admin))

	token, err := e.jwt.GenerateToken(admin.ID, admin.Username, true)
	require.NoError(t, err)
	return token
}

func TestLinkLifecycle(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "alice", "Secret1")

	rec := env.do(t, http.MethodPost, "/api/links", token, map[string]any{
		"url":         "example.com",
		"description": "Example site",
		"tags":        "go, web",
		"category":    "Work",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created domain.Link
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))
	assert.Equal(t, "https://example.com", created.URL)

	rec = env.do(t, http.MethodGet, "/api/links", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var grouped map[string][]domain.Link
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&grouped))
	today := time.Now().Format("2006-01-02")
	require.Len(t, grouped[today], 1)
	assert.Equal(t, created.ID, grouped[today][0].ID)

	path := fmt.Sprintf("/api/links/%d/favorite", created.ID)
	rec = env.do(t, http.MethodPut, path, token, map[string]bool{"is_favorite": true})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/links/%d", created.ID), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/links/%d", created.ID), token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateLinkValidation(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "alice", "Secret1")

	tests := []struct {
		name string
		body map[string]any
	}{
		{name: "missing url", body: map[string]any{"url": ""}},
		{name: "blocked host", body: map[string]any{"url": "http://localhost/internal"}},
		{name: "bad scheme", body: map[string]any{"url": "ftp://example.com"}},
		{name: "bad category", body: map[string]any{"url": "https://ok.example", "category": "a&b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/api/links", token, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLinksRequireAuth(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/links", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/links", "", map[string]any{"url": "https://example.com"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPublicLinksAnonymous(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "alice", "Secret1")

	rec := env.do(t, http.MethodPost, "/api/links", token, map[string]any{"url": "https://pub.example"})
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = env.do(t, http.MethodPost, "/api/links", token, map[string]any{"url": "https://priv.example", "is_private": true})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/public-links", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var grouped map[string][]domain.Link
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&grouped))
	today := time.Now().Format("2006-01-02")
	require.Len(t, grouped[today], 1)
	assert.Equal(t, "https://pub.example", grouped[today][0].URL)
	assert.Equal(t, "alice", grouped[today][0].Username)
}

func TestAccessEndpointAcknowledgesAndPersists(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "alice", "Secret1")

	rec := env.do(t, http.MethodPost, "/api/links", token, map[string]any{"url": "https://example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Link
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/links/%d/access", created.ID), token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	// The increment is asynchronous; poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, err := env.storage.GetLink(context.Background(), created.ID)
		require.NoError(t, err)
		if got.AccessCount == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("access count never reached 1, got %d", got.AccessCount)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestPrivacyToggleLocked(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "alice", "Secret1")
	adminToken := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/api/links", token, map[string]any{"url": "https://example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Link
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/links/%d/privacy", created.ID), token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var toggled domain.Link
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&toggled))
	assert.True(t, toggled.IsPrivate)

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/links/%d/lock", created.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/links/%d/privacy", created.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code, "locked link privacy must not be togglable by the owner")
}

func TestAdminRoutesEnforcedServerSide(t *testing.T) {
	env := newTestEnv(t)
	userToken, _ := env.register(t, "alice", "Secret1")
	adminToken := env.adminToken(t)

	adminPaths := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/admin/links"},
		{http.MethodGet, "/api/admin/users"},
	}

	for _, p := range adminPaths {
		rec := env.do(t, p.method, p.path, userToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code, "%s must reject a non-admin token", p.path)

		rec = env.do(t, p.method, p.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "%s must reject anonymous", p.path)

		rec = env.do(t, p.method, p.path, adminToken, nil)
		assert.Equal(t, http.StatusOK, rec.Code, "%s must serve an admin token", p.path)
	}
}

func TestAdminModerationFlow(t *testing.T) {
	env := newTestEnv(t)
	userToken, user := env.register(t, "alice", "Secret1")
	adminToken := env.adminToken(t)

	rec := env.do(t, http.MethodPost, "/api/links", userToken, map[string]any{"url": "https://example.com"})
	require.Equal(t, http.StatusCreated, rec.Code)
	var created domain.Link
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&created))

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/links/%d/force-private", created.ID), adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	got, err := env.storage.GetLink(context.Background(), created.ID)
	require.NoError(t, err)
	assert.True(t, got.IsPrivate)

	rec = env.do(t, http.MethodPut, fmt.Sprintf("/api/admin/users/%d/admin", user.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var promoted domain.User
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&promoted))
	assert.True(t, promoted.IsAdmin)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/links/%d/delete", created.ID), adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/users/%d/delete", user.ID), adminToken, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestAuthRateLimit(t *testing.T) {
	env := newTestEnv(t)
	env.server.authLimit = ratelimit.NewIPLimiter(2, time.Minute)
	env.routes = env.server.SetupRoutes()

	body := map[string]string{"username": "alice", "password": "Wrong99"}
	for i := 0; i < 2; i++ {
		rec := env.do(t, http.MethodPost, "/api/login", "", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}

	rec := env.do(t, http.MethodPost, "/api/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "alice", "Secret1")

	rec := env.do(t, http.MethodPut, "/api/links", token, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/public-links", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestMetadataRejectsBlockedURL(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.register(t, "alice", "Secret1")

	rec := env.do(t, http.MethodGet, "/api/metadata?url=http%3A%2F%2F127.0.0.1%2Fadmin", token, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/metadata?url=https%3A%2F%2Fexample.com", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "metadata requires a session")
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.DatabaseStatus)

	rec = env.do(t, http.MethodGet, "/ready", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}
