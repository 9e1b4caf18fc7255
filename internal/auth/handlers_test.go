package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"LinkBoard-Backend/internal/domain"
	"LinkBoard-Backend/internal/repository/memory"
)

func testHandlers(t *testing.T) (*AuthHandlers, *memory.Storage, *JWTService) {
	t.Helper()
	storage := memory.New()
	jwtService := testJWTService(time.Hour)
	return NewAuthHandlers(storage, jwtService, NewPasswordServiceWithCost(4), zap.NewNop()), storage, jwtService
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestRegisterAndLogin(t *testing.T) {
	h, _, jwtService := testHandlers(t)

	rec := postJSON(t, h.Register, "/api/register", CredentialsRequest{Username: "alice", Password: "Secret1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	var registered AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&registered))
	assert.Equal(t, "alice", registered.User.Username)
	assert.False(t, registered.User.IsAdmin)

	claims, err := jwtService.ValidateToken(registered.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)

	rec = postJSON(t, h.Login, "/api/login", CredentialsRequest{Username: "alice", Password: "Secret1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var loggedIn AuthResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&loggedIn))
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)
	assert.NotEmpty(t, loggedIn.Token)
}

func TestRegisterRejectsWeakCredentials(t *testing.T) {
	h, _, _ := testHandlers(t)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "short username", username: "ab", password: "Secret1"},
		{name: "short password", username: "alice", password: "Ab1"},
		{name: "no uppercase", username: "alice", password: "secret1"},
		{name: "no digit", username: "alice", password: "Secrets"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Register, "/api/register", CredentialsRequest{Username: tt.username, Password: tt.password})
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	h, _, _ := testHandlers(t)

	rec := postJSON(t, h.Register, "/api/register", CredentialsRequest{Username: "alice", Password: "Secret1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.Register, "/api/register", CredentialsRequest{Username: "alice", Password: "Secret2"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginWrongPassword(t *testing.T) {
	h, _, _ := testHandlers(t)

	rec := postJSON(t, h.Register, "/api/register", CredentialsRequest{Username: "alice", Password: "Secret1"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = postJSON(t, h.Login, "/api/login", CredentialsRequest{Username: "alice", Password: "Wrong99"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = postJSON(t, h.Login, "/api/login", CredentialsRequest{Username: "nobody", Password: "Secret1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginOAuthOnlyAccount(t *testing.T) {
	h, storage, _ := testHandlers(t)

	googleID := "g-1"
	require.NoError(t, storage.CreateUser(context.Background(), &domain.User{Username: "carol", GoogleID: &googleID}))

	rec := postJSON(t, h.Login, "/api/login", CredentialsRequest{Username: "carol", Password: "Secret1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAuthMiddleware(t *testing.T) {
	jwtService := testJWTService(time.Hour)
	mw := NewMiddleware(jwtService, zap.NewNop())

	var gotUserID int64
	protected := mw.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = GetUserIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/links", nil)
	rec := httptest.NewRecorder()
	protected(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "no header")

	token, err := jwtService.GenerateToken(7, "alice", false)
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodGet, "/api/links", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	protected(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), gotUserID)

	req = httptest.NewRequest(http.MethodGet, "/api/links", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	protected(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminMiddleware(t *testing.T) {
	jwtService := testJWTService(time.Hour)
	mw := NewMiddleware(jwtService, zap.NewNop())

	protected := mw.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	userToken, err := jwtService.GenerateToken(1, "alice", false)
	require.NoError(t, err)
	adminToken, err := jwtService.GenerateToken(2, "admin", true)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/links", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec := httptest.NewRecorder()
	protected(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code, "non-admin token must be rejected")

	req = httptest.NewRequest(http.MethodGet, "/api/admin/links", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec = httptest.NewRecorder()
	protected(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/links", nil)
	rec = httptest.NewRecorder()
	protected(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "anonymous request")
}
