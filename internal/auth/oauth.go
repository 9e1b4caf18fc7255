package auth

import (
	"LinkBoard-Backend/internal/domain"
	"LinkBoard-Backend/internal/repository"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	stateCookieName   = "oauth_state"
	stateCookieMaxAge = 600
)

// OAuthHandlers implements the Google sign-in flow. The callback redirects
// to the frontend with the token and user as query parameters; the frontend
// adopts and then strips them from its location.
type OAuthHandlers struct {
	storage     repository.Storage
	jwtService  *JWTService
	config      *oauth2.Config
	frontendURL string
	log         *zap.Logger
}

// OAuthConfig carries the Google client settings.
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	FrontendURL  string
}

func NewOAuthHandlers(storage repository.Storage, jwtService *JWTService, cfg *OAuthConfig, log *zap.Logger) *OAuthHandlers {
	return &OAuthHandlers{
		storage:    storage,
		jwtService: jwtService,
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		frontendURL: strings.TrimRight(cfg.FrontendURL, "/"),
		log:         log,
	}
}

// Enabled reports whether Google credentials are configured.
func (h *OAuthHandlers) Enabled() bool {
	return h.config.ClientID != "" && h.config.ClientSecret != ""
}

// GoogleLogin starts the OAuth flow
//
//	@Summary		Start Google sign-in
//	@Description	Redirects to Google's consent screen
//	@Tags			Authentication
//	@Success		307	"Redirect to Google"
//	@Router			/api/auth/google [get]
func (h *OAuthHandlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if !h.Enabled() {
		http.Error(w, "Google sign-in is not configured", http.StatusNotImplemented)
		return
	}

	state, err := randomState()
	if err != nil {
		h.log.Error("failed to generate oauth state", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    state,
		Path:     "/",
		MaxAge:   stateCookieMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.config.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

type googleUserInfo struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// GoogleCallback completes the OAuth flow
//
//	@Summary		Google sign-in callback
//	@Description	Exchanges the code, finds or creates the user, and redirects to the frontend with token and user parameters
//	@Tags			Authentication
//	@Success		307	"Redirect to frontend"
//	@Failure		400	{object}	ErrorResponse	"State mismatch or missing code"
//	@Router			/api/auth/google/callback [get]
func (h *OAuthHandlers) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		h.log.Warn("oauth state mismatch")
		http.Error(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}

	// The state cookie is single use.
	http.SetCookie(w, &http.Cookie{Name: stateCookieName, Value: "", Path: "/", MaxAge: -1})

	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	token, err := h.config.Exchange(r.Context(), code)
	if err != nil {
		h.log.Error("failed to exchange oauth code", zap.Error(err))
		http.Error(w, "Authorization failed", http.StatusBadGateway)
		return
	}

	info, err := h.fetchUserInfo(r, token)
	if err != nil {
		h.log.Error("failed to fetch google user info", zap.Error(err))
		http.Error(w, "Authorization failed", http.StatusBadGateway)
		return
	}

	user, err := h.findOrCreateUser(r, info)
	if err != nil {
		h.log.Error("failed to find or create oauth user", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	jwtToken, err := h.jwtService.GenerateToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		h.log.Error("failed to generate token", zap.Error(err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	userJSON, err := json.Marshal(user)
	if err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	redirect := fmt.Sprintf("%s/?token=%s&user=%s",
		h.frontendURL, url.QueryEscape(jwtToken), url.QueryEscape(string(userJSON)))

	h.log.Info("google sign-in completed", zap.Int64("user_id", user.ID), zap.String("username", user.Username))
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

func (h *OAuthHandlers) fetchUserInfo(r *http.Request, token *oauth2.Token) (*googleUserInfo, error) {
	client := h.config.Client(r.Context(), token)
	client.Timeout = 10 * time.Second

	resp, err := client.Get(googleUserInfoURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}

	var info googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	if info.ID == "" {
		return nil, errors.New("userinfo response missing id")
	}
	return &info, nil
}

// findOrCreateUser matches by Google ID first, then adopts an existing
// account with the same email, then registers a fresh one.
func (h *OAuthHandlers) findOrCreateUser(r *http.Request, info *googleUserInfo) (*domain.User, error) {
	ctx := r.Context()

	user, err := h.storage.GetUserByGoogleID(ctx, info.ID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, err
	}

	if info.Email != "" {
		user, err = h.storage.GetUserByEmail(ctx, info.Email)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, err
		}
	}

	username, err := h.availableUsername(r, info)
	if err != nil {
		return nil, err
	}

	created := &domain.User{
		Username: username,
		GoogleID: &info.ID,
	}
	if info.Email != "" {
		email := info.Email
		created.Email = &email
	}
	if err := h.storage.CreateUser(ctx, created); err != nil {
		return nil, err
	}
	return created, nil
}

// availableUsername derives a username from the email local part or the
// display name, suffixing a counter on collision.
func (h *OAuthHandlers) availableUsername(r *http.Request, info *googleUserInfo) (string, error) {
	base := info.Email
	if i := strings.IndexByte(base, '@'); i > 0 {
		base = base[:i]
	}
	if base == "" {
		base = strings.ToLower(strings.ReplaceAll(info.Name, " ", ""))
	}
	if base == "" {
		base = "user"
	}

	candidate := base
	for i := 1; i < 100; i++ {
		_, err := h.storage.GetUserByUsername(r.Context(), candidate)
		if errors.Is(err, repository.ErrUserNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", err
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", errors.New("could not find an available username")
}

func randomState() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
