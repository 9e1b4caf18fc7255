package auth

import (
	"LinkBoard-Backend/internal/domain"
	"LinkBoard-Backend/internal/repository"
	"LinkBoard-Backend/pkg/validate"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// AuthHandlers serves the credential endpoints.
type AuthHandlers struct {
	storage         repository.Storage
	jwtService      *JWTService
	passwordService *PasswordService
	log             *zap.Logger
}

func NewAuthHandlers(storage repository.Storage, jwtService *JWTService, passwordService *PasswordService, log *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		storage:         storage,
		jwtService:      jwtService,
		passwordService: passwordService,
		log:             log,
	}
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is the payload both credential endpoints return.
type AuthResponse struct {
	Token string      `json:"token"`
	User  domain.User `json:"user"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// Register handles account creation
//
//	@Summary		Register a new user
//	@Description	Create an account with username and password
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CredentialsRequest	true	"Registration request"
//	@Success		201		{object}	AuthResponse		"User registered"
//	@Failure		400		{object}	ErrorResponse		"Invalid credentials format"
//	@Failure		409		{object}	ErrorResponse		"Username taken"
//	@Router			/api/register [post]
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid registration request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	username, err := validate.RegistrationCredentials(req.Username, req.Password)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	hashedPassword, err := h.passwordService.HashPassword(req.Password)
	if err != nil {
		h.log.Error("failed to hash password", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: &hashedPassword,
	}
	if err := h.storage.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			h.writeError(w, "Username already taken", http.StatusConflict)
			return
		}
		h.log.Error("failed to create user", zap.String("username", username), zap.Error(err))
		h.writeError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		h.log.Error("failed to generate token", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("user registered", zap.Int64("user_id", user.ID), zap.String("username", username))
	h.writeJSON(w, AuthResponse{Token: token, User: *user}, http.StatusCreated)
}

// Login handles credential sign-in
//
//	@Summary		Login
//	@Description	Authenticate with username and password, receive a JWT
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CredentialsRequest	true	"Login request"
//	@Success		200		{object}	AuthResponse		"Login successful"
//	@Failure		400		{object}	ErrorResponse		"Invalid credentials format"
//	@Failure		401		{object}	ErrorResponse		"Invalid username or password"
//	@Router			/api/login [post]
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid login request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	username, err := validate.Credentials(req.Username, req.Password)
	if err != nil {
		h.writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.storage.GetUserByUsername(r.Context(), username)
	if err != nil {
		h.log.Debug("user not found for login", zap.String("username", username))
		h.writeError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	// OAuth-only accounts have no password to check against.
	if user.PasswordHash == nil {
		h.writeError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	if err := h.passwordService.VerifyPassword(*user.PasswordHash, req.Password); err != nil {
		h.log.Debug("invalid password", zap.String("username", username))
		h.writeError(w, "Invalid username or password", http.StatusUnauthorized)
		return
	}

	token, err := h.jwtService.GenerateToken(user.ID, user.Username, user.IsAdmin)
	if err != nil {
		h.log.Error("failed to generate token", zap.Error(err))
		h.writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("user logged in", zap.Int64("user_id", user.ID), zap.String("username", username))
	h.writeJSON(w, AuthResponse{Token: token, User: *user}, http.StatusOK)
}

// Helper methods

func (h *AuthHandlers) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

func (h *AuthHandlers) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
