// Package http wires the API surface: route setup, per-endpoint-class
// rate limiting, and the bookmark, admin, metadata, and health handlers.
package http

import (
	"LinkBoard-Backend/internal/analytics"
	"LinkBoard-Backend/internal/auth"
	"LinkBoard-Backend/internal/repository"
	"LinkBoard-Backend/internal/service"
	"net/http"
	"strings"

	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	"LinkBoard-Backend/pkg/ratelimit"
)

// Server bundles the handlers and middleware behind one route table.
type Server struct {
	authHandlers    *auth.AuthHandlers
	oauthHandlers   *auth.OAuthHandlers
	linksHandler    *LinksHandler
	adminHandler    *AdminHandler
	metadataHandler *MetadataHandler
	healthHandler   *HealthHandler
	authMiddleware  *auth.Middleware
	log             *zap.Logger

	generalLimit  *ratelimit.IPLimiter
	authLimit     *ratelimit.IPLimiter
	metadataLimit *ratelimit.IPLimiter
}

func NewServer(
	storage repository.Storage,
	linkService *service.LinkService,
	processor *analytics.Processor,
	jwtService *auth.JWTService,
	passwordService *auth.PasswordService,
	oauthConfig *auth.OAuthConfig,
	log *zap.Logger,
) *Server {
	return &Server{
		authHandlers:    auth.NewAuthHandlers(storage, jwtService, passwordService, log),
		oauthHandlers:   auth.NewOAuthHandlers(storage, jwtService, oauthConfig, log),
		linksHandler:    NewLinksHandler(storage, linkService, processor, log),
		adminHandler:    NewAdminHandler(storage, log),
		metadataHandler: NewMetadataHandler(log),
		healthHandler:   NewHealthHandler(storage, processor, log),
		authMiddleware:  auth.NewMiddleware(jwtService, log),
		log:             log,

		generalLimit:  ratelimit.General,
		authLimit:     ratelimit.Auth,
		metadataLimit: ratelimit.Metadata,
	}
}

// SetupRoutes builds the route table.
func (s *Server) SetupRoutes() http.Handler {
	mux := http.NewServeMux()

	// Health checks, no authentication.
	mux.HandleFunc("/health", s.healthHandler.Health)
	mux.HandleFunc("/ready", s.healthHandler.Ready)
	mux.HandleFunc("/metrics", s.healthHandler.Metrics)

	// Swagger documentation.
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Credential endpoints, tight per-IP budget against brute force.
	mux.HandleFunc("/api/register", s.withLimit(s.authLimit, s.withCORS(s.requireMethod(http.MethodPost, s.authHandlers.Register))))
	mux.HandleFunc("/api/login", s.withLimit(s.authLimit, s.withCORS(s.requireMethod(http.MethodPost, s.authHandlers.Login))))

	// Google OAuth flow.
	mux.HandleFunc("/api/auth/google", s.withLimit(s.authLimit, s.oauthHandlers.GoogleLogin))
	mux.HandleFunc("/api/auth/google/callback", s.withLimit(s.authLimit, s.oauthHandlers.GoogleCallback))

	// Bookmark endpoints.
	mux.HandleFunc("/api/links", s.withLimit(s.generalLimit, s.withCORS(s.authMiddleware.RequireAuth(s.handleLinksCollection))))
	mux.HandleFunc("/api/links/", s.withLimit(s.generalLimit, s.withCORS(s.authMiddleware.RequireAuth(s.handleLinksItem))))
	mux.HandleFunc("/api/public-links", s.withLimit(s.generalLimit, s.withCORS(s.requireMethod(http.MethodGet, s.linksHandler.ListPublicLinks))))

	// Metadata extraction, limited harder because of the outbound fetch.
	mux.HandleFunc("/api/metadata", s.withLimit(s.metadataLimit, s.withCORS(s.authMiddleware.RequireAuth(s.requireMethod(http.MethodGet, s.metadataHandler.GetMetadata)))))

	// Moderation endpoints; the admin check runs server-side on the token.
	mux.HandleFunc("/api/admin/links", s.withLimit(s.generalLimit, s.withCORS(s.authMiddleware.RequireAdmin(s.requireMethod(http.MethodGet, s.adminHandler.ListAllLinks)))))
	mux.HandleFunc("/api/admin/links/", s.withLimit(s.generalLimit, s.withCORS(s.authMiddleware.RequireAdmin(s.handleAdminLinksItem))))
	mux.HandleFunc("/api/admin/users", s.withLimit(s.generalLimit, s.withCORS(s.authMiddleware.RequireAdmin(s.requireMethod(http.MethodGet, s.adminHandler.ListAllUsers)))))
	mux.HandleFunc("/api/admin/users/", s.withLimit(s.generalLimit, s.withCORS(s.authMiddleware.RequireAdmin(s.handleAdminUsersItem))))

	return mux
}

// handleLinksCollection dispatches /api/links by method.
func (s *Server) handleLinksCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.linksHandler.ListLinks(w, r)
	case http.MethodPost:
		s.linksHandler.CreateLink(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleLinksItem dispatches /api/links/{id} and its action suffixes.
func (s *Server) handleLinksItem(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodDelete:
		s.linksHandler.DeleteLink(w, r)
	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/favorite"):
		s.linksHandler.ToggleFavorite(w, r)
	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/access"):
		s.linksHandler.IncrementAccess(w, r)
	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/privacy"):
		s.linksHandler.TogglePrivacy(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAdminLinksItem dispatches /api/admin/links/{id}/{action}.
func (s *Server) handleAdminLinksItem(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodDelete && strings.HasSuffix(r.URL.Path, "/delete"):
		s.adminHandler.DeleteLink(w, r)
	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/lock"):
		s.adminHandler.ToggleLinkLock(w, r)
	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/force-private"):
		s.adminHandler.ForcePrivate(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleAdminUsersItem dispatches /api/admin/users/{id}/{action}.
func (s *Server) handleAdminUsersItem(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPut && strings.HasSuffix(r.URL.Path, "/admin"):
		s.adminHandler.ToggleUserAdmin(w, r)
	case r.Method == http.MethodDelete && strings.HasSuffix(r.URL.Path, "/delete"):
		s.adminHandler.DeleteUser(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) withCORS(handler http.HandlerFunc) http.HandlerFunc {
	return s.authMiddleware.CORS(handler)
}

func (s *Server) withLimit(limiter *ratelimit.IPLimiter, handler http.HandlerFunc) http.HandlerFunc {
	limited := limiter.Middleware(handler)
	return func(w http.ResponseWriter, r *http.Request) {
		limited.ServeHTTP(w, r)
	}
}

func (s *Server) requireMethod(method string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// CORS preflight is answered by the CORS middleware.
		if r.Method != method && r.Method != http.MethodOptions {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
