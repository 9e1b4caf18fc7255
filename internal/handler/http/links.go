package http

import (
	"LinkBoard-Backend/internal/analytics"
	"LinkBoard-Backend/internal/auth"
	"LinkBoard-Backend/internal/repository"
	"LinkBoard-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"LinkBoard-Backend/pkg/validate"
)

// LinksHandler serves the bookmark endpoints.
type LinksHandler struct {
	storage   repository.Storage
	links     *service.LinkService
	processor *analytics.Processor
	log       *zap.Logger
}

func NewLinksHandler(storage repository.Storage, links *service.LinkService, processor *analytics.Processor, log *zap.Logger) *LinksHandler {
	return &LinksHandler{
		storage:   storage,
		links:     links,
		processor: processor,
		log:       log,
	}
}

// CreateLinkRequest is the bookmark creation payload.
type CreateLinkRequest struct {
	URL         string `json:"url"`
	Description string `json:"description,omitempty"`
	Tags        string `json:"tags,omitempty"`
	Category    string `json:"category,omitempty"`
	IsPrivate   bool   `json:"is_private"`
}

// FavoriteRequest sets the favorite flag explicitly.
type FavoriteRequest struct {
	IsFavorite bool `json:"is_favorite"`
}

// ListLinks returns the user's bookmarks grouped by date
//
//	@Summary		List bookmarks
//	@Description	Returns the authenticated user's bookmarks grouped by creation date (YYYY-MM-DD keys)
//	@Tags			Links
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	map[string][]domain.Link	"Grouped bookmarks"
//	@Failure		401	{object}	ErrorResponse				"Authentication required"
//	@Router			/api/links [get]
func (h *LinksHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	store, err := h.links.UserLinks(r.Context(), userID)
	if err != nil {
		h.log.Error("failed to list user links", zap.Int64("user_id", userID), zap.Error(err))
		h.writeError(w, "Failed to list links", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, store, http.StatusOK)
}

// ListPublicLinks returns every public bookmark grouped by date
//
//	@Summary		List public bookmarks
//	@Description	Anonymous read-only view of public bookmarks, grouped by creation date and annotated with the owner's username
//	@Tags			Links
//	@Produce		json
//	@Success		200	{object}	map[string][]domain.Link	"Grouped public bookmarks"
//	@Router			/api/public-links [get]
func (h *LinksHandler) ListPublicLinks(w http.ResponseWriter, r *http.Request) {
	store, err := h.links.PublicLinks(r.Context())
	if err != nil {
		h.log.Error("failed to list public links", zap.Error(err))
		h.writeError(w, "Failed to list links", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, store, http.StatusOK)
}

// CreateLink stores a new bookmark
//
//	@Summary		Create a bookmark
//	@Description	Validates, sanitizes, and stores a new bookmark
//	@Tags			Links
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		CreateLinkRequest	true	"Bookmark"
//	@Success		201		{object}	domain.Link			"Created bookmark"
//	@Failure		400		{object}	ErrorResponse		"Validation failed"
//	@Failure		401		{object}	ErrorResponse		"Authentication required"
//	@Router			/api/links [post]
func (h *LinksHandler) CreateLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid create link request", zap.Error(err))
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	link, err := h.links.Create(r.Context(), userID, service.CreateLinkInput{
		URL:         req.URL,
		Description: req.Description,
		Tags:        req.Tags,
		Category:    req.Category,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		if isValidationError(err) {
			h.writeError(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.log.Error("failed to create link", zap.Int64("user_id", userID), zap.Error(err))
		h.writeError(w, "Failed to create link", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, link, http.StatusCreated)
}

// DeleteLink removes one of the user's bookmarks
//
//	@Summary		Delete a bookmark
//	@Tags			Links
//	@Security		BearerAuth
//	@Param			id	path	int	true	"Link ID"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	ErrorResponse	"Link not found"
//	@Router			/api/links/{id} [delete]
func (h *LinksHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	id, ok := h.linkIDFromPath(w, r.URL.Path)
	if !ok {
		return
	}

	if err := h.storage.DeleteLink(r.Context(), id, userID); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			h.writeError(w, "Link not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to delete link", zap.Int64("link_id", id), zap.Error(err))
		h.writeError(w, "Failed to delete link", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite sets the favorite flag
//
//	@Summary		Set favorite flag
//	@Tags			Links
//	@Accept			json
//	@Security		BearerAuth
//	@Param			id		path	int				true	"Link ID"
//	@Param			request	body	FavoriteRequest	true	"New flag value"
//	@Success		204	"Updated"
//	@Failure		404	{object}	ErrorResponse	"Link not found"
//	@Router			/api/links/{id}/favorite [put]
func (h *LinksHandler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	id, ok := h.linkIDFromPath(w, r.URL.Path)
	if !ok {
		return
	}

	var req FavoriteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	if err := h.storage.SetFavorite(r.Context(), id, userID, req.IsFavorite); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			h.writeError(w, "Link not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to set favorite", zap.Int64("link_id", id), zap.Error(err))
		h.writeError(w, "Failed to update link", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// IncrementAccess records an open of the bookmark
//
//	@Summary		Record an access
//	@Description	Acknowledges immediately; the counter is persisted asynchronously
//	@Tags			Links
//	@Security		BearerAuth
//	@Param			id	path	int	true	"Link ID"
//	@Success		204	"Accepted"
//	@Router			/api/links/{id}/access [put]
func (h *LinksHandler) IncrementAccess(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.GetUserIDFromContext(r.Context()); !ok {
		h.writeError(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	id, ok := h.linkIDFromPath(w, r.URL.Path)
	if !ok {
		return
	}

	event := &analytics.AccessEvent{LinkID: id, AccessedAt: time.Now()}
	if err := h.processor.Submit(event); err != nil {
		// Fall back to a synchronous increment when the queue is down.
		h.log.Warn("access processor unavailable, incrementing synchronously", zap.Error(err))
		if err := h.storage.IncrementAccessCount(r.Context(), id, 1); err != nil {
			if errors.Is(err, repository.ErrLinkNotFound) {
				h.writeError(w, "Link not found", http.StatusNotFound)
				return
			}
			h.log.Error("failed to increment access count", zap.Int64("link_id", id), zap.Error(err))
			h.writeError(w, "Failed to update link", http.StatusInternalServerError)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// TogglePrivacy flips the private flag
//
//	@Summary		Toggle privacy
//	@Description	Flips the private flag; refused when an administrator locked the link
//	@Tags			Links
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	int	true	"Link ID"
//	@Success		200	{object}	domain.Link		"Updated bookmark"
//	@Failure		403	{object}	ErrorResponse	"Link is locked"
//	@Failure		404	{object}	ErrorResponse	"Link not found"
//	@Router			/api/links/{id}/privacy [put]
func (h *LinksHandler) TogglePrivacy(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		h.writeError(w, "User ID not found in context", http.StatusUnauthorized)
		return
	}

	id, ok := h.linkIDFromPath(w, r.URL.Path)
	if !ok {
		return
	}

	link, err := h.storage.TogglePrivacy(r.Context(), id, userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrLinkNotFound):
			h.writeError(w, "Link not found", http.StatusNotFound)
		case errors.Is(err, repository.ErrLinkLocked):
			h.writeError(w, "Link is locked by an administrator", http.StatusForbidden)
		default:
			h.log.Error("failed to toggle privacy", zap.Int64("link_id", id), zap.Error(err))
			h.writeError(w, "Failed to update link", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, link, http.StatusOK)
}

// --- Helpers ---

// linkIDFromPath pulls the numeric ID out of /api/links/{id}[/suffix].
func (h *LinksHandler) linkIDFromPath(w http.ResponseWriter, path string) (int64, bool) {
	trimmed := strings.TrimPrefix(path, "/api/links/")
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}

	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, "Invalid link ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func isValidationError(err error) bool {
	for _, sentinel := range []error{
		validate.ErrURLRequired,
		validate.ErrURLInvalid,
		validate.ErrSchemeNotAllowed,
		validate.ErrHostBlocked,
		validate.ErrCategoryInvalid,
	} {
		if errors.Is(err, sentinel) {
			return true
		}
	}
	return false
}

func (h *LinksHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *LinksHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// ErrorResponse mirrors the auth package's error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
