package http

import (
	"LinkBoard-Backend/internal/repository"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// AdminHandler serves the moderation endpoints. Every route here sits
// behind RequireAdmin; the admin flag is taken from the verified token,
// never from the request.
type AdminHandler struct {
	storage repository.Storage
	log     *zap.Logger
}

func NewAdminHandler(storage repository.Storage, log *zap.Logger) *AdminHandler {
	return &AdminHandler{
		storage: storage,
		log:     log,
	}
}

// ListAllLinks returns every bookmark across all users
//
//	@Summary		List all bookmarks (admin)
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		domain.Link
//	@Failure		403	{object}	ErrorResponse	"Admin access required"
//	@Router			/api/admin/links [get]
func (h *AdminHandler) ListAllLinks(w http.ResponseWriter, r *http.Request) {
	links, err := h.storage.ListAllLinks(r.Context())
	if err != nil {
		h.log.Error("failed to list all links", zap.Error(err))
		h.writeError(w, "Failed to list links", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, links, http.StatusOK)
}

// ListAllUsers returns every account
//
//	@Summary		List all users (admin)
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{array}		domain.User
//	@Failure		403	{object}	ErrorResponse	"Admin access required"
//	@Router			/api/admin/users [get]
func (h *AdminHandler) ListAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.storage.ListAllUsers(r.Context())
	if err != nil {
		h.log.Error("failed to list all users", zap.Error(err))
		h.writeError(w, "Failed to list users", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, users, http.StatusOK)
}

// DeleteLink removes any user's bookmark
//
//	@Summary		Delete a bookmark (admin)
//	@Tags			Admin
//	@Security		BearerAuth
//	@Param			id	path	int	true	"Link ID"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	ErrorResponse	"Link not found"
//	@Router			/api/admin/links/{id}/delete [delete]
func (h *AdminHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromPath(w, r.URL.Path, "/api/admin/links/")
	if !ok {
		return
	}

	if err := h.storage.AdminDeleteLink(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			h.writeError(w, "Link not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to admin-delete link", zap.Int64("link_id", id), zap.Error(err))
		h.writeError(w, "Failed to delete link", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleLinkLock locks or unlocks a bookmark's privacy
//
//	@Summary		Toggle a bookmark's privacy lock (admin)
//	@Description	Locking also forces the bookmark private
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	int	true	"Link ID"
//	@Success		200	{object}	domain.Link		"Updated bookmark"
//	@Failure		404	{object}	ErrorResponse	"Link not found"
//	@Router			/api/admin/links/{id}/lock [put]
func (h *AdminHandler) ToggleLinkLock(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromPath(w, r.URL.Path, "/api/admin/links/")
	if !ok {
		return
	}

	link, err := h.storage.AdminToggleLinkLock(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			h.writeError(w, "Link not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to toggle link lock", zap.Int64("link_id", id), zap.Error(err))
		h.writeError(w, "Failed to update link", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, link, http.StatusOK)
}

// ForcePrivate makes a bookmark private without locking it
//
//	@Summary		Force a bookmark private (admin)
//	@Tags			Admin
//	@Security		BearerAuth
//	@Param			id	path	int	true	"Link ID"
//	@Success		204	"Updated"
//	@Failure		404	{object}	ErrorResponse	"Link not found"
//	@Router			/api/admin/links/{id}/force-private [put]
func (h *AdminHandler) ForcePrivate(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromPath(w, r.URL.Path, "/api/admin/links/")
	if !ok {
		return
	}

	if err := h.storage.AdminForcePrivate(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrLinkNotFound) {
			h.writeError(w, "Link not found", http.StatusNotFound)
			return
		}
		h.log.Error("failed to force link private", zap.Int64("link_id", id), zap.Error(err))
		h.writeError(w, "Failed to update link", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ToggleUserAdmin grants or revokes the admin role
//
//	@Summary		Toggle a user's admin role (admin)
//	@Description	Demoting the last administrator is refused
//	@Tags			Admin
//	@Produce		json
//	@Security		BearerAuth
//	@Param			id	path	int	true	"User ID"
//	@Success		200	{object}	domain.User		"Updated user"
//	@Failure		404	{object}	ErrorResponse	"User not found"
//	@Failure		409	{object}	ErrorResponse	"Last administrator"
//	@Router			/api/admin/users/{id}/admin [put]
func (h *AdminHandler) ToggleUserAdmin(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromPath(w, r.URL.Path, "/api/admin/users/")
	if !ok {
		return
	}

	user, err := h.storage.AdminToggleUserAdmin(r.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			h.writeError(w, "User not found", http.StatusNotFound)
		case errors.Is(err, repository.ErrLastAdmin):
			h.writeError(w, "Cannot remove the last administrator", http.StatusConflict)
		default:
			h.log.Error("failed to toggle user admin", zap.Int64("user_id", id), zap.Error(err))
			h.writeError(w, "Failed to update user", http.StatusInternalServerError)
		}
		return
	}

	h.writeJSON(w, user, http.StatusOK)
}

// DeleteUser removes an account and its bookmarks
//
//	@Summary		Delete a user (admin)
//	@Description	Removes the account and every bookmark it owns; the last administrator cannot be deleted
//	@Tags			Admin
//	@Security		BearerAuth
//	@Param			id	path	int	true	"User ID"
//	@Success		204	"Deleted"
//	@Failure		404	{object}	ErrorResponse	"User not found"
//	@Failure		409	{object}	ErrorResponse	"Last administrator"
//	@Router			/api/admin/users/{id}/delete [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := h.idFromPath(w, r.URL.Path, "/api/admin/users/")
	if !ok {
		return
	}

	if err := h.storage.AdminDeleteUser(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			h.writeError(w, "User not found", http.StatusNotFound)
		case errors.Is(err, repository.ErrLastAdmin):
			h.writeError(w, "Cannot remove the last administrator", http.StatusConflict)
		default:
			h.log.Error("failed to delete user", zap.Int64("user_id", id), zap.Error(err))
			h.writeError(w, "Failed to delete user", http.StatusInternalServerError)
		}
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// --- Helpers ---

func (h *AdminHandler) idFromPath(w http.ResponseWriter, path, prefix string) (int64, bool) {
	trimmed := strings.TrimPrefix(path, prefix)
	if i := strings.IndexByte(trimmed, '/'); i >= 0 {
		trimmed = trimmed[:i]
	}

	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, "Invalid ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (h *AdminHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error("failed to encode response", zap.Error(err))
	}
}

func (h *AdminHandler) writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
