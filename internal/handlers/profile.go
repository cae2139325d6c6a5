package handlers

import (
	"net/http"

	"flightshots/internal/middleware"
	"flightshots/internal/models"
	"flightshots/internal/repository"

	"github.com/go-chi/chi/v5"
)

type UserHandler struct {
	users  *repository.UserRepository
	photos *repository.PhotoRepository
}

func NewUserHandler(users *repository.UserRepository, photos *repository.PhotoRepository) *UserHandler {
	return &UserHandler{users: users, photos: photos}
}

// GET /api/users/{id}
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, ok := h.users.GetByID(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, r, repository.ErrUserNotFound)
		return
	}

	view := levelView(u)
	if viewer, ok := middleware.GetUser(r.Context()); !ok || (viewer.ID != u.ID && viewer.Role != models.RoleAdmin) {
		view.User.Email = ""
	}
	writeJSON(w, http.StatusOK, view)
}

// GET /api/users/{id}/photos
func (h *UserHandler) Photos(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.users.GetByID(id); !ok {
		writeError(w, r, repository.ErrUserNotFound)
		return
	}

	photos := []models.Photo{}
	for _, p := range h.photos.UserPhotos(id) {
		if visible(r, p) {
			photos = append(photos, p)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"photos": photos, "total": len(photos)})
}

// PUT /api/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.GetUser(r.Context())

	var patch models.UserPatch
	if err := decode(w, r, &patch); err != nil {
		badRequest(w, r)
		return
	}
	if patch.Empty() {
		writeMessage(w, r, http.StatusBadRequest, "form.invalid")
		return
	}

	updated, err := h.users.UpdateUser(r.Context(), u.ID, patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, models.Ok("profile.updated"), map[string]any{"user": updated.Public()})
}
