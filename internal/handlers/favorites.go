package handlers

import (
	"net/http"

	"flightshots/internal/middleware"
	"flightshots/internal/models"
	"flightshots/internal/repository"

	"github.com/go-chi/chi/v5"
)

// POST /api/photos/{id}/favorite
func (h *PhotoHandler) Favorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, _ := middleware.GetUser(r.Context())

	p, ok := h.photos.GetByID(id)
	if !ok || !visible(r, p) {
		writeError(w, r, repository.ErrPhotoNotFound)
		return
	}
	added, err := h.photos.ToggleFavorite(r.Context(), id, u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	key := "photo.unfavorited"
	if added {
		key = "photo.favorited"
	}
	h.respondToggle(w, r, key, "favorited", added)
}

// GET /api/users/{id}/favorites
func (h *UserHandler) Favorites(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := h.users.GetByID(id); !ok {
		writeError(w, r, repository.ErrUserNotFound)
		return
	}

	photos := []models.Photo{}
	for _, p := range h.photos.UserFavorites(id) {
		if visible(r, p) {
			photos = append(photos, p)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"photos": photos, "total": len(photos)})
}
