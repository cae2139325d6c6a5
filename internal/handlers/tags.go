package handlers

import (
	"net/http"

	"flightshots/internal/leveling"
	"flightshots/internal/repository"
)

type FacetHandler struct {
	photos *repository.PhotoRepository
}

func NewFacetHandler(photos *repository.PhotoRepository) *FacetHandler {
	return &FacetHandler{photos: photos}
}

// GET /api/photos/facets
func (h *FacetHandler) Facets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"airports": h.photos.Airports(),
		"tags":     h.photos.TagCounts(),
	})
}

// GET /api/levels
func (h *FacetHandler) Levels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, leveling.Tiers())
}
