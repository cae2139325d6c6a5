package handlers

import (
	"net/http"
	"strings"

	"flightshots/internal/leveling"
	"flightshots/internal/metrics"
	"flightshots/internal/models"
	"flightshots/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type ReviewHandler struct {
	photos  *repository.PhotoRepository
	users   *repository.UserRepository
	metrics *metrics.Metrics
	log     logrus.FieldLogger
}

func NewReviewHandler(photos *repository.PhotoRepository, users *repository.UserRepository, m *metrics.Metrics, log logrus.FieldLogger) *ReviewHandler {
	return &ReviewHandler{photos: photos, users: users, metrics: m, log: log}
}

// GET /api/review/pending?q=
func (h *ReviewHandler) Pending(w http.ResponseWriter, r *http.Request) {
	q := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("q")))

	photos := []models.Photo{}
	for _, p := range h.photos.Pending() {
		if q == "" ||
			strings.Contains(strings.ToLower(p.Title), q) ||
			strings.Contains(strings.ToLower(p.Airport), q) ||
			strings.Contains(strings.ToLower(p.UploaderName), q) {
			photos = append(photos, p)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"photos": photos, "total": len(photos)})
}

type reviewRequest struct {
	Status models.PhotoStatus `json:"status"`
}

// PUT /api/review/{id}
func (h *ReviewHandler) Review(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var in reviewRequest
	if err := decode(w, r, &in); err != nil {
		badRequest(w, r)
		return
	}

	p, err := h.photos.Review(r.Context(), id, in.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.metrics.Reviews.WithLabelValues(string(p.Status)).Inc()
	h.log.WithFields(logrus.Fields{"photo_id": p.ID, "status": p.Status}).Info("photo reviewed")

	key := "review.rejected"
	if p.Status == models.PhotoApproved {
		key = "review.approved"
		if _, err := h.users.AddExp(r.Context(), p.UploaderID, leveling.RewardPhotoApproved); err != nil {
			h.log.WithError(err).WithField("user_id", p.UploaderID).Debug("exp not awarded")
		}
	}
	writeResult(w, r, http.StatusOK, models.Ok(key), map[string]any{"photo": p})
}
