package handlers

import (
	"net/http"

	"flightshots/internal/middleware"
	"flightshots/internal/models"
	"flightshots/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type AdminHandler struct {
	users    *repository.UserRepository
	photos   *repository.PhotoRepository
	feedback *repository.FeedbackRepository
	log      logrus.FieldLogger
}

func NewAdminHandler(users *repository.UserRepository, photos *repository.PhotoRepository, feedback *repository.FeedbackRepository, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{users: users, photos: photos, feedback: feedback, log: log}
}

type dashboardStats struct {
	models.UserStats
	Photos          int `json:"photos"`
	PendingPhotos   int `json:"pending_photos"`
	ApprovedPhotos  int `json:"approved_photos"`
	RejectedPhotos  int `json:"rejected_photos"`
	UnreadFeedbacks int `json:"unread_feedbacks"`
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	byStatus := h.photos.CountByStatus()
	writeJSON(w, http.StatusOK, dashboardStats{
		UserStats:       h.users.Stats(),
		Photos:          byStatus[models.PhotoPending] + byStatus[models.PhotoApproved] + byStatus[models.PhotoRejected],
		PendingPhotos:   byStatus[models.PhotoPending],
		ApprovedPhotos:  byStatus[models.PhotoApproved],
		RejectedPhotos:  byStatus[models.PhotoRejected],
		UnreadFeedbacks: h.feedback.UnreadCount(),
	})
}

// GET /api/admin/users?q=&role=
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	role := models.Role(r.URL.Query().Get("role"))

	users := []models.PublicUser{}
	for _, u := range h.users.List(r.URL.Query().Get("q")) {
		if role == "" || u.Role == role {
			users = append(users, u.Public())
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": users, "total": len(users)})
}

// PUT /api/admin/users/{id}/ban
func (h *AdminHandler) ToggleBan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if me, _ := middleware.GetUser(r.Context()); me.ID == id {
		writeMessage(w, r, http.StatusBadRequest, "admin.cannot_target_self")
		return
	}

	u, err := h.users.ToggleBan(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.log.WithFields(logrus.Fields{"user_id": u.ID, "status": u.Status}).Info("user ban toggled")

	key := "admin.user_unbanned"
	if u.Status == models.UserBanned {
		key = "admin.user_banned"
	}
	writeResult(w, r, http.StatusOK, models.Ok(key), map[string]any{"user": u.Public()})
}

// DELETE /api/admin/users/{id}
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if me, _ := middleware.GetUser(r.Context()); me.ID == id {
		writeMessage(w, r, http.StatusBadRequest, "admin.cannot_target_self")
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	h.log.WithField("user_id", id).Info("user deleted")
	writeMessage(w, r, http.StatusOK, "admin.user_deleted")
}

// POST /api/admin/reviewers
func (h *AdminHandler) RegisterReviewer(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(w, r, &in); err != nil {
		badRequest(w, r)
		return
	}

	me, _ := middleware.GetUser(r.Context())
	res := h.users.RegisterReviewer(r.Context(), in.Username, in.Email, in.Password, me.ID)
	if !res.Success {
		writeResult(w, r, resultStatus(res), res, nil)
		return
	}
	writeResult(w, r, http.StatusCreated, res, nil)
}
