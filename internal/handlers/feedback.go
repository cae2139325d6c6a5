package handlers

import (
	"net/http"
	"strings"

	"flightshots/internal/i18n"
	"flightshots/internal/metrics"
	"flightshots/internal/middleware"
	"flightshots/internal/models"
	"flightshots/internal/repository"

	"github.com/go-chi/chi/v5"
)

type FeedbackHandler struct {
	feedback *repository.FeedbackRepository
	metrics  *metrics.Metrics
}

func NewFeedbackHandler(fr *repository.FeedbackRepository, m *metrics.Metrics) *FeedbackHandler {
	return &FeedbackHandler{feedback: fr, metrics: m}
}

type feedbackRequest struct {
	Type    models.FeedbackType `json:"type"`
	Subject string              `json:"subject"`
	Content string              `json:"content"`
	Email   string              `json:"email"`
}

// POST /api/feedback
func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in feedbackRequest
	if err := decode(w, r, &in); err != nil {
		badRequest(w, r)
		return
	}

	nf := models.NewFeedback{
		Username: i18n.T(r.Context(), "feedback.anonymous"),
		Email:    strings.TrimSpace(in.Email),
		Type:     in.Type,
		Subject:  strings.TrimSpace(in.Subject),
		Content:  strings.TrimSpace(in.Content),
	}
	if u, ok := middleware.GetUser(r.Context()); ok {
		nf.UserID = u.ID
		nf.Username = u.Username
		if nf.Email == "" {
			nf.Email = u.Email
		}
	}

	switch {
	case nf.Subject == "":
		writeMessage(w, r, http.StatusBadRequest, "feedback.subject_required")
		return
	case nf.Content == "":
		writeMessage(w, r, http.StatusBadRequest, "feedback.content_required")
		return
	case !strings.Contains(nf.Email, "@"):
		writeMessage(w, r, http.StatusBadRequest, "feedback.email_required")
		return
	}

	f := h.feedback.Add(r.Context(), nf)
	h.metrics.Feedback.Inc()
	writeResult(w, r, http.StatusCreated, models.Ok("feedback.submitted"), map[string]any{"feedback": f})
}

// GET /api/admin/feedback?status=
func (h *FeedbackHandler) List(w http.ResponseWriter, r *http.Request) {
	status := models.FeedbackStatus(r.URL.Query().Get("status"))
	writeJSON(w, http.StatusOK, map[string]any{
		"feedback": h.feedback.List(status),
		"unread":   h.feedback.UnreadCount(),
	})
}

// PUT /api/admin/feedback/{id}/read
func (h *FeedbackHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	f, err := h.feedback.MarkAsRead(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, models.Ok("feedback.marked_read"), map[string]any{"feedback": f})
}

type replyRequest struct {
	Reply string `json:"reply"`
}

// POST /api/admin/feedback/{id}/reply
func (h *FeedbackHandler) Reply(w http.ResponseWriter, r *http.Request) {
	var in replyRequest
	if err := decode(w, r, &in); err != nil {
		badRequest(w, r)
		return
	}
	text := strings.TrimSpace(in.Reply)
	if text == "" {
		writeMessage(w, r, http.StatusBadRequest, "feedback.reply_required")
		return
	}

	f, err := h.feedback.Reply(r.Context(), chi.URLParam(r, "id"), text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, models.Ok("feedback.replied"), map[string]any{"feedback": f})
}

// DELETE /api/admin/feedback/{id}
func (h *FeedbackHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.feedback.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, r, http.StatusOK, "feedback.deleted")
}
