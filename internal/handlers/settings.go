package handlers

import (
	"context"
	"net/http"

	"flightshots/internal/app"
	"flightshots/internal/models"
	"flightshots/internal/repository"
)

// Resetter clears stored data by scope.
type Resetter interface {
	Reset(ctx context.Context, scope app.ResetScope) error
}

type SettingsHandler struct {
	settings *repository.SettingsRepository
	resetter Resetter
}

func NewSettingsHandler(settings *repository.SettingsRepository, resetter Resetter) *SettingsHandler {
	return &SettingsHandler{settings: settings, resetter: resetter}
}

// GET /api/site
func (h *SettingsHandler) Site(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.settings.Get())
}

// PUT /api/admin/site
func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch models.SiteConfigPatch
	if err := decode(w, r, &patch); err != nil {
		badRequest(w, r)
		return
	}

	cfg, err := h.settings.Update(r.Context(), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeResult(w, r, http.StatusOK, models.Ok("site.saved"), map[string]any{"site": cfg})
}

type resetRequest struct {
	Scope string `json:"scope"`
}

var resetMessages = map[app.ResetScope]string{
	app.ResetPhotos:   "site.reset_photos",
	app.ResetFeedback: "site.reset_feedback",
	app.ResetConfig:   "site.reset_config",
	app.ResetAll:      "site.reset_all",
}

// POST /api/admin/site/reset
func (h *SettingsHandler) Reset(w http.ResponseWriter, r *http.Request) {
	var in resetRequest
	if err := decode(w, r, &in); err != nil {
		badRequest(w, r)
		return
	}
	scope, err := app.ParseResetScope(in.Scope)
	if err != nil {
		writeMessage(w, r, http.StatusBadRequest, "site.unknown_scope")
		return
	}

	if err := h.resetter.Reset(r.Context(), scope); err != nil {
		writeError(w, r, err)
		return
	}
	if scope == app.ResetAll && isHTMX(r) {
		w.Header().Set("HX-Redirect", "/")
	}
	writeMessage(w, r, http.StatusOK, resetMessages[scope])
}
