package handlers

import (
	"net/http"

	"flightshots/internal/leveling"
	"flightshots/internal/metrics"
	"flightshots/internal/middleware"
	"flightshots/internal/models"
	"flightshots/internal/repository"

	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	users    *repository.UserRepository
	settings *repository.SettingsRepository
	auth     *middleware.Auth
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
}

func NewAuthHandler(users *repository.UserRepository, settings *repository.SettingsRepository, auth *middleware.Auth, m *metrics.Metrics, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{users: users, settings: settings, auth: auth, metrics: m, log: log}
}

type credentials struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// resultStatus picks the HTTP status for a failed form-style result.
func resultStatus(res models.Result) int {
	switch res.Message {
	case repository.MsgUsernameTaken, repository.MsgEmailTaken, repository.MsgSetupClosed:
		return http.StatusConflict
	case repository.MsgBadCredentials:
		return http.StatusUnauthorized
	case repository.MsgBanned, repository.MsgForbidden:
		return http.StatusForbidden
	}
	return http.StatusBadRequest
}

// POST /api/setup
func (h *AuthHandler) Setup(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(w, r, &in); err != nil {
		badRequest(w, r)
		return
	}

	res := h.users.Setup(r.Context(), in.Username, in.Email, in.Password)
	if !res.Success {
		writeResult(w, r, resultStatus(res), res, nil)
		return
	}
	h.login(w, r, in.Username, in.Password, http.StatusCreated, res)
}

// POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if !h.settings.Get().EnableRegistration {
		writeMessage(w, r, http.StatusForbidden, "auth.registration_disabled")
		return
	}

	var in credentials
	if err := decode(w, r, &in); err != nil {
		badRequest(w, r)
		return
	}

	res := h.users.Register(r.Context(), in.Username, in.Email, in.Password)
	if !res.Success {
		writeResult(w, r, resultStatus(res), res, nil)
		return
	}
	h.metrics.Registrations.Inc()
	writeResult(w, r, http.StatusCreated, res, nil)
}

// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if err := decode(w, r, &in); err != nil {
		badRequest(w, r)
		return
	}
	if in.Username == "" || in.Password == "" {
		writeMessage(w, r, http.StatusBadRequest, repository.MsgMissingFields)
		return
	}
	h.login(w, r, in.Username, in.Password, http.StatusOK, models.Result{})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request, username, password string, status int, prior models.Result) {
	res, s := h.users.Login(r.Context(), username, password)
	if !res.Success {
		outcome := "invalid"
		if res.Message == repository.MsgBanned {
			outcome = "banned"
		}
		h.metrics.Logins.WithLabelValues(outcome).Inc()
		h.log.WithFields(logrus.Fields{"username": username, "result": outcome}).Warn("login rejected")
		writeResult(w, r, resultStatus(res), res, nil)
		return
	}
	h.metrics.Logins.WithLabelValues("success").Inc()

	token, err := h.auth.IssueToken(*s)
	if err != nil {
		h.log.WithError(err).Error("sign token")
		writeMessage(w, r, http.StatusInternalServerError, "error.internal")
		return
	}
	middleware.SetTokenCookie(w, token, s.ExpiresAt)

	if prior.Message != "" {
		res = prior
	}
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/")
	}
	writeResult(w, r, status, res, map[string]any{
		"user":  s.User.Public(),
		"token": token,
	})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if s, ok := middleware.GetSession(r.Context()); ok {
		h.users.Logout(r.Context(), s.ID)
	}
	middleware.ClearTokenCookie(w)
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/login")
	}
	writeMessage(w, r, http.StatusOK, "auth.logged_out")
}

type meResponse struct {
	User      models.PublicUser `json:"user"`
	Tier      leveling.Tier     `json:"tier"`
	ExpToNext int               `json:"exp_to_next"`
	Progress  float64           `json:"progress"`
}

func levelView(u models.User) meResponse {
	return meResponse{
		User:      u.Public(),
		Tier:      leveling.ForExp(u.Exp),
		ExpToNext: leveling.ExpToNext(u.Exp),
		Progress:  leveling.Progress(u.Exp),
	}
}

// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, _ := middleware.GetUser(r.Context())
	writeJSON(w, http.StatusOK, levelView(u))
}
