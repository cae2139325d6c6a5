package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"flightshots/internal/i18n"
	"flightshots/internal/imaging"
	"flightshots/internal/models"
	"flightshots/internal/repository"
	"flightshots/internal/views"
)

const maxBodyBytes = 64 << 20

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into dst. HTMX forms post JSON via the json-enc extension.
func decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// writeMessage answers with a translated message: a toast fragment for HTMX
// requests, JSON for everything else.
func writeMessage(w http.ResponseWriter, r *http.Request, status int, key string, args ...any) {
	msg := i18n.T(r.Context(), key, args...)
	if isHTMX(r) {
		kind := views.ToastSuccess
		if status >= http.StatusBadRequest {
			kind = views.ToastError
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(status)
		views.Toast(kind, msg).Render(r.Context(), w)
		return
	}
	if status >= http.StatusBadRequest {
		writeJSON(w, status, map[string]string{"error": msg})
		return
	}
	writeJSON(w, status, map[string]any{"success": true, "message": msg})
}

// writeResult renders a form-style outcome along with an optional payload.
func writeResult(w http.ResponseWriter, r *http.Request, status int, res models.Result, extra map[string]any) {
	if isHTMX(r) || !res.Success {
		writeMessage(w, r, status, res.Message)
		return
	}
	body := map[string]any{"success": true, "message": i18n.T(r.Context(), res.Message)}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, key := errorStatus(err)
	writeMessage(w, r, status, key)
}

// errorStatus maps domain errors to an HTTP status and a message key.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return http.StatusNotFound, "error.user_not_found"
	case errors.Is(err, repository.ErrPhotoNotFound):
		return http.StatusNotFound, "error.photo_not_found"
	case errors.Is(err, repository.ErrCommentNotFound):
		return http.StatusNotFound, "error.comment_not_found"
	case errors.Is(err, repository.ErrFeedbackNotFound):
		return http.StatusNotFound, "error.feedback_not_found"
	case errors.Is(err, repository.ErrAlreadyReviewed):
		return http.StatusConflict, "review.already_reviewed"
	case errors.Is(err, repository.ErrInvalidStatus):
		return http.StatusBadRequest, "review.invalid_status"
	case errors.Is(err, imaging.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, "photo.too_large"
	case errors.Is(err, imaging.ErrInvalidImage):
		return http.StatusBadRequest, "photo.invalid_image"
	case errors.Is(err, models.ErrInvalidPatch):
		return http.StatusBadRequest, patchKey(err)
	}
	return http.StatusInternalServerError, "error.internal"
}

// patchKey extracts a message key carried in a wrapped patch error.
func patchKey(err error) string {
	msg := err.Error()
	for _, key := range []string{repository.MsgUsernameTaken, repository.MsgEmailTaken} {
		if strings.Contains(msg, key) {
			return key
		}
	}
	return "form.invalid"
}

func badRequest(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, r, http.StatusBadRequest, "form.invalid")
}
