package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"flightshots/internal/i18n"
	"flightshots/internal/imaging"
	"flightshots/internal/leveling"
	"flightshots/internal/metrics"
	"flightshots/internal/middleware"
	"flightshots/internal/models"
	"flightshots/internal/repository"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

const maxImagesPerUpload = 5

type PhotoHandler struct {
	photos   *repository.PhotoRepository
	users    *repository.UserRepository
	settings *repository.SettingsRepository
	metrics  *metrics.Metrics
	log      logrus.FieldLogger
}

func NewPhotoHandler(photos *repository.PhotoRepository, users *repository.UserRepository, settings *repository.SettingsRepository, m *metrics.Metrics, log logrus.FieldLogger) *PhotoHandler {
	return &PhotoHandler{photos: photos, users: users, settings: settings, metrics: m, log: log}
}

// award adds exp and logs instead of failing the request; the user may have
// been deleted since the photo was posted.
func (h *PhotoHandler) award(r *http.Request, userID string, exp int) {
	if _, err := h.users.AddExp(r.Context(), userID, exp); err != nil {
		h.log.WithError(err).WithField("user_id", userID).Debug("exp not awarded")
	}
}

func (h *PhotoHandler) record(r *http.Request, userID string, a repository.Activity) {
	if err := h.users.RecordActivity(r.Context(), userID, a); err != nil {
		h.log.WithError(err).WithField("user_id", userID).Debug("activity not recorded")
	}
}

func canModerate(u models.User) bool {
	return u.Role == models.RoleAdmin || u.Role == models.RoleReviewer
}

// visible reports whether the caller may see p. Unreviewed and rejected
// photos are shown only to their uploader and to moderators.
func visible(r *http.Request, p models.Photo) bool {
	if p.Status == models.PhotoApproved {
		return true
	}
	u, ok := middleware.GetUser(r.Context())
	return ok && (u.ID == p.UploaderID || canModerate(u))
}

func splitTags(s string) []string {
	out := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// GET /api/photos?q=&airport=&tags=a,b&uploader=
func (h *PhotoHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	photos := h.photos.Search(q.Get("q"), models.SearchFilters{
		Airport:    q.Get("airport"),
		Tags:       splitTags(q.Get("tags")),
		UploaderID: q.Get("uploader"),
	})
	writeJSON(w, http.StatusOK, map[string]any{"photos": photos, "total": len(photos)})
}

type photoView struct {
	models.Photo
	Liked     bool `json:"liked"`
	Favorited bool `json:"favorited"`
}

// GET /api/photos/{id}
func (h *PhotoHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, ok := h.photos.GetByID(id)
	if !ok || !visible(r, p) {
		writeError(w, r, repository.ErrPhotoNotFound)
		return
	}

	if updated, err := h.photos.IncrementView(r.Context(), id); err == nil {
		p = updated
	}

	view := photoView{Photo: p}
	if u, ok := middleware.GetUser(r.Context()); ok {
		view.Liked = p.LikedBy(u.ID)
		view.Favorited = p.FavoritedBy(u.ID)
	}
	writeJSON(w, http.StatusOK, view)
}

type uploadImage struct {
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail"`
}

type uploadRequest struct {
	Images      []uploadImage `json:"images"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Airport     string        `json:"airport"`
	Tags        []string      `json:"tags"`
}

// POST /api/photos
func (h *PhotoHandler) Upload(w http.ResponseWriter, r *http.Request) {
	site := h.settings.Get()
	if !site.EnableUpload {
		writeMessage(w, r, http.StatusForbidden, "photo.upload_disabled")
		return
	}
	u, _ := middleware.GetUser(r.Context())

	var in uploadRequest
	if err := decode(w, r, &in); err != nil {
		badRequest(w, r)
		return
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Airport = strings.TrimSpace(in.Airport)

	switch {
	case len(in.Images) == 0:
		writeMessage(w, r, http.StatusBadRequest, "photo.no_images")
		return
	case len(in.Images) > maxImagesPerUpload:
		writeMessage(w, r, http.StatusBadRequest, "photo.too_many", maxImagesPerUpload)
		return
	case in.Title == "":
		writeMessage(w, r, http.StatusBadRequest, "photo.title_required")
		return
	case in.Airport == "":
		writeMessage(w, r, http.StatusBadRequest, "photo.airport_required")
		return
	}
	for _, img := range in.Images {
		if err := imaging.Validate(img.URL, site.MaxUploadSize); err != nil {
			writeError(w, r, err)
			return
		}
	}

	tags := []string{}
	for _, t := range in.Tags {
		tags = append(tags, splitTags(t)...)
	}

	created := make([]models.Photo, 0, len(in.Images))
	for i, img := range in.Images {
		title := in.Title
		if len(in.Images) > 1 {
			title = fmt.Sprintf("%s #%d", in.Title, i+1)
		}
		thumb := img.Thumbnail
		if thumb == "" && imaging.IsDataURL(img.URL) {
			t, err := imaging.Thumbnail(img.URL)
			if err != nil {
				h.log.WithError(err).Warn("thumbnail generation failed")
			}
			thumb = t
		}

		p := h.photos.Upload(r.Context(), models.NewPhoto{
			URL:            img.URL,
			Thumbnail:      thumb,
			Title:          title,
			Description:    in.Description,
			Airport:        in.Airport,
			Tags:           tags,
			UploaderID:     u.ID,
			UploaderName:   u.Username,
			UploaderAvatar: u.Avatar,
		})
		h.record(r, u.ID, repository.ActivityUpload)
		created = append(created, p)
	}

	h.award(r, u.ID, leveling.RewardUpload*len(created))
	h.metrics.Uploads.Add(float64(len(created)))

	if isHTMX(r) {
		writeMessage(w, r, http.StatusCreated, "photo.uploaded", len(created))
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": i18n.T(r.Context(), "photo.uploaded", len(created)),
		"photos":  created,
	})
}

// DELETE /api/photos/{id}
func (h *PhotoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, _ := middleware.GetUser(r.Context())

	p, ok := h.photos.GetByID(id)
	if !ok {
		writeError(w, r, repository.ErrPhotoNotFound)
		return
	}
	if p.UploaderID != u.ID && u.Role != models.RoleAdmin {
		writeMessage(w, r, http.StatusForbidden, "auth.forbidden")
		return
	}
	if err := h.photos.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	if isHTMX(r) {
		w.Header().Set("HX-Redirect", "/")
	}
	writeMessage(w, r, http.StatusOK, "photo.deleted")
}

// POST /api/photos/{id}/like
func (h *PhotoHandler) Like(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, _ := middleware.GetUser(r.Context())

	p, ok := h.photos.GetByID(id)
	if !ok || !visible(r, p) {
		writeError(w, r, repository.ErrPhotoNotFound)
		return
	}
	liked, err := h.photos.ToggleLike(r.Context(), id, u.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if liked && p.UploaderID != u.ID {
		h.award(r, p.UploaderID, leveling.RewardPhotoLiked)
		h.record(r, p.UploaderID, repository.ActivityLikeReceived)
	}

	key := "photo.unliked"
	if liked {
		key = "photo.liked"
	}
	h.respondToggle(w, r, key, "liked", liked)
}

func (h *PhotoHandler) respondToggle(w http.ResponseWriter, r *http.Request, key, field string, on bool) {
	if isHTMX(r) {
		writeMessage(w, r, http.StatusOK, key)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, field: on, "message": i18n.T(r.Context(), key)})
}

// POST /api/photos/{id}/download
func (h *PhotoHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, _ := middleware.GetUser(r.Context())

	p, ok := h.photos.GetByID(id)
	if !ok || !visible(r, p) {
		writeError(w, r, repository.ErrPhotoNotFound)
		return
	}
	p, err := h.photos.IncrementDownload(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	h.award(r, u.ID, leveling.RewardDownload)
	h.record(r, u.ID, repository.ActivityDownload)
	h.award(r, p.UploaderID, leveling.RewardPhotoDownloaded)

	writeJSON(w, http.StatusOK, map[string]any{
		"url":       p.URL,
		"filename":  p.Title + ".jpg",
		"downloads": p.Downloads,
	})
}

type commentRequest struct {
	Content string `json:"content"`
}

// POST /api/photos/{id}/comments
func (h *PhotoHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	u, _ := middleware.GetUser(r.Context())

	var in commentRequest
	if err := decode(w, r, &in); err != nil {
		badRequest(w, r)
		return
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		writeMessage(w, r, http.StatusBadRequest, "comment.empty")
		return
	}

	p, ok := h.photos.GetByID(id)
	if !ok || !visible(r, p) {
		writeError(w, r, repository.ErrPhotoNotFound)
		return
	}
	c, err := h.photos.AddComment(r.Context(), id, models.NewComment{
		UserID:     u.ID,
		Username:   u.Username,
		UserAvatar: u.Avatar,
		Content:    content,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.award(r, u.ID, leveling.RewardComment)
	h.record(r, u.ID, repository.ActivityComment)

	writeResult(w, r, http.StatusCreated, models.Ok("comment.added"), map[string]any{"comment": c})
}

// DELETE /api/photos/{id}/comments/{cid}
func (h *PhotoHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	cid := chi.URLParam(r, "cid")
	u, _ := middleware.GetUser(r.Context())

	c, err := h.photos.Comment(id, cid)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if c.UserID != u.ID && u.Role != models.RoleAdmin {
		writeMessage(w, r, http.StatusForbidden, "auth.forbidden")
		return
	}
	if err := h.photos.DeleteComment(r.Context(), id, cid); err != nil {
		writeError(w, r, err)
		return
	}
	writeMessage(w, r, http.StatusOK, "comment.deleted")
}
