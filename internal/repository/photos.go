package repository

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"flightshots/internal/kvstore"
	"flightshots/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var (
	ErrPhotoNotFound   = errors.New("photo not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrInvalidStatus   = errors.New("invalid review status")
	ErrAlreadyReviewed = errors.New("photo already reviewed")
)

// PhotoRepository keeps photos newest first. Comments on a photo stay in the
// order they were written.
type PhotoRepository struct {
	mu     sync.Mutex
	kv     *kvstore.Store
	log    logrus.FieldLogger
	photos []models.Photo
	now    func() time.Time
}

func NewPhotoRepository(ctx context.Context, kv *kvstore.Store, log logrus.FieldLogger) *PhotoRepository {
	return &PhotoRepository{
		kv:     kv,
		log:    repoLogger(log, "photos"),
		photos: kvstore.Read(ctx, kv, kvstore.KeyPhotos, []models.Photo{}),
		now:    time.Now,
	}
}

func (r *PhotoRepository) save(ctx context.Context, photos []models.Photo) {
	r.photos = photos
	kvstore.Write(ctx, r.kv, kvstore.KeyPhotos, photos)
}

func (r *PhotoRepository) indexOf(id string) int {
	for i := range r.photos {
		if r.photos[i].ID == id {
			return i
		}
	}
	return -1
}

// update runs fn on a clone of the photo and persists it when fn succeeds.
func (r *PhotoRepository) update(ctx context.Context, id string, fn func(*models.Photo) error) (models.Photo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Photo{}, ErrPhotoNotFound
	}
	p := r.photos[i].Clone()
	if err := fn(&p); err != nil {
		return models.Photo{}, err
	}

	next := append([]models.Photo(nil), r.photos...)
	next[i] = p
	r.save(ctx, next)
	return p.Clone(), nil
}

// Upload stores a new photo as pending review, whatever the caller intended.
func (r *PhotoRepository) Upload(ctx context.Context, in models.NewPhoto) models.Photo {
	p := models.Photo{
		ID:             uuid.NewString(),
		URL:            in.URL,
		Thumbnail:      in.Thumbnail,
		Title:          in.Title,
		Description:    in.Description,
		Airport:        in.Airport,
		Tags:           append([]string{}, in.Tags...),
		UploaderID:     in.UploaderID,
		UploaderName:   in.UploaderName,
		UploaderAvatar: in.UploaderAvatar,
		Status:         models.PhotoPending,
		CreatedAt:      r.now().UTC(),
		Likes:          []string{},
		Comments:       []models.Comment{},
		Favorites:      []string{},
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]models.Photo, 0, len(r.photos)+1)
	next = append(next, p)
	next = append(next, r.photos...)
	r.save(ctx, next)
	r.log.WithFields(logrus.Fields{"photo_id": p.ID, "uploader_id": p.UploaderID}).Info("photo uploaded")
	return p.Clone()
}

// Review settles a pending photo. A photo is reviewed once.
func (r *PhotoRepository) Review(ctx context.Context, id string, status models.PhotoStatus) (models.Photo, error) {
	if status != models.PhotoApproved && status != models.PhotoRejected {
		return models.Photo{}, ErrInvalidStatus
	}
	return r.update(ctx, id, func(p *models.Photo) error {
		if p.Status != models.PhotoPending {
			return ErrAlreadyReviewed
		}
		p.Status = status
		return nil
	})
}

func (r *PhotoRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return ErrPhotoNotFound
	}
	next := make([]models.Photo, 0, len(r.photos)-1)
	next = append(next, r.photos[:i]...)
	next = append(next, r.photos[i+1:]...)
	r.save(ctx, next)
	return nil
}

// toggle adds id to set when absent and removes it otherwise.
func toggle(set []string, id string) ([]string, bool) {
	for i, v := range set {
		if v == id {
			out := make([]string, 0, len(set)-1)
			out = append(out, set[:i]...)
			return append(out, set[i+1:]...), false
		}
	}
	return append(set, id), true
}

// ToggleLike reports whether userID likes the photo after the call.
func (r *PhotoRepository) ToggleLike(ctx context.Context, id, userID string) (bool, error) {
	var liked bool
	_, err := r.update(ctx, id, func(p *models.Photo) error {
		p.Likes, liked = toggle(p.Likes, userID)
		return nil
	})
	return liked, err
}

func (r *PhotoRepository) AddComment(ctx context.Context, id string, in models.NewComment) (models.Comment, error) {
	c := models.Comment{
		ID:         uuid.NewString(),
		PhotoID:    id,
		UserID:     in.UserID,
		Username:   in.Username,
		UserAvatar: in.UserAvatar,
		Content:    in.Content,
		CreatedAt:  r.now().UTC(),
	}
	_, err := r.update(ctx, id, func(p *models.Photo) error {
		p.Comments = append(p.Comments, c)
		return nil
	})
	if err != nil {
		return models.Comment{}, err
	}
	return c, nil
}

func (r *PhotoRepository) DeleteComment(ctx context.Context, photoID, commentID string) error {
	_, err := r.update(ctx, photoID, func(p *models.Photo) error {
		for i, c := range p.Comments {
			if c.ID == commentID {
				p.Comments = append(p.Comments[:i], p.Comments[i+1:]...)
				return nil
			}
		}
		return ErrCommentNotFound
	})
	return err
}

// Comment looks up a single comment of a photo.
func (r *PhotoRepository) Comment(photoID, commentID string) (models.Comment, error) {
	p, ok := r.GetByID(photoID)
	if !ok {
		return models.Comment{}, ErrPhotoNotFound
	}
	for _, c := range p.Comments {
		if c.ID == commentID {
			return c, nil
		}
	}
	return models.Comment{}, ErrCommentNotFound
}

func (r *PhotoRepository) IncrementDownload(ctx context.Context, id string) (models.Photo, error) {
	return r.update(ctx, id, func(p *models.Photo) error {
		p.Downloads++
		return nil
	})
}

func (r *PhotoRepository) IncrementView(ctx context.Context, id string) (models.Photo, error) {
	return r.update(ctx, id, func(p *models.Photo) error {
		p.Views++
		return nil
	})
}

// Search matches approved photos only. The query is a case-insensitive
// substring of the title, description, airport or any tag; an empty query
// matches everything the filters let through.
func (r *PhotoRepository) Search(query string, f models.SearchFilters) []models.Photo {
	q := strings.ToLower(strings.TrimSpace(query))
	return r.filter(func(p models.Photo) bool {
		if p.Status != models.PhotoApproved {
			return false
		}
		if f.Airport != "" && p.Airport != f.Airport {
			return false
		}
		if f.UploaderID != "" && p.UploaderID != f.UploaderID {
			return false
		}
		if len(f.Tags) > 0 && !hasAnyTag(p.Tags, f.Tags) {
			return false
		}
		return q == "" || matchesQuery(p, q)
	})
}

func matchesQuery(p models.Photo, q string) bool {
	if strings.Contains(strings.ToLower(p.Title), q) ||
		strings.Contains(strings.ToLower(p.Description), q) ||
		strings.Contains(strings.ToLower(p.Airport), q) {
		return true
	}
	for _, t := range p.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

func hasAnyTag(tags, wanted []string) bool {
	for _, w := range wanted {
		for _, t := range tags {
			if t == w {
				return true
			}
		}
	}
	return false
}

func (r *PhotoRepository) filter(keep func(models.Photo) bool) []models.Photo {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Photo{}
	for _, p := range r.photos {
		if keep(p) {
			out = append(out, p.Clone())
		}
	}
	return out
}

func (r *PhotoRepository) UserPhotos(userID string) []models.Photo {
	return r.filter(func(p models.Photo) bool { return p.UploaderID == userID })
}

func (r *PhotoRepository) Pending() []models.Photo {
	return r.filter(func(p models.Photo) bool { return p.Status == models.PhotoPending })
}

func (r *PhotoRepository) All() []models.Photo {
	return r.filter(func(models.Photo) bool { return true })
}

func (r *PhotoRepository) GetByID(id string) (models.Photo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i := r.indexOf(id); i >= 0 {
		return r.photos[i].Clone(), true
	}
	return models.Photo{}, false
}

// CountByStatus returns how many photos sit in each review status.
func (r *PhotoRepository) CountByStatus() map[models.PhotoStatus]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := map[models.PhotoStatus]int{
		models.PhotoPending:  0,
		models.PhotoApproved: 0,
		models.PhotoRejected: 0,
	}
	for _, p := range r.photos {
		out[p.Status]++
	}
	return out
}

func (r *PhotoRepository) Clear(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.photos = []models.Photo{}
	kvstore.Remove(ctx, r.kv, kvstore.KeyPhotos)
}
