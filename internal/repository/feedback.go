package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"flightshots/internal/kvstore"
	"flightshots/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

var ErrFeedbackNotFound = errors.New("feedback not found")

type FeedbackRepository struct {
	mu        sync.Mutex
	kv        *kvstore.Store
	log       logrus.FieldLogger
	feedbacks []models.Feedback
	now       func() time.Time
}

func NewFeedbackRepository(ctx context.Context, kv *kvstore.Store, log logrus.FieldLogger) *FeedbackRepository {
	return &FeedbackRepository{
		kv:        kv,
		log:       repoLogger(log, "feedback"),
		feedbacks: kvstore.Read(ctx, kv, kvstore.KeyFeedbacks, []models.Feedback{}),
		now:       time.Now,
	}
}

func (r *FeedbackRepository) save(ctx context.Context, feedbacks []models.Feedback) {
	r.feedbacks = feedbacks
	kvstore.Write(ctx, r.kv, kvstore.KeyFeedbacks, feedbacks)
}

// Add files a new, unread feedback entry ahead of the existing ones.
func (r *FeedbackRepository) Add(ctx context.Context, in models.NewFeedback) models.Feedback {
	t := in.Type
	if !t.Valid() {
		t = models.FeedbackOther
	}
	f := models.Feedback{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Username:  in.Username,
		Email:     in.Email,
		Type:      t,
		Subject:   in.Subject,
		Content:   in.Content,
		Status:    models.FeedbackUnread,
		CreatedAt: r.now().UTC(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := make([]models.Feedback, 0, len(r.feedbacks)+1)
	next = append(next, f)
	next = append(next, r.feedbacks...)
	r.save(ctx, next)
	r.log.WithFields(logrus.Fields{"feedback_id": f.ID, "type": f.Type}).Info("feedback received")
	return f
}

func (r *FeedbackRepository) update(ctx context.Context, id string, fn func(*models.Feedback)) (models.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.feedbacks {
		if r.feedbacks[i].ID != id {
			continue
		}
		f := r.feedbacks[i]
		fn(&f)
		next := append([]models.Feedback(nil), r.feedbacks...)
		next[i] = f
		r.save(ctx, next)
		return f, nil
	}
	return models.Feedback{}, ErrFeedbackNotFound
}

// MarkAsRead moves an unread entry to read. Read and replied entries are
// returned unchanged; status never moves backwards.
func (r *FeedbackRepository) MarkAsRead(ctx context.Context, id string) (models.Feedback, error) {
	return r.update(ctx, id, func(f *models.Feedback) {
		if f.Status == models.FeedbackUnread {
			f.Status = models.FeedbackRead
		}
	})
}

// Reply answers the entry and marks it replied, whatever its previous status.
func (r *FeedbackRepository) Reply(ctx context.Context, id, text string) (models.Feedback, error) {
	now := r.now().UTC()
	return r.update(ctx, id, func(f *models.Feedback) {
		f.Reply = text
		f.RepliedAt = &now
		f.Status = models.FeedbackReplied
	})
}

func (r *FeedbackRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.feedbacks {
		if r.feedbacks[i].ID == id {
			next := make([]models.Feedback, 0, len(r.feedbacks)-1)
			next = append(next, r.feedbacks[:i]...)
			next = append(next, r.feedbacks[i+1:]...)
			r.save(ctx, next)
			return nil
		}
	}
	return ErrFeedbackNotFound
}

func (r *FeedbackRepository) UnreadCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, f := range r.feedbacks {
		if f.Status == models.FeedbackUnread {
			n++
		}
	}
	return n
}

// List returns entries newest first, optionally limited to one status.
func (r *FeedbackRepository) List(status models.FeedbackStatus) []models.Feedback {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := []models.Feedback{}
	for _, f := range r.feedbacks {
		if status == "" || f.Status == status {
			out = append(out, f)
		}
	}
	return out
}

func (r *FeedbackRepository) Clear(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedbacks = []models.Feedback{}
	kvstore.Remove(ctx, r.kv, kvstore.KeyFeedbacks)
}
