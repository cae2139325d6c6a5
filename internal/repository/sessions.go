package repository

import (
	"context"
	"time"

	"flightshots/internal/kvstore"
	"flightshots/internal/models"

	"github.com/sirupsen/logrus"
)

func repoLogger(log logrus.FieldLogger, name string) logrus.FieldLogger {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return log.WithField("repo", name)
}

// Session returns a live session. Expired sessions are reported as absent.
func (r *UserRepository) Session(sid string) (models.Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[sid]
	if !ok || s.Expired(r.now()) {
		return models.Session{}, false
	}
	return s, true
}

func (r *UserRepository) Logout(ctx context.Context, sid string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sessions[sid]; !ok {
		return
	}
	next := r.copySessions()
	delete(next, sid)
	r.saveSessions(ctx, next)
}

// PurgeExpiredSessions drops every session that expired at or before now.
func (r *UserRepository) PurgeExpiredSessions(ctx context.Context, now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	next := make(map[string]models.Session, len(r.sessions))
	for id, s := range r.sessions {
		if !s.Expired(now) {
			next[id] = s
		}
	}
	removed := len(r.sessions) - len(next)
	if removed > 0 {
		r.saveSessions(ctx, next)
	}
	return removed
}

func (r *UserRepository) copySessions() map[string]models.Session {
	next := make(map[string]models.Session, len(r.sessions)+1)
	for id, s := range r.sessions {
		next[id] = s
	}
	return next
}

func (r *UserRepository) saveSessions(ctx context.Context, sessions map[string]models.Session) {
	r.sessions = sessions
	kvstore.Write(ctx, r.kv, kvstore.KeySessions, sessions)
}

func (r *UserRepository) putSession(ctx context.Context, s models.Session) {
	next := r.copySessions()
	next[s.ID] = s
	r.saveSessions(ctx, next)
}

func (r *UserRepository) refreshSessions(ctx context.Context, u models.User) {
	changed := false
	next := r.copySessions()
	for id, s := range next {
		if s.User.ID == u.ID {
			s.User = u
			next[id] = s
			changed = true
		}
	}
	if changed {
		r.saveSessions(ctx, next)
	}
}

func (r *UserRepository) dropSessionsOf(ctx context.Context, userID string) {
	changed := false
	next := r.copySessions()
	for id, s := range next {
		if s.User.ID == userID {
			delete(next, id)
			changed = true
		}
	}
	if changed {
		r.saveSessions(ctx, next)
	}
}
