// Package kvstore persists JSON-encoded values under string keys.
//
// Reads never fail: a missing or undecodable value yields the caller's default.
// Writes never fail either: backend errors are logged and dropped. There is no
// locking across processes; concurrent writers to the same key race and the
// last write wins.
package kvstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("kvstore: key not found")

// Persisted keys, relative to the store prefix.
const (
	KeyUsers      = "users"
	KeySessions   = "sessions"
	KeyPhotos     = "photos"
	KeyFeedbacks  = "feedbacks"
	KeySiteConfig = "site-config"
)

// AllKeys lists every key the application writes.
var AllKeys = []string{KeyUsers, KeySessions, KeyPhotos, KeyFeedbacks, KeySiteConfig}

type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

type Store struct {
	backend Backend
	prefix  string
	log     logrus.FieldLogger
}

func New(backend Backend, prefix string, log logrus.FieldLogger) *Store {
	if log == nil {
		l := logrus.New()
		l.SetLevel(logrus.PanicLevel)
		log = l
	}
	return &Store{backend: backend, prefix: prefix, log: log.WithField("component", "kvstore")}
}

func (s *Store) Close() error {
	return s.backend.Close()
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

// Read returns the value stored under key, or def when the key is absent or
// its contents cannot be decoded.
func Read[T any](ctx context.Context, s *Store, key string, def T) T {
	raw, err := s.backend.Get(ctx, s.key(key))
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.log.WithError(err).WithField("key", key).Error("read failed, using default")
		}
		return def
	}
	if len(raw) == 0 {
		return def
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("corrupt value, using default")
		return def
	}
	return v
}

// Write stores v under key. Failures are logged, not returned. Cancelling ctx
// does not abort the write; storage must stay in step with the caller's memory.
func Write[T any](ctx context.Context, s *Store, key string, v T) {
	ctx = context.WithoutCancel(ctx)
	raw, err := json.Marshal(v)
	if err != nil {
		s.log.WithError(err).WithField("key", key).Error("encode failed")
		return
	}
	if err := s.backend.Set(ctx, s.key(key), raw); err != nil {
		s.log.WithError(err).WithField("key", key).Error("write failed")
	}
}

// Remove deletes key. Like Write, it ignores cancellation of ctx.
func Remove(ctx context.Context, s *Store, key string) {
	ctx = context.WithoutCancel(ctx)
	if err := s.backend.Delete(ctx, s.key(key)); err != nil && !errors.Is(err, ErrNotFound) {
		s.log.WithError(err).WithField("key", key).Error("delete failed")
	}
}
