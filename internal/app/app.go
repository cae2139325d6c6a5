// Package app wires the storage backend and the repositories built on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"flightshots/internal/config"
	"flightshots/internal/database"
	"flightshots/internal/kvstore"
	"flightshots/internal/models"
	"flightshots/internal/repository"

	"github.com/sirupsen/logrus"
)

type App struct {
	Store    *kvstore.Store
	Users    *repository.UserRepository
	Photos   *repository.PhotoRepository
	Feedback *repository.FeedbackRepository
	Settings *repository.SettingsRepository
	Log      logrus.FieldLogger
}

// New opens the configured backend and loads every store from it.
func New(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*App, error) {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}

	defaults, err := cfg.SiteDefaults()
	if err != nil {
		backend.Close()
		return nil, err
	}

	return FromBackend(ctx, backend, cfg.StoragePrefix, cfg.SessionTTL, defaults, log), nil
}

func openBackend(ctx context.Context, cfg *config.Config) (kvstore.Backend, error) {
	switch cfg.StorageDriver {
	case "memory":
		return kvstore.NewMemory(), nil
	case "redis":
		return kvstore.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case database.DriverPostgres:
		db, dialect, err := database.Open(database.DriverPostgres, cfg.DatabaseURL())
		if err != nil {
			return nil, err
		}
		return kvstore.NewSQL(db, dialect), nil
	case database.DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		db, dialect, err := database.Open(database.DriverSQLite, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		return kvstore.NewSQL(db, dialect), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
}

// FromBackend builds an App on an already opened backend.
func FromBackend(ctx context.Context, backend kvstore.Backend, prefix string, sessionTTL time.Duration, defaults models.SiteConfig, log logrus.FieldLogger) *App {
	store := kvstore.New(backend, prefix, log)
	return &App{
		Store:    store,
		Users:    repository.NewUserRepository(ctx, store, log, sessionTTL),
		Photos:   repository.NewPhotoRepository(ctx, store, log),
		Feedback: repository.NewFeedbackRepository(ctx, store, log),
		Settings: repository.NewSettingsRepository(ctx, store, log, defaults),
		Log:      log,
	}
}

func (a *App) Close() error {
	return a.Store.Close()
}

// ResetScope names what a data reset clears.
type ResetScope string

const (
	ResetPhotos   ResetScope = "photos"
	ResetFeedback ResetScope = "feedback"
	ResetConfig   ResetScope = "config"
	ResetAll      ResetScope = "all"
)

var ErrUnknownScope = errors.New("unknown reset scope")

func ParseResetScope(s string) (ResetScope, error) {
	switch sc := ResetScope(s); sc {
	case ResetPhotos, ResetFeedback, ResetConfig, ResetAll:
		return sc, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, s)
}

// Reset clears the stores named by scope. ResetAll also removes every user,
// so the next setup request creates a fresh administrator.
func (a *App) Reset(ctx context.Context, scope ResetScope) error {
	switch scope {
	case ResetPhotos:
		a.Photos.Clear(ctx)
	case ResetFeedback:
		a.Feedback.Clear(ctx)
	case ResetConfig:
		a.Settings.Reset(ctx)
	case ResetAll:
		a.Photos.Clear(ctx)
		a.Feedback.Clear(ctx)
		a.Settings.Reset(ctx)
		a.Users.Clear(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownScope, scope)
	}
	if a.Log != nil {
		a.Log.WithField("scope", scope).Warn("data reset")
	}
	return nil
}
