package repository

import (
	"context"
	"sync"

	"flightshots/internal/kvstore"
	"flightshots/internal/models"

	"github.com/sirupsen/logrus"
)

// SettingsRepository holds the single site configuration record.
type SettingsRepository struct {
	mu       sync.Mutex
	kv       *kvstore.Store
	log      logrus.FieldLogger
	defaults models.SiteConfig
	current  models.SiteConfig
}

// NewSettingsRepository loads the persisted record over defaults. Fields the
// stored record does not carry keep their default value.
func NewSettingsRepository(ctx context.Context, kv *kvstore.Store, log logrus.FieldLogger, defaults models.SiteConfig) *SettingsRepository {
	stored := kvstore.Read(ctx, kv, kvstore.KeySiteConfig, models.SiteConfigPatch{})
	return &SettingsRepository{
		kv:       kv,
		log:      repoLogger(log, "settings"),
		defaults: defaults,
		current:  stored.Apply(defaults),
	}
}

func (r *SettingsRepository) Get() models.SiteConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Update merges the patch over the current record and persists the whole result.
func (r *SettingsRepository) Update(ctx context.Context, patch models.SiteConfigPatch) (models.SiteConfig, error) {
	if err := patch.Validate(); err != nil {
		return models.SiteConfig{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = patch.Apply(r.current)
	kvstore.Write(ctx, r.kv, kvstore.KeySiteConfig, r.current)
	r.log.WithField("site_name", r.current.SiteName).Info("site config updated")
	return r.current, nil
}

func (r *SettingsRepository) Reset(ctx context.Context) models.SiteConfig {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.current = r.defaults
	kvstore.Remove(ctx, r.kv, kvstore.KeySiteConfig)
	return r.current
}
