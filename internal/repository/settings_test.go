package repository

import (
	"context"
	"testing"

	"flightshots/internal/kvstore"
	"flightshots/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsMergeOverDefaults(t *testing.T) {
	ctx := context.Background()
	mem := kvstore.NewMemory()
	require.NoError(t, mem.Set(ctx, "test-site-config", []byte(`{"site_name":"Spotters"}`)))
	kv := kvstore.New(mem, "test-", nil)

	r := NewSettingsRepository(ctx, kv, nil, models.DefaultSiteConfig())
	got := r.Get()

	assert.Equal(t, "Spotters", got.SiteName)
	assert.Equal(t, models.DefaultSiteConfig().MaxUploadSize, got.MaxUploadSize)
	assert.True(t, got.EnableRegistration)
}

func TestSettingsUpdatePersistsWholeRecord(t *testing.T) {
	ctx := context.Background()
	kv := newTestStore()
	r := NewSettingsRepository(ctx, kv, nil, models.DefaultSiteConfig())

	off := false
	size := 25
	got, err := r.Update(ctx, models.SiteConfigPatch{EnableUpload: &off, MaxUploadSize: &size})
	require.NoError(t, err)
	assert.False(t, got.EnableUpload)
	assert.Equal(t, 25, got.MaxUploadSize)

	stored := kvstore.Read(ctx, kv, kvstore.KeySiteConfig, models.SiteConfig{})
	assert.Equal(t, got, stored)

	reloaded := NewSettingsRepository(ctx, kv, nil, models.DefaultSiteConfig())
	assert.Equal(t, got, reloaded.Get())
}

func TestSettingsUpdateRejectsInvalidPatch(t *testing.T) {
	ctx := context.Background()
	r := NewSettingsRepository(ctx, newTestStore(), nil, models.DefaultSiteConfig())

	size := 0
	_, err := r.Update(ctx, models.SiteConfigPatch{MaxUploadSize: &size})
	assert.ErrorIs(t, err, models.ErrInvalidPatch)
	assert.Equal(t, models.DefaultSiteConfig(), r.Get())
}

func TestSettingsReset(t *testing.T) {
	ctx := context.Background()
	kv := newTestStore()
	r := NewSettingsRepository(ctx, kv, nil, models.DefaultSiteConfig())

	name := "Changed"
	_, err := r.Update(ctx, models.SiteConfigPatch{SiteName: &name})
	require.NoError(t, err)

	assert.Equal(t, models.DefaultSiteConfig(), r.Reset(ctx))
	assert.Equal(t, models.DefaultSiteConfig(), NewSettingsRepository(ctx, kv, nil, models.DefaultSiteConfig()).Get())
}
