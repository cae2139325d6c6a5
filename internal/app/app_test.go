package app

import (
	"context"
	"testing"
	"time"

	"flightshots/internal/config"
	"flightshots/internal/kvstore"
	"flightshots/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, backend kvstore.Backend) *App {
	t.Helper()
	return FromBackend(context.Background(), backend, "test-", time.Hour, models.DefaultSiteConfig(), nil)
}

func TestNewMemoryBackend(t *testing.T) {
	a, err := New(context.Background(), &config.Config{StorageDriver: "memory", StoragePrefix: "x-", SessionTTL: time.Hour}, nil)
	require.NoError(t, err)
	defer a.Close()
	assert.Zero(t, a.Users.Count())
	assert.Equal(t, models.DefaultSiteConfig(), a.Settings.Get())
}

func TestNewUnknownDriver(t *testing.T) {
	_, err := New(context.Background(), &config.Config{StorageDriver: "etcd"}, nil)
	assert.Error(t, err)
}

func TestResetScopes(t *testing.T) {
	ctx := context.Background()
	backend := kvstore.NewMemory()
	a := newTestApp(t, backend)

	require.True(t, a.Users.Setup(ctx, "root", "root@example.com", "secret1").Success)
	a.Photos.Upload(ctx, models.NewPhoto{Title: "x"})
	a.Feedback.Add(ctx, models.NewFeedback{Subject: "y"})
	name := "Changed"
	_, err := a.Settings.Update(ctx, models.SiteConfigPatch{SiteName: &name})
	require.NoError(t, err)

	require.NoError(t, a.Reset(ctx, ResetPhotos))
	assert.Empty(t, a.Photos.All())
	assert.Len(t, a.Feedback.List(""), 1)

	require.NoError(t, a.Reset(ctx, ResetConfig))
	assert.Equal(t, "FlightShots", a.Settings.Get().SiteName)

	require.NoError(t, a.Reset(ctx, ResetAll))
	assert.Empty(t, a.Feedback.List(""))
	assert.Zero(t, a.Users.Count())

	// a reloaded app sees the cleared state
	assert.Zero(t, newTestApp(t, backend).Users.Count())

	assert.ErrorIs(t, a.Reset(ctx, "everything"), ErrUnknownScope)
}

func TestParseResetScope(t *testing.T) {
	sc, err := ParseResetScope("feedback")
	require.NoError(t, err)
	assert.Equal(t, ResetFeedback, sc)

	_, err = ParseResetScope("users")
	assert.ErrorIs(t, err, ErrUnknownScope)
}
