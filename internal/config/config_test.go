package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "sqlite3", cfg.StorageDriver)
	assert.Equal(t, "darn-", cfg.StoragePrefix)
	assert.Equal(t, 168*time.Hour, cfg.SessionTTL)
	assert.Equal(t, 5, cfg.LoginBurst)
}

func TestLoadRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")

	t.Setenv("STORAGE_DRIVER", "mongo")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SESSION_TTL", "forever")
	_, err = Load()
	assert.Error(t, err)
}

func TestDatabaseURL(t *testing.T) {
	c := &Config{DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p@ss", DBName: "shots"}
	assert.Equal(t, "postgres://u:p%40ss@db:5433/shots?sslmode=disable", c.DatabaseURL())

	c.databaseURL = "postgres://other"
	assert.Equal(t, "postgres://other", c.DatabaseURL())
}

func TestSiteDefaultsOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("site_name: Hangar\nmax_upload_size: 20\n"), 0o644))

	c := &Config{SiteConfigFile: path}
	got, err := c.SiteDefaults()
	require.NoError(t, err)
	assert.Equal(t, "Hangar", got.SiteName)
	assert.Equal(t, 20, got.MaxUploadSize)
	assert.True(t, got.EnableUpload)
}

func TestSiteDefaultsRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "site.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_upload_size: 500\n"), 0o644))

	_, err := (&Config{SiteConfigFile: path}).SiteDefaults()
	assert.Error(t, err)
}
