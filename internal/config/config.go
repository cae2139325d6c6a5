package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"flightshots/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Port string

	// StorageDriver is one of postgres, sqlite3, redis or memory.
	StorageDriver string
	StoragePrefix string

	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	databaseURL string
	SQLitePath  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret  string
	SessionTTL time.Duration

	LogLevel  string
	LogFormat string

	SiteConfigFile string

	LoginRatePerSec      float64
	LoginBurst           int
	SessionSweepSchedule string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", "8080"),
		StorageDriver:        getEnv("STORAGE_DRIVER", "sqlite3"),
		StoragePrefix:        getEnv("STORAGE_PREFIX", "darn-"),
		DBHost:               getEnv("DB_HOST", "localhost"),
		DBPort:               getEnv("DB_PORT", "5432"),
		DBUser:               getEnv("DB_USER", "flightshots"),
		DBPassword:           getEnv("DB_PASSWORD", ""),
		DBName:               getEnv("DB_NAME", "flightshots"),
		databaseURL:          os.Getenv("DATABASE_URL"),
		SQLitePath:           getEnv("SQLITE_PATH", "./data/flightshots.db"),
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		JWTSecret:            os.Getenv("JWT_SECRET"),
		LogLevel:             getEnv("LOG_LEVEL", "info"),
		LogFormat:            getEnv("LOG_FORMAT", "text"),
		SiteConfigFile:       os.Getenv("SITE_CONFIG_FILE"),
		SessionSweepSchedule: getEnv("SESSION_SWEEP_SCHEDULE", "@every 10m"),
	}

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return nil, err
	}
	if cfg.LoginBurst, err = getInt("LOGIN_BURST", 5); err != nil {
		return nil, err
	}
	if cfg.LoginRatePerSec, err = getFloat("LOGIN_RATE_PER_SEC", 1); err != nil {
		return nil, err
	}
	if cfg.SessionTTL, err = time.ParseDuration(getEnv("SESSION_TTL", "168h")); err != nil {
		return nil, fmt.Errorf("parse SESSION_TTL: %w", err)
	}

	switch cfg.StorageDriver {
	case "postgres", "sqlite3", "redis", "memory":
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// DatabaseURL returns DATABASE_URL when set, otherwise a postgres URL built
// from the DB_* variables.
func (c *Config) DatabaseURL() string {
	if c.databaseURL != "" {
		return c.databaseURL
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     c.DBName,
		RawQuery: "sslmode=disable",
	}
	return u.String()
}

// SiteDefaults returns the built-in site configuration, overlaid with the
// fields set in SiteConfigFile when one is configured.
func (c *Config) SiteDefaults() (models.SiteConfig, error) {
	def := models.DefaultSiteConfig()
	if c.SiteConfigFile == "" {
		return def, nil
	}

	raw, err := os.ReadFile(c.SiteConfigFile)
	if err != nil {
		return def, fmt.Errorf("read site config: %w", err)
	}
	var patch models.SiteConfigPatch
	if err := yaml.Unmarshal(raw, &patch); err != nil {
		return def, fmt.Errorf("parse site config: %w", err)
	}
	if err := patch.Validate(); err != nil {
		return def, err
	}
	return patch.Apply(def), nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return f, nil
}
