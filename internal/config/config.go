// Package config loads runtime configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/aewiki/recap-cli/internal/core"
)

// Store backend names.
const (
	BackendFilesystem = "filesystem"
	BackendRedis      = "redis"
	BackendS3         = "s3"
)

// Config holds all runtime settings. Every field has a RECAP_-prefixed
// environment variable; only the non-default backends require extra
// settings.
type Config struct {
	ListingURL      string        `env:"RECAP_LISTING_URL" envDefault:"https://api.github.com/repos/aewiki/recap-data/git/trees/main?recursive=1"`
	SnapshotBaseURL string        `env:"RECAP_SNAPSHOT_BASE_URL" envDefault:"https://raw.githubusercontent.com/aewiki/recap-data/main/data"`
	StoreBackend    string        `env:"RECAP_STORE_BACKEND" envDefault:"filesystem"`
	CacheDir        string        `env:"RECAP_CACHE_DIR"`
	RedisAddr       string        `env:"RECAP_REDIS_ADDR"`
	RedisDB         int           `env:"RECAP_REDIS_DB" envDefault:"0"`
	RedisPassword   string        `env:"RECAP_REDIS_PASSWORD"`
	S3Endpoint      string        `env:"RECAP_S3_ENDPOINT"`
	S3Region        string        `env:"RECAP_S3_REGION"`
	S3Bucket        string        `env:"RECAP_S3_BUCKET"`
	S3AccessKey     string        `env:"RECAP_S3_ACCESS_KEY"`
	S3SecretKey     string        `env:"RECAP_S3_SECRET_KEY"`
	FreshnessWindow time.Duration `env:"RECAP_INDEX_FRESHNESS" envDefault:"24h"`
	HTTPTimeout     time.Duration `env:"RECAP_HTTP_TIMEOUT" envDefault:"30s"`
	ListenAddr      string        `env:"RECAP_LISTEN_ADDR" envDefault:":8080"`
}

// Load parses the environment and validates backend-specific settings.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = core.CacheRoot()
	}

	switch cfg.StoreBackend {
	case BackendFilesystem:
	case BackendRedis:
		if cfg.RedisAddr == "" {
			return cfg, errors.New("RECAP_REDIS_ADDR is required for the redis backend")
		}
	case BackendS3:
		if cfg.S3Endpoint == "" || cfg.S3Bucket == "" || cfg.S3AccessKey == "" || cfg.S3SecretKey == "" {
			return cfg, errors.New("RECAP_S3_ENDPOINT, RECAP_S3_BUCKET, RECAP_S3_ACCESS_KEY and RECAP_S3_SECRET_KEY are required for the s3 backend")
		}
		// An empty region surfaces much later as a request-signing error.
		if cfg.S3Region == "" {
			return cfg, errors.New("RECAP_S3_REGION is required for the s3 backend")
		}
	default:
		return cfg, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}

	return cfg, nil
}
