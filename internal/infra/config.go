package infra

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the application. Values are loaded from a
// YAML file and then overridden by environment variables, so the API key
// never has to live on disk.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	API struct {
		BaseURL              string `yaml:"base_url"`
		Key                  string `yaml:"key"`
		TimeoutSec           int    `yaml:"timeout_sec"`
		MinRequestIntervalMS int    `yaml:"min_request_interval_ms"`
		RateLimitCooldownSec int    `yaml:"rate_limit_cooldown_sec"`
		MaxRetryAttempts     int    `yaml:"max_retry_attempts"`
		RetryBaseDelayMS     int    `yaml:"retry_base_delay_ms"`
	} `yaml:"api"`

	Cache struct {
		DBPath           string `yaml:"db_path"`
		MarketExpirySec  int    `yaml:"market_expiry_sec"`
		DetailsExpirySec int    `yaml:"details_expiry_sec"`
		HistoryExpirySec int    `yaml:"history_expiry_sec"`
		SearchExpirySec  int    `yaml:"search_expiry_sec"`
		RetentionHours   int    `yaml:"retention_hours"`
	} `yaml:"cache"`

	// Integrity thresholds are tuning knobs, not invariants; keep them
	// adjustable without a rebuild.
	Integrity struct {
		ZeroPriceRatio   float64 `yaml:"zero_price_ratio"`
		MaxChangePercent float64 `yaml:"max_change_percent"`
		OutlierRatio     float64 `yaml:"outlier_ratio"`
	} `yaml:"integrity"`

	Sync struct {
		IntervalSec   int    `yaml:"interval_sec"`
		Currency      string `yaml:"currency"`
		WatchlistPath string `yaml:"watchlist_path"`
	} `yaml:"sync"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.App.Name = "coincow"
	cfg.App.Version = "dev"
	cfg.API.BaseURL = "https://api.coingecko.com/api/v3"
	cfg.API.TimeoutSec = 30
	// ~50 requests/minute keeps us under the upstream free-tier ceiling
	cfg.API.MinRequestIntervalMS = 1200
	cfg.API.RateLimitCooldownSec = 60
	cfg.API.MaxRetryAttempts = 3
	cfg.API.RetryBaseDelayMS = 1000
	cfg.Cache.DBPath = filepath.Join(DataDir(), "cache.db")
	cfg.Cache.MarketExpirySec = 60
	cfg.Cache.DetailsExpirySec = 300
	cfg.Cache.HistoryExpirySec = 300
	cfg.Cache.SearchExpirySec = 600
	cfg.Cache.RetentionHours = 24
	cfg.Integrity.ZeroPriceRatio = 0.1
	cfg.Integrity.MaxChangePercent = 1000
	cfg.Integrity.OutlierRatio = 10
	cfg.Sync.IntervalSec = 300
	cfg.Sync.Currency = "usd"
	cfg.Sync.WatchlistPath = filepath.Join(DataDir(), "watchlist.json")
	cfg.Logging.Level = "info"
	return cfg
}

// LoadConfig reads a YAML config file, applies environment overrides and
// validates the result. An empty path yields the defaults (plus overrides).
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	overrideWithEnv(cfg)

	// The secrets file backfills the key when neither the environment
	// nor the main config supplies one.
	if cfg.API.Key == "" {
		if _, err := os.Stat(SecretsPath()); err == nil {
			secret, err := LoadSecretConfig(SecretsPath())
			if err != nil {
				return nil, err
			}
			cfg.API.Key = secret.API.Key
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the loaded configuration for values that would break the
// data layer at runtime.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api base_url is required")
	}
	if c.API.MaxRetryAttempts < 1 {
		return fmt.Errorf("max_retry_attempts must be at least 1")
	}
	if c.API.MinRequestIntervalMS < 0 {
		return fmt.Errorf("min_request_interval_ms must not be negative")
	}
	if c.Cache.MarketExpirySec <= 0 || c.Cache.DetailsExpirySec <= 0 || c.Cache.HistoryExpirySec <= 0 {
		return fmt.Errorf("cache expiry windows must be positive")
	}
	if c.Integrity.ZeroPriceRatio <= 0 || c.Integrity.ZeroPriceRatio >= 1 {
		return fmt.Errorf("zero_price_ratio must be in (0, 1)")
	}
	if c.Integrity.OutlierRatio <= 1 {
		return fmt.Errorf("outlier_ratio must be greater than 1")
	}
	if c.Sync.IntervalSec <= 0 {
		return fmt.Errorf("sync interval must be positive")
	}
	return nil
}

// Derived accessors so callers deal in durations, not raw ints.

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.API.TimeoutSec) * time.Second
}

func (c *Config) MinRequestInterval() time.Duration {
	return time.Duration(c.API.MinRequestIntervalMS) * time.Millisecond
}

func (c *Config) RateLimitCooldown() time.Duration {
	return time.Duration(c.API.RateLimitCooldownSec) * time.Second
}

func (c *Config) RetryBaseDelay() time.Duration {
	return time.Duration(c.API.RetryBaseDelayMS) * time.Millisecond
}

func (c *Config) CacheRetention() time.Duration {
	return time.Duration(c.Cache.RetentionHours) * time.Hour
}

func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.Sync.IntervalSec) * time.Second
}

// overrideWithEnv lets the environment win over the file, so secrets stay
// out of version-controlled configs.
func overrideWithEnv(cfg *Config) {
	if key := os.Getenv("COINCOW_API_KEY"); key != "" {
		cfg.API.Key = key
	}
	if url := os.Getenv("COINCOW_API_URL"); url != "" {
		cfg.API.BaseURL = url
	}
	if db := os.Getenv("COINCOW_DB_PATH"); db != "" {
		cfg.Cache.DBPath = db
	}
	if level := os.Getenv("COINCOW_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
