// Package config loads the service configuration from a YAML file with
// environment-variable overrides and zero-value defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/stakescope/stakescope/internal/domain/risk"
	"github.com/stakescope/stakescope/internal/infrastructure/cache"
)

// Config is the full application configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	CacheTTL  cache.TTLPolicy `yaml:"cache_ttl"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Metadata  MetadataConfig  `yaml:"metadata"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// DatabaseConfig holds the two logical Postgres stores. The users store is
// consumed by the out-of-scope auth layer and is optional here.
type DatabaseConfig struct {
	AnalyticsDSN    string        `yaml:"analytics_dsn"`
	UsersDSN        string        `yaml:"users_dsn"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	QueryTimeout    time.Duration `yaml:"query_timeout"`
}

// RedisConfig holds the cache backend settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// RateLimitConfig bounds public endpoint traffic per client.
type RateLimitConfig struct {
	MaxRequests int           `yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

// AnalyticsConfig tunes the calculators.
type AnalyticsConfig struct {
	// VolatilityEpsilon is the relative 30d slope below which a trend is
	// classified stable.
	VolatilityEpsilon float64      `yaml:"volatility_epsilon"`
	RiskWeights       risk.Weights `yaml:"risk_weights"`
}

// MetadataConfig points at the external operator metadata registry.
type MetadataConfig struct {
	BaseURL        string        `yaml:"base_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	// RequestsPerSecond is the client-side outbound limit.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// Load reads the YAML file at path (missing file is fine), applies
// environment overrides, and fills defaults.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("read config %s: %w", path, err)
			}
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("ANALYTICS_DSN"); v != "" {
		cfg.Database.AnalyticsDSN = v
	}
	if v := os.Getenv("USERS_DSN"); v != "" {
		cfg.Database.UsersDSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("METADATA_BASE_URL"); v != "" {
		cfg.Metadata.BaseURL = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "127.0.0.1"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 10 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 10 * time.Second
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = 60 * time.Second
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 30 * time.Minute
	}
	if cfg.Database.QueryTimeout == 0 {
		cfg.Database.QueryTimeout = 30 * time.Second
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.RateLimit.MaxRequests == 0 {
		cfg.RateLimit.MaxRequests = 60
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = time.Minute
	}
	cfg.CacheTTL = cfg.CacheTTL.Normalize()
	if cfg.Analytics.RiskWeights == (risk.Weights{}) {
		cfg.Analytics.RiskWeights = risk.DefaultWeights
	}
	if cfg.Metadata.RequestTimeout == 0 {
		cfg.Metadata.RequestTimeout = 5 * time.Second
	}
	if cfg.Metadata.RequestsPerSecond == 0 {
		cfg.Metadata.RequestsPerSecond = 5
	}
}
