// Package config loads and validates Tessera's process configuration. It is
// read once at startup (internal/config.Load) and treated as immutable for
// the remainder of the process lifetime, per spec.md §9 "Global state".
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tessera-contracts/tessera/internal/logging"
)

// Config is the root configuration document, loaded from a YAML file.
// Environment variables are not read; secrets come from the file as well.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Persistence PersistenceConfig `yaml:"persistence"`
	Cache       CacheConfig       `yaml:"cache"`
	Auth        AuthConfig        `yaml:"auth"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit"`
	Proposal    ProposalConfig    `yaml:"proposal"`
	Impact      ImpactConfig      `yaml:"impact"`
	Webhook     WebhookConfig     `yaml:"webhook"`
	Pagination  PaginationConfig  `yaml:"pagination"`
	Logging     logging.Config    `yaml:"logging"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// PersistenceConfig configures the transactional store connection pool.
type PersistenceConfig struct {
	DSN               string        `yaml:"dsn"`
	MaxOpenConns      int           `yaml:"max_open_conns"`
	MaxOverflowConns  int           `yaml:"max_overflow_conns"`
	AcquireTimeout    time.Duration `yaml:"acquire_timeout"`
	ConnMaxLifetime   time.Duration `yaml:"conn_max_lifetime"`
}

// CacheConfig configures the optional read-through cache backend. DSN empty
// means caching is disabled and every lookup is a graceful miss.
type CacheConfig struct {
	DSN             string        `yaml:"dsn"`
	ContractTTL     time.Duration `yaml:"contract_ttl"`
	AssetTTL        time.Duration `yaml:"asset_ttl"`
	LineageTTL      time.Duration `yaml:"lineage_ttl"`
	SchemaDiffTTL   time.Duration `yaml:"schema_diff_ttl"`
	GlobalSearchTTL time.Duration `yaml:"global_search_ttl"`
}

// AuthConfig configures authentication.
type AuthConfig struct {
	BootstrapKey      string `yaml:"bootstrap_key"`
	BootstrapTeamID   string `yaml:"bootstrap_team_id"`
	SessionSigningKey string `yaml:"session_signing_key"`
}

// RateLimitConfig sets per-bucket request ceilings, enforced per API key.
type RateLimitConfig struct {
	ReadsPerMinute  int `yaml:"reads_per_minute"`
	WritesPerMinute int `yaml:"writes_per_minute"`
	AdminPerMinute  int `yaml:"admin_per_minute"`
}

// ProposalConfig controls default proposal expiration.
type ProposalConfig struct {
	DefaultExpirationDays int `yaml:"default_expiration_days"`
}

// ImpactConfig bounds the impact-traversal BFS.
type ImpactConfig struct {
	DefaultDepth int `yaml:"default_depth"`
	MaxDepth     int `yaml:"max_depth"`
}

// WebhookConfig controls outbound delivery attempts.
type WebhookConfig struct {
	TargetURL      string        `yaml:"target_url"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxAttempts    int           `yaml:"max_attempts"`
	WorkerInterval time.Duration `yaml:"worker_interval"`
	WorkerCount    int           `yaml:"worker_count"`
}

// PaginationConfig sets list endpoint defaults.
type PaginationConfig struct {
	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
}

// Load reads a YAML configuration file, applies production-safe defaults
// for any field left unset, and validates required values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if cfg.Persistence.MaxOpenConns == 0 {
		cfg.Persistence.MaxOpenConns = 20
	}
	if cfg.Persistence.MaxOverflowConns == 0 {
		cfg.Persistence.MaxOverflowConns = 10
	}
	if cfg.Persistence.AcquireTimeout == 0 {
		cfg.Persistence.AcquireTimeout = 30 * time.Second
	}
	if cfg.Persistence.ConnMaxLifetime == 0 {
		cfg.Persistence.ConnMaxLifetime = time.Hour
	}

	if cfg.Cache.ContractTTL == 0 {
		cfg.Cache.ContractTTL = 10 * time.Minute
	}
	if cfg.Cache.AssetTTL == 0 {
		cfg.Cache.AssetTTL = 5 * time.Minute
	}
	if cfg.Cache.LineageTTL == 0 {
		cfg.Cache.LineageTTL = 5 * time.Minute
	}
	if cfg.Cache.SchemaDiffTTL == 0 {
		cfg.Cache.SchemaDiffTTL = time.Hour
	}
	if cfg.Cache.GlobalSearchTTL == 0 {
		cfg.Cache.GlobalSearchTTL = time.Minute
	}

	if cfg.RateLimit.ReadsPerMinute == 0 {
		cfg.RateLimit.ReadsPerMinute = 600
	}
	if cfg.RateLimit.WritesPerMinute == 0 {
		cfg.RateLimit.WritesPerMinute = 120
	}
	if cfg.RateLimit.AdminPerMinute == 0 {
		cfg.RateLimit.AdminPerMinute = 60
	}

	if cfg.Proposal.DefaultExpirationDays == 0 {
		cfg.Proposal.DefaultExpirationDays = 30
	}

	if cfg.Impact.DefaultDepth == 0 {
		cfg.Impact.DefaultDepth = 5
	}
	if cfg.Impact.MaxDepth == 0 {
		cfg.Impact.MaxDepth = 10
	}

	if cfg.Webhook.RequestTimeout == 0 {
		cfg.Webhook.RequestTimeout = 10 * time.Second
	}
	if cfg.Webhook.MaxAttempts == 0 {
		cfg.Webhook.MaxAttempts = 5
	}
	if cfg.Webhook.WorkerInterval == 0 {
		cfg.Webhook.WorkerInterval = 5 * time.Second
	}
	if cfg.Webhook.WorkerCount == 0 {
		cfg.Webhook.WorkerCount = 4
	}

	if cfg.Pagination.DefaultLimit == 0 {
		cfg.Pagination.DefaultLimit = 50
	}
	if cfg.Pagination.MaxLimit == 0 {
		cfg.Pagination.MaxLimit = 500
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func (c *Config) validate() error {
	if c.Persistence.DSN == "" {
		return fmt.Errorf("persistence.dsn is required")
	}
	if c.Impact.MaxDepth < c.Impact.DefaultDepth {
		return fmt.Errorf("impact.max_depth (%d) must be >= impact.default_depth (%d)", c.Impact.MaxDepth, c.Impact.DefaultDepth)
	}
	if c.Impact.MaxDepth > 10 {
		return fmt.Errorf("impact.max_depth must not exceed 10")
	}
	return nil
}
