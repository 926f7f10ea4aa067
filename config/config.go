// Package config holds the runtime settings of the offer search service.
//
// Settings start from DefaultConfig, may be layered with a YAML file via Load
// and are finally overridden by command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrInvalidConfig is wrapped by every validation failure.
	ErrInvalidConfig = errors.New("invalid configuration")
)

// Config holds all settings for the service.
type Config struct {
	ListenAddr     string        `yaml:"listen_addr"`
	DBPath         string        `yaml:"db_path"`       // Empty keeps the catalog in memory
	SnapshotPath   string        `yaml:"snapshot_path"` // CSV imported at startup, if set
	DefaultLimit   int           `yaml:"default_limit"`
	CacheSize      int           `yaml:"cache_size"` // 0 disables the result cache
	PoolSize       int           `yaml:"pool_size"`  // 0 picks from the CPU count
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	LogLevel       string        `yaml:"log_level"`
}

// Option modifies a Config.
type Option func(*Config)

// DefaultConfig returns a configuration suitable for local use.
func DefaultConfig() *Config {
	return &Config{
		ListenAddr:     ":8000",
		DBPath:         "offersearch.db",
		DefaultLimit:   10,
		CacheSize:      1024,
		AllowedOrigins: []string{"*"},
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
		LogLevel:       "info",
	}
}

// NewConfig returns DefaultConfig with opts applied.
func NewConfig(opts ...Option) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithListenAddr sets the HTTP listen address.
func WithListenAddr(addr string) Option {
	return func(c *Config) { c.ListenAddr = addr }
}

// WithDBPath sets the BadgerDB directory. Empty keeps the catalog in memory.
func WithDBPath(path string) Option {
	return func(c *Config) { c.DBPath = path }
}

// WithSnapshotPath sets the CSV snapshot imported at startup.
func WithSnapshotPath(path string) Option {
	return func(c *Config) { c.SnapshotPath = path }
}

// WithDefaultLimit sets the result count used when a request names none.
func WithDefaultLimit(n int) Option {
	return func(c *Config) { c.DefaultLimit = n }
}

// WithCacheSize sets the result cache capacity.
func WithCacheSize(n int) Option {
	return func(c *Config) { c.CacheSize = n }
}

// WithPoolSize sets the worker pool size used for catalog builds and imports.
func WithPoolSize(n int) Option {
	return func(c *Config) { c.PoolSize = n }
}

// WithAllowedOrigins sets the CORS origins.
func WithAllowedOrigins(origins ...string) Option {
	return func(c *Config) { c.AllowedOrigins = origins }
}

// WithTimeouts sets the HTTP read and write timeouts.
func WithTimeouts(read, write time.Duration) Option {
	return func(c *Config) {
		c.ReadTimeout = read
		c.WriteTimeout = write
	}
}

// WithLogLevel sets the log level name.
func WithLogLevel(level string) Option {
	return func(c *Config) { c.LogLevel = level }
}

// Load reads a YAML file over the defaults and validates the result.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.ListenAddr == "" {
		return fmt.Errorf("%w: listen_addr is required", ErrInvalidConfig)
	}
	if c.DefaultLimit < 1 {
		return fmt.Errorf("%w: default_limit must be positive, got %d", ErrInvalidConfig, c.DefaultLimit)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("%w: cache_size must not be negative, got %d", ErrInvalidConfig, c.CacheSize)
	}
	if c.PoolSize < 0 {
		return fmt.Errorf("%w: pool_size must not be negative, got %d", ErrInvalidConfig, c.PoolSize)
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 {
		return fmt.Errorf("%w: timeouts must not be negative", ErrInvalidConfig)
	}
	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
