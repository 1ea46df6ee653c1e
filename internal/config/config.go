// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Tollgate Contributors

// Package config loads the immutable service configuration. The resulting
// Config value is constructed once at startup and injected into each
// component; nothing reads configuration through globals afterwards.
package config

import (
	"os"
	"time"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
)

// Defaults applied when neither the config file nor flags set a value.
const (
	DefaultListenAddr      = "127.0.0.1:8080"
	DefaultMetricsAddr     = "127.0.0.1:9100"
	DefaultLogFormat       = "json"
	DefaultLogLevel        = "info"
	DefaultAccessTokenTTL  = 15 * time.Minute
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Environment variables honored as overrides. Secrets and the database URL
// are expected to come from the environment in deployments.
const (
	EnvDatabaseURL   = "DATABASE_URL"
	EnvAccessSecret  = "TOLLGATE_ACCESS_TOKEN_SECRET"
	EnvRefreshSecret = "TOLLGATE_REFRESH_TOKEN_SECRET"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Tokens   TokensConfig   `koanf:"tokens"`
	Log      LogConfig      `koanf:"log"`
}

// ServerConfig configures the HTTP listeners. When TLSCert and TLSKey are
// both set the API listener serves HTTPS; the metrics listener stays plain.
type ServerConfig struct {
	Addr        string `koanf:"addr"`
	MetricsAddr string `koanf:"metrics_addr"`
	TLSCert     string `koanf:"tls_cert"`
	TLSKey      string `koanf:"tls_key"`
}

// DatabaseConfig configures the user store connection.
type DatabaseConfig struct {
	URL string `koanf:"url"`
}

// TokensConfig configures per-kind token secrets and lifetimes. The two
// secrets must be independently configurable; there is no shared fallback.
type TokensConfig struct {
	AccessSecret  string        `koanf:"access_secret"`
	AccessTTL     time.Duration `koanf:"access_ttl"`
	RefreshSecret string        `koanf:"refresh_secret"`
	RefreshTTL    time.Duration `koanf:"refresh_ttl"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// Load reads configuration from the optional YAML file at path, overlays any
// set command-line flags, then environment overrides, and validates the
// result.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), kyaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("path", path).
				Wrap(err)
		}
	}

	if flags != nil {
		if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("operation", "merge flags").
				Wrap(err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").
			With("operation", "unmarshal config").
			Wrap(err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the loaded configuration.
func (c *Config) applyEnv() {
	if v := os.Getenv(EnvDatabaseURL); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv(EnvAccessSecret); v != "" {
		c.Tokens.AccessSecret = v
	}
	if v := os.Getenv(EnvRefreshSecret); v != "" {
		c.Tokens.RefreshSecret = v
	}
}

// applyDefaults fills unset values.
func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultListenAddr
	}
	if c.Server.MetricsAddr == "" {
		c.Server.MetricsAddr = DefaultMetricsAddr
	}
	if c.Tokens.AccessTTL <= 0 {
		c.Tokens.AccessTTL = DefaultAccessTokenTTL
	}
	if c.Tokens.RefreshTTL <= 0 {
		c.Tokens.RefreshTTL = DefaultRefreshTokenTTL
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// Validate checks that the configuration is complete. Missing secrets are a
// startup failure, never replaced with hardcoded values.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").Errorf("database URL is required (set database.url or %s)", EnvDatabaseURL)
	}
	if c.Tokens.AccessSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("access token secret is required (set tokens.access_secret or %s)", EnvAccessSecret)
	}
	if c.Tokens.RefreshSecret == "" {
		return oops.Code("CONFIG_INVALID").Errorf("refresh token secret is required (set tokens.refresh_secret or %s)", EnvRefreshSecret)
	}
	if (c.Server.TLSCert == "") != (c.Server.TLSKey == "") {
		return oops.Code("CONFIG_INVALID").Errorf("server.tls_cert and server.tls_key must be set together")
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").Errorf("log format must be 'json' or 'text', got %q", c.Log.Format)
	}
	return nil
}
