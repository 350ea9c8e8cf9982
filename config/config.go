// Package config provides configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Contract ContractConfig `yaml:"contract"`
	Auth     AuthConfig     `yaml:"auth"`
	Audit    AuditConfig    `yaml:"audit"`
	Database DatabaseConfig `yaml:"database"`
	Bundles  BundleConfig   `yaml:"bundles"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

// ContractConfig names the service contract to host.
type ContractConfig struct {
	Name string `yaml:"name"`
}

// AuthConfig configures caller authentication.
// Use "none" for anonymous dispatch, "static" for a fixed token list,
// or "jwt" for signed bearer tokens.
type AuthConfig struct {
	Mode      string        `yaml:"mode"` // "none", "static", or "jwt"
	Users     []UserConfig  `yaml:"users,omitempty"`
	JWTSecret string        `yaml:"jwt_secret,omitempty"`
	TokenTTL  time.Duration `yaml:"token_ttl,omitempty"`
}

// UserConfig is one statically configured caller.
type UserConfig struct {
	Name      string   `yaml:"name"`
	Token     string   `yaml:"token,omitempty"`      // plaintext, or
	TokenHash string   `yaml:"token_hash,omitempty"` // bcrypt hash
	Roles     []string `yaml:"roles,omitempty"`
}

// AuditConfig configures the dispatch audit trail.
// Use "sqlite" for persistent storage, "memory" for in-process only,
// or "off" to disable recording.
type AuditConfig struct {
	Mode          string        `yaml:"mode"` // "sqlite", "memory", or "off"
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
}

// DatabaseConfig configures the database.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite"
	DSN    string `yaml:"dsn"`
}

// BundleConfig configures localized descriptor bundles.
type BundleConfig struct {
	Dir   string `yaml:"dir,omitempty"`
	Watch bool   `yaml:"watch"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `yaml:"format"` // "json" or "console"
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load reads configuration from a YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadFromEnv creates configuration entirely from environment variables.
// This is useful for Docker deployments where no config file is needed.
//
// Environment variables:
//
//	RPCGATE_CONTRACT         - Contract name to host (required)
//	RPCGATE_SERVER_HOST      - Server host (default: 0.0.0.0)
//	RPCGATE_SERVER_PORT      - Server port (default: 8080)
//	RPCGATE_DATABASE_DSN     - Database path (default: rpcgate.db)
//	RPCGATE_AUTH_MODE        - Auth mode: none, static, jwt (default: none)
//	RPCGATE_AUTH_JWT_SECRET  - Secret for JWT verification
//	RPCGATE_AUDIT_MODE       - Audit mode: sqlite, memory, off (default: sqlite)
//	RPCGATE_BUNDLE_DIR       - Descriptor bundle directory
//	RPCGATE_LOG_LEVEL        - Log level: debug, info, warn, error (default: info)
//	RPCGATE_LOG_FORMAT       - Log format: json or console (default: json)
//	RPCGATE_METRICS_ENABLED  - Enable /metrics endpoint
func LoadFromEnv() (*Config, error) {
	var cfg Config

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

// LoadWithFallback tries to load from file, falls back to environment
// variables. This is the recommended method for Docker deployments.
func LoadWithFallback(path string) (*Config, error) {
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	if HasEnvConfig() {
		return LoadFromEnv()
	}

	return nil, fmt.Errorf("no configuration found: provide config file or set RPCGATE_CONTRACT")
}

// HasEnvConfig returns true if essential environment variables are set.
func HasEnvConfig() bool {
	return os.Getenv("RPCGATE_CONTRACT") != ""
}

// applyEnvOverrides applies RPCGATE_* environment variables to the config.
// Environment variables always override file-based configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("RPCGATE_CONTRACT"); v != "" {
		cfg.Contract.Name = v
	}

	if v := os.Getenv("RPCGATE_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("RPCGATE_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("RPCGATE_SERVER_READ_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if v := os.Getenv("RPCGATE_SERVER_WRITE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}

	if v := os.Getenv("RPCGATE_AUTH_MODE"); v != "" {
		cfg.Auth.Mode = v
	}
	if v := os.Getenv("RPCGATE_AUTH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}

	if v := os.Getenv("RPCGATE_AUDIT_MODE"); v != "" {
		cfg.Audit.Mode = v
	}
	if v := os.Getenv("RPCGATE_AUDIT_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Audit.BatchSize = n
		}
	}
	if v := os.Getenv("RPCGATE_AUDIT_FLUSH_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Audit.FlushInterval = d
		}
	}

	if v := os.Getenv("RPCGATE_DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}

	if v := os.Getenv("RPCGATE_BUNDLE_DIR"); v != "" {
		cfg.Bundles.Dir = v
	}
	if v := os.Getenv("RPCGATE_BUNDLE_WATCH"); v != "" {
		cfg.Bundles.Watch = parseBool(v)
	}

	if v := os.Getenv("RPCGATE_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RPCGATE_LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}

	if v := os.Getenv("RPCGATE_METRICS_ENABLED"); v != "" {
		cfg.Metrics.Enabled = parseBool(v)
	}
}

// parseBool parses a boolean from common string values.
func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes" || v == "on"
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}

	if cfg.Auth.Mode == "" {
		cfg.Auth.Mode = "none"
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = 24 * time.Hour
	}

	if cfg.Audit.Mode == "" {
		cfg.Audit.Mode = "sqlite"
	}
	if cfg.Audit.BatchSize == 0 {
		cfg.Audit.BatchSize = 100
	}
	if cfg.Audit.FlushInterval == 0 {
		cfg.Audit.FlushInterval = 10 * time.Second
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "rpcgate.db"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	if cfg.Contract.Name == "" {
		return fmt.Errorf("contract.name is required")
	}

	validAuthModes := map[string]bool{"none": true, "static": true, "jwt": true}
	if !validAuthModes[cfg.Auth.Mode] {
		return fmt.Errorf("auth.mode must be 'none', 'static', or 'jwt', got %q", cfg.Auth.Mode)
	}
	if cfg.Auth.Mode == "jwt" && cfg.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required when auth.mode is 'jwt'")
	}
	if cfg.Auth.Mode == "static" {
		for i, u := range cfg.Auth.Users {
			if u.Name == "" {
				return fmt.Errorf("auth.users[%d].name is required", i)
			}
			if u.Token == "" && u.TokenHash == "" {
				return fmt.Errorf("auth.users[%d] needs token or token_hash", i)
			}
		}
	}

	validAuditModes := map[string]bool{"sqlite": true, "memory": true, "off": true}
	if !validAuditModes[cfg.Audit.Mode] {
		return fmt.Errorf("audit.mode must be 'sqlite', 'memory', or 'off', got %q", cfg.Audit.Mode)
	}

	if cfg.Database.Driver != "sqlite" {
		return fmt.Errorf("database.driver must be 'sqlite', got %q", cfg.Database.Driver)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[cfg.Logging.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console', got %q", cfg.Logging.Format)
	}

	return nil
}
