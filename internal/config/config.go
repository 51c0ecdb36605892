// Package config loads application configuration from a YAML file with
// environment variable overrides. Configuration is resolved once at process
// start and passed into constructors; nothing in this package is mutable
// global state.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable overrides.
const (
	EnvConfigPath   = "CONFIG_PATH"
	EnvDBConnection = "DB_CONNECTION"
	EnvJWTSecret    = "JWT_SECRET"
	EnvJWTExpiry    = "JWT_EXPIRY"
	EnvEnvironment  = "ENVIRONMENT"
	EnvPort         = "PORT"
)

// defaultTokenExpiry is used when the config omits or invalidates the token expiry.
const defaultTokenExpiry = 7 * 24 * time.Hour

// ErrMissingDatabaseDSN indicates no database DSN is present in config or environment.
var ErrMissingDatabaseDSN = errors.New("missing database dsn (set `database.dsn` in config file or DB_CONNECTION)")

// ErrMissingJWTSecret indicates no token signing secret is configured.
var ErrMissingJWTSecret = errors.New("missing jwt secret (set `jwt.secret` in config file or JWT_SECRET)")

// JWTConfig holds token signing secret and expiry settings.
type JWTConfig struct {
	Secret string        `yaml:"secret"`
	Expiry time.Duration `yaml:"expiry"`
}

// DatabaseConfig holds the storage DSN.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// RateLimitConfig holds login rate limiter settings.
type RateLimitConfig struct {
	LoginPerSecond int    `yaml:"login-per-second"`
	RedisEnabled   bool   `yaml:"redis-enabled"`
	RedisAddr      string `yaml:"redis-addr"`
	RedisPassword  string `yaml:"redis-password"`
	RedisDB        int    `yaml:"redis-db"`
	RedisPrefix    string `yaml:"redis-prefix"`
}

// LogConfig holds logging output settings.
type LogConfig struct {
	Level      string `yaml:"level"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max-size-mb"`
	MaxBackups int    `yaml:"max-backups"`
	MaxAgeDays int    `yaml:"max-age-days"`
}

// Config holds the resolved application configuration.
type Config struct {
	Port        int             `yaml:"port"`
	Environment string          `yaml:"environment"`
	Database    DatabaseConfig  `yaml:"database"`
	JWT         JWTConfig       `yaml:"jwt"`
	RateLimit   RateLimitConfig `yaml:"rate-limit"`
	Log         LogConfig       `yaml:"log"`
}

// Production reports whether the process runs with production cookie policy.
func (c Config) Production() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// ResolveConfigPath normalizes the config path and applies defaults.
func ResolveConfigPath(p string) string {
	trimmed := strings.TrimSpace(p)
	if trimmed == "" {
		trimmed = "./config.yaml"
	}
	if abs, err := filepath.Abs(trimmed); err == nil {
		return abs
	}
	return trimmed
}

// Load reads the YAML config file and applies environment overrides. A missing
// file is not an error as long as the environment supplies the DSN and secret.
func Load(configPath string) (Config, error) {
	cfg := Config{
		Port:        8318,
		Environment: "development",
		JWT:         JWTConfig{Expiry: defaultTokenExpiry},
		RateLimit:   RateLimitConfig{LoginPerSecond: 5, RedisPrefix: "fgate:rl"},
		Log:         LogConfig{Level: "info"},
	}

	data, errRead := os.ReadFile(configPath)
	if errRead == nil {
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("parse config file: %w", errUnmarshal)
		}
	} else if !os.IsNotExist(errRead) {
		return Config{}, fmt.Errorf("read config file: %w", errRead)
	}

	applyEnvOverrides(&cfg)

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return Config{}, ErrMissingDatabaseDSN
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return Config{}, ErrMissingJWTSecret
	}
	if cfg.JWT.Expiry <= 0 {
		cfg.JWT.Expiry = defaultTokenExpiry
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("invalid port: %d", cfg.Port)
	}
	return cfg, nil
}

// applyEnvOverrides replaces file values with environment variables when set.
func applyEnvOverrides(cfg *Config) {
	if dsn := strings.TrimSpace(os.Getenv(EnvDBConnection)); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if secret := strings.TrimSpace(os.Getenv(EnvJWTSecret)); secret != "" {
		cfg.JWT.Secret = secret
	}
	if expiryRaw := strings.TrimSpace(os.Getenv(EnvJWTExpiry)); expiryRaw != "" {
		if expiry, errParse := time.ParseDuration(expiryRaw); errParse == nil && expiry > 0 {
			cfg.JWT.Expiry = expiry
		}
	}
	if env := strings.TrimSpace(os.Getenv(EnvEnvironment)); env != "" {
		cfg.Environment = env
	}
	if portRaw := strings.TrimSpace(os.Getenv(EnvPort)); portRaw != "" {
		var port int
		if _, errScan := fmt.Sscanf(portRaw, "%d", &port); errScan == nil && port > 0 {
			cfg.Port = port
		}
	}
}
