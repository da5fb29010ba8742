// Package config provides environment-driven configuration for namedgraph.
//
// Values are resolved in three layers: built-in defaults, then an optional
// TOML file named by CONFIG_FILE, then environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMemory   = "memory"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	StorageDriver   string
	DatabaseURL     Secret
	DBMaxConns      int32
	SQLitePath      string
	Port            string
	ListenHost      string
	CORSOrigins     []string
	LogLevel        string
	LogFormat       string
	APIKeys         []Secret
	ScanConcurrency int
	GraphCacheSize  int
	ConfigFile      string
}

func defaults() *Config {
	return &Config{
		StorageDriver:   DriverPostgres,
		DBMaxConns:      21,
		SQLitePath:      "namedgraph.db",
		Port:            "3030",
		ListenHost:      "127.0.0.1",
		CORSOrigins:     []string{"http://localhost:3002"},
		LogLevel:        "info",
		LogFormat:       "json",
		ScanConcurrency: 8,
		GraphCacheSize:  256,
	}
}

// Load reads configuration from defaults, the optional CONFIG_FILE and
// environment variables, in that order of precedence.
func Load() (*Config, error) {
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
		cfg.ConfigFile = path
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.StorageDriver = envOrDefault("STORAGE_DRIVER", c.StorageDriver)
	c.DatabaseURL = Secret(envOrDefault("DATABASE_URL", c.DatabaseURL.Value()))
	c.SQLitePath = envOrDefault("SQLITE_PATH", c.SQLitePath)
	c.Port = envOrDefault("PORT", c.Port)
	c.ListenHost = envOrDefault("LISTEN_HOST", c.ListenHost)
	c.LogLevel = envOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = envOrDefault("LOG_FORMAT", c.LogFormat)

	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	if v := os.Getenv("API_KEYS"); v != "" {
		c.APIKeys = c.APIKeys[:0]
		for _, k := range splitList(v) {
			c.APIKeys = append(c.APIKeys, Secret(k))
		}
	}

	if v := os.Getenv("DB_MAX_CONNS"); v != "" {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return fmt.Errorf("DB_MAX_CONNS must be an integer: %w", err)
		}
		c.DBMaxConns = int32(n)
	}

	if v := os.Getenv("SCAN_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SCAN_CONCURRENCY must be an integer: %w", err)
		}
		c.ScanConcurrency = n
	}

	if v := os.Getenv("GRAPH_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("GRAPH_CACHE_SIZE must be an integer: %w", err)
		}
		c.GraphCacheSize = n
	}

	return nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// AuthEnabled reports whether API keys are configured.
func (c *Config) AuthEnabled() bool {
	return len(c.APIKeys) > 0
}

// splitList splits a comma-separated list, trimming blanks and dropping empties.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
