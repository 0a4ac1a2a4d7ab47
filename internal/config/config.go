// Package config provides configuration loading and validation from environment variables.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	LogLevel            string // debug, info, warn, error
	ListenAddr          string // Public API listen address (e.g., ":8080")
	AdminListenAddr     string // Operator API listen address (e.g., ":8081")
	MetricsListenAddr   string // Metrics listener address (e.g., "localhost:9090")
	DatabasePath        string // SQLite database path
	PublicBaseURL       string // Optional: base URL rendered into download links
	AdminBootstrapToken string // Optional: initial operator token, used once on an empty database
	IPEchoURL           string // Optional: IP echo service queried at startup (empty = skip)
}

// Load parses configuration from environment variables.
// All configuration options have sensible defaults for ease of deployment.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:            os.Getenv("LOG_LEVEL"),
		ListenAddr:          os.Getenv("LISTEN_ADDR"),
		AdminListenAddr:     os.Getenv("ADMIN_LISTEN_ADDR"),
		MetricsListenAddr:   os.Getenv("METRICS_LISTEN_ADDR"),
		DatabasePath:        os.Getenv("DATABASE_PATH"),
		PublicBaseURL:       os.Getenv("PUBLIC_BASE_URL"),
		AdminBootstrapToken: os.Getenv("ADMIN_BOOTSTRAP_TOKEN"),
		IPEchoURL:           os.Getenv("IP_ECHO_URL"),
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.AdminListenAddr == "" {
		cfg.AdminListenAddr = ":8081"
	}
	if cfg.MetricsListenAddr == "" {
		cfg.MetricsListenAddr = "localhost:9090"
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = "/data/downloads.db"
	}

	return cfg, nil
}

// Validate checks all configuration constraints.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error (got %q)", c.LogLevel)
	}

	if c.ListenAddr == c.AdminListenAddr {
		return fmt.Errorf("LISTEN_ADDR and ADMIN_LISTEN_ADDR must differ; the operator API is never exposed on the public listener")
	}

	if c.PublicBaseURL != "" && !strings.HasPrefix(c.PublicBaseURL, "http://") && !strings.HasPrefix(c.PublicBaseURL, "https://") {
		return fmt.Errorf("PUBLIC_BASE_URL must start with http:// or https:// (got %q)", c.PublicBaseURL)
	}

	return nil
}
