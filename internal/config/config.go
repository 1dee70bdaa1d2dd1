// Package config provides environment-driven configuration for the copilot.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
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
	Port             string
	ListenHost       string
	CORSOrigins      []string
	LogLevel         string
	DatabaseURL      Secret // optional; audit sink degrades to log-only without it
	InterpreterURL   string
	InterpreterModel string
	PreviewTTL       time.Duration
	ClarificationTTL time.Duration
	RolePolicy       string
	AuditQueueSize   int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             envOrDefault("PORT", "3040"),
		ListenHost:       envOrDefault("LISTEN_HOST", "127.0.0.1"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		DatabaseURL:      Secret(envOrDefault("DATABASE_URL", "")),
		InterpreterURL:   envOrDefault("INTERPRETER_URL", "http://localhost:11434"),
		InterpreterModel: envOrDefault("INTERPRETER_MODEL", "qwen3:8b"),
		RolePolicy:       envOrDefault("ROLE_POLICY", ""),
	}

	var err error
	cfg.PreviewTTL, err = parseTTL("PREVIEW_TTL", "15m")
	if err != nil {
		return nil, err
	}
	cfg.ClarificationTTL, err = parseTTL("CLARIFICATION_TTL", "15m")
	if err != nil {
		return nil, err
	}

	queueSize, err := strconv.Atoi(envOrDefault("AUDIT_QUEUE_SIZE", "1000"))
	if err != nil || queueSize < 1 {
		return nil, fmt.Errorf("AUDIT_QUEUE_SIZE must be a positive integer")
	}
	cfg.AuditQueueSize = queueSize

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3002")
	cfg.CORSOrigins = strings.Split(origins, ",")
	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

func (c *Config) validate() error {
	if err := c.validateNetwork(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateInterpreter(); err != nil {
		return err
	}
	return c.validateCORS()
}

func (c *Config) validateNetwork() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil {
		return fmt.Errorf("PORT must be a valid integer: %w", err)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	if c.DatabaseURL.Value() == "" {
		return nil
	}

	dbURL, err := url.Parse(c.DatabaseURL.Value())
	if err != nil {
		return fmt.Errorf("DATABASE_URL is not a valid URL: %w", err)
	}
	if dbURL.Scheme != "postgres" && dbURL.Scheme != "postgresql" {
		return fmt.Errorf("DATABASE_URL scheme must be postgres:// or postgresql://")
	}
	if dbURL.Hostname() == "" {
		return fmt.Errorf("DATABASE_URL must include a host")
	}

	dbHost := dbURL.Hostname()
	if dbHost != "localhost" && dbHost != "127.0.0.1" && dbHost != "::1" {
		if dbURL.Query().Get("sslmode") == "disable" {
			return fmt.Errorf("DATABASE_URL sslmode=disable is not allowed for non-local host %q", dbHost)
		}
	}
	return nil
}

func (c *Config) validateInterpreter() error {
	if c.InterpreterURL == "" {
		return nil
	}
	u, err := url.ParseRequestURI(c.InterpreterURL)
	if err != nil {
		return fmt.Errorf("INTERPRETER_URL is not a valid URL: %w", err)
	}
	host := u.Hostname()
	if host != "localhost" && host != "127.0.0.1" && host != "::1" {
		return fmt.Errorf("INTERPRETER_URL must point to localhost (127.0.0.1, ::1, or localhost)")
	}
	return nil
}

func (c *Config) validateCORS() error {
	for _, origin := range c.CORSOrigins {
		if origin == "*" {
			return fmt.Errorf("CORS_ORIGINS must not contain wildcard '*'")
		}
		if strings.ContainsAny(origin, "*?[]") {
			return fmt.Errorf("CORS_ORIGINS must not contain glob characters (*?[]), got %q", origin)
		}
		u, err := url.Parse(origin)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("CORS_ORIGINS contains invalid origin %q (must have scheme and host)", origin)
		}
	}
	return nil
}

func parseTTL(key, fallback string) (time.Duration, error) {
	d, err := time.ParseDuration(envOrDefault(key, fallback))
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid duration: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return d, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
