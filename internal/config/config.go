// Lectern - Congregation Meeting Scheduling and Administration
// Copyright 2026 Lectern Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/lectern-app/lectern

// Package config loads Lectern configuration from layered sources:
// built-in defaults, an optional YAML file, and environment variables,
// in that order of precedence (env highest).
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Authz    AuthzConfig    `koanf:"authz"`
	Audit    AuditConfig    `koanf:"audit"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`

	// Environment mode: "development" or "production". Production refuses
	// to start with placeholder secrets.
	Environment string `koanf:"environment"`

	CORSOrigins []string `koanf:"cors_origins"`

	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// SecurityConfig holds authentication settings.
//
// Environment Variables:
//   - LECTERN_JWT_SECRET: secret for signing session tokens (required)
//   - LECTERN_SESSION_TTL: session token lifetime (default: 24h)
//   - LECTERN_COOKIE_SECURE: mark the session cookie Secure (default: true)
//   - LECTERN_LOGIN_ATTEMPTS: login attempts per window per client (default: 5)
//   - LECTERN_LOGIN_WINDOW: login rate limit window (default: 1m)
type SecurityConfig struct {
	JWTSecret    string        `koanf:"jwt_secret"`
	SessionTTL   time.Duration `koanf:"session_ttl"`
	CookieSecure bool          `koanf:"cookie_secure"`

	LoginAttempts int           `koanf:"login_attempts"`
	LoginWindow   time.Duration `koanf:"login_window"`

	// Users are the local accounts. Accounts carry bcrypt hashes and are
	// normally defined in the config file, not the environment.
	Users []UserConfig `koanf:"users"`
}

// UserConfig is one locally configured account.
type UserConfig struct {
	ID             string   `koanf:"id"`
	Username       string   `koanf:"username"`
	PasswordHash   string   `koanf:"password_hash"`
	CongregationID string   `koanf:"congregation_id"`
	Roles          []string `koanf:"roles"`
}

// AuthzConfig holds authorization settings.
//
// Environment Variables:
//   - LECTERN_AUTHZ_MODEL_PATH: casbin model file (default: embedded)
//   - LECTERN_AUTHZ_POLICY_PATH: casbin policy file (default: embedded)
//   - LECTERN_AUTHZ_FETCH_TIMEOUT: grant fetch timeout (default: 5s)
//   - LECTERN_AUTHZ_BREAKER_ENABLED: circuit-break grant fetches (default: true)
//   - LECTERN_AUTHZ_BREAKER_FAILURES: failures that open the breaker (default: 5)
//   - LECTERN_AUTHZ_BREAKER_TIMEOUT: open-state duration (default: 30s)
type AuthzConfig struct {
	ModelPath  string `koanf:"model_path"`
	PolicyPath string `koanf:"policy_path"`

	FetchTimeout    time.Duration `koanf:"fetch_timeout"`
	BreakerEnabled  bool          `koanf:"breaker_enabled"`
	BreakerFailures uint32        `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// AuditConfig holds audit pipeline settings.
//
// Environment Variables:
//   - LECTERN_AUDIT_ENABLED: record audit events (default: true)
//   - LECTERN_AUDIT_STORE: "badger" or "memory" (default: badger)
//   - LECTERN_AUDIT_PATH: badger database directory (default: /data/audit)
//   - LECTERN_AUDIT_RETENTION_DAYS: how long events are kept (default: 365)
type AuditConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Store           string        `koanf:"store"`
	Path            string        `koanf:"path"`
	RetentionDays   int           `koanf:"retention_days"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// LoggingConfig holds zerolog settings.
//
// Environment Variables:
//   - LECTERN_LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LECTERN_LOG_FORMAT: json or console (default: json)
//   - LECTERN_LOG_CALLER: include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// placeholderSecrets are values that must never survive into production.
var placeholderSecrets = map[string]bool{
	"":               true,
	"changeme":       true,
	"change-me":      true,
	"secret":         true,
	"dev-secret":     true,
	"lectern-secret": true,
}

// Validate checks that required configuration is present and valid.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateAuthz(); err != nil {
		return err
	}
	if err := c.validateAudit(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("LECTERN_HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("LECTERN_HTTP_TIMEOUT must be positive")
	}
	switch c.Server.Environment {
	case "development", "production":
	default:
		return fmt.Errorf("LECTERN_ENVIRONMENT must be development or production, got %q", c.Server.Environment)
	}
	if !c.Server.RateLimitDisabled {
		if c.Server.RateLimitReqs < 1 {
			return fmt.Errorf("LECTERN_RATE_LIMIT_REQUESTS must be at least 1")
		}
		if c.Server.RateLimitWindow <= 0 {
			return fmt.Errorf("LECTERN_RATE_LIMIT_WINDOW must be positive")
		}
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Server.Environment == "production" {
		if placeholderSecrets[strings.ToLower(c.Security.JWTSecret)] {
			return fmt.Errorf("LECTERN_JWT_SECRET must be set to a real secret in production")
		}
		if len(c.Security.JWTSecret) < 32 {
			return fmt.Errorf("LECTERN_JWT_SECRET must be at least 32 characters in production")
		}
		if !c.Security.CookieSecure {
			return fmt.Errorf("LECTERN_COOKIE_SECURE must not be disabled in production")
		}
	}
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("LECTERN_JWT_SECRET is required")
	}
	if c.Security.SessionTTL <= 0 {
		return fmt.Errorf("LECTERN_SESSION_TTL must be positive")
	}

	seen := make(map[string]bool, len(c.Security.Users))
	for i := range c.Security.Users {
		u := &c.Security.Users[i]
		if u.Username == "" {
			return fmt.Errorf("security.users[%d]: username is required", i)
		}
		if seen[u.Username] {
			return fmt.Errorf("security.users: duplicate username %q", u.Username)
		}
		seen[u.Username] = true
		if u.ID == "" {
			return fmt.Errorf("security.users[%d] (%s): id is required", i, u.Username)
		}
		if u.CongregationID == "" {
			return fmt.Errorf("security.users[%d] (%s): congregation_id is required", i, u.Username)
		}
		if !strings.HasPrefix(u.PasswordHash, "$2a$") && !strings.HasPrefix(u.PasswordHash, "$2b$") &&
			!strings.HasPrefix(u.PasswordHash, "$2y$") {
			return fmt.Errorf("security.users[%d] (%s): password_hash must be a bcrypt hash", i, u.Username)
		}
	}
	return nil
}

func (c *Config) validateAuthz() error {
	if c.Authz.FetchTimeout <= 0 {
		return fmt.Errorf("LECTERN_AUTHZ_FETCH_TIMEOUT must be positive")
	}
	if c.Authz.BreakerEnabled {
		if c.Authz.BreakerFailures < 1 {
			return fmt.Errorf("LECTERN_AUTHZ_BREAKER_FAILURES must be at least 1")
		}
		if c.Authz.BreakerTimeout <= 0 {
			return fmt.Errorf("LECTERN_AUTHZ_BREAKER_TIMEOUT must be positive")
		}
	}
	return nil
}

func (c *Config) validateAudit() error {
	switch c.Audit.Store {
	case "badger", "memory":
	default:
		return fmt.Errorf("LECTERN_AUDIT_STORE must be badger or memory, got %q", c.Audit.Store)
	}
	if c.Audit.Store == "badger" && c.Audit.Path == "" {
		return fmt.Errorf("LECTERN_AUDIT_PATH is required when the audit store is badger")
	}
	if c.Audit.RetentionDays < 1 {
		return fmt.Errorf("LECTERN_AUDIT_RETENTION_DAYS must be at least 1")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LECTERN_LOG_LEVEL must be trace, debug, info, warn or error, got %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("LECTERN_LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
	return nil
}
