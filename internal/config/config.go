// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application configuration from environment
// variables.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains default/example secrets that must be rejected.
// A hardcoded fallback must never reach production; absence of an explicit
// secret is a deployment misconfiguration, not something to default over.
var knownWeakSecrets = []string{
	"CHANGE_THIS_SECRET",
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// MinJWTSecretLength is the minimum required length for the token signing
// secret. 32 bytes gives the full HMAC-SHA256 key strength.
const MinJWTSecretLength = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath     string `env:"SUPPORTERD_DB_PATH" envDefault:"./data/supporterd.db"`
	JWTSecret  string `env:"SUPPORTERD_JWT_SECRET,required"`
	ServerHost string `env:"SUPPORTERD_SERVER_HOST" envDefault:"localhost"`
	ServerPort int    `env:"SUPPORTERD_SERVER_PORT" envDefault:"4000"`
	Env        string `env:"SUPPORTERD_ENV" envDefault:"development"`
	LogLevel   string `env:"SUPPORTERD_LOG_LEVEL" envDefault:"info"`

	// Admin seeding configuration. The username/password pair is inserted
	// only if no admin record exists yet. Leaving AdminPassword empty
	// seeds the documented default, which must be rotated before
	// production use.
	AdminUsername string `env:"SUPPORTERD_ADMIN_USERNAME" envDefault:"admin"`
	AdminPassword string `env:"SUPPORTERD_ADMIN_PASSWORD"`

	// AgeReference is the fixed future date the projected age field is
	// computed against, in YYYY-MM-DD form.
	AgeReference string `env:"SUPPORTERD_AGE_REFERENCE_DATE" envDefault:"2029-10-01"`

	ageReferenceDate time.Time
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// AgeReferenceDate returns the parsed projected-age reference date.
func (c Config) AgeReferenceDate() time.Time {
	return c.ageReferenceDate
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.JWTSecret) < MinJWTSecretLength {
		return nil, fmt.Errorf("SUPPORTERD_JWT_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinJWTSecretLength, len(cfg.JWTSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.JWTSecret == weak {
			return nil, fmt.Errorf("SUPPORTERD_JWT_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	if !hasMinimumEntropy(cfg.JWTSecret) {
		slog.Warn("SUPPORTERD_JWT_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	ref, err := time.Parse("2006-01-02", cfg.AgeReference)
	if err != nil {
		return nil, fmt.Errorf("parsing SUPPORTERD_AGE_REFERENCE_DATE %q: %w", cfg.AgeReference, err)
	}
	cfg.ageReferenceDate = ref

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character
// classes (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
