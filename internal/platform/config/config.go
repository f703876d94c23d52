// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

/*
Package config handles application-wide settings and environment parsing.

It leverages 'caarlos0/env' to map OS environment variables into a strongly-typed
Go struct, providing early validation and default values.

Usage:

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}

Architecture:

  - Immutability: Once loaded, configuration is read-only.
  - DI-Friendly: Passed to core components (DB, Redis, Gates) via constructors.
  - Zero Hidden State: No global variables are used to store config.

This ensures the application is Twelve-Factor compliant by storing config in the env.
*/
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// # Configuration Schema

// TokenRule bounds one security-token kind: the generated length is uniform
// in [MinLength, MaxLength] and the token stays valid for Validity after
// issuance.
type TokenRule struct {
	MinLength int           `env:"MIN_LENGTH"`
	MaxLength int           `env:"MAX_LENGTH"`
	Validity  time.Duration `env:"VALIDITY"`
}

// Config holds all runtime configuration for the Veriden API server.
type Config struct {

	// Server settings
	ServerPort  string `env:"SERVER_PORT"  envDefault:"8080"`
	Environment string `env:"ENVIRONMENT"  envDefault:"development"`
	Debug       bool   `env:"DEBUG"        envDefault:"false"`

	// Relational Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required"`

	// MigrationPath is the filesystem path to the SQL migrations directory.
	MigrationPath string `env:"MIGRATION_PATH" envDefault:"./data/migrations"`

	// Key-Value Cache (Redis)
	RedisURL string `env:"REDIS_URL,required"`

	// Cryptographic keys for bearer-token signing
	JWTPrivKeyPath string `env:"JWT_PRIVATE_KEY_PATH,required"`
	JWTPubKeyPath  string `env:"JWT_PUBLIC_KEY_PATH,required"`

	// Feature toggles for the authorization gates
	RecaptchaEnabled  bool `env:"RECAPTCHA_ENABLED"   envDefault:"false"`
	TwoFactorEnabled  bool `env:"TWO_FACTOR_ENABLED"  envDefault:"true"`
	SecretCodeEnabled bool `env:"SECRET_CODE_ENABLED" envDefault:"false"`

	// Human-verification collaborator
	RecaptchaSecret    string        `env:"RECAPTCHA_SECRET"`
	RecaptchaVerifyURL string        `env:"RECAPTCHA_VERIFY_URL" envDefault:"https://www.google.com/recaptcha/api/siteverify"`
	RecaptchaTimeout   time.Duration `env:"RECAPTCHA_TIMEOUT"    envDefault:"5s"`

	// Lockout state machine thresholds
	LoginFailedThreshold int           `env:"LOGIN_FAILED_THRESHOLD" envDefault:"5"`
	LockOutThreshold     int           `env:"LOCKOUT_THRESHOLD"      envDefault:"3"`
	LockOutDuration      time.Duration `env:"LOCKOUT_DURATION"       envDefault:"15m"`

	// Credential material
	PasswordSaltLength int `env:"PASSWORD_SALT_LENGTH" envDefault:"16"`

	// Session authorization lifetimes
	AuthorizationValidity    time.Duration `env:"AUTHORIZATION_VALIDITY"     envDefault:"30m"`
	PreAuthorizationValidity time.Duration `env:"PRE_AUTHORIZATION_VALIDITY" envDefault:"5m"`

	// Per-kind security token bounds
	EmailToken      TokenRule `envPrefix:"EMAIL_TOKEN_"`
	PhoneToken      TokenRule `envPrefix:"PHONE_TOKEN_"`
	RecoveryToken   TokenRule `envPrefix:"RECOVERY_TOKEN_"`
	OneTimePassword TokenRule `envPrefix:"OTP_"`
	SecretCode      TokenRule `envPrefix:"SECRET_CODE_"`
	TwoFactorSetup  TokenRule `envPrefix:"TWO_FACTOR_SETUP_"`

	// Two-factor presentation and verification
	TwoFactorIssuer       string        `env:"TWO_FACTOR_ISSUER"        envDefault:"Veriden"`
	TwoFactorQRImageSize  int           `env:"TWO_FACTOR_QR_IMAGE_SIZE" envDefault:"256"`
	TwoFactorDisableBatch int           `env:"TWO_FACTOR_DISABLE_BATCH" envDefault:"5"`
	TwoFactorPinTolerance time.Duration `env:"TWO_FACTOR_PIN_TOLERANCE" envDefault:"30s"`

	// Outbound messaging
	MailMode             string `env:"MAIL_MODE"              envDefault:"dev"` // "dev" | "postmark"
	MailDevDirectory     string `env:"MAIL_DEV_DIRECTORY"     envDefault:"./tmp/outbox"`
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL"           envDefault:"no-reply@veriden.app"`

	// Cross-Origin Resource Sharing
	ExtraOrigins string `env:"EXTRA_ORIGINS"`
}

// # Configuration Loading

// tokenRuleDefaults are applied to any token kind left unset in the
// environment. OTP-style kinds are short numeric codes a user retypes;
// link-style kinds are long opaque strings embedded in URLs.
var tokenRuleDefaults = map[string]TokenRule{
	"email":    {MinLength: 32, MaxLength: 48, Validity: 24 * time.Hour},
	"phone":    {MinLength: 6, MaxLength: 8, Validity: 15 * time.Minute},
	"recovery": {MinLength: 32, MaxLength: 48, Validity: 1 * time.Hour},
	"otp":      {MinLength: 6, MaxLength: 8, Validity: 5 * time.Minute},
	"secret":   {MinLength: 8, MaxLength: 12, Validity: 10 * time.Minute},
	"tfsetup":  {MinLength: 8, MaxLength: 10, Validity: 10 * time.Minute},
}

// Load parses environment variables into a [Config] struct.
func Load() (*Config, error) {

	// Initialize an empty config struct
	cfg := &Config{}

	// Use the 'env' package to map environment variables to struct fields.
	// This will fail if any field marked with 'required' is missing.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	applyTokenDefaults(&cfg.EmailToken, tokenRuleDefaults["email"])
	applyTokenDefaults(&cfg.PhoneToken, tokenRuleDefaults["phone"])
	applyTokenDefaults(&cfg.RecoveryToken, tokenRuleDefaults["recovery"])
	applyTokenDefaults(&cfg.OneTimePassword, tokenRuleDefaults["otp"])
	applyTokenDefaults(&cfg.SecretCode, tokenRuleDefaults["secret"])
	applyTokenDefaults(&cfg.TwoFactorSetup, tokenRuleDefaults["tfsetup"])

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyTokenDefaults fills zero-valued fields of a rule with its defaults.
func applyTokenDefaults(rule *TokenRule, defaults TokenRule) {
	if rule.MinLength == 0 {
		rule.MinLength = defaults.MinLength
	}
	if rule.MaxLength == 0 {
		rule.MaxLength = defaults.MaxLength
	}
	if rule.Validity == 0 {
		rule.Validity = defaults.Validity
	}
}

// validate rejects configurations that would misbehave at runtime rather
// than failing lazily inside a request.
func (c *Config) validate() error {
	if c.LoginFailedThreshold <= 0 || c.LockOutThreshold <= 0 {
		return fmt.Errorf("config: lockout thresholds must be positive")
	}
	if c.RecaptchaEnabled && c.RecaptchaSecret == "" {
		return fmt.Errorf("config: RECAPTCHA_SECRET is required when recaptcha is enabled")
	}
	if c.MailMode == "postmark" && (c.PostmarkServerToken == "" || c.PostmarkAccountToken == "") {
		return fmt.Errorf("config: postmark tokens are required when MAIL_MODE=postmark")
	}
	for _, rule := range []TokenRule{
		c.EmailToken, c.PhoneToken, c.RecoveryToken,
		c.OneTimePassword, c.SecretCode, c.TwoFactorSetup,
	} {
		if rule.MinLength <= 0 || rule.MaxLength < rule.MinLength || rule.Validity <= 0 {
			return fmt.Errorf("config: invalid token rule bounds: %+v", rule)
		}
	}
	return nil
}

// IsDevelopment reports whether the server is running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction reports whether the server is running in production mode.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
