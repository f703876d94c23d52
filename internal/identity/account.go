// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

/*
Package identity implements account credentials, security-token lifecycles,
the lockout state machine, and two-factor enrollment.

It is the authority over every field of the account credential record: other
packages read accounts but only this package mutates the lockout counters,
security tokens, and two-factor material.

# Architecture

  - Account / Profile: Domain entities with no external dependencies.
  - TokenManager: Generates and judges the six time-bound token kinds.
  - LockoutGuard: The failed-login / lockout / suspension state machine.
  - TwoFactorChallenge: Wraps the external TOTP primitive.
  - Service: Orchestrates the flows (register, login, recovery, 2FA).
  - Repositories: Postgres-backed persistence with optimistic versioning.
*/
package identity

import (
	"time"

	"github.com/leminhduc/veriden/internal/platform/sec"
)

// # Domain Entities

// Account is the credential aggregate for one registered identity.
//
// The lockout counters and token fields are shared mutable state across
// concurrent requests; every write goes through [AccountRepository.Update],
// which performs an optimistic compare-and-swap on Version.
type Account struct {
	ID          string `json:"id"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`

	HashedPassword string `json:"-"`
	PasswordSalt   string `json:"-"`

	Roles []sec.Role `json:"roles"`

	EmailConfirmed bool `json:"email_confirmed"`
	PhoneConfirmed bool `json:"phone_confirmed"`
	IsSuspended    bool `json:"is_suspended"`

	// Lockout state. LockOutEnabled implies LockOutOn is set.
	LoginFailedCount int        `json:"-"`
	LockOutEnabled   bool       `json:"-"`
	LockOutOn        *time.Time `json:"-"`
	LockOutCount     int        `json:"-"`

	// Security tokens, one active instance per kind. A new generation
	// overwrites the prior value; no history is kept.
	EmailToken         *string    `json:"-"`
	EmailTokenIssuedAt *time.Time `json:"-"`
	PhoneToken         *string    `json:"-"`
	PhoneTokenIssuedAt *time.Time `json:"-"`
	RecoveryToken      *string    `json:"-"`
	RecoveryIssuedAt   *time.Time `json:"-"`
	OneTimePassword    *string    `json:"-"`
	OneTimeIssuedAt    *time.Time `json:"-"`
	SecretCode         *string    `json:"-"`
	SecretCodeIssuedAt *time.Time `json:"-"`

	// Two-factor enrollment material.
	TwoFactorEnabled         bool       `json:"two_factor_enabled"`
	TwoFactorSecretKey       *string    `json:"-"`
	TwoFactorManualEntryKey  *string    `json:"-"`
	TwoFactorVerifyingTokens []string   `json:"-"`
	TwoFactorTokensIssuedAt  *time.Time `json:"-"`

	// Version is the optimistic-concurrency column; incremented on every
	// successful update.
	Version int `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Profile is the public-facing companion of an account.
type Profile struct {
	ID          string    `json:"id"`
	AccountID   string    `json:"account_id"`
	DisplayName string    `json:"display_name"`
	Email       string    `json:"email,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// # Token Field Access

// Token returns the stored value and issuance time for a token kind.
// Both are nil when no instance of the kind is active.
func (account *Account) Token(kind TokenKind) (*string, *time.Time) {
	switch kind {
	case TokenEmailConfirmation:
		return account.EmailToken, account.EmailTokenIssuedAt
	case TokenPhoneConfirmation:
		return account.PhoneToken, account.PhoneTokenIssuedAt
	case TokenAccountRecovery:
		return account.RecoveryToken, account.RecoveryIssuedAt
	case TokenOneTimePassword:
		return account.OneTimePassword, account.OneTimeIssuedAt
	case TokenSecretCode:
		return account.SecretCode, account.SecretCodeIssuedAt
	default:
		return nil, nil
	}
}

// SetToken overwrites the active instance of a token kind.
func (account *Account) SetToken(kind TokenKind, issued *IssuedToken) {
	switch kind {
	case TokenEmailConfirmation:
		account.EmailToken, account.EmailTokenIssuedAt = &issued.Value, &issued.IssuedAt
	case TokenPhoneConfirmation:
		account.PhoneToken, account.PhoneTokenIssuedAt = &issued.Value, &issued.IssuedAt
	case TokenAccountRecovery:
		account.RecoveryToken, account.RecoveryIssuedAt = &issued.Value, &issued.IssuedAt
	case TokenOneTimePassword:
		account.OneTimePassword, account.OneTimeIssuedAt = &issued.Value, &issued.IssuedAt
	case TokenSecretCode:
		account.SecretCode, account.SecretCodeIssuedAt = &issued.Value, &issued.IssuedAt
	}
}

// ClearToken removes the active instance of a token kind. Value and timestamp
// are cleared in the same transition, the caller persists both together.
func (account *Account) ClearToken(kind TokenKind) {
	switch kind {
	case TokenEmailConfirmation:
		account.EmailToken, account.EmailTokenIssuedAt = nil, nil
	case TokenPhoneConfirmation:
		account.PhoneToken, account.PhoneTokenIssuedAt = nil, nil
	case TokenAccountRecovery:
		account.RecoveryToken, account.RecoveryIssuedAt = nil, nil
	case TokenOneTimePassword:
		account.OneTimePassword, account.OneTimeIssuedAt = nil, nil
	case TokenSecretCode:
		account.SecretCode, account.SecretCodeIssuedAt = nil, nil
	}
}

// HasEmail reports whether the account registered an email channel.
func (account *Account) HasEmail() bool { return account.Email != "" }

// HasPhone reports whether the account registered a phone channel.
func (account *Account) HasPhone() bool { return account.PhoneNumber != "" }
