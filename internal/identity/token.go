// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package identity

import (
	"errors"
	"fmt"
	"time"

	"github.com/leminhduc/veriden/internal/platform/config"
	"github.com/leminhduc/veriden/internal/platform/sec"
)

// # Token Kinds

// TokenKind identifies one of the six time-bound security-token lifecycles.
type TokenKind string

const (
	TokenEmailConfirmation TokenKind = "email_confirmation"
	TokenPhoneConfirmation TokenKind = "phone_confirmation"
	TokenAccountRecovery   TokenKind = "account_recovery"
	TokenOneTimePassword   TokenKind = "one_time_password"
	TokenSecretCode        TokenKind = "secret_code"
	TokenTwoFactorSetup    TokenKind = "two_factor_setup"
)

// tokenTraits is the compile-time metadata table for token kinds.
//
// Numeric kinds are short codes a user retypes from a phone or email;
// the rest are opaque strings embedded in links. Forwardable kinds may be
// re-sent to the account's other contact channel while still valid.
type tokenTraits struct {
	label       string
	numeric     bool
	forwardable bool
}

var tokenMetadata = map[TokenKind]tokenTraits{
	TokenEmailConfirmation: {label: "Email confirmation token"},
	TokenPhoneConfirmation: {label: "Phone confirmation token", numeric: true},
	TokenAccountRecovery:   {label: "Account recovery token", forwardable: true},
	TokenOneTimePassword:   {label: "One-time password", numeric: true, forwardable: true},
	TokenSecretCode:        {label: "Secret code", numeric: true},
	TokenTwoFactorSetup:    {label: "Two-factor verifying token"},
}

// Label returns the human-readable name of the kind.
func (kind TokenKind) Label() string {
	return tokenMetadata[kind].label
}

// ParseTokenKind maps a wire value onto a known [TokenKind].
func ParseTokenKind(value string) (TokenKind, bool) {
	kind := TokenKind(value)
	_, ok := tokenMetadata[kind]
	return kind, ok
}

// ErrTokenNotYetExpired signals a renewal attempt on a token that is still
// inside its validity window. Renewal is only for expired tokens; a valid
// one must be consumed or left alone.
var ErrTokenNotYetExpired = errors.New("token is still valid and cannot be renewed")

// # Lifecycle Manager

// IssuedToken is a freshly generated token instance.
type IssuedToken struct {
	Value    string
	IssuedAt time.Time
}

// TokenManager generates tokens and judges their validity windows.
//
// Per-kind length bounds and validity durations come from configuration;
// the manager itself holds no mutable state and is safe for concurrent use.
type TokenManager struct {
	rules map[TokenKind]config.TokenRule
}

// NewTokenManager builds a manager from the configured per-kind rules.
func NewTokenManager(cfg *config.Config) *TokenManager {
	return &TokenManager{
		rules: map[TokenKind]config.TokenRule{
			TokenEmailConfirmation: cfg.EmailToken,
			TokenPhoneConfirmation: cfg.PhoneToken,
			TokenAccountRecovery:   cfg.RecoveryToken,
			TokenOneTimePassword:   cfg.OneTimePassword,
			TokenSecretCode:        cfg.SecretCode,
			TokenTwoFactorSetup:    cfg.TwoFactorSetup,
		},
	}
}

/*
Generate produces a fresh token of the requested kind.

Description: The length is chosen uniformly in the kind's [min, max] bounds.
Numeric kinds draw from the digit alphabet, all others from the URL-safe
alphanumeric alphabet.

Parameters:
  - kind: TokenKind

Returns:
  - *IssuedToken: Value plus issuance timestamp
  - error: Unknown kind or entropy failures
*/
func (manager *TokenManager) Generate(kind TokenKind) (*IssuedToken, error) {
	rule, ok := manager.rules[kind]
	if !ok {
		return nil, fmt.Errorf("token_manager_unknown_kind: %q", kind)
	}

	length := rule.MinLength
	if spread := rule.MaxLength - rule.MinLength; spread > 0 {
		offset, err := sec.RandomInt(spread + 1)
		if err != nil {
			return nil, fmt.Errorf("token_manager_length_draw_failed: %w", err)
		}
		length += offset
	}

	var value string
	var err error
	if tokenMetadata[kind].numeric {
		value, err = sec.GenerateDigitToken(length)
	} else {
		value, err = sec.GenerateSecureToken(length)
	}
	if err != nil {
		return nil, fmt.Errorf("token_manager_generate_failed: %w", err)
	}

	return &IssuedToken{Value: value, IssuedAt: time.Now()}, nil
}

// Validity returns the configured lifetime of a kind.
func (manager *TokenManager) Validity(kind TokenKind) time.Duration {
	return manager.rules[kind].Validity
}

// IsValid reports whether a token issued at the given instant is still
// usable. A token is valid while now <= issuedAt + validity; the exact
// deadline instant is the last usable moment.
func (manager *TokenManager) IsValid(kind TokenKind, issuedAt time.Time) bool {
	deadline := issuedAt.Add(manager.rules[kind].Validity)
	return !time.Now().After(deadline)
}

// IsRenewable reports whether a token may be regenerated. Only expired
// tokens are renewable; see [ErrTokenNotYetExpired].
func (manager *TokenManager) IsRenewable(kind TokenKind, issuedAt time.Time) bool {
	return !manager.IsValid(kind, issuedAt)
}

// CanForward reports whether a token may be re-sent to the account's other
// contact channel. Forwarding requires a forwardable kind and a token still
// inside its validity window; an expired token must be renewed instead.
func (manager *TokenManager) CanForward(kind TokenKind, issuedAt time.Time) bool {
	return tokenMetadata[kind].forwardable && manager.IsValid(kind, issuedAt)
}

/*
Renew replaces an expired token with a fresh instance of the same kind.

Parameters:
  - kind: TokenKind
  - issuedAt: Issuance time of the current instance

Returns:
  - *IssuedToken: The replacement token
  - error: [ErrTokenNotYetExpired] while the current instance is valid
*/
func (manager *TokenManager) Renew(kind TokenKind, issuedAt time.Time) (*IssuedToken, error) {
	if manager.IsValid(kind, issuedAt) {
		return nil, ErrTokenNotYetExpired
	}
	return manager.Generate(kind)
}
