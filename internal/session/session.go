// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

/*
Package session holds the per-session authorization records consulted by the
request gates.

An [Authorization] is created once at successful login and read on every
protected request; a pre-authorization is the reduced-privilege variant that
exists only between one-time-password issuance and its verification.

# Architecture

  - Authorization: The session-scoped record (never persisted to the account store).
  - Store: Abstract contract, implemented on Redis with TTL = record validity.
  - One current record per session; pre-authorization must be exchanged or
    discarded before anything other than OTP verification is reachable.
*/
package session

import (
	"context"
	"time"

	"github.com/leminhduc/veriden/internal/platform/sec"
)

// # Record

// Authorization is the session-scoped proof of a completed login.
type Authorization struct {
	// AccountID is the authenticated account.
	AccountID string `json:"account_id"`

	// Roles is the role set snapshot taken at login time.
	Roles []sec.Role `json:"roles"`

	// BearerToken is the signed JWT issued at login.
	BearerToken string `json:"bearer_token"`

	// AuthorizationToken is the per-session random token; it must accompany
	// every protected request alongside the bearer token.
	AuthorizationToken string `json:"authorization_token"`

	// RefreshToken is the SHA-256 digest of the token that lets the client
	// obtain a fresh record without re-entering credentials. Only the digest
	// is stored; the plain text is surfaced once at issuance.
	RefreshToken string `json:"refresh_token"`

	// AuthorizedAt is the instant this record was issued.
	AuthorizedAt time.Time `json:"authorized_at"`

	// Validity is how long past AuthorizedAt the record stays usable.
	Validity time.Duration `json:"validity"`

	// TwoFactorConfirmed is tri-state: nil when the account has no two-factor
	// enrollment (feature not applicable), false while confirmation is
	// pending for this session, true once the PIN has been verified.
	TwoFactorConfirmed *bool `json:"two_factor_confirmed,omitempty"`

	// IsPreAuthorization marks the transient record between OTP issuance and
	// OTP verification. Pre-authorizations never satisfy the authenticated gate.
	IsPreAuthorization bool `json:"is_pre_authorization"`
}

// ExpiresAt returns the instant the record stops being usable.
func (a *Authorization) ExpiresAt() time.Time {
	return a.AuthorizedAt.Add(a.Validity)
}

// IsExpired reports whether the record is past its validity window.
func (a *Authorization) IsExpired(now time.Time) bool {
	return now.After(a.ExpiresAt())
}

// # Store Contract

// Store is the session-side persistence contract.
//
// All operations take the caller's context so cancellation and deadlines
// propagate into the backing cache.
type Store interface {
	// Save writes the current Authorization for a session, replacing any
	// previous record. The record expires from the store with its validity.
	Save(ctx context.Context, sessionID string, record *Authorization) error

	// Get returns the current Authorization, or apperr.NotFound when the
	// session has none.
	Get(ctx context.Context, sessionID string) (*Authorization, error)

	// Delete removes the session's current Authorization. Deleting an
	// absent record is not an error.
	Delete(ctx context.Context, sessionID string) error

	// SavePreAuthorization writes the transient pre-login record.
	SavePreAuthorization(ctx context.Context, sessionID string, record *Authorization) error

	// GetPreAuthorization returns the transient record, or apperr.NotFound.
	GetPreAuthorization(ctx context.Context, sessionID string) (*Authorization, error)

	// DeletePreAuthorization discards the transient record.
	DeletePreAuthorization(ctx context.Context, sessionID string) error

	// InvalidateAccount removes every record (full and pre) for an account,
	// across all of its sessions. Called when a lockout or suspension is
	// newly entered so existing sessions cannot outlive it.
	InvalidateAccount(ctx context.Context, accountID string) error
}
