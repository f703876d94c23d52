// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package identity

// # Session Material Lengths

const (
	// AuthorizationTokenLength is the byte length of the random per-session
	// authorization token that accompanies the bearer token.
	AuthorizationTokenLength = 32

	// RefreshTokenLength is the byte length of the random refresh token.
	RefreshTokenLength = 32

	// lockoutUpdateRetries bounds the compare-and-swap retry loop on the
	// account credential record. Contention here is two near-simultaneous
	// attempts for the same account, so a small bound suffices.
	lockoutUpdateRetries = 3
)

// # Field Identifiers

// Field names for validation and response payloads in the identity domain.
const (
	FieldEmail             = "email"
	FieldPhoneNumber       = "phone_number"
	FieldPassword          = "password"
	FieldNewPassword       = "new_password"
	FieldDisplayName       = "display_name"
	FieldToken             = "token"
	FieldPin               = "pin"
	FieldSecretCode        = "secret_code"
	FieldKind              = "kind"
	FieldMessage           = "message"
	FieldAttemptsLeft      = "attempts_remaining"
	FieldLockedUntil       = "locked_until"
	FieldLockOutCount      = "lockout_count"
	FieldSuspended         = "is_suspended"
	FieldAccountID         = "account_id"
	FieldBearerToken       = "bearer_token"
	FieldAuthToken         = "authorization_token"
	FieldRefreshToken      = "refresh_token"
	FieldRoles             = "roles"
	FieldRequiresTwoFactor = "requires_two_factor"
)
