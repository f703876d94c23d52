// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

It defines default timeouts, rate limits, and cross-cutting keys that are shared
between different layers of the system.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Security: JWT issuers and request headers consumed by the authorization gates.

Using this package ensures Magic Strings and Magic Numbers are eliminated
from the business logic.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "veriden-api"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 100.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 150

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # HTTP Headers

const (
	// HeaderXRequestID carries the correlation ID for log tracing.
	HeaderXRequestID = "X-Request-ID"

	// HeaderXRealIP is set by reverse proxies with the originating client IP.
	HeaderXRealIP = "X-Real-IP"

	// HeaderXForwardedFor is the standard proxy chain header.
	HeaderXForwardedFor = "X-Forwarded-For"

	// HeaderOrigin is the CORS origin header.
	HeaderOrigin = "Origin"

	// HeaderAccountID identifies the acting account on protected requests.
	HeaderAccountID = "AccountId"

	// HeaderAuthorization carries the "Bearer <token>" credential.
	HeaderAuthorization = "Authorization"

	// HeaderAuthorizationToken carries the per-session authorization token.
	HeaderAuthorizationToken = "AuthorizationToken"

	// HeaderRecaptchaToken carries the human-verification challenge response.
	HeaderRecaptchaToken = "RecaptchaToken"

	// HeaderTwoFactorToken carries the submitted TOTP PIN.
	HeaderTwoFactorToken = "TwoFactorToken"

	// HeaderProfileID identifies the target profile on resource-scoped requests.
	HeaderProfileID = "ProfileId"

	// BearerSchemePrefix is stripped from HeaderAuthorization before comparison.
	BearerSchemePrefix = "Bearer "
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in JWTs.
	AuthIssuer = "veriden.app"

	// SessionCookieName is the cookie that binds a client to its authorization record.
	SessionCookieName = "veriden_session"

	// SessionCookiePath is the scoped path for the session cookie.
	SessionCookiePath = "/api/v1"

	// SessionHeaderName is the header fallback for non-browser clients.
	SessionHeaderName = "SessionId"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Database Schemas

const (
	SchemaUsers  = "users"
	SchemaSystem = "system"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixAuthorization    = "authz:session:"
	RedisPrefixPreAuthorization = "authz:preauth:"
	RedisPrefixAccountSessions  = "authz:account:"
	RedisPrefixReadModel        = "cache:account:"
)
