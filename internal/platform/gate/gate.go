// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

/*
Package gate implements the ordered authorization filter chain that every
protected request traverses before its handler runs.

# Architecture

Each gate is a standard chi middleware. Routes compose the gates they need,
in order, and a failing gate short-circuits the rest of the chain with an
HTTP 401 whose code takes the stable form "<Gate>/<Reason>". Gates only read
request state (headers, session records, feature flags); they never mutate
account state.

# Ordering

The canonical chain is Recaptcha → Authenticated → TwoFactor → Role, with the
resource-scoped Association gate appended on profile-bound endpoints. A later
gate never runs once an earlier one has denied.

# Failure Semantics

Expected denials are structured responses, never panics. The only 500-class
escalation is a gate that could not complete its check at all (collaborator
unreachable); that is reported as Reason "InternalServerError" so clients can
distinguish a fault from a legitimate refusal.
*/
package gate

import (
	"net/http"

	"github.com/leminhduc/veriden/internal/platform/apperr"
	"github.com/leminhduc/veriden/internal/platform/constants"
	"github.com/leminhduc/veriden/internal/platform/respond"
)

// # Gate Names

const (
	GateRecaptcha     = "RecaptchaAuthorize"
	GateAuthenticated = "AuthenticatedAuthorize"
	GateTwoFactor     = "TwoFactorAuthorize"
	GateRole          = "RoleAuthorize"
	GateAssociation   = "AccountProfileAuthorize"
)

// # Failure Reason Codes

const (
	ReasonInvalidUser                = "InvalidUser"
	ReasonMismatchedBearerToken      = "MismatchedBearerToken"
	ReasonMismatchedAuthToken        = "MismatchedAuthToken"
	ReasonAuthorizationExpired       = "AuthorizationExpired"
	ReasonInvalidRole                = "InvalidRole"
	ReasonNoRecaptchaToken           = "NoRecaptchaToken"
	ReasonRecaptchaNotAHuman         = "RecaptchaNotAHuman"
	ReasonNoTwoFactorToken           = "NoTwoFactorToken"
	ReasonAccountProfileUnassociated = "AccountProfileUnassociated"
	ReasonInternalServerError        = "InternalServerError"
)

// deny halts the chain with the gate's structured 401 refusal.
func deny(writer http.ResponseWriter, request *http.Request, gateName, reason string) {
	respond.Error(writer, request, apperr.GateDenied(gateName, reason))
}

// SessionID resolves the caller's session identifier from the session cookie,
// falling back to the header used by non-browser clients. An empty return
// means the request carries no session at all.
func SessionID(request *http.Request) string {
	if cookie, err := request.Cookie(constants.SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}
	return request.Header.Get(constants.SessionHeaderName)
}
