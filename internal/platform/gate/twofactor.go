// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package gate

import (
	"net/http"

	"github.com/leminhduc/veriden/internal/platform/ctxutil"
)

// TwoFactor gates a route behind per-session two-factor confirmation.
//
// # Flow
//  1. Feature flag off → pass through untouched.
//  2. No session record in context → InvalidUser (gate mounted without
//     [Authenticated] is a wiring mistake, but must still fail closed).
//  3. TwoFactorConfirmed == nil → the account has no enrollment; pass.
//  4. TwoFactorConfirmed == false → the session has not confirmed its PIN
//     yet; deny with NoTwoFactorToken. Confirmation happens on its own
//     endpoint, never inside this gate.
func TwoFactor(enabled bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Feature Flag ───────────────────────────────────────────────
			if !enabled {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Session Record ─────────────────────────────────────────────
			record := ctxutil.GetAuthorization(request.Context())
			if record == nil {
				deny(writer, request, GateTwoFactor, ReasonInvalidUser)
				return
			}

			// ── 3. Applicability ──────────────────────────────────────────────
			if record.TwoFactorConfirmed == nil {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 4. Confirmation State ─────────────────────────────────────────
			if !*record.TwoFactorConfirmed {
				deny(writer, request, GateTwoFactor, ReasonNoTwoFactorToken)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
