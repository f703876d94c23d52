// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package gate

import (
	"net/http"

	"github.com/leminhduc/veriden/internal/platform/constants"
	"github.com/leminhduc/veriden/internal/platform/ctxutil"
	"github.com/leminhduc/veriden/internal/platform/recaptcha"
)

// Recaptcha gates a route behind human verification.
//
// # Flow
//  1. Feature flag off → pass through untouched.
//  2. Require the RecaptchaToken header.
//  3. Ask the external verifier; an unreachable verifier is a fault
//     (InternalServerError), not a denial.
//  4. Deny when the verifier reports the activity is not human.
func Recaptcha(enabled bool, verifier recaptcha.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Feature Flag ───────────────────────────────────────────────
			if !enabled {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Token Presence ─────────────────────────────────────────────
			token := request.Header.Get(constants.HeaderRecaptchaToken)
			if token == "" {
				deny(writer, request, GateRecaptcha, ReasonNoRecaptchaToken)
				return
			}

			// ── 3. Collaborator Check ─────────────────────────────────────────
			result, err := verifier.IsHumanActivity(request.Context(), token)
			if err != nil {
				logger := ctxutil.GetLogger(request.Context())
				logger.ErrorContext(request.Context(), "recaptcha_verifier_failed", "error", err)
				deny(writer, request, GateRecaptcha, ReasonInternalServerError)
				return
			}

			// ── 4. Verdict ────────────────────────────────────────────────────
			if !result.IsHuman {
				deny(writer, request, GateRecaptcha, ReasonRecaptchaNotAHuman)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
