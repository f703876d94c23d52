// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package gate

import (
	"net/http"
	"strings"
	"time"

	"github.com/leminhduc/veriden/internal/platform/apperr"
	"github.com/leminhduc/veriden/internal/platform/constants"
	"github.com/leminhduc/veriden/internal/platform/ctxutil"
	"github.com/leminhduc/veriden/internal/session"
)

// Authenticated gates a route behind a live session authorization record.
//
// # Flow
//  1. Resolve the session and load its Authorization record; absence or a
//     pre-authorization record denies with InvalidUser.
//  2. The AccountId header must equal the record's account id (InvalidUser).
//  3. The Authorization header, minus the "Bearer " scheme prefix, must equal
//     the record's bearer token (MismatchedBearerToken).
//  4. The AuthorizationToken header must equal the record's authorization
//     token (MismatchedAuthToken).
//  5. The record must still be inside its validity window (AuthorizationExpired).
//
// On success the record and session id are injected into the request context
// for the later gates and the handler.
func Authenticated(store session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Session Record ─────────────────────────────────────────────
			sessionID := SessionID(request)
			if sessionID == "" {
				deny(writer, request, GateAuthenticated, ReasonInvalidUser)
				return
			}

			record, err := store.Get(request.Context(), sessionID)
			if err != nil {
				if apperr.IsAppError(err) {
					deny(writer, request, GateAuthenticated, ReasonInvalidUser)
					return
				}
				logger := ctxutil.GetLogger(request.Context())
				logger.ErrorContext(request.Context(), "session_store_unreachable", "error", err)
				deny(writer, request, GateAuthenticated, ReasonInternalServerError)
				return
			}

			// A pre-authorization never satisfies this gate; it must be
			// exchanged through OTP verification first.
			if record.IsPreAuthorization {
				deny(writer, request, GateAuthenticated, ReasonInvalidUser)
				return
			}

			// ── 2. Account Identity ───────────────────────────────────────────
			if request.Header.Get(constants.HeaderAccountID) != record.AccountID {
				deny(writer, request, GateAuthenticated, ReasonInvalidUser)
				return
			}

			// ── 3. Bearer Token ───────────────────────────────────────────────
			bearer := strings.TrimPrefix(request.Header.Get(constants.HeaderAuthorization), constants.BearerSchemePrefix)
			if bearer == "" || bearer != record.BearerToken {
				deny(writer, request, GateAuthenticated, ReasonMismatchedBearerToken)
				return
			}

			// ── 4. Authorization Token ────────────────────────────────────────
			if request.Header.Get(constants.HeaderAuthorizationToken) != record.AuthorizationToken {
				deny(writer, request, GateAuthenticated, ReasonMismatchedAuthToken)
				return
			}

			// ── 5. Validity Window ────────────────────────────────────────────
			if record.IsExpired(time.Now()) {
				deny(writer, request, GateAuthenticated, ReasonAuthorizationExpired)
				return
			}

			// ── 6. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithAuthorization(request.Context(), record)
			ctx = ctxutil.WithSessionID(ctx, sessionID)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}
