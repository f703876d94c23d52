// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package gate

import (
	"net/http"

	"github.com/leminhduc/veriden/internal/platform/ctxutil"
	"github.com/leminhduc/veriden/internal/platform/sec"
)

// Role gates a route behind a required role set.
//
// Access is decided by set intersection: the session's role set must share at
// least one member with the required set. There is no hierarchy: holding
// Administrator does not imply Supplier.
//
// # Flow
//  1. No session record in context → InvalidUser.
//  2. Empty intersection → InvalidRole.
func Role(required ...sec.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Session Record ─────────────────────────────────────────────
			record := ctxutil.GetAuthorization(request.Context())
			if record == nil {
				deny(writer, request, GateRole, ReasonInvalidUser)
				return
			}

			// ── 2. Intersection Check ─────────────────────────────────────────
			if !sec.AnyIntersect(record.Roles, required) {
				deny(writer, request, GateRole, ReasonInvalidRole)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
