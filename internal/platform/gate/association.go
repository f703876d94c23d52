// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package gate

import (
	"context"
	"net/http"

	"github.com/leminhduc/veriden/internal/platform/constants"
	"github.com/leminhduc/veriden/internal/platform/ctxutil"
)

// AssociationChecker answers whether a profile belongs to an account.
type AssociationChecker interface {
	// IsProfileAssociated reports whether profileID belongs to accountID.
	// An error means the check could not be performed at all.
	IsProfileAssociated(ctx context.Context, profileID, accountID string) (bool, error)
}

// Association gates a profile-scoped route behind ownership of the profile
// named in the ProfileId header.
//
// # Flow
//  1. No session record in context → InvalidUser.
//  2. Missing ProfileId header → AccountProfileUnassociated (nothing to own).
//  3. Checker fault → InternalServerError, distinguished from a denial.
//  4. Definitive false → AccountProfileUnassociated.
func Association(checker AssociationChecker) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {

			// ── 1. Session Record ─────────────────────────────────────────────
			record := ctxutil.GetAuthorization(request.Context())
			if record == nil {
				deny(writer, request, GateAssociation, ReasonInvalidUser)
				return
			}

			// ── 2. Target Profile ─────────────────────────────────────────────
			profileID := request.Header.Get(constants.HeaderProfileID)
			if profileID == "" {
				deny(writer, request, GateAssociation, ReasonAccountProfileUnassociated)
				return
			}

			// ── 3. Ownership Check ────────────────────────────────────────────
			associated, err := checker.IsProfileAssociated(request.Context(), profileID, record.AccountID)
			if err != nil {
				logger := ctxutil.GetLogger(request.Context())
				logger.ErrorContext(request.Context(), "association_check_failed", "error", err)
				deny(writer, request, GateAssociation, ReasonInternalServerError)
				return
			}

			// ── 4. Verdict ────────────────────────────────────────────────────
			if !associated {
				deny(writer, request, GateAssociation, ReasonAccountProfileUnassociated)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
