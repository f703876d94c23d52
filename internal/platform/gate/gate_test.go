// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package gate_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leminhduc/veriden/internal/platform/apperr"
	"github.com/leminhduc/veriden/internal/platform/constants"
	"github.com/leminhduc/veriden/internal/platform/ctxutil"
	"github.com/leminhduc/veriden/internal/platform/gate"
	"github.com/leminhduc/veriden/internal/platform/recaptcha"
	"github.com/leminhduc/veriden/internal/platform/sec"
	"github.com/leminhduc/veriden/internal/session"
)

// # Test Doubles

// fakeStore serves canned authorization records keyed by session id.
type fakeStore struct {
	records  map[string]*session.Authorization
	err      error
	getCount int
}

func (f *fakeStore) Get(_ context.Context, sessionID string) (*session.Authorization, error) {
	f.getCount++
	if f.err != nil {
		return nil, f.err
	}
	record, ok := f.records[sessionID]
	if !ok {
		return nil, apperr.NotFound("Session authorization")
	}
	return record, nil
}

func (f *fakeStore) Save(context.Context, string, *session.Authorization) error { return nil }
func (f *fakeStore) Delete(context.Context, string) error                       { return nil }
func (f *fakeStore) SavePreAuthorization(context.Context, string, *session.Authorization) error {
	return nil
}
func (f *fakeStore) GetPreAuthorization(context.Context, string) (*session.Authorization, error) {
	return nil, apperr.NotFound("Session authorization")
}
func (f *fakeStore) DeletePreAuthorization(context.Context, string) error { return nil }
func (f *fakeStore) InvalidateAccount(context.Context, string) error      { return nil }

// fakeVerifier returns a fixed human-or-not verdict.
type fakeVerifier struct {
	human bool
	err   error
}

func (f *fakeVerifier) IsHumanActivity(context.Context, string) (*recaptcha.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &recaptcha.Result{IsHuman: f.human}, nil
}

// fakeChecker answers profile ownership from a static pair.
type fakeChecker struct {
	profileID string
	accountID string
	err       error
}

func (f *fakeChecker) IsProfileAssociated(_ context.Context, profileID, accountID string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return profileID == f.profileID && accountID == f.accountID, nil
}

// # Helpers

func liveRecord() *session.Authorization {
	return &session.Authorization{
		AccountID:          "acct-1",
		Roles:              []sec.Role{sec.RoleSupplier, sec.RoleModerator},
		BearerToken:        "bearer-token",
		AuthorizationToken: "auth-token",
		AuthorizedAt:       time.Now(),
		Validity:           30 * time.Minute,
	}
}

func authedRequest(record *session.Authorization) *http.Request {
	request := httptest.NewRequest(http.MethodGet, "/protected", nil)
	request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "sess-1"})
	request.Header.Set(constants.HeaderAccountID, record.AccountID)
	request.Header.Set(constants.HeaderAuthorization, constants.BearerSchemePrefix+record.BearerToken)
	request.Header.Set(constants.HeaderAuthorizationToken, record.AuthorizationToken)
	return request
}

// withRecord plants an authorization record as if the authenticated gate had run.
func withRecord(request *http.Request, record *session.Authorization) *http.Request {
	return request.WithContext(ctxutil.WithAuthorization(request.Context(), record))
}

func serve(middleware func(http.Handler) http.Handler, request *http.Request) (*httptest.ResponseRecorder, *bool) {
	reached := false
	handler := middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		reached = true
	}))
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)
	return recorder, &reached
}

// denialCode decodes the structured "<Gate>/<Reason>" code from a 401 body.
func denialCode(t *testing.T, recorder *httptest.ResponseRecorder) string {
	t.Helper()

	require.Equal(t, http.StatusUnauthorized, recorder.Code)

	var body struct {
		Code string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body.Code
}

// # Authenticated Gate

func TestAuthenticated_PassesAndInjectsContext(t *testing.T) {
	record := liveRecord()
	store := &fakeStore{records: map[string]*session.Authorization{"sess-1": record}}

	var seen *session.Authorization
	var seenSessionID string
	handler := gate.Authenticated(store)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		seen = ctxutil.GetAuthorization(r.Context())
		seenSessionID = ctxutil.GetSessionID(r.Context())
	}))

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, authedRequest(record))

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "acct-1", seen.AccountID)
	assert.Equal(t, "sess-1", seenSessionID)
}

func TestAuthenticated_HeaderFallbackForSessionID(t *testing.T) {
	record := liveRecord()
	store := &fakeStore{records: map[string]*session.Authorization{"sess-1": record}}

	request := authedRequest(record)
	request.Header.Del("Cookie")
	request.Header.Set(constants.SessionHeaderName, "sess-1")

	recorder, reached := serve(gate.Authenticated(store), request)
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.True(t, *reached)
}

func TestAuthenticated_Denials(t *testing.T) {
	expired := liveRecord()
	expired.AuthorizedAt = time.Now().Add(-time.Hour)

	preAuth := liveRecord()
	preAuth.IsPreAuthorization = true

	cases := []struct {
		name     string
		record   *session.Authorization
		mutate   func(*http.Request)
		wantCode string
	}{
		{
			name:     "no session at all",
			record:   liveRecord(),
			mutate:   func(r *http.Request) { r.Header.Del("Cookie") },
			wantCode: gate.GateAuthenticated + "/" + gate.ReasonInvalidUser,
		},
		{
			name:   "unknown session id",
			record: liveRecord(),
			mutate: func(r *http.Request) {
				r.Header.Del("Cookie")
				r.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "sess-other"})
			},
			wantCode: gate.GateAuthenticated + "/" + gate.ReasonInvalidUser,
		},
		{
			name:     "pre-authorization record",
			record:   preAuth,
			mutate:   func(*http.Request) {},
			wantCode: gate.GateAuthenticated + "/" + gate.ReasonInvalidUser,
		},
		{
			name:     "account id header mismatch",
			record:   liveRecord(),
			mutate:   func(r *http.Request) { r.Header.Set(constants.HeaderAccountID, "acct-2") },
			wantCode: gate.GateAuthenticated + "/" + gate.ReasonInvalidUser,
		},
		{
			name:     "missing bearer token",
			record:   liveRecord(),
			mutate:   func(r *http.Request) { r.Header.Del(constants.HeaderAuthorization) },
			wantCode: gate.GateAuthenticated + "/" + gate.ReasonMismatchedBearerToken,
		},
		{
			name:   "wrong bearer token",
			record: liveRecord(),
			mutate: func(r *http.Request) {
				r.Header.Set(constants.HeaderAuthorization, constants.BearerSchemePrefix+"forged")
			},
			wantCode: gate.GateAuthenticated + "/" + gate.ReasonMismatchedBearerToken,
		},
		{
			name:     "wrong authorization token",
			record:   liveRecord(),
			mutate:   func(r *http.Request) { r.Header.Set(constants.HeaderAuthorizationToken, "forged") },
			wantCode: gate.GateAuthenticated + "/" + gate.ReasonMismatchedAuthToken,
		},
		{
			name:     "expired record",
			record:   expired,
			mutate:   func(*http.Request) {},
			wantCode: gate.GateAuthenticated + "/" + gate.ReasonAuthorizationExpired,
		},
	}

	for _, testCase := range cases {
		t.Run(testCase.name, func(t *testing.T) {
			store := &fakeStore{records: map[string]*session.Authorization{"sess-1": testCase.record}}

			request := authedRequest(testCase.record)
			testCase.mutate(request)

			recorder, reached := serve(gate.Authenticated(store), request)
			assert.False(t, *reached)
			assert.Equal(t, testCase.wantCode, denialCode(t, recorder))
		})
	}
}

func TestAuthenticated_StoreFaultIsNotADenial(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}

	recorder, reached := serve(gate.Authenticated(store), authedRequest(liveRecord()))
	assert.False(t, *reached)
	assert.Equal(t, gate.GateAuthenticated+"/"+gate.ReasonInternalServerError, denialCode(t, recorder))
}

// # Recaptcha Gate

func TestRecaptcha(t *testing.T) {
	t.Run("disabled flag passes through", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/register", nil)
		recorder, reached := serve(gate.Recaptcha(false, &fakeVerifier{}), request)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, *reached)
	})

	t.Run("missing token denied", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/register", nil)
		recorder, reached := serve(gate.Recaptcha(true, &fakeVerifier{human: true}), request)
		assert.False(t, *reached)
		assert.Equal(t, gate.GateRecaptcha+"/"+gate.ReasonNoRecaptchaToken, denialCode(t, recorder))
	})

	t.Run("not a human denied", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/register", nil)
		request.Header.Set(constants.HeaderRecaptchaToken, "challenge")
		recorder, reached := serve(gate.Recaptcha(true, &fakeVerifier{human: false}), request)
		assert.False(t, *reached)
		assert.Equal(t, gate.GateRecaptcha+"/"+gate.ReasonRecaptchaNotAHuman, denialCode(t, recorder))
	})

	t.Run("verifier fault reported as fault", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/register", nil)
		request.Header.Set(constants.HeaderRecaptchaToken, "challenge")
		recorder, _ := serve(gate.Recaptcha(true, &fakeVerifier{err: errors.New("timeout")}), request)
		assert.Equal(t, gate.GateRecaptcha+"/"+gate.ReasonInternalServerError, denialCode(t, recorder))
	})

	t.Run("human passes", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodPost, "/register", nil)
		request.Header.Set(constants.HeaderRecaptchaToken, "challenge")
		recorder, reached := serve(gate.Recaptcha(true, &fakeVerifier{human: true}), request)
		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.True(t, *reached)
	})
}

// # TwoFactor Gate

func TestTwoFactor(t *testing.T) {
	confirmed := true
	pending := false

	t.Run("disabled flag passes through", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/protected", nil)
		_, reached := serve(gate.TwoFactor(false), request)
		assert.True(t, *reached)
	})

	t.Run("no record denied", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/protected", nil)
		recorder, reached := serve(gate.TwoFactor(true), request)
		assert.False(t, *reached)
		assert.Equal(t, gate.GateTwoFactor+"/"+gate.ReasonInvalidUser, denialCode(t, recorder))
	})

	t.Run("unenrolled account passes", func(t *testing.T) {
		record := liveRecord()
		record.TwoFactorConfirmed = nil
		request := withRecord(httptest.NewRequest(http.MethodGet, "/protected", nil), record)
		_, reached := serve(gate.TwoFactor(true), request)
		assert.True(t, *reached)
	})

	t.Run("pending confirmation denied", func(t *testing.T) {
		record := liveRecord()
		record.TwoFactorConfirmed = &pending
		request := withRecord(httptest.NewRequest(http.MethodGet, "/protected", nil), record)
		recorder, reached := serve(gate.TwoFactor(true), request)
		assert.False(t, *reached)
		assert.Equal(t, gate.GateTwoFactor+"/"+gate.ReasonNoTwoFactorToken, denialCode(t, recorder))
	})

	t.Run("confirmed session passes", func(t *testing.T) {
		record := liveRecord()
		record.TwoFactorConfirmed = &confirmed
		request := withRecord(httptest.NewRequest(http.MethodGet, "/protected", nil), record)
		_, reached := serve(gate.TwoFactor(true), request)
		assert.True(t, *reached)
	})
}

// # Role Gate

func TestRole(t *testing.T) {
	t.Run("shared member passes", func(t *testing.T) {
		record := liveRecord() // holds Supplier, Moderator
		request := withRecord(httptest.NewRequest(http.MethodGet, "/admin", nil), record)
		_, reached := serve(gate.Role(sec.RoleSupplier, sec.RoleAdministrator), request)
		assert.True(t, *reached)
	})

	t.Run("disjoint sets denied", func(t *testing.T) {
		record := liveRecord()
		record.Roles = []sec.Role{sec.RoleCustomer}
		request := withRecord(httptest.NewRequest(http.MethodGet, "/admin", nil), record)
		recorder, reached := serve(gate.Role(sec.RoleSupplier, sec.RoleAdministrator), request)
		assert.False(t, *reached)
		assert.Equal(t, gate.GateRole+"/"+gate.ReasonInvalidRole, denialCode(t, recorder))
	})

	t.Run("no record denied", func(t *testing.T) {
		request := httptest.NewRequest(http.MethodGet, "/admin", nil)
		recorder, _ := serve(gate.Role(sec.RoleAdministrator), request)
		assert.Equal(t, gate.GateRole+"/"+gate.ReasonInvalidUser, denialCode(t, recorder))
	})
}

// # Association Gate

func TestAssociation(t *testing.T) {
	checker := &fakeChecker{profileID: "prof-1", accountID: "acct-1"}

	newRequest := func(profileID string) *http.Request {
		request := withRecord(httptest.NewRequest(http.MethodGet, "/profiles/me", nil), liveRecord())
		if profileID != "" {
			request.Header.Set(constants.HeaderProfileID, profileID)
		}
		return request
	}

	t.Run("owned profile passes", func(t *testing.T) {
		_, reached := serve(gate.Association(checker), newRequest("prof-1"))
		assert.True(t, *reached)
	})

	t.Run("foreign profile denied", func(t *testing.T) {
		recorder, reached := serve(gate.Association(checker), newRequest("prof-2"))
		assert.False(t, *reached)
		assert.Equal(t, gate.GateAssociation+"/"+gate.ReasonAccountProfileUnassociated, denialCode(t, recorder))
	})

	t.Run("missing profile header denied", func(t *testing.T) {
		recorder, _ := serve(gate.Association(checker), newRequest(""))
		assert.Equal(t, gate.GateAssociation+"/"+gate.ReasonAccountProfileUnassociated, denialCode(t, recorder))
	})

	t.Run("checker fault reported as fault", func(t *testing.T) {
		broken := &fakeChecker{err: errors.New("database down")}
		recorder, _ := serve(gate.Association(broken), newRequest("prof-1"))
		assert.Equal(t, gate.GateAssociation+"/"+gate.ReasonInternalServerError, denialCode(t, recorder))
	})
}

// # Chain Ordering

// TestChainOrdering verifies a failing early gate short-circuits the later ones.
func TestChainOrdering(t *testing.T) {
	store := &fakeStore{records: map[string]*session.Authorization{}}

	chain := gate.Recaptcha(true, &fakeVerifier{human: false})(
		gate.Authenticated(store)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("handler must not run")
		})),
	)

	request := httptest.NewRequest(http.MethodPost, "/login", nil)
	request.Header.Set(constants.HeaderRecaptchaToken, "challenge")

	recorder := httptest.NewRecorder()
	chain.ServeHTTP(recorder, request)

	assert.Equal(t, gate.GateRecaptcha+"/"+gate.ReasonRecaptchaNotAHuman, denialCode(t, recorder))
	assert.Zero(t, store.getCount, "authenticated gate must not have consulted the store")
}
