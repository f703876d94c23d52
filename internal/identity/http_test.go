// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package identity_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leminhduc/veriden/internal/identity"
)

// passGate is a no-op middleware standing in for the wired gate chain.
func passGate(next http.Handler) http.Handler { return next }

// newHandlerFixture mounts the identity routes over the service fixture with
// every gate disarmed, so handler-level decoding and dispatch are isolated.
func newHandlerFixture(t *testing.T) (*serviceFixture, http.Handler) {
	t.Helper()

	fixture := newServiceFixture(t)
	handler := identity.NewHandler(fixture.service, identity.Gates{
		Recaptcha:     passGate,
		Authenticated: passGate,
		TwoFactor:     passGate,
		Association:   passGate,
	})
	return fixture, handler.Routes()
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	request := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

/*
TestHandler_ForwardTokenRejectsUnknownKind verifies an unparsable kind is
refused at the handler with a field-level validation error, before the
service ever runs.
*/
func TestHandler_ForwardTokenRejectsUnknownKind(t *testing.T) {
	_, router := newHandlerFixture(t)

	recorder := postJSON(t, router, "/forward-token",
		`{"email":"user@veriden.app","kind":"bogus_kind"}`)

	require.Equal(t, http.StatusBadRequest, recorder.Code)

	var body struct {
		Code    string `json:"code"`
		Details []struct {
			Field string `json:"field"`
		} `json:"details"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	require.NotEmpty(t, body.Details)
	assert.Equal(t, "kind", body.Details[0].Field)
}

/*
TestHandler_ForwardTokenParsesKnownKind verifies a well-formed kind clears
the handler and reaches the service, which rejects the account for having no
active token of that kind.
*/
func TestHandler_ForwardTokenParsesKnownKind(t *testing.T) {
	fixture, router := newHandlerFixture(t)
	fixture.register(t)

	recorder := postJSON(t, router, "/forward-token",
		`{"email":"user@veriden.app","kind":"account_recovery"}`)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}
