// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

/*
Package request provides utilities for extracting data from HTTP requests.

It abstracts away the underlying router's parameter extraction and common
body decoding patterns, ensuring consistent error handling and type safety.
*/
package requestutil

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leminhduc/veriden/internal/platform/apperr"
	"github.com/leminhduc/veriden/internal/platform/ctxutil"
	"github.com/leminhduc/veriden/internal/platform/validate"
	"github.com/leminhduc/veriden/internal/session"
)

/*
DecodeJSON reads the request body and decodes it into the target structure.

Parameters:
  - request: *http.Request
  - target: interface{} (Pointer to the destination struct)

Returns:
  - error: validate.ErrInvalidJSON if decoding fails, otherwise nil
*/
func DecodeJSON(request *http.Request, target interface{}) error {
	if err := json.NewDecoder(request.Body).Decode(target); err != nil {
		return validate.ErrInvalidJSON
	}
	return nil
}

/*
ID retrieves a named URL parameter (UUID/Slug) from the request.
*/
func ID(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Param retrieves a named URL parameter from the request.
*/
func Param(request *http.Request, name string) string {
	return chi.URLParam(request, name)
}

/*
Authorization extracts the session authorization record from the request context.

Returns nil if the request has not passed the authenticated gate.
*/
func Authorization(request *http.Request) *session.Authorization {
	return ctxutil.GetAuthorization(request.Context())
}

/*
RequiredAuthorization ensures the request carries a session authorization record.

Returns:
  - *session.Authorization: The record injected at the authenticated gate
  - error: apperr.Unauthorized if the request is not authenticated
*/
func RequiredAuthorization(request *http.Request) (*session.Authorization, error) {

	// Get the session authorization record
	record := ctxutil.GetAuthorization(request.Context())

	// If the request is not authenticated, return an error
	if record == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}

	return record, nil
}

/*
RequiredAccountID returns the account ID of the currently authenticated session.

Returns:
  - string: Account UUID
  - error: apperr.Unauthorized if not authenticated
*/
func RequiredAccountID(request *http.Request) (string, error) {

	// Get the session authorization record
	record, err := RequiredAuthorization(request)

	// If the request is not authenticated, return an error
	if err != nil {
		return "", err
	}

	return record.AccountID, nil
}

/*
RequiredSessionID returns the session identifier resolved by the authenticated gate.

Returns:
  - string: Session identifier (cookie or header)
  - error: apperr.Unauthorized if the request carries no session
*/
func RequiredSessionID(request *http.Request) (string, error) {

	sessionID := ctxutil.GetSessionID(request.Context())
	if sessionID == "" {
		return "", apperr.Unauthorized("Authentication required")
	}

	return sessionID, nil
}
