// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package identity

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/leminhduc/veriden/internal/platform/apperr"
	"github.com/leminhduc/veriden/internal/platform/constants"
	"github.com/leminhduc/veriden/internal/platform/ctxutil"
	"github.com/leminhduc/veriden/internal/platform/gate"
	requestutil "github.com/leminhduc/veriden/internal/platform/request"
	"github.com/leminhduc/veriden/internal/platform/respond"
	"github.com/leminhduc/veriden/internal/platform/sec"
	"github.com/leminhduc/veriden/internal/platform/validate"
	"github.com/leminhduc/veriden/pkg/phone"
)

// # Definitions & Constructors

// Gates bundles the authorization middlewares the routes compose. The
// handler does not construct them; the server wires them with their
// collaborators and hands them over.
type Gates struct {
	Recaptcha     func(http.Handler) http.Handler
	Authenticated func(http.Handler) http.Handler
	TwoFactor     func(http.Handler) http.Handler
	Association   func(http.Handler) http.Handler
}

// Handler implements the identity HTTP endpoints.
type Handler struct {
	identityService *Service
	gates           Gates
}

// NewHandler constructs a new [Handler] with its service and gate chain.
func NewHandler(service *Service, gates Gates) *Handler {
	return &Handler{identityService: service, gates: gates}
}

// Routes returns a [chi.Router] with the identity endpoints composed with
// their gate chains.
//
// # Gate Composition
//
// Public entry points carry only the human-verification gate. Session-bound
// endpoints require authentication; the per-session two-factor endpoints
// stay outside the TwoFactor gate because they exist to satisfy it.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public entry points
	router.Group(func(r chi.Router) {
		r.Use(handler.gates.Recaptcha)
		r.Post("/register", handler.register)
		r.Post("/login", handler.login)
		r.Post("/otp/request", handler.requestOTP)
		r.Post("/otp/verify", handler.verifyOTP)
		r.Post("/refresh", handler.refresh)
		r.Post("/confirm-email", handler.confirmEmail)
		r.Post("/confirm-phone", handler.confirmPhone)
		r.Post("/renew-activation", handler.renewActivation)
		r.Post("/forward-token", handler.forwardToken)
		r.Post("/recovery/request", handler.requestRecovery)
		r.Post("/recovery/complete", handler.completeRecovery)
		r.Post("/secret-code/request", handler.requestSecretCode)
	})

	// Session-bound endpoints
	router.Group(func(r chi.Router) {
		r.Use(handler.gates.Authenticated)
		r.Post("/logout", handler.logout)
		r.Post("/two-factor/setup", handler.setupTwoFactor)
		r.Post("/two-factor/confirm", handler.confirmTwoFactorSetup)
		r.Post("/two-factor/verify", handler.verifyTwoFactorSession)
		r.Post("/two-factor/disable/request", handler.requestTwoFactorDisable)
		r.Post("/two-factor/disable", handler.disableTwoFactor)
	})

	// Profile access runs the full chain including the resource-scoped
	// association gate.
	router.Group(func(r chi.Router) {
		r.Use(handler.gates.Authenticated)
		r.Use(handler.gates.TwoFactor)
		r.Use(gate.Role(sec.RoleCustomer, sec.RoleAdministrator))
		r.Use(handler.gates.Association)
		r.Get("/profiles/{profileID}", handler.getProfile)
	})

	return router
}

// # Request Payloads

type registerRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type otpRequestRequest struct {
	PhoneNumber string `json:"phone_number"`
}

type otpVerifyRequest struct {
	SessionID string `json:"session_id"`
	Code      string `json:"code"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type confirmChannelRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Token       string `json:"token"`
}

type renewActivationRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	SecretCode  string `json:"secret_code"`
}

type forwardTokenRequest struct {
	Email       string `json:"email"`
	PhoneNumber string `json:"phone_number"`
	Kind        string `json:"kind"`
	SecretCode  string `json:"secret_code"`
}

type recoveryRequestRequest struct {
	Email string `json:"email"`
}

type recoveryCompleteRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type secretCodeRequest struct {
	Email string `json:"email"`
}

type pinRequest struct {
	Pin string `json:"pin"`
}

type disableTwoFactorRequest struct {
	Token string `json:"token"`
}

/*
Register creates a new account with its profile.

POST /api/v1/identity/register

Description: Validates input, enforces channel uniqueness, hashes the
credential, and dispatches the activation token over the registered channel.

Request:
  - Body: registerRequest (Email, PhoneNumber, Password, DisplayName)

Response:
  - 201: Account: Created account (credential material omitted)
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Email or phone number already registered
*/
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	input.PhoneNumber = phone.Simplify(input.PhoneNumber)

	validator := &validate.Validator{}
	validator.Required(FieldPassword, input.Password).
		MinLen(FieldPassword, input.Password, 8).
		Custom(FieldEmail, input.Email == "" && input.PhoneNumber == "",
			"either email or phone number is required")
	if input.Email != "" {
		validator.Email(FieldEmail, input.Email)
	}
	if input.PhoneNumber != "" {
		_, err := phone.Parse(input.PhoneNumber)
		validator.Custom(FieldPhoneNumber, err != nil, "must be a valid phone number")
	}

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	account, err := handler.identityService.Register(request.Context(), RegisterInput{
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Password:    input.Password,
		DisplayName: input.DisplayName,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, account)
}

/*
Login authenticates a password credential and establishes a session.

POST /api/v1/identity/login

Description: Runs the lockout pre-check, verifies the credential, and on
success stores the session authorization record and sets the session cookie.
Locked accounts receive a 423 carrying the lockout counters.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: LoginResponse: Tokens plus the two-factor requirement flag
  - 401: ErrUnauthorized: Invalid credentials (with attempts remaining)
  - 423: ErrLocked: Account locked or suspended
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.identityService.LoginWithPassword(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookie(writer, result.SessionID, result.Authorization.ExpiresAt())
	respond.OK(writer, loginResponse(result))
}

/*
RequestOTP starts a one-time-password login.

POST /api/v1/identity/otp/request

Description: Issues the code, stores the transient pre-authorization, and
dispatches the code over SMS. The returned session id only becomes a full
session after verification.

Request:
  - Body: otpRequestRequest (PhoneNumber)

Response:
  - 200: SessionID: Session holding the pre-authorization
  - 401: ErrUnauthorized: Unknown phone number
  - 423: ErrLocked: Account locked or suspended
*/
func (handler *Handler) requestOTP(writer http.ResponseWriter, request *http.Request) {
	var input otpRequestRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	input.PhoneNumber = phone.Simplify(input.PhoneNumber)

	validator := &validate.Validator{}
	validator.Required(FieldPhoneNumber, input.PhoneNumber)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	sessionID, err := handler.identityService.RequestOTP(request.Context(), input.PhoneNumber)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		"session_id": sessionID,
	})
}

/*
VerifyOTP exchanges a pre-authorization for a full session.

POST /api/v1/identity/otp/verify

Description: Validates the submitted code against the account's active
one-time password and, on success, replaces the pre-authorization with a
full session authorization. Wrong codes count as failed login attempts.

Request:
  - Body: otpVerifyRequest (SessionID, Code)

Response:
  - 200: LoginResponse: Tokens plus the two-factor requirement flag
  - 401: ErrUnauthorized: Wrong code or no pending OTP login
  - 410: ErrGone: Code expired
  - 423: ErrLocked: Account locked or suspended
*/
func (handler *Handler) verifyOTP(writer http.ResponseWriter, request *http.Request) {
	var input otpVerifyRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required("session_id", input.SessionID).
		Required(FieldToken, input.Code)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.identityService.VerifyOTP(request.Context(), input.SessionID, input.Code)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookie(writer, result.SessionID, result.Authorization.ExpiresAt())
	respond.OK(writer, loginResponse(result))
}

/*
Refresh rotates a live session's tokens against its refresh token.

POST /api/v1/identity/refresh

Description: Resolves the session from the cookie or SessionId header and
exchanges the submitted refresh token for a fresh authorization record under
the same session. The previous refresh token is dead after one use.

Request:
  - Body: refreshRequest (RefreshToken)

Response:
  - 200: LoginResponse: Rotated tokens
  - 401: ErrUnauthorized: No session, token mismatch, or suspended account
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	sessionID := gate.SessionID(request)
	if sessionID == "" {
		respond.Error(writer, request, apperr.Unauthorized("Invalid refresh credentials"))
		return
	}

	var input refreshRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldRefreshToken, input.RefreshToken)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	result, err := handler.identityService.RefreshAuthorization(request.Context(), sessionID, input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	setSessionCookie(writer, result.SessionID, result.Authorization.ExpiresAt())
	respond.OK(writer, loginResponse(result))
}

/*
ConfirmEmail consumes an email activation token.

POST /api/v1/identity/confirm-email

Response:
  - 200: Success: Email confirmed
  - 401: ErrUnauthorized: Wrong or consumed token
  - 410: ErrGone: Token expired
*/
func (handler *Handler) confirmEmail(writer http.ResponseWriter, request *http.Request) {
	var input confirmChannelRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldToken, input.Token)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.identityService.ConfirmEmail(request.Context(), input.Email, input.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Email confirmed successfully",
	})
}

/*
ConfirmPhone consumes a phone activation code.

POST /api/v1/identity/confirm-phone

Response:
  - 200: Success: Phone number confirmed
  - 401: ErrUnauthorized: Wrong or consumed code
  - 410: ErrGone: Code expired
*/
func (handler *Handler) confirmPhone(writer http.ResponseWriter, request *http.Request) {
	var input confirmChannelRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	input.PhoneNumber = phone.Simplify(input.PhoneNumber)

	validator := &validate.Validator{}
	validator.Required(FieldPhoneNumber, input.PhoneNumber).
		Required(FieldToken, input.Token)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.identityService.ConfirmPhone(request.Context(), input.PhoneNumber, input.Token); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Phone number confirmed successfully",
	})
}

/*
RenewActivation replaces an expired activation token.

POST /api/v1/identity/renew-activation

Description: Only expired tokens renew; a still-valid token yields a 409.
When the secret-code feature is enabled the request must carry a valid
secret code.

Request:
  - Body: renewActivationRequest (Email or PhoneNumber, SecretCode)

Response:
  - 200: Success: Fresh token dispatched
  - 409: ErrConflict: Current token is still valid
*/
func (handler *Handler) renewActivation(writer http.ResponseWriter, request *http.Request) {
	var input renewActivationRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	input.PhoneNumber = phone.Simplify(input.PhoneNumber)

	err := handler.identityService.RenewActivation(request.Context(), RenewActivationInput{
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		SecretCode:  input.SecretCode,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "A fresh activation token has been sent",
	})
}

/*
ForwardToken re-sends a still-valid token over the other contact channel.

POST /api/v1/identity/forward-token

Request:
  - Body: forwardTokenRequest (Email or PhoneNumber, Kind, SecretCode)

Response:
  - 200: Success: Token forwarded
  - 400: ErrValidation: Kind not forwardable or no opposite channel
  - 410: ErrGone: Token expired
*/
func (handler *Handler) forwardToken(writer http.ResponseWriter, request *http.Request) {
	var input forwardTokenRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	input.PhoneNumber = phone.Simplify(input.PhoneNumber)

	kind, ok := ParseTokenKind(input.Kind)
	if !ok {
		respond.Error(writer, request, validate.RequiredError(FieldKind, "must be a known token kind"))
		return
	}

	err := handler.identityService.ForwardToken(request.Context(), ForwardTokenInput{
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
		Kind:        kind,
		SecretCode:  input.SecretCode,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Token forwarded successfully",
	})
}

/*
RequestRecovery starts the account recovery flow.

POST /api/v1/identity/recovery/request

Description: Dispatches a recovery token. The response is identical whether
or not the email is registered.

Response:
  - 200: Success: Generic acknowledgement
*/
func (handler *Handler) requestRecovery(writer http.ResponseWriter, request *http.Request) {
	var input recoveryRequestRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.identityService.RequestRecovery(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "If this email is registered, a recovery token has been sent.",
	})
}

/*
CompleteRecovery finishes the recovery flow with a new password.

POST /api/v1/identity/recovery/complete

Description: Consumes the recovery token, replaces the credential, and
invalidates every session for the account.

Response:
  - 200: Success: Password updated
  - 401: ErrUnauthorized: Wrong or consumed token
  - 410: ErrGone: Token expired
*/
func (handler *Handler) completeRecovery(writer http.ResponseWriter, request *http.Request) {
	var input recoveryCompleteRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldToken, input.Token).
		Required(FieldNewPassword, input.NewPassword).
		MinLen(FieldNewPassword, input.NewPassword, 8)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	err := handler.identityService.CompleteRecovery(request.Context(),
		input.Email, input.Token, input.NewPassword)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Password updated successfully",
	})
}

/*
RequestSecretCode dispatches the code that guards forwarding and renewal.

POST /api/v1/identity/secret-code/request

Response:
  - 200: Success: Code dispatched
  - 401: ErrUnauthorized: Unknown email
*/
func (handler *Handler) requestSecretCode(writer http.ResponseWriter, request *http.Request) {
	var input secretCodeRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.identityService.RequestSecretCode(request.Context(), input.Email); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Secret code sent successfully",
	})
}

/*
Logout clears the session's authorization records and the session cookie.

POST /api/v1/identity/logout

Response:
  - 204: No Content: Session terminated
*/
func (handler *Handler) logout(writer http.ResponseWriter, request *http.Request) {
	sessionID, err := requestutil.RequiredSessionID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.identityService.Logout(request.Context(), sessionID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})

	respond.NoContent(writer)
}

/*
SetupTwoFactor issues provisional two-factor enrollment material.

POST /api/v1/identity/two-factor/setup

Response:
  - 200: SetupMaterial: Secret, manual-entry key, otpauth URI, QR image
  - 409: ErrConflict: Already enrolled
*/
func (handler *Handler) setupTwoFactor(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	material, err := handler.identityService.SetupTwoFactor(request.Context(), accountID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, material)
}

/*
ConfirmTwoFactorSetup completes enrollment with the first authenticator PIN.

POST /api/v1/identity/two-factor/confirm

Response:
  - 200: Success: Two-factor enabled, current session confirmed
  - 401: ErrUnauthorized: Wrong PIN or setup not started
*/
func (handler *Handler) confirmTwoFactorSetup(writer http.ResponseWriter, request *http.Request) {
	handler.handlePinSubmission(writer, request, handler.identityService.ConfirmTwoFactorSetup)
}

/*
VerifyTwoFactorSession confirms the current session with an authenticator
PIN, satisfying the two-factor gate for the rest of its lifetime.

POST /api/v1/identity/two-factor/verify

Response:
  - 200: Success: Session confirmed
  - 401: ErrUnauthorized: Wrong PIN or two-factor not enabled
*/
func (handler *Handler) verifyTwoFactorSession(writer http.ResponseWriter, request *http.Request) {
	handler.handlePinSubmission(writer, request, handler.identityService.VerifyTwoFactorSession)
}

/*
RequestTwoFactorDisable dispatches the verifying-token batch that authorizes
turning two-factor off.

POST /api/v1/identity/two-factor/disable/request

Response:
  - 200: Success: Batch dispatched
  - 409: ErrConflict: Two-factor not enabled
*/
func (handler *Handler) requestTwoFactorDisable(writer http.ResponseWriter, request *http.Request) {
	accountID, err := requestutil.RequiredAccountID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.identityService.RequestTwoFactorDisable(request.Context(), accountID); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Verification tokens sent successfully",
	})
}

/*
DisableTwoFactor turns two-factor off against one verifying token.

POST /api/v1/identity/two-factor/disable

Response:
  - 200: Success: Two-factor disabled
  - 401: ErrUnauthorized: Invalid token
  - 410: ErrGone: Token batch expired
*/
func (handler *Handler) disableTwoFactor(writer http.ResponseWriter, request *http.Request) {
	record, err := requestutil.RequiredAuthorization(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	sessionID := ctxutil.GetSessionID(request.Context())

	var input disableTwoFactorRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Token == "" {
		respond.Error(writer, request, validate.RequiredError(FieldToken, "is required"))
		return
	}

	err = handler.identityService.DisableTwoFactor(request.Context(),
		record.AccountID, sessionID, input.Token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Two-factor authentication disabled",
	})
}

/*
GetProfile returns a profile owned by the authenticated account.

GET /api/v1/identity/profiles/{profileID}

Description: The association gate has already verified ownership via the
ProfileId header before this handler runs.

Response:
  - 200: Profile
  - 404: ErrNotFound: Profile does not exist
*/
func (handler *Handler) getProfile(writer http.ResponseWriter, request *http.Request) {
	profileID := chi.URLParam(request, "profileID")

	profile, err := handler.identityService.GetProfile(request.Context(), profileID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, profile)
}

// # Internal Helpers

// handlePinSubmission factors the shared decode/validate/dispatch shape of
// the two PIN-consuming endpoints.
func (handler *Handler) handlePinSubmission(
	writer http.ResponseWriter,
	request *http.Request,
	submit func(ctx context.Context, accountID, sessionID, pin string) error,
) {
	record, err := requestutil.RequiredAuthorization(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}
	sessionID := ctxutil.GetSessionID(request.Context())

	var input pinRequest
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Pin == "" {
		respond.Error(writer, request, validate.RequiredError(FieldPin, "is required"))
		return
	}

	if err := submit(request.Context(), record.AccountID, sessionID, input.Pin); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: "Two-factor PIN accepted",
	})
}

// setSessionCookie writes the session identifier the gates resolve on
// subsequent requests.
func setSessionCookie(writer http.ResponseWriter, sessionID string, expiresAt time.Time) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    sessionID,
		Path:     constants.SessionCookiePath,
		Expires:  expiresAt,
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
	})
}

// loginResponse shapes the session material returned by both login flows.
func loginResponse(result *LoginResult) map[string]any {
	return map[string]any{
		"session_id":           result.SessionID,
		FieldAccountID:         result.Authorization.AccountID,
		FieldBearerToken:       result.Authorization.BearerToken,
		FieldAuthToken:         result.Authorization.AuthorizationToken,
		FieldRefreshToken:      result.RefreshToken,
		FieldRoles:             sec.RolesToStrings(result.Authorization.Roles),
		FieldRequiresTwoFactor: result.RequiresTwoFactor,
	}
}
