// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/leminhduc/veriden/internal/platform/apperr"
	"github.com/leminhduc/veriden/internal/platform/config"
	"github.com/leminhduc/veriden/internal/platform/messaging"
	"github.com/leminhduc/veriden/internal/platform/sec"
	"github.com/leminhduc/veriden/internal/session"
	"github.com/leminhduc/veriden/pkg/pointer"
	"github.com/leminhduc/veriden/pkg/uuid"
)

// # Contracts & Types

// BearerIssuer defines the contract for minting signed bearer tokens.
type BearerIssuer interface {
	// GenerateBearerToken creates a signed JWT for the account and role set.
	GenerateBearerToken(accountID string, roles []sec.Role, timeToLive time.Duration) (string, error)
}

// Service orchestrates the identity use cases: registration, activation,
// login with lockout protection, recovery, and two-factor enrollment.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, lockout,
// or token lifecycle logic must be reviewed by the security team.
type Service struct {
	accounts  AccountRepository
	profiles  ProfileRepository
	sessions  session.Store
	tokens    *TokenManager
	guard     *LockoutGuard
	twoFactor *TwoFactorChallenge
	bearer    BearerIssuer
	mailer    messaging.Mailer
	smsSender messaging.SMSSender
	cfg       *config.Config
}

// NewService constructs the identity [Service] with its dependencies.
func NewService(
	accounts AccountRepository,
	profiles ProfileRepository,
	sessions session.Store,
	tokens *TokenManager,
	guard *LockoutGuard,
	twoFactor *TwoFactorChallenge,
	bearer BearerIssuer,
	mailer messaging.Mailer,
	smsSender messaging.SMSSender,
	cfg *config.Config,
) *Service {
	return &Service{
		accounts:  accounts,
		profiles:  profiles,
		sessions:  sessions,
		tokens:    tokens,
		guard:     guard,
		twoFactor: twoFactor,
		bearer:    bearer,
		mailer:    mailer,
		smsSender: smsSender,
		cfg:       cfg,
	}
}

// # Registration Flow

// RegisterInput holds the data required to enroll a new account.
// At least one of Email and PhoneNumber must be present.
type RegisterInput struct {
	Email       string
	PhoneNumber string
	Password    string
	DisplayName string
}

/*
Register validates, hashes, and persists a brand new account with its profile.

Description: Creates the credential aggregate with zeroed lockout state,
issues the activation token for the registered channel, and dispatches it.

Parameters:
  - context: context.Context
  - input: RegisterInput

Returns:
  - *Account: Created aggregate
  - err: Conflict (if the identity exists) or storage errors
*/
func (service *Service) Register(context context.Context, input RegisterInput) (*Account, error) {

	// Verify channel uniqueness. Return a client-safe Conflict err.
	if input.Email != "" {
		if _, err := service.accounts.FindByEmail(context, input.Email); err == nil {
			return nil, apperr.Conflict("Email is already registered")
		}
	}
	if input.PhoneNumber != "" {
		if _, err := service.accounts.FindByPhoneNumber(context, input.PhoneNumber); err == nil {
			return nil, apperr.Conflict("Phone number is already registered")
		}
	}

	// Prevent storing plain-text passwords. The per-account salt is mixed
	// into the hashed input and stored alongside the hash.
	hash, salt, err := sec.HashAndSalt(input.Password, service.cfg.PasswordSaltLength)
	if err != nil {
		return nil, fmt.Errorf("identity_service_hash_failed: %w", err)
	}

	// Time-sortable ID to prevent PG index fragmentation.
	account := &Account{
		ID:             uuid.New(),
		Email:          input.Email,
		PhoneNumber:    input.PhoneNumber,
		HashedPassword: hash,
		PasswordSalt:   salt,
		Roles:          []sec.Role{sec.RoleCustomer},
	}

	// Issue the activation token for the channel the caller registered.
	kind := TokenEmailConfirmation
	if input.Email == "" {
		kind = TokenPhoneConfirmation
	}
	issued, err := service.tokens.Generate(kind)
	if err != nil {
		return nil, fmt.Errorf("identity_service_activation_token_failed: %w", err)
	}
	account.SetToken(kind, issued)

	if err := service.accounts.Create(context, account); err != nil {
		return nil, fmt.Errorf("identity_service_register_failed: %w", err)
	}

	profile := &Profile{
		ID:          uuid.New(),
		AccountID:   account.ID,
		DisplayName: input.DisplayName,
		Email:       input.Email,
		PhoneNumber: input.PhoneNumber,
	}
	if err := service.profiles.Create(context, profile); err != nil {
		return nil, fmt.Errorf("identity_service_profile_failed: %w", err)
	}

	service.dispatchToken(context, account, kind, issued.Value)

	return account, nil
}

// # Authentication Flow

// LoginInput defines credentials for a password authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult represents a successfully established session authorization.
type LoginResult struct {
	SessionID     string
	Authorization *session.Authorization

	// RefreshToken is the plain-text refresh token, surfaced exactly once;
	// the stored record only keeps its digest.
	RefreshToken string

	RequiresTwoFactor bool
}

/*
LoginWithPassword validates credentials under the lockout guard and issues a
session authorization record.

Description: Evaluates the lockout state before touching the credential,
routes failure and success through the shared [LockoutGuard] transitions,
and on success writes a fresh Authorization into the session store.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *LoginResult: Session id plus the stored authorization record
  - err: Unauthorized (with attempts remaining), Locked (with counters),
    or internal failures
*/
func (service *Service) LoginWithPassword(context context.Context, input LoginInput) (*LoginResult, error) {
	account, err := service.accounts.FindByEmail(context, input.Email)

	// Generic message to prevent account enumeration.
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	// ── 1. Lockout Pre-Check ──────────────────────────────────────────────
	if outcome := service.guard.Evaluate(account, time.Now()); outcome.Blocked() {
		return nil, lockedError(outcome)
	}

	// ── 2. Credential Check ───────────────────────────────────────────────
	if !sec.VerifyPassword(account.HashedPassword, input.Password+account.PasswordSalt) {
		outcome, guardErr := service.guard.RecordFailure(context, account)
		if guardErr != nil {
			return nil, guardErr
		}
		return nil, failedAttemptError(outcome)
	}

	// ── 3. Counter Reset ──────────────────────────────────────────────────
	if err := service.guard.RecordSuccess(context, account); err != nil {
		return nil, err
	}

	// ── 4. Session Authorization ──────────────────────────────────────────
	return service.establishAuthorization(context, account)
}

// # One-Time-Password Flow

/*
RequestOTP starts an OTP login: it issues a one-time password, stores a
transient pre-authorization, and dispatches the code.

Description: The returned session id carries only a pre-authorization until
[Service.VerifyOTP] exchanges it; the authenticated gate refuses it as-is.

Parameters:
  - context: context.Context
  - phoneNumber: The account's registered phone number

Returns:
  - string: Session id holding the pre-authorization
  - err: Unauthorized, Locked, or internal failures
*/
func (service *Service) RequestOTP(context context.Context, phoneNumber string) (string, error) {
	account, err := service.accounts.FindByPhoneNumber(context, phoneNumber)
	if err != nil {
		return "", apperr.Unauthorized("Invalid login credentials")
	}

	if outcome := service.guard.Evaluate(account, time.Now()); outcome.Blocked() {
		return "", lockedError(outcome)
	}

	issued, err := service.tokens.Generate(TokenOneTimePassword)
	if err != nil {
		return "", fmt.Errorf("identity_service_otp_generate_failed: %w", err)
	}
	account.SetToken(TokenOneTimePassword, issued)
	if err := service.accounts.Update(context, account); err != nil {
		return "", fmt.Errorf("identity_service_otp_store_failed: %w", err)
	}

	sessionID := uuid.New()
	preAuth := &session.Authorization{
		AccountID:          account.ID,
		Roles:              account.Roles,
		AuthorizedAt:       time.Now(),
		Validity:           service.cfg.PreAuthorizationValidity,
		IsPreAuthorization: true,
	}
	if err := service.sessions.SavePreAuthorization(context, sessionID, preAuth); err != nil {
		return "", fmt.Errorf("identity_service_preauth_save_failed: %w", err)
	}

	service.dispatchToken(context, account, TokenOneTimePassword, issued.Value)

	return sessionID, nil
}

/*
VerifyOTP exchanges a pre-authorization for a full session authorization.

Description: Compares the submitted code against the account's active
one-time password. Failures and successes route through the same
[LockoutGuard] transitions as password login, so the two flows count
attempts identically.

Parameters:
  - context: context.Context
  - sessionID: The session holding the pre-authorization
  - code: The submitted one-time password

Returns:
  - *LoginResult: Full session authorization
  - err: Unauthorized, Gone (expired code), Locked, or internal failures
*/
func (service *Service) VerifyOTP(context context.Context, sessionID, code string) (*LoginResult, error) {
	preAuth, err := service.sessions.GetPreAuthorization(context, sessionID)
	if err != nil {
		return nil, apperr.Unauthorized("No pending one-time-password login")
	}

	account, err := service.accounts.FindByID(context, preAuth.AccountID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid login credentials")
	}

	if outcome := service.guard.Evaluate(account, time.Now()); outcome.Blocked() {
		return nil, lockedError(outcome)
	}

	stored, issuedAt := account.Token(TokenOneTimePassword)
	if stored == nil || issuedAt == nil {
		return nil, apperr.Unauthorized("No active one-time password")
	}
	if !service.tokens.IsValid(TokenOneTimePassword, *issuedAt) {
		return nil, apperr.Gone("One-time password has expired")
	}

	if code != *stored {
		outcome, guardErr := service.guard.RecordFailure(context, account)
		if guardErr != nil {
			return nil, guardErr
		}
		return nil, failedAttemptError(outcome)
	}

	// Single use: the code and its timestamp clear in the same transition
	// that resets the counters.
	account.ClearToken(TokenOneTimePassword)
	if err := service.guard.RecordSuccess(context, account); err != nil {
		return nil, err
	}

	// A lost counter race reloads the row inside the guard; make sure the
	// consumed code did not survive the reload.
	if account.OneTimePassword != nil {
		account.ClearToken(TokenOneTimePassword)
		if err := service.accounts.Update(context, account); err != nil {
			return nil, fmt.Errorf("identity_service_otp_clear_failed: %w", err)
		}
	}

	if err := service.sessions.DeletePreAuthorization(context, sessionID); err != nil {
		return nil, fmt.Errorf("identity_service_preauth_delete_failed: %w", err)
	}

	return service.establishAuthorization(context, account)
}

// # Session Teardown

/*
Logout clears the session's authorization records.

Description: Idempotent; logging out a session with no records succeeds.

Parameters:
  - context: context.Context
  - sessionID: string

Returns:
  - err: Session store failures
*/
func (service *Service) Logout(context context.Context, sessionID string) error {
	if err := service.sessions.Delete(context, sessionID); err != nil {
		return fmt.Errorf("identity_service_logout_failed: %w", err)
	}
	if err := service.sessions.DeletePreAuthorization(context, sessionID); err != nil {
		return fmt.Errorf("identity_service_logout_failed: %w", err)
	}
	return nil
}

// # Session Renewal

/*
RefreshAuthorization exchanges a live session's refresh token for a fresh
authorization record under the same session identifier.

Description: The submitted token is digested and compared against the stored
record; on match every token rotates (the old refresh token is dead after one
use) and the validity window restarts. The session's two-factor confirmation
state carries over so a confirmed session does not get re-challenged.

Parameters:
  - context: context.Context
  - sessionID: string
  - refreshToken: The plain-text token issued at login or previous refresh

Returns:
  - *LoginResult: The rotated session material
  - err: Unauthorized (unknown session, token mismatch, or suspension)
*/
func (service *Service) RefreshAuthorization(context context.Context, sessionID, refreshToken string) (*LoginResult, error) {
	record, err := service.sessions.Get(context, sessionID)
	if err != nil {
		return nil, apperr.Unauthorized("Invalid refresh credentials")
	}

	if record.IsPreAuthorization || sec.HashToken(refreshToken) != record.RefreshToken {
		return nil, apperr.Unauthorized("Invalid refresh credentials")
	}

	account, err := service.accounts.FindByID(context, record.AccountID)
	if err != nil || account.IsSuspended {
		return nil, apperr.Unauthorized("Invalid refresh credentials")
	}

	fresh, rotated, err := service.mintAuthorization(account)
	if err != nil {
		return nil, err
	}

	// Carry the confirmation state; renewal is not a new login.
	fresh.TwoFactorConfirmed = record.TwoFactorConfirmed

	if err := service.sessions.Save(context, sessionID, fresh); err != nil {
		return nil, fmt.Errorf("identity_service_session_save_failed: %w", err)
	}

	return &LoginResult{
		SessionID:         sessionID,
		Authorization:     fresh,
		RefreshToken:      rotated,
		RequiresTwoFactor: account.TwoFactorEnabled && !pointer.Fallback(fresh.TwoFactorConfirmed, false),
	}, nil
}

// # Profiles

// GetProfile returns a profile by id. Ownership is enforced upstream by the
// account/profile association gate.
func (service *Service) GetProfile(context context.Context, profileID string) (*Profile, error) {
	return service.profiles.FindByID(context, profileID)
}

// IsProfileAssociated implements the association gate's checker contract.
func (service *Service) IsProfileAssociated(context context.Context, profileID, accountID string) (bool, error) {
	return service.profiles.BelongsTo(context, profileID, accountID)
}

// # Internal Helpers

// establishAuthorization mints a fresh session record for an authenticated
// account and stores it under a brand new session identifier.
func (service *Service) establishAuthorization(context context.Context, account *Account) (*LoginResult, error) {
	record, refreshToken, err := service.mintAuthorization(account)
	if err != nil {
		return nil, err
	}

	sessionID := uuid.New()
	if err := service.sessions.Save(context, sessionID, record); err != nil {
		return nil, fmt.Errorf("identity_service_session_save_failed: %w", err)
	}

	return &LoginResult{
		SessionID:         sessionID,
		Authorization:     record,
		RefreshToken:      refreshToken,
		RequiresTwoFactor: account.TwoFactorEnabled,
	}, nil
}

// mintAuthorization creates the bearer, authorization, and refresh tokens for
// a session record. The refresh token is stored as a SHA-256 digest; the
// plain text goes to the caller once and is never persisted.
func (service *Service) mintAuthorization(account *Account) (*session.Authorization, string, error) {
	bearerToken, err := service.bearer.GenerateBearerToken(account.ID, account.Roles, service.cfg.AuthorizationValidity)
	if err != nil {
		return nil, "", fmt.Errorf("identity_service_bearer_failed: %w", err)
	}

	authorizationToken, err := sec.GenerateSecureToken(AuthorizationTokenLength)
	if err != nil {
		return nil, "", fmt.Errorf("identity_service_auth_token_failed: %w", err)
	}
	refreshToken, err := sec.GenerateSecureToken(RefreshTokenLength)
	if err != nil {
		return nil, "", fmt.Errorf("identity_service_refresh_token_failed: %w", err)
	}

	record := &session.Authorization{
		AccountID:          account.ID,
		Roles:              account.Roles,
		BearerToken:        bearerToken,
		AuthorizationToken: authorizationToken,
		RefreshToken:       sec.HashToken(refreshToken),
		AuthorizedAt:       time.Now(),
		Validity:           service.cfg.AuthorizationValidity,
	}

	// Tri-state: nil when the account has no enrollment, false until this
	// session confirms its PIN.
	if account.TwoFactorEnabled {
		record.TwoFactorConfirmed = pointer.To(false)
	}

	return record, refreshToken, nil
}

// dispatchToken sends a token over the channel matching its kind. Dispatch
// failures are logged by the senders; they never fail the parent operation.
func (service *Service) dispatchToken(context context.Context, account *Account, kind TokenKind, value string) {
	switch kind {
	case TokenPhoneConfirmation, TokenOneTimePassword:
		if account.HasPhone() {
			_ = service.smsSender.SendSingleSms(context, messaging.SMS{
				To:   account.PhoneNumber,
				Body: fmt.Sprintf("%s: %s", kind.Label(), value),
			})
		}
	default:
		if account.HasEmail() {
			_ = service.mailer.SendSingleEmail(context, messaging.Email{
				To:      account.Email,
				Subject: kind.Label(),
				Body:    fmt.Sprintf("Your %s is: %s", kind.Label(), value),
				Tag:     string(kind),
			})
		} else if account.HasPhone() {
			_ = service.smsSender.SendSingleSms(context, messaging.SMS{
				To:   account.PhoneNumber,
				Body: fmt.Sprintf("%s: %s", kind.Label(), value),
			})
		}
	}
}

// lockedError converts a blocked outcome into the typed 423 response with
// the current counters.
func lockedError(outcome *AttemptOutcome) *apperr.AppError {
	details := []apperr.FieldError{
		{Field: FieldAttemptsLeft, Message: fmt.Sprintf("%d", outcome.AttemptsRemaining)},
		{Field: FieldLockOutCount, Message: fmt.Sprintf("%d", outcome.LockOutCount)},
	}
	if outcome.Suspended {
		details = append(details, apperr.FieldError{Field: FieldSuspended, Message: "true"})
		return apperr.Locked("Account is suspended", details...)
	}
	if outcome.LockedUntil != nil {
		details = append(details, apperr.FieldError{
			Field:   FieldLockedUntil,
			Message: outcome.LockedUntil.Format(time.RFC3339),
		})
	}
	return apperr.Locked("Account is temporarily locked", details...)
}

// failedAttemptError maps a post-failure outcome onto the client response:
// still-active accounts get a 401 with attempts remaining, accounts that
// just entered a lockout or suspension get the 423 with counters.
func failedAttemptError(outcome *AttemptOutcome) *apperr.AppError {
	if outcome.Blocked() {
		return lockedError(outcome)
	}

	unauthorized := apperr.Unauthorized("Invalid login credentials")
	unauthorized.Details = []apperr.FieldError{
		{Field: FieldAttemptsLeft, Message: fmt.Sprintf("%d", outcome.AttemptsRemaining)},
	}
	return unauthorized
}
