// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/leminhduc/veriden/internal/platform/apperr"
	"github.com/leminhduc/veriden/internal/platform/messaging"
	"github.com/leminhduc/veriden/internal/platform/sec"
)

// # Activation

/*
ConfirmEmail consumes the active email confirmation token.

Description: The token is single use; the value and its timestamp clear in
the same transition that flips EmailConfirmed. A retried confirmation finds
no active token and is rejected.

Parameters:
  - context: context.Context
  - email: string
  - token: The submitted confirmation token

Returns:
  - err: Unauthorized (wrong or consumed token), Gone (expired), or
    storage failures
*/
func (service *Service) ConfirmEmail(context context.Context, email, token string) error {
	account, err := service.accounts.FindByEmail(context, email)
	if err != nil {
		return apperr.Unauthorized("Invalid confirmation request")
	}

	if err := service.matchToken(account, TokenEmailConfirmation, token); err != nil {
		return err
	}

	account.ClearToken(TokenEmailConfirmation)
	account.EmailConfirmed = true

	if err := service.accounts.Update(context, account); err != nil {
		return fmt.Errorf("identity_service_confirm_email_failed: %w", err)
	}
	return nil
}

/*
ConfirmPhone consumes the active phone confirmation token.

Parameters:
  - context: context.Context
  - phoneNumber: string
  - token: The submitted confirmation code

Returns:
  - err: Unauthorized, Gone, or storage failures
*/
func (service *Service) ConfirmPhone(context context.Context, phoneNumber, token string) error {
	account, err := service.accounts.FindByPhoneNumber(context, phoneNumber)
	if err != nil {
		return apperr.Unauthorized("Invalid confirmation request")
	}

	if err := service.matchToken(account, TokenPhoneConfirmation, token); err != nil {
		return err
	}

	account.ClearToken(TokenPhoneConfirmation)
	account.PhoneConfirmed = true

	if err := service.accounts.Update(context, account); err != nil {
		return fmt.Errorf("identity_service_confirm_phone_failed: %w", err)
	}
	return nil
}

// RenewActivationInput identifies the activation token to renew.
type RenewActivationInput struct {
	Email       string
	PhoneNumber string
	// SecretCode guards the renewal when the secret-code feature is enabled.
	SecretCode string
}

/*
RenewActivation replaces an expired activation token with a fresh one.

Description: Renewal is only for expired tokens; a still-valid token yields
a Conflict carrying the not-yet-expired signal. When the secret-code feature
is on, a valid secret code must accompany the request.

Parameters:
  - context: context.Context
  - input: RenewActivationInput

Returns:
  - err: Unauthorized, Conflict (token still valid), or storage failures
*/
func (service *Service) RenewActivation(context context.Context, input RenewActivationInput) error {
	account, kind, err := service.resolveChannel(context, input.Email, input.PhoneNumber)
	if err != nil {
		return err
	}

	if err := service.requireSecretCode(account, input.SecretCode); err != nil {
		return err
	}

	_, issuedAt := account.Token(kind)
	if issuedAt == nil {
		return apperr.Unauthorized("No activation token to renew")
	}

	issued, err := service.tokens.Renew(kind, *issuedAt)
	if err != nil {
		if errors.Is(err, ErrTokenNotYetExpired) {
			return apperr.Conflict("Activation token is still valid")
		}
		return fmt.Errorf("identity_service_renew_failed: %w", err)
	}

	account.SetToken(kind, issued)
	if err := service.accounts.Update(context, account); err != nil {
		return fmt.Errorf("identity_service_renew_store_failed: %w", err)
	}

	service.dispatchToken(context, account, kind, issued.Value)
	return nil
}

// # Forwarding

// ForwardTokenInput identifies a valid token to re-send over the account's
// other contact channel.
type ForwardTokenInput struct {
	Email       string
	PhoneNumber string
	Kind        TokenKind
	SecretCode  string
}

/*
ForwardToken re-sends a still-valid token to the opposite contact channel.

Description: Only recovery and one-time-password tokens are forwardable, and
only while valid; an expired token must be renewed instead. The secret code
gates the operation when that feature is enabled, and itself can never be
forwarded.

Parameters:
  - context: context.Context
  - input: ForwardTokenInput

Returns:
  - err: ValidationError (kind not forwardable, no opposite channel),
    Unauthorized, Gone (expired), or dispatch failures
*/
func (service *Service) ForwardToken(context context.Context, input ForwardTokenInput) error {
	if !tokenMetadata[input.Kind].forwardable {
		return apperr.ValidationError("This token kind cannot be forwarded",
			apperr.FieldError{Field: FieldKind, Message: "must be a forwardable kind"})
	}

	account, _, err := service.resolveChannel(context, input.Email, input.PhoneNumber)
	if err != nil {
		return err
	}

	if err := service.requireSecretCode(account, input.SecretCode); err != nil {
		return err
	}

	value, issuedAt := account.Token(input.Kind)
	if value == nil || issuedAt == nil {
		return apperr.Unauthorized("No active token to forward")
	}
	if !service.tokens.CanForward(input.Kind, *issuedAt) {
		return apperr.Gone("Token has expired and cannot be forwarded")
	}

	// Forward to the channel opposite the one that addressed the account.
	forwardToPhone := input.Email != ""
	if forwardToPhone && !account.HasPhone() {
		return apperr.ValidationError("Account has no phone channel to forward to")
	}
	if !forwardToPhone && !account.HasEmail() {
		return apperr.ValidationError("Account has no email channel to forward to")
	}

	service.dispatchTokenTo(context, account, input.Kind, *value, forwardToPhone)
	return nil
}

// # Recovery

/*
RequestRecovery starts the account recovery flow.

Description: Issues a recovery token and dispatches it. A missing account
reports success to prevent enumeration.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: Generation or storage failures
*/
func (service *Service) RequestRecovery(context context.Context, email string) error {
	// NOTE: We don't return NOT_FOUND if the email doesn't exist to prevent
	// account enumeration.
	account, err := service.accounts.FindByEmail(context, email)
	if err != nil {
		return nil
	}

	issued, err := service.tokens.Generate(TokenAccountRecovery)
	if err != nil {
		return fmt.Errorf("identity_service_recovery_generate_failed: %w", err)
	}

	account.SetToken(TokenAccountRecovery, issued)
	if err := service.accounts.Update(context, account); err != nil {
		return fmt.Errorf("identity_service_recovery_store_failed: %w", err)
	}

	service.dispatchToken(context, account, TokenAccountRecovery, issued.Value)
	return nil
}

/*
CompleteRecovery finishes the recovery flow with a new password.

Description: Consumes the recovery token, re-hashes the credential under a
fresh salt, and invalidates every session for the account.

Parameters:
  - context: context.Context
  - email: string
  - token: The submitted recovery token
  - newPassword: string

Returns:
  - err: Unauthorized, Gone (expired token), or storage failures
*/
func (service *Service) CompleteRecovery(context context.Context, email, token, newPassword string) error {
	account, err := service.accounts.FindByEmail(context, email)
	if err != nil {
		return apperr.Unauthorized("Invalid recovery request")
	}

	if err := service.matchToken(account, TokenAccountRecovery, token); err != nil {
		return err
	}

	hash, salt, err := service.rehash(newPassword)
	if err != nil {
		return err
	}

	account.ClearToken(TokenAccountRecovery)
	account.HashedPassword = hash
	account.PasswordSalt = salt

	if err := service.accounts.Update(context, account); err != nil {
		return fmt.Errorf("identity_service_recovery_update_failed: %w", err)
	}

	// Security cleanup: a recovered credential forces re-login everywhere.
	if err := service.sessions.InvalidateAccount(context, account.ID); err != nil {
		return fmt.Errorf("identity_service_recovery_invalidate_failed: %w", err)
	}

	return nil
}

// # Secret Code

/*
RequestSecretCode issues the secret code that guards forwarding and renewal.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - err: Unauthorized or storage failures
*/
func (service *Service) RequestSecretCode(context context.Context, email string) error {
	account, err := service.accounts.FindByEmail(context, email)
	if err != nil {
		return apperr.Unauthorized("Invalid request")
	}

	issued, err := service.tokens.Generate(TokenSecretCode)
	if err != nil {
		return fmt.Errorf("identity_service_secret_generate_failed: %w", err)
	}

	account.SetToken(TokenSecretCode, issued)
	if err := service.accounts.Update(context, account); err != nil {
		return fmt.Errorf("identity_service_secret_store_failed: %w", err)
	}

	service.dispatchToken(context, account, TokenSecretCode, issued.Value)
	return nil
}

// # Internal Helpers

// matchToken checks a submitted value against the account's active instance
// of a kind: present, equal, and inside its validity window.
func (service *Service) matchToken(account *Account, kind TokenKind, submitted string) error {
	value, issuedAt := account.Token(kind)
	if value == nil || issuedAt == nil {
		return apperr.Unauthorized("No active " + kind.Label())
	}
	if !service.tokens.IsValid(kind, *issuedAt) {
		return apperr.Gone(kind.Label() + " has expired")
	}
	if submitted != *value {
		return apperr.Unauthorized("Invalid " + kind.Label())
	}
	return nil
}

// requireSecretCode enforces the secret-code guard when the feature flag is
// enabled. The submitted code must match the account's active, valid code.
func (service *Service) requireSecretCode(account *Account, submitted string) error {
	if !service.cfg.SecretCodeEnabled {
		return nil
	}
	return service.matchToken(account, TokenSecretCode, submitted)
}

// resolveChannel loads the account addressed by email or phone and returns
// the activation kind matching the addressing channel.
func (service *Service) resolveChannel(context context.Context, email, phoneNumber string) (*Account, TokenKind, error) {
	if email != "" {
		account, err := service.accounts.FindByEmail(context, email)
		if err != nil {
			return nil, "", apperr.Unauthorized("Invalid request")
		}
		return account, TokenEmailConfirmation, nil
	}
	if phoneNumber != "" {
		account, err := service.accounts.FindByPhoneNumber(context, phoneNumber)
		if err != nil {
			return nil, "", apperr.Unauthorized("Invalid request")
		}
		return account, TokenPhoneConfirmation, nil
	}
	return nil, "", apperr.ValidationError("Either email or phone number is required")
}

// rehash derives fresh credential material for a password change.
func (service *Service) rehash(newPassword string) (hash, salt string, err error) {
	hash, salt, err = sec.HashAndSalt(newPassword, service.cfg.PasswordSaltLength)
	if err != nil {
		return "", "", fmt.Errorf("identity_service_rehash_failed: %w", err)
	}
	return hash, salt, nil
}

// dispatchTokenTo sends a token over an explicitly chosen channel, used by
// forwarding where the target is the opposite of the addressing channel.
func (service *Service) dispatchTokenTo(context context.Context, account *Account, kind TokenKind, value string, toPhone bool) {
	if toPhone {
		_ = service.smsSender.SendSingleSms(context, messaging.SMS{
			To:   account.PhoneNumber,
			Body: fmt.Sprintf("%s: %s", kind.Label(), value),
		})
		return
	}
	_ = service.mailer.SendSingleEmail(context, messaging.Email{
		To:      account.Email,
		Subject: kind.Label(),
		Body:    fmt.Sprintf("Your %s is: %s", kind.Label(), value),
		Tag:     string(kind),
	})
}
