// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package identity

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/leminhduc/veriden/internal/platform/apperr"
	"github.com/leminhduc/veriden/pkg/pointer"
)

// # Enrollment

/*
SetupTwoFactor generates and stores provisional two-factor material.

Description: The secret and manual-entry key are stored immediately so a
later [Service.ConfirmTwoFactorSetup] can verify against them, but the
account is not considered enrolled until a PIN confirms the authenticator
actually holds the secret. Re-running setup before confirmation replaces
the provisional material.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - *SetupMaterial: Secret, manual-entry key, otpauth URI, and QR image
  - err: Conflict (already enrolled) or storage failures
*/
func (service *Service) SetupTwoFactor(context context.Context, accountID string) (*SetupMaterial, error) {
	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		return nil, err
	}

	if account.TwoFactorEnabled {
		return nil, apperr.Conflict("Two-factor authentication is already enabled")
	}

	label := account.Email
	if label == "" {
		label = account.PhoneNumber
	}

	material, err := service.twoFactor.BeginSetup(label)
	if err != nil {
		return nil, fmt.Errorf("identity_service_twofactor_setup_failed: %w", err)
	}

	account.TwoFactorSecretKey = pointer.To(material.SecretKey)
	account.TwoFactorManualEntryKey = pointer.To(material.ManualEntryKey)

	if err := service.accounts.Update(context, account); err != nil {
		return nil, fmt.Errorf("identity_service_twofactor_store_failed: %w", err)
	}

	return material, nil
}

/*
ConfirmTwoFactorSetup completes enrollment by verifying the first PIN.

Description: A correct PIN proves the authenticator holds the stored secret
and flips TwoFactorEnabled. The confirming session is marked confirmed at
the same time so the caller is not immediately challenged again.

Parameters:
  - context: context.Context
  - accountID: string
  - sessionID: The session performing the enrollment
  - pin: The authenticator code

Returns:
  - err: Unauthorized (no provisional secret or wrong PIN) or storage
    failures
*/
func (service *Service) ConfirmTwoFactorSetup(context context.Context, accountID, sessionID, pin string) error {
	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		return err
	}

	if account.TwoFactorSecretKey == nil {
		return apperr.Unauthorized("Two-factor setup has not been started")
	}

	if !service.twoFactor.VerifyPin(*account.TwoFactorSecretKey, pin, service.pinTolerance()) {
		return apperr.Unauthorized("Invalid two-factor PIN")
	}

	account.TwoFactorEnabled = true
	if err := service.accounts.Update(context, account); err != nil {
		return fmt.Errorf("identity_service_twofactor_enable_failed: %w", err)
	}

	return service.confirmSession(context, sessionID)
}

// # Per-Session Verification

/*
VerifyTwoFactorSession confirms the current session with an authenticator
PIN.

Description: Every login on an enrolled account starts with a pending
two-factor mark; the two-factor gate rejects the session until this
operation flips it.

Parameters:
  - context: context.Context
  - accountID: string
  - sessionID: string
  - pin: string

Returns:
  - err: Unauthorized (not enrolled or wrong PIN) or session store
    failures
*/
func (service *Service) VerifyTwoFactorSession(context context.Context, accountID, sessionID, pin string) error {
	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		return err
	}

	if !account.TwoFactorEnabled || account.TwoFactorSecretKey == nil {
		return apperr.Unauthorized("Two-factor authentication is not enabled")
	}

	if !service.twoFactor.VerifyPin(*account.TwoFactorSecretKey, pin, service.pinTolerance()) {
		return apperr.Unauthorized("Invalid two-factor PIN")
	}

	return service.confirmSession(context, sessionID)
}

// # Teardown

/*
RequestTwoFactorDisable issues the verifying-token batch that authorizes
turning two-factor off.

Description: A batch of tokens is generated under one shared timestamp and
dispatched over the account's contact channel; presenting any one of them
to [Service.DisableTwoFactor] while the batch is valid completes the
teardown.

Parameters:
  - context: context.Context
  - accountID: string

Returns:
  - err: Conflict (not enrolled), generation, or storage failures
*/
func (service *Service) RequestTwoFactorDisable(context context.Context, accountID string) error {
	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		return err
	}

	if !account.TwoFactorEnabled {
		return apperr.Conflict("Two-factor authentication is not enabled")
	}

	// One shared timestamp; the whole batch expires together.
	batch := make([]string, 0, service.cfg.TwoFactorDisableBatch)
	var sharedIssuedAt time.Time
	for i := 0; i < service.cfg.TwoFactorDisableBatch; i++ {
		issued, err := service.tokens.Generate(TokenTwoFactorSetup)
		if err != nil {
			return fmt.Errorf("identity_service_twofactor_batch_failed: %w", err)
		}
		batch = append(batch, issued.Value)
		sharedIssuedAt = issued.IssuedAt
	}

	account.TwoFactorVerifyingTokens = batch
	account.TwoFactorTokensIssuedAt = pointer.To(sharedIssuedAt)

	if err := service.accounts.Update(context, account); err != nil {
		return fmt.Errorf("identity_service_twofactor_batch_store_failed: %w", err)
	}

	service.dispatchToken(context, account, TokenTwoFactorSetup, strings.Join(batch, ", "))
	return nil
}

/*
DisableTwoFactor turns two-factor off against one verifying token.

Description: The secret, manual-entry key, token batch, and enabled flag
clear in one transition; the session's confirmation mark resets to
not-applicable at the same time.

Parameters:
  - context: context.Context
  - accountID: string
  - sessionID: string
  - token: Any single token from the verifying batch

Returns:
  - err: Unauthorized, Gone (batch expired), or storage failures
*/
func (service *Service) DisableTwoFactor(context context.Context, accountID, sessionID, token string) error {
	account, err := service.accounts.FindByID(context, accountID)
	if err != nil {
		return err
	}

	if !account.TwoFactorEnabled {
		return apperr.Conflict("Two-factor authentication is not enabled")
	}
	if len(account.TwoFactorVerifyingTokens) == 0 || account.TwoFactorTokensIssuedAt == nil {
		return apperr.Unauthorized("No pending two-factor disable request")
	}
	if !service.tokens.IsValid(TokenTwoFactorSetup, *account.TwoFactorTokensIssuedAt) {
		return apperr.Gone("Two-factor disable tokens have expired")
	}

	if !slices.Contains(account.TwoFactorVerifyingTokens, token) {
		return apperr.Unauthorized("Invalid two-factor disable token")
	}

	account.TwoFactorEnabled = false
	account.TwoFactorSecretKey = nil
	account.TwoFactorManualEntryKey = nil
	account.TwoFactorVerifyingTokens = nil
	account.TwoFactorTokensIssuedAt = nil

	if err := service.accounts.Update(context, account); err != nil {
		return fmt.Errorf("identity_service_twofactor_disable_failed: %w", err)
	}

	// The session record drops back to the not-applicable state.
	record, err := service.sessions.Get(context, sessionID)
	if err == nil {
		record.TwoFactorConfirmed = nil
		if err := service.sessions.Save(context, sessionID, record); err != nil {
			return fmt.Errorf("identity_service_session_update_failed: %w", err)
		}
	}

	return nil
}

// # Internal Helpers

// confirmSession flips the session record's two-factor mark to confirmed.
func (service *Service) confirmSession(context context.Context, sessionID string) error {
	record, err := service.sessions.Get(context, sessionID)
	if err != nil {
		return apperr.Unauthorized("No active session to confirm")
	}

	record.TwoFactorConfirmed = pointer.To(true)
	if err := service.sessions.Save(context, sessionID, record); err != nil {
		return fmt.Errorf("identity_service_session_update_failed: %w", err)
	}
	return nil
}

func (service *Service) pinTolerance() int {
	return int(service.cfg.TwoFactorPinTolerance.Seconds())
}
