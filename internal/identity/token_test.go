// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package identity_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leminhduc/veriden/internal/identity"
	"github.com/leminhduc/veriden/internal/platform/config"
)

func testConfig() *config.Config {
	return &config.Config{
		EmailToken:      config.TokenRule{MinLength: 32, MaxLength: 48, Validity: 24 * time.Hour},
		PhoneToken:      config.TokenRule{MinLength: 6, MaxLength: 8, Validity: 15 * time.Minute},
		RecoveryToken:   config.TokenRule{MinLength: 32, MaxLength: 48, Validity: time.Hour},
		OneTimePassword: config.TokenRule{MinLength: 6, MaxLength: 8, Validity: 5 * time.Minute},
		SecretCode:      config.TokenRule{MinLength: 8, MaxLength: 12, Validity: 10 * time.Minute},
		TwoFactorSetup:  config.TokenRule{MinLength: 8, MaxLength: 10, Validity: 10 * time.Minute},
	}
}

/*
TestTokenManager_GenerateLengthBounds verifies the generated length always
lands inside the configured [min, max] window.
*/
func TestTokenManager_GenerateLengthBounds(t *testing.T) {
	manager := identity.NewTokenManager(testConfig())

	for i := 0; i < 50; i++ {
		issued, err := manager.Generate(identity.TokenOneTimePassword)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, len(issued.Value), 6)
		assert.LessOrEqual(t, len(issued.Value), 8)
	}
}

/*
TestTokenManager_NumericKindsUseDigits verifies OTP-style kinds generate
codes a user can retype from a phone keypad.
*/
func TestTokenManager_NumericKindsUseDigits(t *testing.T) {
	manager := identity.NewTokenManager(testConfig())

	issued, err := manager.Generate(identity.TokenOneTimePassword)
	require.NoError(t, err)

	for _, char := range issued.Value {
		assert.True(t, strings.ContainsRune("0123456789", char),
			"expected only digits, got %q", issued.Value)
	}
}

/*
TestTokenManager_ValidityWindow verifies a token is valid at issuance and
invalid one millisecond past its deadline.
*/
func TestTokenManager_ValidityWindow(t *testing.T) {
	manager := identity.NewTokenManager(testConfig())
	validity := manager.Validity(identity.TokenAccountRecovery)

	assert.True(t, manager.IsValid(identity.TokenAccountRecovery, time.Now()))
	assert.False(t, manager.IsValid(identity.TokenAccountRecovery,
		time.Now().Add(-validity-time.Millisecond)))
}

/*
TestTokenManager_RenewRejectsValidToken verifies renewal is only possible
once the current instance has expired.
*/
func TestTokenManager_RenewRejectsValidToken(t *testing.T) {
	manager := identity.NewTokenManager(testConfig())

	_, err := manager.Renew(identity.TokenEmailConfirmation, time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, identity.ErrTokenNotYetExpired))

	expiredAt := time.Now().Add(-25 * time.Hour)
	issued, err := manager.Renew(identity.TokenEmailConfirmation, expiredAt)
	require.NoError(t, err)
	assert.NotEmpty(t, issued.Value)
}

/*
TestTokenManager_ForwardingRules verifies only recovery and OTP tokens are
forwardable, and only while still valid.
*/
func TestTokenManager_ForwardingRules(t *testing.T) {
	manager := identity.NewTokenManager(testConfig())
	now := time.Now()

	assert.True(t, manager.CanForward(identity.TokenAccountRecovery, now))
	assert.True(t, manager.CanForward(identity.TokenOneTimePassword, now))

	assert.False(t, manager.CanForward(identity.TokenEmailConfirmation, now))
	assert.False(t, manager.CanForward(identity.TokenPhoneConfirmation, now))
	assert.False(t, manager.CanForward(identity.TokenSecretCode, now))
	assert.False(t, manager.CanForward(identity.TokenTwoFactorSetup, now))

	// Expired tokens cannot be forwarded, they must be renewed.
	stale := now.Add(-2 * time.Hour)
	assert.False(t, manager.CanForward(identity.TokenAccountRecovery, stale))
}

func TestParseTokenKind(t *testing.T) {
	kind, ok := identity.ParseTokenKind("account_recovery")
	assert.True(t, ok)
	assert.Equal(t, identity.TokenAccountRecovery, kind)

	_, ok = identity.ParseTokenKind("bogus")
	assert.False(t, ok)
}
