// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package identity_test

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leminhduc/veriden/internal/identity"
	"github.com/leminhduc/veriden/internal/platform/config"
)

func newChallenge() *identity.TwoFactorChallenge {
	return identity.NewTwoFactorChallenge(&config.Config{
		TwoFactorIssuer:      "Veriden",
		TwoFactorQRImageSize: 256,
	})
}

/*
TestTwoFactorChallenge_BeginSetup verifies the enrollment material carries a
usable secret, a scannable payload, and a manually typable key.
*/
func TestTwoFactorChallenge_BeginSetup(t *testing.T) {
	challenge := newChallenge()

	material, err := challenge.BeginSetup("a@veriden.app")
	require.NoError(t, err)

	assert.NotEmpty(t, material.SecretKey)
	assert.Contains(t, material.OtpauthURI, "otpauth://totp/")
	assert.Contains(t, material.OtpauthURI, "Veriden")
	assert.True(t, strings.HasPrefix(material.QRImage, "data:image/png;base64,"))

	// Manual key is the same secret, grouped and lowercased.
	joined := strings.ToUpper(strings.ReplaceAll(material.ManualEntryKey, " ", ""))
	assert.Equal(t, material.SecretKey, joined)
}

/*
TestTwoFactorChallenge_VerifyPin verifies a PIN minted from the shared
secret passes and arbitrary PINs fail.
*/
func TestTwoFactorChallenge_VerifyPin(t *testing.T) {
	challenge := newChallenge()

	material, err := challenge.BeginSetup("a@veriden.app")
	require.NoError(t, err)

	pin, err := totp.GenerateCode(material.SecretKey, time.Now())
	require.NoError(t, err)

	assert.True(t, challenge.VerifyPin(material.SecretKey, pin, 30))
	assert.False(t, challenge.VerifyPin(material.SecretKey, "000000", 30))
}

/*
TestTwoFactorChallenge_VerifyPinTolerance verifies the skew window accepts a
PIN from the previous period when a tolerance is granted.
*/
func TestTwoFactorChallenge_VerifyPinTolerance(t *testing.T) {
	challenge := newChallenge()

	material, err := challenge.BeginSetup("a@veriden.app")
	require.NoError(t, err)

	previous, err := totp.GenerateCode(material.SecretKey, time.Now().Add(-30*time.Second))
	require.NoError(t, err)

	assert.True(t, challenge.VerifyPin(material.SecretKey, previous, 30))
}

/*
TestTwoFactorChallenge_VerifyPinMalformedSecret verifies an unparsable
stored secret reports false rather than panicking or passing.
*/
func TestTwoFactorChallenge_VerifyPinMalformedSecret(t *testing.T) {
	challenge := newChallenge()

	assert.False(t, challenge.VerifyPin("not-base32-!!!", "123456", 30))
}
