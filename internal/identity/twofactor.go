// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package identity

import (
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/leminhduc/veriden/internal/platform/config"
	"github.com/leminhduc/veriden/pkg/qrcode"
)

// # Two-Factor Challenge

// totpPeriod is the standard TOTP step size in seconds.
const totpPeriod = 30

// SetupMaterial is everything a client needs to enroll an authenticator app.
type SetupMaterial struct {
	// SecretKey is the raw base32 shared secret.
	SecretKey string `json:"secret_key"`
	// ManualEntryKey is the secret grouped in blocks of four for typing by hand.
	ManualEntryKey string `json:"manual_entry_key"`
	// OtpauthURI is the enrollment URI encoded by the QR image.
	OtpauthURI string `json:"otpauth_uri"`
	// QRImage is the enrollment QR code as a base64 PNG data URI.
	QRImage string `json:"qr_image"`
}

// TwoFactorChallenge wraps the external TOTP primitive.
//
// It holds no per-account state; the shared secret lives on the account
// record and the per-session confirmation flag lives on the authorization
// record.
type TwoFactorChallenge struct {
	issuer      string
	qrImageSize int
}

// NewTwoFactorChallenge constructs the challenge helper from configuration.
func NewTwoFactorChallenge(cfg *config.Config) *TwoFactorChallenge {
	return &TwoFactorChallenge{
		issuer:      cfg.TwoFactorIssuer,
		qrImageSize: cfg.TwoFactorQRImageSize,
	}
}

/*
BeginSetup produces fresh enrollment material for one identity.

Description: Delegates secret generation to the TOTP primitive and renders
the otpauth URI as a scannable QR image. Pure pass-through, no state of its
own; the caller persists the secret on the account.

Parameters:
  - identityLabel: The account's email or phone number, shown in the
    authenticator app

Returns:
  - *SetupMaterial: Secret, manual-entry key, URI, and QR image
  - error: Primitive or rendering failures
*/
func (challenge *TwoFactorChallenge) BeginSetup(identityLabel string) (*SetupMaterial, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      challenge.issuer,
		AccountName: identityLabel,
		Period:      totpPeriod,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return nil, fmt.Errorf("two_factor_generate_failed: %w", err)
	}

	image, err := qrcode.GenerateBase64Image(key.URL(), challenge.qrImageSize)
	if err != nil {
		return nil, fmt.Errorf("two_factor_qr_render_failed: %w", err)
	}

	return &SetupMaterial{
		SecretKey:      key.Secret(),
		ManualEntryKey: groupKey(key.Secret()),
		OtpauthURI:     key.URL(),
		QRImage:        image,
	}, nil
}

/*
VerifyPin checks a submitted PIN against the shared secret.

Description: Delegates to the primitive's time-window comparison. The
tolerance widens the window symmetrically in whole TOTP periods, so a
tolerance below one period still accepts only the current step.

Parameters:
  - secretKey: The account's base32 shared secret
  - pin: The six-digit PIN the user submitted
  - toleranceSeconds: Allowed clock skew in seconds

Returns:
  - bool: Whether the PIN is acceptable; malformed secrets report false
*/
func (challenge *TwoFactorChallenge) VerifyPin(secretKey, pin string, toleranceSeconds int) bool {
	skew := uint(toleranceSeconds / totpPeriod)

	valid, err := totp.ValidateCustom(pin, secretKey, time.Now(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return valid
}

// groupKey reformats a base32 secret into blocks of four for manual entry.
func groupKey(secret string) string {
	var blocks []string
	for start := 0; start < len(secret); start += 4 {
		end := start + 4
		if end > len(secret) {
			end = len(secret)
		}
		blocks = append(blocks, secret[start:end])
	}
	return strings.ToLower(strings.Join(blocks, " "))
}
