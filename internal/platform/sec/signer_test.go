// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leminhduc/veriden/internal/platform/sec"
)

func TestDetachedSignature_RoundTrip(t *testing.T) {
	pair, err := sec.NewKeyPair()
	require.NoError(t, err)

	signature := sec.Sign(pair.PrivateKey, "message body")
	require.NotNil(t, signature)

	verdict := sec.VerifySignature(pair.PublicKey, "message body", *signature)
	require.NotNil(t, verdict)
	assert.True(t, *verdict)
}

func TestDetachedSignature_RejectsTamperedText(t *testing.T) {
	pair, err := sec.NewKeyPair()
	require.NoError(t, err)

	signature := sec.Sign(pair.PrivateKey, "message body")
	require.NotNil(t, signature)

	verdict := sec.VerifySignature(pair.PublicKey, "tampered body", *signature)
	require.NotNil(t, verdict)
	assert.False(t, *verdict)
}

func TestDetachedSignature_AbsentResultOnBadMaterial(t *testing.T) {
	// Absent results mean the material was unusable; they are distinct from
	// a definite false verdict and must be treated as failure by callers.
	assert.Nil(t, sec.Sign("not-a-key", "text"))
	assert.Nil(t, sec.VerifySignature("not-a-key", "text", "signature"))

	pair, err := sec.NewKeyPair()
	require.NoError(t, err)
	assert.Nil(t, sec.VerifySignature(pair.PublicKey, "text", "%%%not-base64%%%"))
}

func TestBinaryEncoding_RoundTrip(t *testing.T) {
	raw := []byte{0x00, 0x01, 0xFF, 0x7E}

	decoded, err := sec.DecodeBinary(sec.EncodeBinary(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, decoded)
}
