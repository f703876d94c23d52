// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package sec_test

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leminhduc/veriden/internal/platform/sec"
)

// writeKeyPair generates a throwaway RSA key pair as PEM files and returns
// their paths.
func writeKeyPair(t *testing.T) (privatePath, publicPath string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	dir := t.TempDir()
	privatePath = filepath.Join(dir, "private.pem")
	publicPath = filepath.Join(dir, "public.pem")

	privatePEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	require.NoError(t, os.WriteFile(privatePath, privatePEM, 0o600))

	publicBytes, err := x509.MarshalPKIXPublicKey(&key.PublicKey)
	require.NoError(t, err)
	publicPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: publicBytes,
	})
	require.NoError(t, os.WriteFile(publicPath, publicPEM, 0o600))

	return privatePath, publicPath
}

func TestTokenService_RoundTrip(t *testing.T) {
	privatePath, publicPath := writeKeyPair(t)

	service, err := sec.NewTokenService(privatePath, publicPath, "veriden.app")
	require.NoError(t, err)

	token, err := service.GenerateBearerToken("acct-1",
		[]sec.Role{sec.RoleCustomer, sec.RoleSupplier}, time.Hour)
	require.NoError(t, err)

	claims, err := service.VerifyToken(token)
	require.NoError(t, err)

	assert.Equal(t, "acct-1", claims.AccountID)
	assert.Equal(t, "acct-1", claims.Subject)
	assert.Equal(t, "veriden.app", claims.Issuer)
	assert.Equal(t, []string{"customer", "supplier"}, claims.Roles)
}

func TestTokenService_RejectsExpiredToken(t *testing.T) {
	privatePath, publicPath := writeKeyPair(t)

	service, err := sec.NewTokenService(privatePath, publicPath, "veriden.app")
	require.NoError(t, err)

	token, err := service.GenerateBearerToken("acct-1", []sec.Role{sec.RoleCustomer}, -time.Minute)
	require.NoError(t, err)

	_, err = service.VerifyToken(token)
	assert.Error(t, err)
}

func TestTokenService_RejectsForeignSignature(t *testing.T) {
	privatePath, publicPath := writeKeyPair(t)
	otherPrivatePath, _ := writeKeyPair(t)

	signer, err := sec.NewTokenService(otherPrivatePath, publicPath, "veriden.app")
	require.NoError(t, err)
	verifier, err := sec.NewTokenService(privatePath, publicPath, "veriden.app")
	require.NoError(t, err)

	forged, err := signer.GenerateBearerToken("acct-1", []sec.Role{sec.RoleCustomer}, time.Hour)
	require.NoError(t, err)

	_, err = verifier.VerifyToken(forged)
	assert.Error(t, err)
}

func TestTokenService_RejectsMissingKeyFiles(t *testing.T) {
	_, err := sec.NewTokenService("/nonexistent/private.pem", "/nonexistent/public.pem", "veriden.app")
	assert.Error(t, err)
}
