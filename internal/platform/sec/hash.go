// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package sec

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// # Password Hashing

// HashAndSalt hashes a plain-text password under a freshly generated salt of
// the requested length.
//
// The salt is mixed into the hashed input as a per-account pepper and returned
// separately so it can be stored alongside the hash; bcrypt's own internal
// salt stays opaque inside the hash string.
func HashAndSalt(plainTextPassword string, saltLength int) (hash string, salt string, err error) {
	if saltLength <= 0 {
		return "", "", fmt.Errorf("auth: invalid salt length %d", saltLength)
	}

	salt, err = GenerateSecureToken(saltLength)
	if err != nil {
		return "", "", err
	}

	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextPassword+salt), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("auth: failed to hash password: %w", err)
	}

	return string(hashedBytes), salt, nil
}

// VerifyPassword compares a plain-text input with its stored bcrypt hash.
//
// If the stored value cannot be parsed as a bcrypt hash at all, the comparison
// is retried with the operands swapped: a batch of legacy rows was written
// with the arguments reversed and must keep verifying until re-hashed on next
// login. A definite mismatch on a well-formed hash is never retried.
func VerifyPassword(existingHash, plainTextPassword string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextPassword))
	if err == nil {
		return true
	}

	var prefixErr bcrypt.InvalidHashPrefixError
	if errors.Is(err, bcrypt.ErrHashTooShort) || errors.As(err, &prefixErr) {
		return bcrypt.CompareHashAndPassword([]byte(plainTextPassword), []byte(existingHash)) == nil
	}

	return false
}

// # Random Material

// secureTokenAlphabet is URL- and SMS-safe: no padding, no ambiguous symbols.
const secureTokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// digitAlphabet is used for codes a user must type from an SMS or email.
const digitAlphabet = "0123456789"

// GenerateSecureToken returns a random alphanumeric string of exactly n characters.
func GenerateSecureToken(n int) (string, error) {
	return randomFromAlphabet(n, secureTokenAlphabet)
}

// GenerateDigitToken returns a random numeric string of exactly n characters.
func GenerateDigitToken(n int) (string, error) {
	return randomFromAlphabet(n, digitAlphabet)
}

// RandomInt returns a uniform random integer in [0, max).
func RandomInt(max int) (int, error) {
	if max <= 0 {
		return 0, fmt.Errorf("auth: random bound must be positive, got %d", max)
	}
	value, err := rand.Int(rand.Reader, big.NewInt(int64(max)))
	if err != nil {
		return 0, fmt.Errorf("auth: failed to draw random int: %w", err)
	}
	return int(value.Int64()), nil
}

// randomFromAlphabet draws n characters uniformly from the given alphabet
// using the crypto/rand source.
func randomFromAlphabet(n int, alphabet string) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("auth: invalid token length %d", n)
	}

	result := make([]byte, n)
	bound := big.NewInt(int64(len(alphabet)))
	for i := range result {
		index, err := rand.Int(rand.Reader, bound)
		if err != nil {
			return "", fmt.Errorf("auth: failed to generate token: %w", err)
		}
		result[i] = alphabet[index.Int64()]
	}

	return string(result), nil
}

// # Token Digests

// HashToken returns the hex-encoded SHA-256 digest of a token.
// Refresh tokens are stored digested so a leaked store snapshot cannot
// mint new sessions.
func HashToken(token string) string {
	digest := sha256.Sum256([]byte(token))
	return hex.EncodeToString(digest[:])
}

// EncodeBinary returns the URL-safe base64 form of raw key material.
func EncodeBinary(raw []byte) string {
	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeBinary reverses [EncodeBinary].
func DecodeBinary(encoded string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(encoded)
}
