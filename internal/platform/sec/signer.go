// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package sec

import (
	"crypto/ed25519"
	"crypto/rand"
)

// # Detached Signatures

// KeyPair holds an Ed25519 key pair in its encoded transport form.
type KeyPair struct {
	PublicKey  string
	PrivateKey string
}

// NewKeyPair generates a fresh Ed25519 key pair.
func NewKeyPair() (*KeyPair, error) {
	publicKey, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}

	return &KeyPair{
		PublicKey:  EncodeBinary(publicKey),
		PrivateKey: EncodeBinary(privateKey),
	}, nil
}

// Sign produces a detached signature over text with the encoded private key.
// A nil result means the key material could not be used; callers must treat
// it as a failed signature, never as an empty one.
func Sign(privateKey, text string) *string {
	keyBytes, err := DecodeBinary(privateKey)
	if err != nil || len(keyBytes) != ed25519.PrivateKeySize {
		return nil
	}

	signature := EncodeBinary(ed25519.Sign(ed25519.PrivateKey(keyBytes), []byte(text)))
	return &signature
}

// VerifySignature checks a detached signature against text and the encoded
// public key. A nil result means the inputs could not be decoded; callers
// must treat it as verification failure, never as unknown.
func VerifySignature(publicKey, text, signature string) *bool {
	keyBytes, err := DecodeBinary(publicKey)
	if err != nil || len(keyBytes) != ed25519.PublicKeySize {
		return nil
	}

	signatureBytes, err := DecodeBinary(signature)
	if err != nil {
		return nil
	}

	verdict := ed25519.Verify(ed25519.PublicKey(keyBytes), []byte(text), signatureBytes)
	return &verdict
}
