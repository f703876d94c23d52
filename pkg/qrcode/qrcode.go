// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

/*
Package qrcode renders QR code images for authenticator enrollment.

It wraps the skip2/go-qrcode encoder behind a minimal surface so callers never
deal with encoder options directly.

Key Functions:
  - Generate: Raw PNG bytes for a payload.
  - GenerateBase64Image: A data-URI string ready for direct embedding in an <img> tag.
*/
package qrcode

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	skipqrcode "github.com/skip2/go-qrcode"
)

// ErrEmptyContent is returned when the payload is empty or whitespace only.
var ErrEmptyContent = errors.New("qrcode: content cannot be empty")

// defaultSize is the pixel size used when the caller passes a non-positive size.
const defaultSize = 256

// Generate creates a QR code image in PNG format with the given content.
func Generate(content string, size int) ([]byte, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = defaultSize
	}

	png, err := skipqrcode.Encode(content, skipqrcode.Medium, size)
	if err != nil {
		return nil, fmt.Errorf("qrcode: encoding failed: %w", err)
	}

	return png, nil
}

// GenerateBase64Image creates a data-URI PNG representation of the QR code,
// suitable for embedding directly into JSON responses consumed by the
// mobile/web client.
func GenerateBase64Image(content string, size int) (string, error) {
	png, err := Generate(content, size)
	if err != nil {
		return "", err
	}

	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
