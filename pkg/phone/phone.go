// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

// Package phone parses and canonicalizes phone numbers of the form
// "+<region>-<subscriber>".
//
// # Usage
//
// Phone numbers arrive from mobile clients in many visual shapes
// ("+84 (91) 234-5678", full-width digits from IME keyboards). This package
// reduces them to a single canonical form before storage or comparison, so
// SMS dispatch and profile lookups always agree on the key.
package phone

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Separator divides the region code from the subscriber number.
// It is required input; a bare digit string is ambiguous and rejected.
const Separator = "-"

var (
	// ErrMissingSeparator is returned when the region/subscriber separator is absent.
	ErrMissingSeparator = errors.New("phone: missing region separator")

	// ErrMalformed is returned when either side of the separator is empty or non-numeric.
	ErrMalformed = errors.New("phone: malformed number")
)

// Number is a parsed phone number.
type Number struct {
	// RegionCode is the international dialing prefix without the leading plus.
	RegionCode string

	// Subscriber is the national subscriber number.
	Subscriber string
}

// String renders the canonical form "+<region>-<subscriber>".
func (n Number) String() string {
	return "+" + n.RegionCode + Separator + n.Subscriber
}

// Simplify reduces a raw phone string to its canonical spelling: full-width
// digits are folded to ASCII (NFKC), visual formatting (spaces, dots,
// parentheses) is dropped, and at most one leading plus and one separator
// survive.
func Simplify(raw string) string {
	// Fold compatibility characters (full-width digits, exotic hyphens).
	folded, _, _ := transform.String(norm.NFKC, raw)

	var builder strings.Builder
	separatorSeen := false
	for i, r := range folded {
		switch {
		case unicode.IsDigit(r):
			builder.WriteRune(r)
		case r == '+' && i == 0:
			builder.WriteRune(r)
		case (r == '-' || r == '–') && !separatorSeen:
			separatorSeen = true
			builder.WriteString(Separator)
		}
		// Everything else is visual formatting and dropped.
	}

	return builder.String()
}

// Parse splits a phone string into its region code and subscriber number.
// The input is simplified first, so any display form accepted by [Simplify]
// parses to the same [Number].
func Parse(raw string) (Number, error) {
	simplified := Simplify(raw)
	simplified = strings.TrimPrefix(simplified, "+")

	region, subscriber, found := strings.Cut(simplified, Separator)
	if !found {
		return Number{}, ErrMissingSeparator
	}
	if region == "" || subscriber == "" {
		return Number{}, ErrMalformed
	}
	if !isDigits(region) || !isDigits(subscriber) {
		return Number{}, ErrMalformed
	}

	return Number{RegionCode: region, Subscriber: subscriber}, nil
}

// isDigits reports whether s consists solely of ASCII digits.
func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
