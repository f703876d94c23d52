// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package sec

import (
	"github.com/leminhduc/veriden/pkg/slice"
)

// # Account Roles

// Role represents an authorization grant attached to an account.
// An account may hold several roles at once; endpoint access is decided by
// set intersection, not by a linear hierarchy.
type Role string

const (
	// Unrestricted system access
	RoleAdministrator Role = "administrator"

	// Can manage community content and review flagged accounts
	RoleModerator Role = "moderator"

	// Business accounts that list and fulfil offers
	RoleSupplier Role = "supplier"

	// Default role for standard registered users
	RoleCustomer Role = "customer"
)

// roleMetadata maps each role to its human-readable label. The table is
// built at compile time; there is no reflective enum discovery.
var roleMetadata = map[Role]string{
	RoleAdministrator: "Administrator",
	RoleModerator:     "Moderator",
	RoleSupplier:      "Supplier",
	RoleCustomer:      "Customer",
}

// ParseRole maps a stored string onto a known [Role].
// The boolean is false for unrecognized values.
func ParseRole(value string) (Role, bool) {
	role := Role(value)
	_, known := roleMetadata[role]
	return role, known
}

// Label returns the display name for the role, or the raw value when unknown.
func (r Role) Label() string {
	if label, ok := roleMetadata[r]; ok {
		return label
	}
	return string(r)
}

// # Role Set Operations

// AnyIntersect reports whether the two role sets share at least one member.
func AnyIntersect(held, required []Role) bool {
	if len(held) == 0 || len(required) == 0 {
		return false
	}

	index := make(map[Role]struct{}, len(held))
	for _, role := range held {
		index[role] = struct{}{}
	}

	for _, role := range required {
		if _, ok := index[role]; ok {
			return true
		}
	}

	return false
}

// RolesToStrings converts a role set to its storage representation.
func RolesToStrings(roles []Role) []string {
	return slice.Map(roles, func(role Role) string { return string(role) })
}

// RolesFromStrings converts stored values back to a role set, dropping
// values no release of the platform has ever issued.
func RolesFromStrings(values []string) []Role {
	known := slice.Filter(values, func(value string) bool {
		_, ok := ParseRole(value)
		return ok
	})
	return slice.Map(known, func(value string) Role { return Role(value) })
}
