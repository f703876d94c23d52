// Copyright (c) 2026 Veriden. All rights reserved.
// Author: duc.leminh.vn@gmail.com

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leminhduc/veriden/internal/platform/sec"
)

func TestParseRole(t *testing.T) {
	role, ok := sec.ParseRole("customer")
	assert.True(t, ok)
	assert.Equal(t, sec.RoleCustomer, role)

	_, ok = sec.ParseRole("superuser")
	assert.False(t, ok)
}

func TestRole_Label(t *testing.T) {
	assert.Equal(t, "Administrator", sec.RoleAdministrator.Label())

	// Unknown roles fall back to their raw value.
	assert.Equal(t, "mystery", sec.Role("mystery").Label())
}

func TestAnyIntersect(t *testing.T) {
	held := []sec.Role{sec.RoleCustomer, sec.RoleSupplier}

	assert.True(t, sec.AnyIntersect(held, []sec.Role{sec.RoleSupplier}))
	assert.False(t, sec.AnyIntersect(held, []sec.Role{sec.RoleAdministrator}))
	assert.False(t, sec.AnyIntersect(held, nil))
	assert.False(t, sec.AnyIntersect(nil, held))
}

func TestRoleConversions(t *testing.T) {
	roles := []sec.Role{sec.RoleAdministrator, sec.RoleModerator}

	values := sec.RolesToStrings(roles)
	assert.Equal(t, []string{"administrator", "moderator"}, values)

	assert.Equal(t, roles, sec.RolesFromStrings(values))
}

func TestRolesFromStrings_DropsUnknownValues(t *testing.T) {
	roles := sec.RolesFromStrings([]string{"customer", "retired-role", "supplier"})
	assert.Equal(t, []sec.Role{sec.RoleCustomer, sec.RoleSupplier}, roles)
}
