package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoleCapabilities(t *testing.T) {
	t.Run("admin holds everything", func(t *testing.T) {
		for _, c := range []Capability{CapCreate, CapRead, CapUpdate, CapDelete, CapIssue, CapReturn, CapFlag, CapManageUsers} {
			assert.True(t, RoleAdmin.Can(c), "admin should hold %s", c)
		}
	})

	t.Run("manager runs day-to-day operations but cannot delete or flag", func(t *testing.T) {
		assert.True(t, RoleManager.Can(CapCreate))
		assert.True(t, RoleManager.Can(CapUpdate))
		assert.True(t, RoleManager.Can(CapIssue))
		assert.True(t, RoleManager.Can(CapReturn))
		assert.False(t, RoleManager.Can(CapDelete))
		assert.False(t, RoleManager.Can(CapFlag))
		assert.False(t, RoleManager.Can(CapManageUsers))
	})

	t.Run("employee is read-only", func(t *testing.T) {
		assert.True(t, RoleEmployee.Can(CapRead))
		assert.False(t, RoleEmployee.Can(CapCreate))
		assert.False(t, RoleEmployee.Can(CapIssue))
	})

	t.Run("unknown roles hold nothing", func(t *testing.T) {
		assert.False(t, Role("intern").Can(CapRead))
	})
}

func TestRoleIsValid(t *testing.T) {
	assert.True(t, RoleAdmin.IsValid())
	assert.True(t, RoleManager.IsValid())
	assert.True(t, RoleEmployee.IsValid())
	assert.False(t, Role("root").IsValid())
}
