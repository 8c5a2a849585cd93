package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoleCan(t *testing.T) {
	assert.True(t, RoleBranchManager.Can(RoleBranchManager))
	// Staff roles do not stand in for each other.
	assert.False(t, RoleTeller.Can(RoleBranchManager))
	assert.False(t, RoleAccountExecutive.Can(RoleBranchManager))
	assert.False(t, RoleCustomer.Can(RoleBranchManager))
}

func TestRoleIsStaff(t *testing.T) {
	assert.False(t, RoleCustomer.IsStaff())
	assert.True(t, RoleTeller.IsStaff())
	assert.True(t, RoleAccountExecutive.IsStaff())
	assert.True(t, RoleBranchManager.IsStaff())
}

func TestIsLockedOut(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	window := 30 * time.Minute

	t.Run("active account is never locked", func(t *testing.T) {
		u := &User{AccountStatus: AccountStatusActive}
		assert.False(t, u.IsLockedOut(now, window))
	})

	t.Run("locked inside the window", func(t *testing.T) {
		last := now.Add(-29 * time.Minute)
		u := &User{AccountStatus: AccountStatusLocked, LastFailedLogin: &last}
		assert.True(t, u.IsLockedOut(now, window))
	})

	t.Run("locked exactly at the boundary", func(t *testing.T) {
		last := now.Add(-window)
		u := &User{AccountStatus: AccountStatusLocked, LastFailedLogin: &last}
		assert.True(t, u.IsLockedOut(now, window))
	})

	t.Run("unlocks once the window has elapsed", func(t *testing.T) {
		last := now.Add(-window - time.Second)
		u := &User{AccountStatus: AccountStatusLocked, LastFailedLogin: &last}
		assert.False(t, u.IsLockedOut(now, window))
	})

	t.Run("locked with no failure timestamp stays locked", func(t *testing.T) {
		u := &User{AccountStatus: AccountStatusLocked}
		assert.True(t, u.IsLockedOut(now, window))
	})
}

func TestLockoutRemaining(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	window := 30 * time.Minute

	last := now.Add(-10 * time.Minute)
	u := &User{AccountStatus: AccountStatusLocked, LastFailedLogin: &last}
	assert.Equal(t, 20*time.Minute, u.LockoutRemaining(now, window))

	expired := now.Add(-time.Hour)
	u.LastFailedLogin = &expired
	assert.Equal(t, time.Duration(0), u.LockoutRemaining(now, window))
}

func TestFullName(t *testing.T) {
	u := &User{FirstName: "Jane", LastName: "Doe"}
	assert.Equal(t, "Jane Doe", u.FullName())

	u = &User{FirstName: "Jane"}
	assert.Equal(t, "Jane", u.FullName())
}
