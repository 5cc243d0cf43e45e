package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"OWNER", "ADMIN", "MEMBER", "VIEWER"} {
		role, err := ParseRole(valid)
		require.NoError(t, err)
		assert.Equal(t, Role(valid), role)
	}

	_, err := ParseRole("owner")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleOwner.AtLeast(RoleAdmin))
	assert.True(t, RoleAdmin.AtLeast(RoleAdmin))
	assert.False(t, RoleMember.AtLeast(RoleAdmin))
	assert.False(t, RoleViewer.AtLeast(RoleMember))

	assert.Greater(t, RoleOwner.Rank(), RoleAdmin.Rank())
	assert.Greater(t, RoleAdmin.Rank(), RoleMember.Rank())
	assert.Greater(t, RoleMember.Rank(), RoleViewer.Rank())
	assert.Zero(t, Role("BOGUS").Rank())
}

func TestParsePlanAndTaskStatus(t *testing.T) {
	_, err := ParsePlan("PRO")
	assert.NoError(t, err)
	_, err = ParsePlan("GOLD")
	assert.Error(t, err)

	_, err = ParseTaskStatus("IN_PROGRESS")
	assert.NoError(t, err)
	_, err = ParseTaskStatus("BLOCKED")
	assert.Error(t, err)
}
