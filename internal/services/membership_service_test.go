package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaskit-io/saaskit/internal/models"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
)

func TestMembershipFindForUser(t *testing.T) {
	db := openTestDB(t)
	fixture := createTeam(t, db)
	svc, err := NewMembershipService(db)
	require.NoError(t, err)

	ctx := context.Background()

	membership, err := svc.FindForUser(ctx, fixture.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RoleOwner, membership.Role)
	require.NotNil(t, membership.Tenant)
	assert.Equal(t, fixture.tenant.ID, membership.Tenant.ID)

	outsider := createUser(t, db, "No Body", "nobody@nowhere.test")
	_, err = svc.FindForUser(ctx, outsider.ID)
	assert.ErrorIs(t, err, ErrNotTenantMember)
}

func TestMembershipListMembers(t *testing.T) {
	db := openTestDB(t)
	fixture := createTeam(t, db)
	svc, err := NewMembershipService(db)
	require.NoError(t, err)

	members, err := svc.ListMembers(context.Background(), fixture.tenant.ID)
	require.NoError(t, err)
	require.Len(t, members, 3)
	for _, m := range members {
		require.NotNil(t, m.User)
		assert.NotEmpty(t, m.User.Email)
	}
}

func TestRemoveMemberPermissionMatrix(t *testing.T) {
	ctx := context.Background()

	t.Run("admin removes member", func(t *testing.T) {
		db := openTestDB(t)
		fixture := createTeam(t, db)
		svc, err := NewMembershipService(db)
		require.NoError(t, err)

		err = svc.RemoveMember(ctx, fixture.tenant.ID, fixture.admin.ID, fixture.memberMembership.ID)
		require.NoError(t, err)

		var count int64
		require.NoError(t, db.Model(&models.Membership{}).
			Where("id = ?", fixture.memberMembership.ID).Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("admin cannot remove admin", func(t *testing.T) {
		db := openTestDB(t)
		fixture := createTeam(t, db)
		secondAdmin := createUser(t, db, "Second Admin", "admin2@acme.test")
		target := addMember(t, db, fixture.tenant.ID, secondAdmin.ID, models.RoleAdmin)
		svc, err := NewMembershipService(db)
		require.NoError(t, err)

		err = svc.RemoveMember(ctx, fixture.tenant.ID, fixture.admin.ID, target.ID)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("admin cannot remove owner", func(t *testing.T) {
		db := openTestDB(t)
		fixture := createTeam(t, db)
		svc, err := NewMembershipService(db)
		require.NoError(t, err)

		err = svc.RemoveMember(ctx, fixture.tenant.ID, fixture.admin.ID, fixture.ownerMembership.ID)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})

	t.Run("owner removes admin", func(t *testing.T) {
		db := openTestDB(t)
		fixture := createTeam(t, db)
		svc, err := NewMembershipService(db)
		require.NoError(t, err)

		err = svc.RemoveMember(ctx, fixture.tenant.ID, fixture.owner.ID, fixture.adminMembership.ID)
		assert.NoError(t, err)
	})

	t.Run("member cannot remove anyone", func(t *testing.T) {
		db := openTestDB(t)
		fixture := createTeam(t, db)
		svc, err := NewMembershipService(db)
		require.NoError(t, err)

		err = svc.RemoveMember(ctx, fixture.tenant.ID, fixture.member.ID, fixture.adminMembership.ID)
		assert.ErrorIs(t, err, apperrors.ErrForbidden)
	})
}

func TestRemoveMemberLastOwnerProtected(t *testing.T) {
	db := openTestDB(t)
	fixture := createTeam(t, db)
	svc, err := NewMembershipService(db)
	require.NoError(t, err)

	ctx := context.Background()

	// The sole owner cannot be removed, not even by themselves.
	err = svc.RemoveMember(ctx, fixture.tenant.ID, fixture.owner.ID, fixture.ownerMembership.ID)
	assert.ErrorIs(t, err, ErrLastOwner)

	// With a second owner in place the removal goes through.
	second := createUser(t, db, "Second Owner", "owner2@acme.test")
	addMember(t, db, fixture.tenant.ID, second.ID, models.RoleOwner)

	err = svc.RemoveMember(ctx, fixture.tenant.ID, fixture.owner.ID, fixture.ownerMembership.ID)
	require.NoError(t, err)

	// And now the remaining owner is protected again.
	var remaining models.Membership
	require.NoError(t, db.First(&remaining, "tenant_id = ? AND user_id = ?", fixture.tenant.ID, second.ID).Error)

	err = svc.RemoveMember(ctx, fixture.tenant.ID, second.ID, remaining.ID)
	assert.ErrorIs(t, err, ErrLastOwner)
}

func TestRemoveMemberScoping(t *testing.T) {
	db := openTestDB(t)
	fixture := createTeam(t, db)
	svc, err := NewMembershipService(db)
	require.NoError(t, err)

	ctx := context.Background()

	t.Run("unknown membership", func(t *testing.T) {
		err := svc.RemoveMember(ctx, fixture.tenant.ID, fixture.owner.ID, "9f0a0e9c-0000-0000-0000-000000000000")
		assert.ErrorIs(t, err, ErrMemberNotFound)
	})

	t.Run("membership in another tenant", func(t *testing.T) {
		otherTenant := createTenant(t, db, "Rival", "rival")
		otherUser := createUser(t, db, "Riva L", "owner@rival.test")
		otherMembership := addMember(t, db, otherTenant.ID, otherUser.ID, models.RoleOwner)

		err := svc.RemoveMember(ctx, fixture.tenant.ID, fixture.owner.ID, otherMembership.ID)
		assert.ErrorIs(t, err, ErrMemberNotFound)
	})

	t.Run("caller outside tenant", func(t *testing.T) {
		outsider := createUser(t, db, "Out Sider", "out@nowhere.test")
		err := svc.RemoveMember(ctx, fixture.tenant.ID, outsider.ID, fixture.memberMembership.ID)
		assert.ErrorIs(t, err, ErrNotTenantMember)
	})
}
