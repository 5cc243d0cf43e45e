package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaskit-io/saaskit/internal/models"
	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
)

func TestRegisterCreatesFullAccount(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	result, err := svc.Register(context.Background(), "Rita", "rita@example.test", "password123", "Rita Corp")
	require.NoError(t, err)

	assert.Equal(t, "rita@example.test", result.User.Email)
	assert.NotEqual(t, "password123", result.User.Password)
	assert.Equal(t, "Rita Corp", result.Tenant.Name)
	assert.NotEmpty(t, result.Tenant.Slug)
	assert.Equal(t, models.RoleOwner, result.Membership.Role)

	var sub models.Subscription
	require.NoError(t, db.First(&sub, "tenant_id = ?", result.Tenant.ID).Error)
	assert.Equal(t, models.PlanFree, sub.Plan)
}

func TestRegisterDefaultsOrganizationName(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	result, err := svc.Register(context.Background(), "Solo", "solo@example.test", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, "Solo's organization", result.Tenant.Name)
}

func TestRegisterValidation(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = svc.Register(ctx, "", "a@b.test", "password123", "")
	assert.Error(t, err)

	_, err = svc.Register(ctx, "Name", "not-an-email", "password123", "")
	assert.Error(t, err)

	_, err = svc.Register(ctx, "Name", "a@b.test", "short", "")
	assert.Error(t, err)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = svc.Register(ctx, "First", "same@example.test", "password123", "")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "Second", "same@example.test", "password123", "")
	assert.ErrorIs(t, err, ErrEmailTaken)

	// Email comparison is case-insensitive.
	_, err = svc.Register(ctx, "Third", "SAME@EXAMPLE.TEST", "password123", "")
	assert.ErrorIs(t, err, ErrEmailTaken)

	// The failed attempts left no stray tenants behind.
	var tenants int64
	require.NoError(t, db.Model(&models.Tenant{}).Count(&tenants).Error)
	assert.Equal(t, int64(1), tenants)
}

func TestAuthenticate(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = svc.Register(ctx, "Lena", "lena@example.test", "password123", "")
	require.NoError(t, err)

	t.Run("success records login", func(t *testing.T) {
		user, err := svc.Authenticate(ctx, "lena@example.test", "password123")
		require.NoError(t, err)
		assert.NotNil(t, user.LastLoginAt)
	})

	t.Run("case-insensitive email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "LENA@EXAMPLE.TEST", "password123")
		assert.NoError(t, err)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "lena@example.test", "wrong-password")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Authenticate(ctx, "ghost@example.test", "password123")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})

	t.Run("deactivated account", func(t *testing.T) {
		require.NoError(t, db.Model(&models.User{}).
			Where("email = ?", "lena@example.test").
			Update("is_active", false).Error)

		_, err := svc.Authenticate(ctx, "lena@example.test", "password123")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestFindByEmail(t *testing.T) {
	db := openTestDB(t)
	svc, err := NewUserService(db)
	require.NoError(t, err)

	ctx := context.Background()

	_, err = svc.Register(ctx, "Nadia", "nadia@example.test", "password123", "")
	require.NoError(t, err)

	user, err := svc.FindByEmail(ctx, "  NADIA@example.TEST ")
	require.NoError(t, err)
	assert.Equal(t, "nadia@example.test", user.Email)

	_, err = svc.FindByEmail(ctx, "missing@example.test")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
