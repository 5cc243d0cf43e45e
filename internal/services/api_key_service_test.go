package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/saaskit-io/saaskit/pkg/errors"
)

func TestAPIKeyCreateAndVerify(t *testing.T) {
	db := openTestDB(t)
	fixture := createTeam(t, db)
	svc, err := NewAPIKeyService(db)
	require.NoError(t, err)

	ctx := context.Background()

	created, err := svc.Create(ctx, fixture.tenant.ID, fixture.owner.ID, "ci token")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.Secret, "sk_"))
	assert.NotContains(t, created.Key.SecretHash, created.Secret)

	key, err := svc.Verify(ctx, created.Secret)
	require.NoError(t, err)
	assert.Equal(t, created.Key.ID, key.ID)
	assert.NotNil(t, key.LastUsedAt)

	_, err = svc.Verify(ctx, "sk_bogus_token")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAPIKeyListAndRevoke(t *testing.T) {
	db := openTestDB(t)
	fixture := createTeam(t, db)
	svc, err := NewAPIKeyService(db)
	require.NoError(t, err)

	ctx := context.Background()

	created, err := svc.Create(ctx, fixture.tenant.ID, fixture.owner.ID, "deploy")
	require.NoError(t, err)

	keys, err := svc.List(ctx, fixture.tenant.ID)
	require.NoError(t, err)
	assert.Len(t, keys, 1)

	require.NoError(t, svc.Revoke(ctx, fixture.tenant.ID, created.Key.ID))

	_, err = svc.Verify(ctx, created.Secret)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	// Revoking in the wrong tenant reads as not found.
	second, err := svc.Create(ctx, fixture.tenant.ID, fixture.owner.ID, "other")
	require.NoError(t, err)
	other := createTenant(t, db, "Rival", "rival")
	assert.ErrorIs(t, svc.Revoke(ctx, other.ID, second.Key.ID), apperrors.ErrNotFound)
}
