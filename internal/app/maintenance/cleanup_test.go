package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaskit-io/saaskit/internal/cache"
	"github.com/saaskit-io/saaskit/internal/database/testutil"
	"github.com/saaskit-io/saaskit/internal/models"
	"github.com/saaskit-io/saaskit/internal/services"
)

func TestCleanerRunOnce(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	tenant := &models.Tenant{Name: "Acme", Slug: "acme"}
	require.NoError(t, db.Create(tenant).Error)

	stale := &models.Invitation{
		TenantID:  tenant.ID,
		Email:     "stale@acme.test",
		Role:      models.RoleMember,
		Token:     "stale-token",
		Status:    models.InvitationPending,
		ExpiresAt: time.Now().Add(-time.Hour),
	}
	require.NoError(t, db.Create(stale).Error)

	invitations, err := services.NewInvitationService(db, nil)
	require.NoError(t, err)

	store := cache.NewDatabaseStore(db)
	require.NoError(t, store.Set(context.Background(), "old", []byte("1"), -time.Minute))

	cleaner, err := NewCleaner(invitations, store, "@hourly")
	require.NoError(t, err)

	require.NoError(t, cleaner.RunOnce(context.Background()))

	var stored models.Invitation
	require.NoError(t, db.First(&stored, "id = ?", stale.ID).Error)
	assert.Equal(t, models.InvitationExpired, stored.Status)

	var entries int64
	require.NoError(t, db.Model(&models.CacheEntry{}).Count(&entries).Error)
	assert.Zero(t, entries)
}

func TestCleanerStartRejectsBadSchedule(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	invitations, err := services.NewInvitationService(db, nil)
	require.NoError(t, err)

	cleaner, err := NewCleaner(invitations, nil, "not a schedule")
	require.NoError(t, err)

	assert.Error(t, cleaner.Start())
}

func TestCleanerRequiresInvitationService(t *testing.T) {
	_, err := NewCleaner(nil, nil, "@hourly")
	assert.Error(t, err)
}
