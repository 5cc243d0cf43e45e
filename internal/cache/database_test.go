package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saaskit-io/saaskit/internal/database/testutil"
)

func newTestStore(t *testing.T) (*DatabaseStore, *time.Time) {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	store := NewDatabaseStore(db)
	require.NotNil(t, store)

	current := time.Now()
	store.now = func() time.Time { return current }
	return store, &current
}

func TestDatabaseStoreIncrement(t *testing.T) {
	store, current := newTestStore(t)
	ctx := context.Background()

	count, ttl, err := store.IncrementWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.Greater(t, ttl, time.Duration(0))

	count, _, err = store.IncrementWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// A lapsed window resets the counter.
	*current = current.Add(2 * time.Minute)
	count, _, err = store.IncrementWithTTL(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestDatabaseStoreSetGetDelete(t *testing.T) {
	store, current := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	val, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []byte("v"), val)

	// Lapsed entries read as misses.
	*current = current.Add(2 * time.Minute)
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Delete(ctx, "k"))
	_, ok, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDatabaseStorePurgeExpired(t *testing.T) {
	store, current := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "old", []byte("1"), time.Minute))
	require.NoError(t, store.Set(ctx, "new", []byte("2"), time.Hour))

	purged, err := store.PurgeExpired(ctx, current.Add(30*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	_, ok, err := store.Get(ctx, "new")
	require.NoError(t, err)
	assert.True(t, ok)
}
