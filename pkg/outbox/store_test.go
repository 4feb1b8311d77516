package outbox

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&Event{}))
	return db
}

func appendEvents(t *testing.T, db *gorm.DB, n int) []uint64 {
	t.Helper()

	ids := make([]uint64, 0, n)
	for i := 0; i < n; i++ {
		e, err := NewEvent("order_events", "order", "agg-1", "order_placed", map[string]int{"n": i})
		require.NoError(t, err)
		require.NoError(t, Append(context.Background(), db, e))
		ids = append(ids, e.ID)
	}
	return ids
}

func TestGormStore_LockBatch_ClaimsOnlyOnce(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	store := &GormStore{DB: db}
	ctx := context.Background()
	appendEvents(t, db, 3)

	first, err := store.LockBatch(ctx, "relay-a", 2, time.Minute)
	require.NoError(t, err)
	require.Len(t, first, 2)
	assert.Equal(t, StatusInProgress, first[0].Status)

	second, err := store.LockBatch(ctx, "relay-b", 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ID, second[0].ID)
	assert.NotEqual(t, first[1].ID, second[0].ID)

	none, err := store.LockBatch(ctx, "relay-c", 10, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestGormStore_LockBatch_ReclaimsExpiredLease(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	now := time.Now().UTC()
	store := &GormStore{DB: db, Now: func() time.Time { return now }}
	ctx := context.Background()
	appendEvents(t, db, 1)

	got, err := store.LockBatch(ctx, "relay-a", 10, time.Second)
	require.NoError(t, err)
	require.Len(t, got, 1)

	now = now.Add(2 * time.Second)
	again, err := store.LockBatch(ctx, "relay-b", 10, time.Second)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, got[0].ID, again[0].ID)
}

func TestGormStore_MarkSentAndFailed(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	store := &GormStore{DB: db, MaxAttempts: 2}
	ctx := context.Background()
	ids := appendEvents(t, db, 2)

	_, err := store.LockBatch(ctx, "relay", 10, time.Minute)
	require.NoError(t, err)

	require.NoError(t, store.MarkSent(ctx, ids[:1]))
	require.NoError(t, store.MarkFailed(ctx, ids[1], "broker down"))

	var sent, retry Event
	require.NoError(t, db.First(&sent, ids[0]).Error)
	require.NoError(t, db.First(&retry, ids[1]).Error)
	assert.Equal(t, StatusSent, sent.Status)
	assert.NotNil(t, sent.SentAt)
	assert.Equal(t, StatusPending, retry.Status)
	assert.Equal(t, 1, retry.Attempts)
	assert.Equal(t, "broker down", retry.LastError)

	require.NoError(t, store.MarkFailed(ctx, ids[1], "broker down"))
	require.NoError(t, db.First(&retry, ids[1]).Error)
	assert.Equal(t, StatusFailed, retry.Status)
	assert.Equal(t, 2, retry.Attempts)

	left, err := store.LockBatch(ctx, "relay", 10, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestGormStore_Release(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	store := &GormStore{DB: db}
	ctx := context.Background()
	ids := appendEvents(t, db, 2)

	claimed, err := store.LockBatch(ctx, "relay", 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, claimed, 2)

	require.NoError(t, store.Release(ctx, ids[1:]))

	var held Event
	require.NoError(t, db.First(&held, ids[1]).Error)
	assert.Equal(t, StatusPending, held.Status)
	assert.Zero(t, held.Attempts)
	assert.Empty(t, held.ClaimToken)

	again, err := store.LockBatch(ctx, "relay", 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.Equal(t, ids[1], again[0].ID)
}
