package summaries

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/models"
	"github.com/dmitrijs2005/healthsync/internal/client/repositories/repotest"
	"github.com/dmitrijs2005/healthsync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpsertAndGet(t *testing.T) {
	db := repotest.Open(t)
	repotest.SeedUser(t, db, "u1")
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	s := &models.DailySummary{ID: "s1", UserID: "u1", Date: "2024-06-01", CaloriesIn: 2100, CaloriesOut: 400,
		Steps: 9000, WaterMl: 1800, Protein: 90, Carbs: 250, Fat: 70, SleepMinutes: 420, Mood: "good",
		SyncState: models.SyncState{UpdatedAt: time.Date(2024, 6, 1, 22, 0, 0, 0, time.UTC)}}
	require.NoError(t, r.Upsert(ctx, s))

	got, err := r.GetByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, s, got)

	got, err = r.GetByDate(ctx, "u1", "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, s, got)

	_, err = r.GetByDate(ctx, "u1", "2024-06-02")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestUpsert_SameDateReplacesRowAndTakesNewID(t *testing.T) {
	db := repotest.Open(t)
	repotest.SeedUser(t, db, "u1")
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.DailySummary{ID: "old", UserID: "u1", Date: "2024-06-01", Steps: 100}))
	require.NoError(t, r.Upsert(ctx, &models.DailySummary{ID: "new", UserID: "u1", Date: "2024-06-01", Steps: 200}))

	list, err := r.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, 200, list[0].Steps)

	_, err = r.GetByID(ctx, "old")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestListUnsyncedAndMarkSynced(t *testing.T) {
	db := repotest.Open(t)
	repotest.SeedUser(t, db, "u1")
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	require.NoError(t, r.Upsert(ctx, &models.DailySummary{ID: "a", UserID: "u1", Date: "2024-06-02"}))
	require.NoError(t, r.Upsert(ctx, &models.DailySummary{ID: "b", UserID: "u1", Date: "2024-06-01"}))
	require.NoError(t, r.Upsert(ctx, &models.DailySummary{ID: "c", UserID: "u1", Date: "2024-06-03",
		SyncState: models.SyncState{IsSynced: true}}))

	list, err := r.ListUnsynced(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)

	require.NoError(t, r.MarkSynced(ctx, "a", time.Time{}))
	require.NoError(t, r.MarkSynced(ctx, "b", time.Time{}))
	list, err = r.ListUnsynced(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, r.Delete(ctx, "c"))
	all, err := r.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
