package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/models"
	"github.com/dmitrijs2005/healthsync/internal/client/remote"
	"github.com/dmitrijs2005/healthsync/internal/client/store"
	"github.com/dmitrijs2005/healthsync/internal/client/syncer"
	"github.com/dmitrijs2005/healthsync/internal/common"
	"github.com/dmitrijs2005/healthsync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var clock = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func fixedNow() time.Time { return clock }

func openStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func newTracker(t *testing.T) (TrackerService, *store.Store) {
	t.Helper()
	st := openStore(t)
	sy := syncer.New(st, remote.NewMemoryStore(), logging.Discard())
	return NewTrackerService(st, sy, fixedNow), st
}

func TestTracker_RequiresSignedInUser(t *testing.T) {
	tr, _ := newTracker(t)
	ctx := context.Background()

	require.ErrorIs(t, tr.SaveProfile(ctx, "", &models.User{}), common.ErrNotSignedIn)
	_, err := tr.AddMeal(ctx, "", &models.Meal{}, nil)
	require.ErrorIs(t, err, common.ErrNotSignedIn)
	_, err = tr.PendingCount(ctx, "")
	require.ErrorIs(t, err, common.ErrNotSignedIn)
}

func TestTracker_WritesRequireLocalProfile(t *testing.T) {
	tr, st := newTracker(t)
	ctx := context.Background()

	_, err := tr.AddMeal(ctx, "u1", &models.Meal{}, []models.Food{{Name: "Tea"}})
	require.ErrorIs(t, err, common.ErrNoProfile)
	_, err = tr.SetGoal(ctx, "u1", &models.Goal{IsActive: true})
	require.ErrorIs(t, err, common.ErrNoProfile)
	_, err = tr.SaveSummary(ctx, "u1", &models.DailySummary{Steps: 10})
	require.ErrorIs(t, err, common.ErrNoProfile)

	_, err = st.Repos().Users.GetByID(ctx, "u1")
	require.ErrorIs(t, err, common.ErrNotFound, "no placeholder profile is created")
	n, err := tr.PendingCount(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestTracker_SaveProfileMarksDirty(t *testing.T) {
	tr, st := newTracker(t)
	ctx := context.Background()

	require.NoError(t, tr.SaveProfile(ctx, "u1", &models.User{Name: "Ada", SyncState: models.SyncState{IsSynced: true}}))

	u, err := st.Repos().Users.GetUnsynced(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, clock, u.UpdatedAt)
}

func TestTracker_SetGoalKeepsOneActive(t *testing.T) {
	tr, st := newTracker(t)
	ctx := context.Background()
	require.NoError(t, tr.SaveProfile(ctx, "u1", &models.User{}))

	first, err := tr.SetGoal(ctx, "u1", &models.Goal{Type: models.GoalWeightLoss, IsActive: true})
	require.NoError(t, err)
	second, err := tr.SetGoal(ctx, "u1", &models.Goal{Type: models.GoalMuscleGain, IsActive: true})
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	active, err := st.Repos().Goals.GetActive(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, second, active.ID)

	g, err := st.Repos().Goals.GetByID(ctx, first)
	require.NoError(t, err)
	assert.False(t, g.IsActive)
	assert.False(t, g.IsSynced)
}

func TestTracker_AddMealComputesTotals(t *testing.T) {
	tr, st := newTracker(t)
	ctx := context.Background()
	require.NoError(t, tr.SaveProfile(ctx, "u1", &models.User{}))

	id, err := tr.AddMeal(ctx, "u1", &models.Meal{Type: models.MealLunch}, []models.Food{
		{Name: "Rice", Calories: 200, Protein: 4, Carbs: 45, Fat: 0.5},
		{Name: "Chicken", Calories: 250, Protein: 30, Carbs: 0, Fat: 12},
	})
	require.NoError(t, err)

	m, err := st.Repos().Meals.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 450.0, m.TotalCalories)
	assert.Equal(t, 34.0, m.TotalProtein)
	assert.Equal(t, 12.5, m.TotalFat)
	assert.Equal(t, clock, m.Date, "empty date defaults to now")

	foods, err := st.Repos().Foods.ListByMeal(ctx, id)
	require.NoError(t, err)
	require.Len(t, foods, 2)
	for _, f := range foods {
		assert.Equal(t, "u1", f.UserID)
		assert.False(t, f.IsSynced)
	}

	n, err := tr.PendingCount(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestTracker_AddFoodRecalculatesMeal(t *testing.T) {
	tr, st := newTracker(t)
	ctx := context.Background()
	require.NoError(t, tr.SaveProfile(ctx, "u1", &models.User{}))
	id, err := tr.AddMeal(ctx, "u1", &models.Meal{}, []models.Food{{Name: "Tea", Calories: 2}})
	require.NoError(t, err)

	_, err = tr.AddFood(ctx, "u1", id, models.Food{Name: "Cookie", Calories: 120, Carbs: 18})
	require.NoError(t, err)

	m, err := st.Repos().Meals.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 122.0, m.TotalCalories)
	assert.Equal(t, 18.0, m.TotalCarbs)

	_, err = tr.AddFood(ctx, "u2", id, models.Food{Name: "Stolen"})
	require.ErrorIs(t, err, common.ErrNotFound)
	_, err = tr.AddFood(ctx, "u1", "missing", models.Food{Name: "Lost"})
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestTracker_DeleteMealIsSoft(t *testing.T) {
	tr, st := newTracker(t)
	ctx := context.Background()
	require.NoError(t, tr.SaveProfile(ctx, "u1", &models.User{}))
	id, err := tr.AddMeal(ctx, "u1", &models.Meal{}, nil)
	require.NoError(t, err)

	require.NoError(t, tr.DeleteMeal(ctx, "u1", id))

	meals, err := tr.ListMeals(ctx, "u1", time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Empty(t, meals)

	m, err := st.Repos().Meals.GetByID(ctx, id)
	require.NoError(t, err)
	assert.True(t, m.IsDeleted)
	assert.False(t, m.IsSynced)

	require.ErrorIs(t, tr.DeleteMeal(ctx, "u1", id), common.ErrNotFound)
}

func TestTracker_SaveSummaryUpsertsByDate(t *testing.T) {
	tr, st := newTracker(t)
	ctx := context.Background()
	require.NoError(t, tr.SaveProfile(ctx, "u1", &models.User{}))

	first, err := tr.SaveSummary(ctx, "u1", &models.DailySummary{Steps: 1000})
	require.NoError(t, err)
	second, err := tr.SaveSummary(ctx, "u1", &models.DailySummary{Date: "2024-06-01", Steps: 5000})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	sm, err := st.Repos().Summaries.GetByDate(ctx, "u1", "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, 5000, sm.Steps)

	_, err = tr.SaveSummary(ctx, "u1", &models.DailySummary{Date: "June 1st"})
	require.Error(t, err)
}

func TestTracker_WatchMeals(t *testing.T) {
	tr, _ := newTracker(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, tr.SaveProfile(ctx, "u1", &models.User{}))

	ch := tr.WatchMeals(ctx, "u1", time.Time{}, time.Time{})
	snap := <-ch
	require.NoError(t, snap.Err)
	assert.Empty(t, snap.Value)

	_, err := tr.AddMeal(ctx, "u1", &models.Meal{Type: models.MealDinner}, nil)
	require.NoError(t, err)

	select {
	case snap = <-ch:
		require.NoError(t, snap.Err)
		require.Len(t, snap.Value, 1)
		assert.Equal(t, models.MealDinner, snap.Value[0].Type)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after insert")
	}
}
