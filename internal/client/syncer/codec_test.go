package syncer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/models"
	"github.com/dmitrijs2005/healthsync/internal/client/remote"
	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	fixtureTime = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	fixtureDay  = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
)

func fixtureUser() *models.User {
	return &models.User{
		ID: "u1", Name: "Ada", Age: 36, HeightCm: 170.5, WeightKg: 62.25,
		Gender: models.GenderFemale, ActivityLevel: models.ActivityActive,
		SyncState: models.SyncState{UpdatedAt: fixtureTime},
	}
}

func fixtureGoal() *models.Goal {
	return &models.Goal{
		ID: "g1", UserID: "u1", Type: models.GoalWeightLoss,
		CalorieTarget: 1800, StepTarget: 10000, WaterTargetMl: 2000, SleepTargetMin: 480,
		StartDate: "2024-06-01", EndDate: "2024-09-01", ReminderTime: "08:00", IsActive: true,
		SyncState: models.SyncState{UpdatedAt: fixtureTime},
	}
}

func fixtureMeal() *models.Meal {
	return &models.Meal{
		ID: "m1", UserID: "u1", Type: models.MealBreakfast, Date: fixtureDay,
		TotalCalories: 350.5, TotalProtein: 20.25, TotalCarbs: 40.5, TotalFat: 12.75,
		SyncState: models.SyncState{UpdatedAt: fixtureTime},
	}
}

func fixtureFood() *models.Food {
	return &models.Food{
		ID: "f1", MealID: "m1", UserID: "u1", Name: "Oatmeal", Quantity: 1.5, Unit: models.UnitCup,
		Calories: 150.5, Protein: 5.25, Carbs: 27.5, Fat: 2.75,
		SyncState: models.SyncState{UpdatedAt: fixtureTime},
	}
}

func fixtureSummary() *models.DailySummary {
	return &models.DailySummary{
		ID: "s1", UserID: "u1", Date: "2024-06-01",
		CaloriesIn: 1850.5, CaloriesOut: 2100.25, Steps: 9500, WaterMl: 1800,
		Protein: 95.5, Carbs: 210.25, Fat: 60.75, SleepMinutes: 450, Mood: "good",
		SyncState: models.SyncState{UpdatedAt: fixtureTime},
	}
}

func TestEncode_Golden(t *testing.T) {
	docs := map[string]map[string]any{
		"user":    EncodeUser(fixtureUser()),
		"goal":    EncodeGoal(fixtureGoal()),
		"meal":    EncodeMeal(fixtureMeal()),
		"food":    EncodeFood(fixtureFood()),
		"summary": EncodeSummary(fixtureSummary()),
	}
	out, err := json.MarshalIndent(docs, "", "  ")
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "documents", out)
}

// normalized mimics what every backend hands back: numbers as float64.
func normalized(t *testing.T, path string, fields map[string]any) remote.Document {
	t.Helper()
	raw, err := json.Marshal(fields)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return remote.Document{Path: path, Fields: out}
}

func TestDecode_RoundTrip(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	synced := func(s models.SyncState) models.SyncState {
		s.IsSynced = true
		return s
	}

	u := fixtureUser()
	gotU := DecodeUser(normalized(t, remote.UserPath("u1"), EncodeUser(u)), now)
	u.SyncState = synced(u.SyncState)
	assert.Empty(t, cmp.Diff(u, gotU))

	g := fixtureGoal()
	gotG := DecodeGoal(normalized(t, remote.GoalPath("u1", "g1"), EncodeGoal(g)), now)
	g.SyncState = synced(g.SyncState)
	assert.Empty(t, cmp.Diff(g, gotG))

	m := fixtureMeal()
	gotM := DecodeMeal(normalized(t, remote.MealPath("u1", "m1"), EncodeMeal(m)), now)
	m.SyncState = synced(m.SyncState)
	assert.Empty(t, cmp.Diff(m, gotM))

	f := fixtureFood()
	gotF := DecodeFood(normalized(t, remote.FoodPath("u1", "m1", "f1"), EncodeFood(f)), now)
	f.SyncState = synced(f.SyncState)
	assert.Empty(t, cmp.Diff(f, gotF))

	s := fixtureSummary()
	gotS := DecodeSummary(normalized(t, remote.SummaryPath("u1", "s1"), EncodeSummary(s)), now)
	s.SyncState = synced(s.SyncState)
	assert.Empty(t, cmp.Diff(s, gotS))
}

func TestDecode_Fallbacks(t *testing.T) {
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)

	u := DecodeUser(remote.Document{Path: "users/u9", Fields: map[string]any{
		"gender":        "robot",
		"activityLevel": 7,
		"age":           "old",
	}}, now)
	assert.Equal(t, "u9", u.ID)
	assert.Equal(t, models.GenderOther, u.Gender)
	assert.Equal(t, models.ActivityModerate, u.ActivityLevel)
	assert.Zero(t, u.Age)
	assert.Equal(t, now, u.UpdatedAt, "missing updatedAt falls back to now")
	assert.True(t, u.IsSynced)

	f := DecodeFood(remote.Document{Path: remote.FoodPath("u9", "m9", "f9"), Fields: map[string]any{
		"parentMealId": "other",
		"unit":         "bucket",
	}}, now)
	assert.Equal(t, "m9", f.MealID, "path wins over the parentMealId field")
	assert.Equal(t, "u9", f.UserID)
	assert.Equal(t, models.UnitGram, f.Unit)

	m := DecodeMeal(remote.Document{Path: remote.MealPath("u9", "m9"), Fields: map[string]any{
		"mealType": "brunch",
		"date":     json.Number("1717200000000"),
	}}, now)
	assert.Equal(t, models.MealSnack, m.Type)
	assert.Equal(t, fixtureDay, m.Date)
}

func TestVersionOf(t *testing.T) {
	v := versionOf(remote.Document{Path: remote.GoalPath("u1", "g1"), Fields: map[string]any{"updatedAt": float64(1717228800000)}})
	assert.Equal(t, Version{ID: "g1", UpdatedAt: fixtureTime, Exists: true}, v)

	v = versionOf(remote.Document{Path: remote.GoalPath("u1", "g2"), Fields: map[string]any{}})
	assert.True(t, v.Exists)
	assert.True(t, v.UpdatedAt.IsZero())
}
