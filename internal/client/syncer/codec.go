package syncer

import (
	"encoding/json"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/models"
	"github.com/dmitrijs2005/healthsync/internal/client/remote"
	"github.com/dmitrijs2005/healthsync/internal/timex"
)

// Remote documents use lowerCamel field names and epoch milliseconds for
// timestamps. Record IDs come from the document path, never from fields.

const fieldUpdatedAt = "updatedAt"

func EncodeUser(u *models.User) map[string]any {
	return map[string]any{
		"id":            u.ID,
		"name":          u.Name,
		"age":           u.Age,
		"heightCm":      u.HeightCm,
		"weightKg":      u.WeightKg,
		"gender":        string(u.Gender),
		"activityLevel": string(u.ActivityLevel),
		fieldUpdatedAt:  timex.ToUnixMilli(u.UpdatedAt),
	}
}

func DecodeUser(doc remote.Document, now time.Time) *models.User {
	f := fields(doc.Fields)
	return &models.User{
		ID:            doc.ID(),
		Name:          f.str("name"),
		Age:           f.integer("age"),
		HeightCm:      f.float("heightCm"),
		WeightKg:      f.float("weightKg"),
		Gender:        models.ParseGender(f.str("gender")),
		ActivityLevel: models.ParseActivityLevel(f.str("activityLevel")),
		SyncState:     models.SyncState{IsSynced: true, UpdatedAt: f.updatedAt(now)},
	}
}

func EncodeGoal(g *models.Goal) map[string]any {
	return map[string]any{
		"id":             g.ID,
		"userId":         g.UserID,
		"goalType":       string(g.Type),
		"calorieTarget":  g.CalorieTarget,
		"stepTarget":     g.StepTarget,
		"waterTargetMl":  g.WaterTargetMl,
		"sleepTargetMin": g.SleepTargetMin,
		"startDate":      g.StartDate,
		"endDate":        g.EndDate,
		"reminderTime":   g.ReminderTime,
		"isActive":       g.IsActive,
		fieldUpdatedAt:   timex.ToUnixMilli(g.UpdatedAt),
	}
}

func DecodeGoal(doc remote.Document, now time.Time) *models.Goal {
	f := fields(doc.Fields)
	return &models.Goal{
		ID:             doc.ID(),
		UserID:         owner(doc, f),
		Type:           models.ParseGoalType(f.str("goalType")),
		CalorieTarget:  f.integer("calorieTarget"),
		StepTarget:     f.integer("stepTarget"),
		WaterTargetMl:  f.integer("waterTargetMl"),
		SleepTargetMin: f.integer("sleepTargetMin"),
		StartDate:      f.str("startDate"),
		EndDate:        f.str("endDate"),
		ReminderTime:   f.str("reminderTime"),
		IsActive:       f.boolean("isActive"),
		SyncState:      models.SyncState{IsSynced: true, UpdatedAt: f.updatedAt(now)},
	}
}

func EncodeMeal(m *models.Meal) map[string]any {
	return map[string]any{
		"id":            m.ID,
		"userId":        m.UserID,
		"mealType":      string(m.Type),
		"date":          timex.ToUnixMilli(m.Date),
		"totalCalories": m.TotalCalories,
		"totalProtein":  m.TotalProtein,
		"totalCarbs":    m.TotalCarbs,
		"totalFat":      m.TotalFat,
		fieldUpdatedAt:  timex.ToUnixMilli(m.UpdatedAt),
	}
}

func DecodeMeal(doc remote.Document, now time.Time) *models.Meal {
	f := fields(doc.Fields)
	return &models.Meal{
		ID:            doc.ID(),
		UserID:        owner(doc, f),
		Type:          models.ParseMealType(f.str("mealType")),
		Date:          timex.UnixMilli(f.millis("date")),
		TotalCalories: f.float("totalCalories"),
		TotalProtein:  f.float("totalProtein"),
		TotalCarbs:    f.float("totalCarbs"),
		TotalFat:      f.float("totalFat"),
		SyncState:     models.SyncState{IsSynced: true, UpdatedAt: f.updatedAt(now)},
	}
}

func EncodeFood(fd *models.Food) map[string]any {
	return map[string]any{
		"id":           fd.ID,
		"parentMealId": fd.MealID,
		"userId":       fd.UserID,
		"name":         fd.Name,
		"quantity":     fd.Quantity,
		"unit":         string(fd.Unit),
		"calories":     fd.Calories,
		"protein":      fd.Protein,
		"carbs":        fd.Carbs,
		"fat":          fd.Fat,
		fieldUpdatedAt: timex.ToUnixMilli(fd.UpdatedAt),
	}
}

// DecodeFood takes the meal id from the document path
// (users/{uid}/meals/{mealId}/foods/{foodId}).
func DecodeFood(doc remote.Document, now time.Time) *models.Food {
	f := fields(doc.Fields)
	mealID := remote.Base(remote.Parent(remote.Parent(doc.Path)))
	if mealID == "" {
		mealID = f.str("parentMealId")
	}
	return &models.Food{
		ID:        doc.ID(),
		MealID:    mealID,
		UserID:    owner(doc, f),
		Name:      f.str("name"),
		Quantity:  f.float("quantity"),
		Unit:      models.ParseFoodUnit(f.str("unit")),
		Calories:  f.float("calories"),
		Protein:   f.float("protein"),
		Carbs:     f.float("carbs"),
		Fat:       f.float("fat"),
		SyncState: models.SyncState{IsSynced: true, UpdatedAt: f.updatedAt(now)},
	}
}

func EncodeSummary(s *models.DailySummary) map[string]any {
	return map[string]any{
		"id":           s.ID,
		"userId":       s.UserID,
		"date":         s.Date,
		"caloriesIn":   s.CaloriesIn,
		"caloriesOut":  s.CaloriesOut,
		"steps":        s.Steps,
		"waterMl":      s.WaterMl,
		"protein":      s.Protein,
		"carbs":        s.Carbs,
		"fat":          s.Fat,
		"sleepMinutes": s.SleepMinutes,
		"mood":         s.Mood,
		fieldUpdatedAt: timex.ToUnixMilli(s.UpdatedAt),
	}
}

func DecodeSummary(doc remote.Document, now time.Time) *models.DailySummary {
	f := fields(doc.Fields)
	return &models.DailySummary{
		ID:           doc.ID(),
		UserID:       owner(doc, f),
		Date:         f.str("date"),
		CaloriesIn:   f.float("caloriesIn"),
		CaloriesOut:  f.float("caloriesOut"),
		Steps:        f.integer("steps"),
		WaterMl:      f.integer("waterMl"),
		Protein:      f.float("protein"),
		Carbs:        f.float("carbs"),
		Fat:          f.float("fat"),
		SleepMinutes: f.integer("sleepMinutes"),
		Mood:         f.str("mood"),
		SyncState:    models.SyncState{IsSynced: true, UpdatedAt: f.updatedAt(now)},
	}
}

func owner(doc remote.Document, f fields) string {
	if uid := remote.Owner(doc.Path); uid != "" {
		return uid
	}
	return f.str("userId")
}

// fields reads loosely typed document values. Missing or mistyped values
// decode to the zero value.
type fields map[string]any

func (f fields) str(k string) string {
	s, _ := f[k].(string)
	return s
}

func (f fields) boolean(k string) bool {
	b, _ := f[k].(bool)
	return b
}

func (f fields) float(k string) float64 {
	switch v := f[k].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		n, _ := v.Float64()
		return n
	default:
		return 0
	}
}

func (f fields) millis(k string) int64 {
	switch v := f[k].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
	}
	return int64(f.float(k))
}

func (f fields) integer(k string) int {
	return int(f.millis(k))
}

func (f fields) updatedAt(now time.Time) time.Time {
	if ms := f.millis(fieldUpdatedAt); ms > 0 {
		return timex.UnixMilli(ms)
	}
	return now.UTC()
}

// versionOf extracts the comparison view of a remote document.
func versionOf(doc remote.Document) Version {
	f := fields(doc.Fields)
	v := Version{ID: doc.ID(), Exists: true}
	if ms := f.millis(fieldUpdatedAt); ms > 0 {
		v.UpdatedAt = timex.UnixMilli(ms)
	}
	return v
}
