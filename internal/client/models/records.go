package models

import "time"

// SyncState is embedded by every record kind.
type SyncState struct {
	IsSynced  bool
	UpdatedAt time.Time
}

// Touch marks a record as locally modified at now.
func (s *SyncState) Touch(now time.Time) {
	s.IsSynced = false
	s.UpdatedAt = now.UTC()
}

// User is the profile row; ID is the account uid.
type User struct {
	ID            string
	Name          string
	Age           int
	HeightCm      float64
	WeightKg      float64
	Gender        Gender
	ActivityLevel ActivityLevel
	SyncState
}

// Goal holds the user's targets. At most one goal per user is active.
type Goal struct {
	ID             string
	UserID         string
	Type           GoalType
	CalorieTarget  int
	StepTarget     int
	WaterTargetMl  int
	SleepTargetMin int
	StartDate      string
	EndDate        string
	ReminderTime   string
	IsActive       bool
	SyncState
}

// Meal aggregates the nutrition of its foods. IsDeleted is a soft-delete
// marker consumed by the upload pipeline.
type Meal struct {
	ID            string
	UserID        string
	Type          MealType
	Date          time.Time
	TotalCalories float64
	TotalProtein  float64
	TotalCarbs    float64
	TotalFat      float64
	IsDeleted     bool
	SyncState
}

// Food belongs to exactly one meal.
type Food struct {
	ID       string
	MealID   string
	UserID   string
	Name     string
	Quantity float64
	Unit     FoodUnit
	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	SyncState
}

// DailySummary is unique per (UserID, Date). Date is formatted as DateLayout.
type DailySummary struct {
	ID           string
	UserID       string
	Date         string
	CaloriesIn   float64
	CaloriesOut  float64
	Steps        int
	WaterMl      int
	Protein      float64
	Carbs        float64
	Fat          float64
	SleepMinutes int
	Mood         string
	SyncState
}

// DateLayout is the day-granularity format used by DailySummary.Date.
const DateLayout = "2006-01-02"

// Recalculate sets the meal totals to the sum of foods.
func (m *Meal) Recalculate(foods []Food) {
	m.TotalCalories, m.TotalProtein, m.TotalCarbs, m.TotalFat = 0, 0, 0, 0
	for _, f := range foods {
		m.TotalCalories += f.Calories
		m.TotalProtein += f.Protein
		m.TotalCarbs += f.Carbs
		m.TotalFat += f.Fat
	}
}
