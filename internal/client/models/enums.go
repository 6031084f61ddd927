package models

// Enumerations are stored locally and remotely as their string values.
// Decoding an unknown value falls back to a fixed default instead of failing.

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func ParseGender(s string) Gender {
	switch g := Gender(s); g {
	case GenderMale, GenderFemale, GenderOther:
		return g
	default:
		return GenderOther
	}
}

type ActivityLevel string

const (
	ActivitySedentary  ActivityLevel = "sedentary"
	ActivityLight      ActivityLevel = "light"
	ActivityModerate   ActivityLevel = "moderate"
	ActivityActive     ActivityLevel = "active"
	ActivityVeryActive ActivityLevel = "very_active"
)

func ParseActivityLevel(s string) ActivityLevel {
	switch a := ActivityLevel(s); a {
	case ActivitySedentary, ActivityLight, ActivityModerate, ActivityActive, ActivityVeryActive:
		return a
	default:
		return ActivityModerate
	}
}

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

func ParseMealType(s string) MealType {
	switch m := MealType(s); m {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return m
	default:
		return MealSnack
	}
}

type FoodUnit string

const (
	UnitGram       FoodUnit = "gram"
	UnitMilliliter FoodUnit = "milliliter"
	UnitPiece      FoodUnit = "piece"
	UnitServing    FoodUnit = "serving"
	UnitCup        FoodUnit = "cup"
)

func ParseFoodUnit(s string) FoodUnit {
	switch u := FoodUnit(s); u {
	case UnitGram, UnitMilliliter, UnitPiece, UnitServing, UnitCup:
		return u
	default:
		return UnitGram
	}
}

type GoalType string

const (
	GoalWeightLoss    GoalType = "weight_loss"
	GoalMaintenance   GoalType = "maintenance"
	GoalMuscleGain    GoalType = "muscle_gain"
	GoalGeneralHealth GoalType = "general_health"
)

func ParseGoalType(s string) GoalType {
	switch g := GoalType(s); g {
	case GoalWeightLoss, GoalMaintenance, GoalMuscleGain, GoalGeneralHealth:
		return g
	default:
		return GoalGeneralHealth
	}
}
