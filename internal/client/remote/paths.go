package remote

import (
	"fmt"
	"strings"
)

const (
	CollectionUsers     = "users"
	CollectionGoals     = "goals"
	CollectionMeals     = "meals"
	CollectionFoods     = "foods"
	CollectionSummaries = "summaries"
)

func Join(segments ...string) string {
	return strings.Join(segments, "/")
}

// Base returns the last segment of p.
func Base(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}

// Parent returns p without its last segment, or "" for a single segment.
func Parent(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

// IsDocumentPath reports whether p names a document: a non-empty even number
// of non-empty segments.
func IsDocumentPath(p string) bool {
	n, ok := segments(p)
	return ok && n%2 == 0
}

// IsCollectionPath reports whether p names a collection.
func IsCollectionPath(p string) bool {
	n, ok := segments(p)
	return ok && n%2 == 1
}

func segments(p string) (int, bool) {
	if p == "" {
		return 0, false
	}
	parts := strings.Split(p, "/")
	for _, s := range parts {
		if s == "" || s == "." || s == ".." {
			return 0, false
		}
	}
	return len(parts), true
}

// ValidateDocumentPath returns an error when p is not a document path.
func ValidateDocumentPath(p string) error {
	if !IsDocumentPath(p) {
		return fmt.Errorf("invalid document path %q", p)
	}
	return nil
}

// ValidateCollectionPath returns an error when p is not a collection path.
func ValidateCollectionPath(p string) error {
	if !IsCollectionPath(p) {
		return fmt.Errorf("invalid collection path %q", p)
	}
	return nil
}

func UserPath(uid string) string { return Join(CollectionUsers, uid) }

func GoalsPath(uid string) string { return Join(UserPath(uid), CollectionGoals) }

func GoalPath(uid, goalID string) string { return Join(GoalsPath(uid), goalID) }

func MealsPath(uid string) string { return Join(UserPath(uid), CollectionMeals) }

func MealPath(uid, mealID string) string { return Join(MealsPath(uid), mealID) }

func FoodsPath(uid, mealID string) string { return Join(MealPath(uid, mealID), CollectionFoods) }

func FoodPath(uid, mealID, foodID string) string { return Join(FoodsPath(uid, mealID), foodID) }

func SummariesPath(uid string) string { return Join(UserPath(uid), CollectionSummaries) }

func SummaryPath(uid, summaryID string) string { return Join(SummariesPath(uid), summaryID) }

// Owner returns the uid a path belongs to, or "" when p is not under users/.
func Owner(p string) string {
	parts := strings.SplitN(p, "/", 3)
	if len(parts) < 2 || parts[0] != CollectionUsers {
		return ""
	}
	return parts[1]
}
