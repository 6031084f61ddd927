// Package foods persists the foods logged under a meal.
package foods

import (
	"context"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/models"
)

type Repository interface {
	// Upsert writes the row by id. A dirty write never keeps or lowers the
	// stored updated_at; it is moved to at least one millisecond past it.
	Upsert(ctx context.Context, f *models.Food) error
	GetByID(ctx context.Context, id string) (*models.Food, error)
	ListByMeal(ctx context.Context, mealID string) ([]*models.Food, error)
	// ListUnsynced returns dirty foods whose meal is not soft-deleted.
	ListUnsynced(ctx context.Context, userID string) ([]*models.Food, error)
	// MarkSynced clears the dirty flag only while the row still carries
	// version, so an edit made during an upload stays dirty.
	MarkSynced(ctx context.Context, id string, version time.Time) error
	Delete(ctx context.Context, id string) error
}
