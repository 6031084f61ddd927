// Package meals persists meals. Deleting a meal row cascades to its foods.
package meals

import (
	"context"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/models"
)

type Repository interface {
	// Upsert writes the row by id. A dirty write never keeps or lowers the
	// stored updated_at; it is moved to at least one millisecond past it.
	Upsert(ctx context.Context, m *models.Meal) error
	// GetByID returns soft-deleted meals too.
	GetByID(ctx context.Context, id string) (*models.Meal, error)
	// ListByUser returns live meals in [from, to), newest first. Zero bounds are open.
	ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*models.Meal, error)
	// ListUnsynced returns dirty live meals.
	ListUnsynced(ctx context.Context, userID string) ([]*models.Meal, error)
	// ListDeletedUnsynced returns dirty soft-deleted meals awaiting remote deletion.
	ListDeletedUnsynced(ctx context.Context, userID string) ([]*models.Meal, error)
	// MarkDeleted soft-deletes the meal and marks it dirty.
	MarkDeleted(ctx context.Context, id string, at time.Time) error
	// MarkSynced clears the dirty flag only while the row still carries
	// version, so an edit made during an upload stays dirty.
	MarkSynced(ctx context.Context, id string, version time.Time) error
	// Delete removes the row (and, by cascade, its foods).
	Delete(ctx context.Context, id string) error
}
