// Package goals persists the user's goals. Keeping a single active goal per
// user is the caller's job; the repository only offers DeactivateOthers.
package goals

import (
	"context"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/models"
)

type Repository interface {
	// Upsert writes the row by id. A dirty write never keeps or lowers the
	// stored updated_at; it is moved to at least one millisecond past it.
	Upsert(ctx context.Context, g *models.Goal) error
	GetByID(ctx context.Context, id string) (*models.Goal, error)
	// GetActive returns common.ErrNotFound when the user has no active goal.
	GetActive(ctx context.Context, userID string) (*models.Goal, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Goal, error)
	ListUnsynced(ctx context.Context, userID string) ([]*models.Goal, error)
	// DeactivateOthers clears is_active on every goal of userID except keepID
	// and marks the changed rows dirty.
	DeactivateOthers(ctx context.Context, userID, keepID string, updatedAtMs int64) error
	// MarkSynced clears the dirty flag only while the row still carries
	// version, so an edit made during an upload stays dirty.
	MarkSynced(ctx context.Context, id string, version time.Time) error
	Delete(ctx context.Context, id string) error
}
