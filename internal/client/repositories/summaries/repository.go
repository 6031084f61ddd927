// Package summaries persists one daily summary per user and calendar day.
package summaries

import (
	"context"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/models"
)

type Repository interface {
	// Upsert inserts or updates by id. A row for the same user and date is
	// replaced in place, taking the incoming id.
	Upsert(ctx context.Context, s *models.DailySummary) error
	GetByID(ctx context.Context, id string) (*models.DailySummary, error)
	GetByDate(ctx context.Context, userID, date string) (*models.DailySummary, error)
	ListByUser(ctx context.Context, userID string) ([]*models.DailySummary, error)
	ListUnsynced(ctx context.Context, userID string) ([]*models.DailySummary, error)
	// MarkSynced clears the dirty flag only while the row still carries
	// version, so an edit made during an upload stays dirty.
	MarkSynced(ctx context.Context, id string, version time.Time) error
	Delete(ctx context.Context, id string) error
}
