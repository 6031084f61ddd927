// Package users persists the local user profile row.
package users

import (
	"context"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/models"
)

// Repository describes the operations the sync engine and the tracker need
// on the users table.
type Repository interface {
	// Upsert inserts or overwrites the row by ID. IsSynced is stored as given.
	// A dirty write moves updated_at past the stored value when the clock
	// has not advanced.
	Upsert(ctx context.Context, u *models.User) error
	// GetByID returns common.ErrNotFound when the row is absent.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetUnsynced returns the user row when it is dirty, nil otherwise.
	GetUnsynced(ctx context.Context, id string) (*models.User, error)
	// MarkSynced clears the dirty flag only while the row still carries
	// version, so an edit made during an upload stays dirty.
	MarkSynced(ctx context.Context, id string, version time.Time) error
	Delete(ctx context.Context, id string) error
}
