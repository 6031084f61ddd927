// Package documents stores the server's document tree. PostgresRepository is
// the production backend, InMemoryRepository serves tests and single-process
// deployments.
package documents

import (
	"context"

	"github.com/dmitrijs2005/healthsync/internal/server/models"
)

// Repository persists documents keyed by their full path.
type Repository interface {
	// Put creates or replaces the document at doc.Path.
	Put(ctx context.Context, doc *models.Document) error
	// Get returns common.ErrNotFound when no document exists at path.
	Get(ctx context.Context, path string) (*models.Document, error)
	// ListChildren returns the documents whose parent is the given
	// collection path, ordered by path.
	ListChildren(ctx context.Context, parent string) ([]*models.Document, error)
	// DeleteTree removes the document at path and everything nested under
	// it, returning the number of removed documents.
	DeleteTree(ctx context.Context, path string) (int64, error)
}
