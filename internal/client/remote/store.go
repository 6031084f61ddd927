package remote

import (
	"context"
	"errors"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrUnavailable  = errors.New("remote store unavailable")
	ErrUnauthorized = errors.New("unauthorized")
)

// Document is one remote record.
type Document struct {
	Path   string
	Fields map[string]any
}

// ID returns the last path segment.
func (d Document) ID() string {
	return Base(d.Path)
}

type DocumentStore interface {
	// Write replaces the document at path with fields, creating it if needed.
	Write(ctx context.Context, path string, fields map[string]any) error
	// Read returns ErrNotFound when no document exists at path.
	Read(ctx context.Context, path string) (Document, error)
	// ReadCollection returns the direct child documents of a collection path.
	ReadCollection(ctx context.Context, path string) ([]Document, error)
	// Delete removes the document and every document nested under it.
	// Deleting a missing document is not an error.
	Delete(ctx context.Context, path string) error
	Ping(ctx context.Context) error
}
