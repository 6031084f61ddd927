// Package services contains server-side business logic. DocumentService owns
// the rules of the document tree: path shape, per-user ownership and
// subtree deletion.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/remote"
	"github.com/dmitrijs2005/healthsync/internal/common"
	"github.com/dmitrijs2005/healthsync/internal/logging"
	"github.com/dmitrijs2005/healthsync/internal/server/models"
	"github.com/dmitrijs2005/healthsync/internal/server/repositories/documents"
)

// DocumentService reads and writes documents on behalf of an authenticated
// user. Every path must live under users/{uid} of the caller.
type DocumentService interface {
	Write(ctx context.Context, uid, path string, fields map[string]any) error
	Read(ctx context.Context, uid, path string) (*models.Document, error)
	ReadCollection(ctx context.Context, uid, path string) ([]*models.Document, error)
	Delete(ctx context.Context, uid, path string) error
}

type documentService struct {
	repo   documents.Repository
	logger logging.Logger
	now    func() time.Time
}

// NewDocumentService constructs a DocumentService over repo.
func NewDocumentService(repo documents.Repository, l logging.Logger) DocumentService {
	return &documentService{
		repo:   repo,
		logger: l.With("module", "documents"),
		now:    time.Now,
	}
}

func (s *documentService) Write(ctx context.Context, uid, path string, fields map[string]any) error {
	if !remote.IsDocumentPath(path) {
		return fmt.Errorf("%w: %q is not a document", common.ErrInvalidPath, path)
	}
	if err := authorize(uid, path); err != nil {
		return err
	}
	if fields == nil {
		fields = map[string]any{}
	}

	doc := &models.Document{
		Path:      path,
		Parent:    remote.Parent(path),
		Owner:     uid,
		Fields:    fields,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.repo.Put(ctx, doc); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	s.logger.Debug(ctx, "document written", "path", path)
	return nil
}

func (s *documentService) Read(ctx context.Context, uid, path string) (*models.Document, error) {
	if !remote.IsDocumentPath(path) {
		return nil, fmt.Errorf("%w: %q is not a document", common.ErrInvalidPath, path)
	}
	if err := authorize(uid, path); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, path)
}

func (s *documentService) ReadCollection(ctx context.Context, uid, path string) ([]*models.Document, error) {
	if !remote.IsCollectionPath(path) {
		return nil, fmt.Errorf("%w: %q is not a collection", common.ErrInvalidPath, path)
	}
	if err := authorize(uid, path); err != nil {
		return nil, err
	}
	docs, err := s.repo.ListChildren(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", path, err)
	}
	return docs, nil
}

// Delete removes a document with its nested collections. Missing documents
// are not an error.
func (s *documentService) Delete(ctx context.Context, uid, path string) error {
	if !remote.IsDocumentPath(path) {
		return fmt.Errorf("%w: %q is not a document", common.ErrInvalidPath, path)
	}
	if err := authorize(uid, path); err != nil {
		return err
	}
	n, err := s.repo.DeleteTree(ctx, path)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	s.logger.Debug(ctx, "documents deleted", "path", path, "count", n)
	return nil
}

// authorize rejects paths outside the caller's users/{uid} subtree.
func authorize(uid, path string) error {
	owner := remote.Owner(path)
	if uid == "" || owner != uid {
		return fmt.Errorf("%w: %s", common.ErrForbidden, path)
	}
	return nil
}
