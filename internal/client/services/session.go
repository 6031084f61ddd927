package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/healthsync/internal/client/remote"
	"github.com/dmitrijs2005/healthsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/healthsync/internal/common"
	"github.com/dmitrijs2005/healthsync/internal/logging"
)

// SessionService keeps track of which account the device works for.
type SessionService interface {
	// SignIn persists uid, restores its remote tree and makes sure the
	// periodic sync is scheduled.
	SignIn(ctx context.Context, uid string) error
	// SignOut forgets the signed-in user and cancels scheduled syncs.
	// Local records are kept.
	SignOut(ctx context.Context) error
	// CurrentUser returns common.ErrNotSignedIn when nobody is signed in.
	CurrentUser(ctx context.Context) (string, error)
}

type sessionService struct {
	meta   metadata.Repository
	sync   SyncService
	logger logging.Logger
}

func NewSessionService(meta metadata.Repository, sync SyncService, l logging.Logger) SessionService {
	return &sessionService{meta: meta, sync: sync, logger: l.With("module", "session")}
}

func (s *sessionService) SignIn(ctx context.Context, uid string) error {
	if err := remote.ValidateDocumentPath(remote.UserPath(uid)); err != nil {
		return fmt.Errorf("invalid uid %q: %w", uid, common.ErrInvalidPath)
	}
	if err := s.meta.SetString(ctx, common.MetaSignedInUser, uid); err != nil {
		return fmt.Errorf("saving session error: %w", err)
	}
	if err := s.sync.Restore(ctx, uid); err != nil {
		return fmt.Errorf("restore error: %w", err)
	}
	s.sync.EnsurePeriodicSyncScheduled()
	s.logger.Info(ctx, "signed in", "uid", uid)
	return nil
}

func (s *sessionService) SignOut(ctx context.Context) error {
	s.sync.CancelScheduled()
	if err := s.meta.Delete(ctx, common.MetaSignedInUser); err != nil {
		return fmt.Errorf("clearing session error: %w", err)
	}
	return nil
}

func (s *sessionService) CurrentUser(ctx context.Context) (string, error) {
	return signedInUser(ctx, s.meta)
}
