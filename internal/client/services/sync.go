package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/connectivity"
	"github.com/dmitrijs2005/healthsync/internal/client/remote"
	"github.com/dmitrijs2005/healthsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/healthsync/internal/client/scheduler"
	"github.com/dmitrijs2005/healthsync/internal/client/syncer"
	"github.com/dmitrijs2005/healthsync/internal/common"
	"github.com/dmitrijs2005/healthsync/internal/logging"
)

const (
	ImmediateSyncName = "GlobalImmediateSync"
	PeriodicSyncName  = "PeriodicCloudSync"

	DefaultPeriodicInterval = 15 * time.Minute
)

// Pipelines is the part of syncer.Syncer the sync service drives.
type Pipelines interface {
	UploadAll(ctx context.Context, uid string) (syncer.UploadReport, error)
	DownloadAll(ctx context.Context, uid string) error
}

// Scheduler is the part of scheduler.Scheduler the sync service needs.
type Scheduler interface {
	Enqueue(req scheduler.WorkRequest) bool
	EnqueuePeriodic(req scheduler.PeriodicRequest) bool
	Cancel(name string)
	Poke()
}

// Connectivity is satisfied by connectivity.Monitor.
type Connectivity interface {
	Current() connectivity.Status
	Subscribe(ctx context.Context) <-chan connectivity.Status
}

// SyncService decides when uploads run and guards restores.
type SyncService interface {
	// RequestImmediateSync queues an expedited upload for the signed-in
	// user. A queued request is replaced; a running one gets one follow-up.
	RequestImmediateSync() bool
	// EnsurePeriodicSyncScheduled keeps an existing periodic schedule.
	EnsurePeriodicSyncScheduled() bool
	// CancelScheduled drops both sync jobs.
	CancelScheduled()
	// WatchConnectivity blocks until ctx is done, requesting a sync every
	// time the network becomes available.
	WatchConnectivity(ctx context.Context) error
	// Restore downloads the remote tree of uid. Uploads for uid are held
	// back while it runs.
	Restore(ctx context.Context, uid string) error
	// SyncNow runs one upload pass for the signed-in user in the caller's
	// goroutine.
	SyncNow(ctx context.Context) (syncer.UploadReport, error)
}

type SyncOptions struct {
	PeriodicInterval time.Duration
}

type syncService struct {
	pipelines Pipelines
	sched     Scheduler
	net       Connectivity
	meta      metadata.Repository
	logger    logging.Logger
	opts      SyncOptions
	now       func() time.Time

	mu        sync.Mutex
	restoring map[string]int
}

func NewSyncService(p Pipelines, sched Scheduler, net Connectivity, meta metadata.Repository,
	l logging.Logger, opts SyncOptions) SyncService {
	if opts.PeriodicInterval <= 0 {
		opts.PeriodicInterval = DefaultPeriodicInterval
	}
	return &syncService{
		pipelines: p,
		sched:     sched,
		net:       net,
		meta:      meta,
		logger:    l.With("module", "sync"),
		opts:      opts,
		now:       time.Now,
		restoring: make(map[string]int),
	}
}

func (s *syncService) RequestImmediateSync() bool {
	return s.sched.Enqueue(scheduler.WorkRequest{
		Name:        ImmediateSyncName,
		Job:         s.job,
		Policy:      scheduler.AppendOrReplace,
		Constraints: []scheduler.Constraint{scheduler.RequiresNetwork(s.net)},
		Expedited:   true,
	})
}

func (s *syncService) EnsurePeriodicSyncScheduled() bool {
	return s.sched.EnqueuePeriodic(scheduler.PeriodicRequest{
		Name:        PeriodicSyncName,
		Job:         s.job,
		Interval:    s.opts.PeriodicInterval,
		Constraints: []scheduler.Constraint{scheduler.RequiresNetwork(s.net)},
	})
}

func (s *syncService) CancelScheduled() {
	s.sched.Cancel(ImmediateSyncName)
	s.sched.Cancel(PeriodicSyncName)
}

func (s *syncService) WatchConnectivity(ctx context.Context) error {
	prev := connectivity.Unavailable
	for st := range s.net.Subscribe(ctx) {
		s.logger.Debug(ctx, "connectivity changed", "status", st.String())
		s.sched.Poke()
		if st == connectivity.Available && prev != connectivity.Available {
			s.RequestImmediateSync()
		}
		prev = st
	}
	return nil
}

func (s *syncService) Restore(ctx context.Context, uid string) error {
	if uid == "" {
		return common.ErrNotSignedIn
	}
	s.setRestoring(uid, true)
	defer s.setRestoring(uid, false)

	if err := s.pipelines.DownloadAll(ctx, uid); err != nil {
		return err
	}
	if err := s.meta.SetTime(ctx, common.MetaLastRestore, s.now()); err != nil {
		s.logger.Warn(ctx, "failed to record restore time", "error", err)
	}
	return nil
}

func (s *syncService) SyncNow(ctx context.Context) (syncer.UploadReport, error) {
	uid, err := signedInUser(ctx, s.meta)
	if err != nil {
		return syncer.UploadReport{}, err
	}
	if s.isRestoring(uid) {
		return syncer.UploadReport{}, errRestoreInProgress
	}
	return s.upload(ctx, uid)
}

var errRestoreInProgress = errors.New("restore in progress")

func (s *syncService) upload(ctx context.Context, uid string) (syncer.UploadReport, error) {
	rep, err := s.pipelines.UploadAll(ctx, uid)
	if err != nil {
		return rep, err
	}
	if rep.Failed == 0 {
		if err := s.meta.SetTime(ctx, common.MetaLastUploadAt, s.now()); err != nil {
			s.logger.Warn(ctx, "failed to record upload time", "error", err)
		}
	}
	return rep, nil
}

// job is the body of both sync work names. It never reports Failure: any
// error or failed record asks the scheduler to try again later.
func (s *syncService) job(ctx context.Context) scheduler.Result {
	uid, err := signedInUser(ctx, s.meta)
	if errors.Is(err, common.ErrNotSignedIn) {
		return scheduler.Success
	}
	if err != nil {
		s.logger.Warn(ctx, "failed to read signed in user", "error", err)
		return scheduler.Retry
	}
	if s.isRestoring(uid) {
		s.logger.Debug(ctx, "restore in progress, deferring upload", "uid", uid)
		return scheduler.Retry
	}

	rep, err := s.upload(ctx, uid)
	switch {
	case errors.Is(err, remote.ErrUnauthorized):
		s.logger.Error(ctx, "upload rejected by remote", "uid", uid, "error", err)
		return scheduler.Retry
	case err != nil:
		s.logger.Warn(ctx, "upload failed", "uid", uid, "error", err)
		return scheduler.Retry
	case rep.Failed > 0:
		return scheduler.Retry
	}
	return scheduler.Success
}

func (s *syncService) setRestoring(uid string, on bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if on {
		s.restoring[uid]++
		return
	}
	if s.restoring[uid]--; s.restoring[uid] <= 0 {
		delete(s.restoring, uid)
	}
}

func (s *syncService) isRestoring(uid string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restoring[uid] > 0
}

func signedInUser(ctx context.Context, meta metadata.Repository) (string, error) {
	uid, err := meta.GetString(ctx, common.MetaSignedInUser)
	if err != nil {
		return "", fmt.Errorf("failed to read signed in user: %w", err)
	}
	if uid == "" {
		return "", common.ErrNotSignedIn
	}
	return uid, nil
}
