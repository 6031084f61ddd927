package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/healthsync/internal/client/config"
	"github.com/dmitrijs2005/healthsync/internal/client/connectivity"
	"github.com/dmitrijs2005/healthsync/internal/client/remote"
	"github.com/dmitrijs2005/healthsync/internal/client/scheduler"
	"github.com/dmitrijs2005/healthsync/internal/client/services"
	"github.com/dmitrijs2005/healthsync/internal/client/store"
	"github.com/dmitrijs2005/healthsync/internal/client/syncer"
	"github.com/dmitrijs2005/healthsync/internal/filex"
	"github.com/dmitrijs2005/healthsync/internal/logging"
	"golang.org/x/sync/errgroup"
)

// newRemote builds the configured backend; tests replace it.
var newRemote = func(ctx context.Context, cfg *config.Config) (remote.DocumentStore, func() error, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return remote.NewMemoryStore(), func() error { return nil }, nil
	case config.BackendS3:
		s, err := remote.NewS3Store(ctx, remote.S3Options{
			Bucket:          cfg.S3.Bucket,
			Prefix:          cfg.S3.Prefix,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			UsePathStyle:    cfg.S3.UsePathStyle,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	default:
		c, err := remote.NewGRPCClient(cfg.ServerEndpointAddr, cfg.AccessToken)
		if err != nil {
			return nil, nil, err
		}
		return c, c.Close, nil
	}
}

// App wires the client components together.
type App struct {
	cfg    *config.Config
	logger logging.Logger

	store       *store.Store
	remote      remote.DocumentStore
	closeRemote func() error
	probe       *connectivity.ProbeSource
	monitor     *connectivity.Monitor
	scheduler   *scheduler.Scheduler
	syncer      *syncer.Syncer

	tracker services.TrackerService
	session services.SessionService
	sync    services.SyncService
}

func NewApp(ctx context.Context, cfg *config.Config, l logging.Logger) (*App, error) {
	resolver, err := syncer.ResolverByName(cfg.ConflictPolicy)
	if err != nil {
		return nil, err
	}

	if err := filex.EnsureParentDir(cfg.DBPath); err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("error initializing database: %w", err)
	}

	rs, closeRemote, err := newRemote(ctx, cfg)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("error initializing %s backend: %w", cfg.Backend, err)
	}

	a := &App{cfg: cfg, logger: l, store: st, remote: rs, closeRemote: closeRemote}

	a.probe = connectivity.NewProbeSource(rs, connectivity.ProbeOptions{
		Interval:   cfg.ProbeInterval,
		Timeout:    cfg.ProbeTimeout,
		LostAfter:  cfg.LostAfter,
		WatchPaths: connectivity.DefaultWatchPaths,
	}, l)
	a.monitor = connectivity.NewMonitor(a.probe, l)
	a.scheduler = scheduler.New(scheduler.Options{
		BackoffBase: cfg.BackoffBase,
		BackoffCap:  cfg.BackoffCap,
	}, l)
	a.syncer = syncer.New(st, rs, l, syncer.WithResolver(resolver))

	meta := st.Repos().Metadata
	a.tracker = services.NewTrackerService(st, a.syncer, nil)
	a.sync = services.NewSyncService(a.syncer, a.scheduler, a.monitor, meta, l,
		services.SyncOptions{PeriodicInterval: cfg.SyncInterval})
	a.session = services.NewSessionService(meta, a.sync, l)
	return a, nil
}

// Run keeps the scheduler and the connectivity watch going until ctx is done.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.session.CurrentUser(ctx); err == nil {
		a.sync.EnsurePeriodicSyncScheduled()
		a.sync.RequestImmediateSync()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.scheduler.Run(ctx) })
	g.Go(func() error { return a.sync.WatchConnectivity(ctx) })

	a.logger.Info(ctx, "client running", "backend", a.cfg.Backend, "db", a.cfg.DBPath)
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (a *App) Close() error {
	return errors.Join(a.closeRemote(), a.store.Close())
}
