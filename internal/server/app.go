// Package server assembles the healthsync document server: it selects the
// storage backend, applies migrations and runs the gRPC endpoint until the
// process is asked to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/healthsync/internal/logging"
	"github.com/dmitrijs2005/healthsync/internal/server/config"
	gs "github.com/dmitrijs2005/healthsync/internal/server/grpc"
	"github.com/dmitrijs2005/healthsync/internal/server/repositories/documents"
	"github.com/dmitrijs2005/healthsync/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/healthsync/internal/server/services"
	"golang.org/x/sync/errgroup"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	documents services.DocumentService
}

// openPostgres is a seam for tests.
var openPostgres = repomanager.OpenPostgres

// NewApp validates c and prepares the configured storage backend.
func NewApp(ctx context.Context, c *config.Config, l logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	app := &App{config: c, logger: l.With("module", "app")}

	var repo documents.Repository
	switch c.Storage {
	case config.StorageMemory:
		repo = documents.NewInMemoryRepository()
	case config.StoragePostgres:
		m := repomanager.NewPostgresRepositoryManager()
		db, err := openPostgres(ctx, c.DatabaseDSN, m)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		repo = m.Documents(db)
	}

	app.documents = services.NewDocumentService(repo, l)
	app.logger.Info(ctx, "storage ready", "storage", c.Storage)
	return app, nil
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM/SIGQUIT arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.documents, app.config.SecretKey)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.Run(ctx)
	})

	err := g.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return err
}

// Close releases the database connection, if any.
func (app *App) Close() error {
	if app.db == nil {
		return nil
	}
	return app.db.Close()
}
