// Package store owns the local SQLite database. It vends repositories bound
// either to the database or to a transaction, and tells watchers which tables
// changed once a write is committed.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/healthsync/internal/client/migrations"
	"github.com/dmitrijs2005/healthsync/internal/client/repositories/foods"
	"github.com/dmitrijs2005/healthsync/internal/client/repositories/goals"
	"github.com/dmitrijs2005/healthsync/internal/client/repositories/meals"
	"github.com/dmitrijs2005/healthsync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/healthsync/internal/client/repositories/summaries"
	"github.com/dmitrijs2005/healthsync/internal/client/repositories/users"
	"github.com/dmitrijs2005/healthsync/internal/dbx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

// Table names as they appear in the schema.
const (
	TableUsers     = "users"
	TableGoals     = "goals"
	TableMeals     = "meals"
	TableFoods     = "foods"
	TableSummaries = "daily_summaries"
	TableMetadata  = "metadata"
)

// Repos groups the repositories bound to one DBTX.
type Repos struct {
	Users     users.Repository
	Goals     goals.Repository
	Meals     meals.Repository
	Foods     foods.Repository
	Summaries summaries.Repository
	Metadata  metadata.Repository
}

func newRepos(db dbx.DBTX) Repos {
	return Repos{
		Users:     users.NewSQLiteRepository(db),
		Goals:     goals.NewSQLiteRepository(db),
		Meals:     meals.NewSQLiteRepository(db),
		Foods:     foods.NewSQLiteRepository(db),
		Summaries: summaries.NewSQLiteRepository(db),
		Metadata:  metadata.NewSQLiteRepository(db),
	}
}

type Store struct {
	db    *sql.DB
	hub   *hub
	repos Repos
}

// DSN builds the modernc sqlite connection string for path with foreign keys
// enforced. File databases run in WAL mode.
func DSN(path string) string {
	pragmas := []string{"_pragma=foreign_keys(1)", "_pragma=busy_timeout(5000)"}
	if path != ":memory:" && !strings.HasPrefix(path, "file::memory:") {
		pragmas = append(pragmas, "_pragma=journal_mode(WAL)")
	}
	return path + "?" + strings.Join(pragmas, "&")
}

// Open opens (creating if needed) the database at path and applies migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open local database: %w", err)
	}
	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return New(db), nil
}

// RunMigrations applies the embedded schema migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("failed to init migrations: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("failed to migrate local database: %w", err)
	}
	return nil
}

// New wraps an already migrated database.
func New(db *sql.DB) *Store {
	s := &Store{db: db, hub: newHub()}
	// outside a transaction every statement commits on its own
	s.repos = newRepos(dbx.Observe(db, func(table string) { s.hub.publish(table) }))
	return s
}

func (s *Store) DB() *sql.DB { return s.db }

// Repos returns repositories running each statement in its own implicit
// transaction.
func (s *Store) Repos() Repos { return s.repos }

// InTx runs fn inside one transaction. Every write fn makes through repos is
// committed together or not at all. Watchers are notified after the commit.
func (s *Store) InTx(ctx context.Context, fn func(ctx context.Context, repos Repos) error) error {
	touched := make(map[string]struct{})
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		observed := dbx.Observe(tx, func(table string) { touched[table] = struct{}{} })
		return fn(ctx, newRepos(observed))
	})
	if err != nil {
		return err
	}
	tables := make([]string, 0, len(touched))
	for t := range touched {
		tables = append(tables, t)
	}
	s.hub.publish(tables...)
	return nil
}

// Subscribe returns a channel that receives a signal after each committed
// write touching one of tables. Signals coalesce while unread. An empty
// tables list watches everything.
func (s *Store) Subscribe(tables ...string) (<-chan struct{}, func()) {
	return s.hub.subscribe(tables)
}

func (s *Store) Close() error {
	s.hub.close()
	return s.db.Close()
}
