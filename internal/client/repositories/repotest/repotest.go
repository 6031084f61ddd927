// Package repotest opens migrated SQLite databases for repository tests.
package repotest

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/healthsync/internal/client/migrations"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// Open returns a fresh file-backed database with the local schema applied
// and foreign keys enforced.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", filepath.Join(t.TempDir(), "local.db"))
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	require.NoError(t, err)
	_, err = p.Up(context.Background())
	require.NoError(t, err)

	return db
}

// SeedUser inserts a bare user row so child rows satisfy their foreign keys.
func SeedUser(t *testing.T, db *sql.DB, id string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO users (id, name) VALUES (?, ?)`, id, "seed")
	require.NoError(t, err)
}

// SeedMeal inserts a bare meal row owned by uid.
func SeedMeal(t *testing.T, db *sql.DB, id, uid string) {
	t.Helper()
	_, err := db.Exec(`INSERT INTO meals (id, user_id) VALUES (?, ?)`, id, uid)
	require.NoError(t, err)
}
