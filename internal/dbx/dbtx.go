// Package dbx provides tiny DB abstractions shared by repositories:
// a minimal interface (DBTX) implemented by both *sql.DB and *sql.Tx,
// a helper to run functions inside a transaction, and a write observer
// used by the local store to learn which tables a transaction touched.
package dbx

import (
	"context"
	"database/sql"
	"regexp"
	"strings"
)

// DBTX is the subset of database/sql used by our repos.
// Both *sql.DB and *sql.Tx satisfy this interface.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx begins a transaction, runs fn with a transactional handle, and then
// commits on success or rolls back on error/panic. Panics are rethrown.
//
// Typical use:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    _, err := tx.ExecContext(ctx, "UPDATE ...")
//	    return err
//	})
func WithTx(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context, tx DBTX) error) (err error) {
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	err = fn(ctx, tx)
	return err
}

var writeTarget = regexp.MustCompile(`(?is)^\s*(?:insert\s+(?:or\s+\w+\s+)?into|update|delete\s+from)\s+["'\x60]?(\w+)`)

// WriteTable returns the table a write statement targets, or "" for reads
// and statements it does not recognize.
func WriteTable(query string) string {
	m := writeTarget.FindStringSubmatch(query)
	if m == nil {
		return ""
	}
	return strings.ToLower(m[1])
}

// Observed wraps a DBTX and reports the target table of every successful
// write statement to onWrite.
type Observed struct {
	DBTX
	onWrite func(table string)
}

// Observe returns db wrapped so that writes are reported to onWrite.
func Observe(db DBTX, onWrite func(table string)) *Observed {
	return &Observed{DBTX: db, onWrite: onWrite}
}

func (o *Observed) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := o.DBTX.ExecContext(ctx, query, args...)
	if err == nil {
		if table := WriteTable(query); table != "" {
			o.onWrite(table)
		}
	}
	return res, err
}
