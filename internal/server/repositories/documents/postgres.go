package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/healthsync/internal/common"
	"github.com/dmitrijs2005/healthsync/internal/dbx"
	"github.com/dmitrijs2005/healthsync/internal/server/models"
)

// PostgresRepository implements Repository over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Put(ctx context.Context, doc *models.Document) error {
	fields, err := json.Marshal(doc.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode fields: %w", err)
	}
	query := `
		INSERT INTO documents (path, parent, owner, fields, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (path)
		DO UPDATE SET
			fields = EXCLUDED.fields,
			updated_at = EXCLUDED.updated_at;
	`
	if _, err := r.db.ExecContext(ctx, query, doc.Path, doc.Parent, doc.Owner, fields, doc.UpdatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, path string) (*models.Document, error) {
	query := `SELECT path, parent, owner, fields, updated_at FROM documents WHERE path = $1`
	doc, err := scanDocument(r.db.QueryRowContext(ctx, query, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select document: %w", err)
	}
	return doc, nil
}

func (r *PostgresRepository) ListChildren(ctx context.Context, parent string) ([]*models.Document, error) {
	query := `SELECT path, parent, owner, fields, updated_at FROM documents WHERE parent = $1 ORDER BY path`
	rows, err := r.db.QueryContext(ctx, query, parent)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents: %w", err)
	}
	defer rows.Close()

	var result []*models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *PostgresRepository) DeleteTree(ctx context.Context, path string) (int64, error) {
	query := `DELETE FROM documents WHERE path = $1 OR starts_with(path, $2)`
	res, err := r.db.ExecContext(ctx, query, path, path+"/")
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*models.Document, error) {
	var (
		doc    models.Document
		fields []byte
	)
	if err := s.Scan(&doc.Path, &doc.Parent, &doc.Owner, &fields, &doc.UpdatedAt); err != nil {
		return nil, err
	}
	doc.Fields = map[string]any{}
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &doc.Fields); err != nil {
			return nil, fmt.Errorf("corrupt fields of %s: %w", doc.Path, err)
		}
	}
	if doc.Fields == nil {
		doc.Fields = map[string]any{}
	}
	return &doc, nil
}
