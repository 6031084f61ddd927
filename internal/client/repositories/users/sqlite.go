package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/models"
	"github.com/dmitrijs2005/healthsync/internal/common"
	"github.com/dmitrijs2005/healthsync/internal/dbx"
	"github.com/dmitrijs2005/healthsync/internal/timex"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const columns = `id, name, age, height_cm, weight_kg, gender, activity_level, is_synced, updated_at`

func (r *SQLiteRepository) Upsert(ctx context.Context, u *models.User) error {
	query := `INSERT INTO users (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			age = excluded.age,
			height_cm = excluded.height_cm,
			weight_kg = excluded.weight_kg,
			gender = excluded.gender,
			activity_level = excluded.activity_level,
			is_synced = excluded.is_synced,
			updated_at = CASE WHEN excluded.is_synced THEN excluded.updated_at
				ELSE MAX(excluded.updated_at, users.updated_at + 1) END`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Name, u.Age, u.HeightCm, u.WeightKg, string(u.Gender), string(u.ActivityLevel),
		u.IsSynced, timex.ToUnixMilli(u.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM users WHERE id = ?`, id)
	u, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUnsynced(ctx context.Context, id string) (*models.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM users WHERE id = ? AND is_synced = 0`, id)
	u, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unsynced user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, version time.Time) error {
	query := `UPDATE users SET is_synced = 1 WHERE id = ? AND updated_at = ?`
	if _, err := r.db.ExecContext(ctx, query, id, timex.ToUnixMilli(version)); err != nil {
		return fmt.Errorf("failed to mark user synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

func scan(row interface{ Scan(...any) error }) (*models.User, error) {
	var (
		u         models.User
		gender    string
		activity  string
		updatedAt int64
	)
	if err := row.Scan(&u.ID, &u.Name, &u.Age, &u.HeightCm, &u.WeightKg, &gender, &activity, &u.IsSynced, &updatedAt); err != nil {
		return nil, err
	}
	u.Gender = models.ParseGender(gender)
	u.ActivityLevel = models.ParseActivityLevel(activity)
	u.UpdatedAt = timex.UnixMilli(updatedAt)
	return &u, nil
}
