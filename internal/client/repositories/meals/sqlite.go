package meals

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

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const columns = `id, user_id, meal_type, date, total_calories, total_protein, total_carbs, total_fat,
	is_deleted, is_synced, updated_at`

func (r *SQLiteRepository) Upsert(ctx context.Context, m *models.Meal) error {
	query := `INSERT INTO meals (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			meal_type = excluded.meal_type,
			date = excluded.date,
			total_calories = excluded.total_calories,
			total_protein = excluded.total_protein,
			total_carbs = excluded.total_carbs,
			total_fat = excluded.total_fat,
			is_deleted = excluded.is_deleted,
			is_synced = excluded.is_synced,
			updated_at = CASE WHEN excluded.is_synced THEN excluded.updated_at
				ELSE MAX(excluded.updated_at, meals.updated_at + 1) END`
	_, err := r.db.ExecContext(ctx, query,
		m.ID, m.UserID, string(m.Type), timex.ToUnixMilli(m.Date),
		m.TotalCalories, m.TotalProtein, m.TotalCarbs, m.TotalFat,
		m.IsDeleted, m.IsSynced, timex.ToUnixMilli(m.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert meal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Meal, error) {
	m, err := scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM meals WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get meal: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string, from, to time.Time) ([]*models.Meal, error) {
	query := `SELECT ` + columns + ` FROM meals WHERE user_id = ? AND is_deleted = 0`
	args := []any{userID}
	if !from.IsZero() {
		query += ` AND date >= ?`
		args = append(args, timex.ToUnixMilli(from))
	}
	if !to.IsZero() {
		query += ` AND date < ?`
		args = append(args, timex.ToUnixMilli(to))
	}
	query += ` ORDER BY date DESC`
	return r.list(ctx, query, args...)
}

func (r *SQLiteRepository) ListUnsynced(ctx context.Context, userID string) ([]*models.Meal, error) {
	return r.list(ctx, `SELECT `+columns+` FROM meals WHERE user_id = ? AND is_synced = 0 AND is_deleted = 0
		ORDER BY updated_at`, userID)
}

func (r *SQLiteRepository) ListDeletedUnsynced(ctx context.Context, userID string) ([]*models.Meal, error) {
	return r.list(ctx, `SELECT `+columns+` FROM meals WHERE user_id = ? AND is_synced = 0 AND is_deleted = 1
		ORDER BY updated_at`, userID)
}

// MarkDeleted expects exactly one row to be affected.
func (r *SQLiteRepository) MarkDeleted(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE meals SET is_deleted = 1, is_synced = 0, updated_at = MAX(?, updated_at + 1)
		WHERE id = ? AND is_deleted = 0`, timex.ToUnixMilli(at), id)
	if err != nil {
		return fmt.Errorf("failed to soft-delete meal: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra != 1 {
		return common.ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, version time.Time) error {
	query := `UPDATE meals SET is_synced = 1 WHERE id = ? AND updated_at = ?`
	if _, err := r.db.ExecContext(ctx, query, id, timex.ToUnixMilli(version)); err != nil {
		return fmt.Errorf("failed to mark meal synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM meals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete meal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]*models.Meal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select meals: %w", err)
	}
	defer rows.Close()

	var result []*models.Meal
	for rows.Next() {
		m, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scan(row interface{ Scan(...any) error }) (*models.Meal, error) {
	var (
		m         models.Meal
		mealType  string
		date      int64
		updatedAt int64
	)
	if err := row.Scan(&m.ID, &m.UserID, &mealType, &date, &m.TotalCalories, &m.TotalProtein, &m.TotalCarbs, &m.TotalFat,
		&m.IsDeleted, &m.IsSynced, &updatedAt); err != nil {
		return nil, err
	}
	m.Type = models.ParseMealType(mealType)
	m.Date = timex.UnixMilli(date)
	m.UpdatedAt = timex.UnixMilli(updatedAt)
	return &m, nil
}
