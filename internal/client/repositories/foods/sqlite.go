package foods

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

const columns = `f.id, f.meal_id, f.user_id, f.name, f.quantity, f.unit, f.calories, f.protein, f.carbs, f.fat,
	f.is_synced, f.updated_at`

func (r *SQLiteRepository) Upsert(ctx context.Context, f *models.Food) error {
	query := `INSERT INTO foods (id, meal_id, user_id, name, quantity, unit, calories, protein, carbs, fat, is_synced, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			meal_id = excluded.meal_id,
			user_id = excluded.user_id,
			name = excluded.name,
			quantity = excluded.quantity,
			unit = excluded.unit,
			calories = excluded.calories,
			protein = excluded.protein,
			carbs = excluded.carbs,
			fat = excluded.fat,
			is_synced = excluded.is_synced,
			updated_at = CASE WHEN excluded.is_synced THEN excluded.updated_at
				ELSE MAX(excluded.updated_at, foods.updated_at + 1) END`
	_, err := r.db.ExecContext(ctx, query,
		f.ID, f.MealID, f.UserID, f.Name, f.Quantity, string(f.Unit),
		f.Calories, f.Protein, f.Carbs, f.Fat, f.IsSynced, timex.ToUnixMilli(f.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert food: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Food, error) {
	f, err := scan(r.db.QueryRowContext(ctx, `SELECT `+columns+` FROM foods f WHERE f.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get food: %w", err)
	}
	return f, nil
}

func (r *SQLiteRepository) ListByMeal(ctx context.Context, mealID string) ([]*models.Food, error) {
	return r.list(ctx, `SELECT `+columns+` FROM foods f WHERE f.meal_id = ? ORDER BY f.updated_at, f.id`, mealID)
}

func (r *SQLiteRepository) ListUnsynced(ctx context.Context, userID string) ([]*models.Food, error) {
	return r.list(ctx, `SELECT `+columns+` FROM foods f JOIN meals m ON m.id = f.meal_id
		WHERE f.user_id = ? AND f.is_synced = 0 AND m.is_deleted = 0
		ORDER BY f.updated_at, f.id`, userID)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, version time.Time) error {
	query := `UPDATE foods SET is_synced = 1 WHERE id = ? AND updated_at = ?`
	if _, err := r.db.ExecContext(ctx, query, id, timex.ToUnixMilli(version)); err != nil {
		return fmt.Errorf("failed to mark food synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM foods WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete food: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]*models.Food, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select foods: %w", err)
	}
	defer rows.Close()

	var result []*models.Food
	for rows.Next() {
		f, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scan(row interface{ Scan(...any) error }) (*models.Food, error) {
	var (
		f         models.Food
		unit      string
		updatedAt int64
	)
	if err := row.Scan(&f.ID, &f.MealID, &f.UserID, &f.Name, &f.Quantity, &unit,
		&f.Calories, &f.Protein, &f.Carbs, &f.Fat, &f.IsSynced, &updatedAt); err != nil {
		return nil, err
	}
	f.Unit = models.ParseFoodUnit(unit)
	f.UpdatedAt = timex.UnixMilli(updatedAt)
	return &f, nil
}
