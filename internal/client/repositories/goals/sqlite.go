package goals

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

const columns = `id, user_id, goal_type, calorie_target, step_target, water_target_ml, sleep_target_min,
	start_date, end_date, reminder_time, is_active, is_synced, updated_at`

func (r *SQLiteRepository) Upsert(ctx context.Context, g *models.Goal) error {
	query := `INSERT INTO goals (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			user_id = excluded.user_id,
			goal_type = excluded.goal_type,
			calorie_target = excluded.calorie_target,
			step_target = excluded.step_target,
			water_target_ml = excluded.water_target_ml,
			sleep_target_min = excluded.sleep_target_min,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			reminder_time = excluded.reminder_time,
			is_active = excluded.is_active,
			is_synced = excluded.is_synced,
			updated_at = CASE WHEN excluded.is_synced THEN excluded.updated_at
				ELSE MAX(excluded.updated_at, goals.updated_at + 1) END`
	_, err := r.db.ExecContext(ctx, query,
		g.ID, g.UserID, string(g.Type), g.CalorieTarget, g.StepTarget, g.WaterTargetMl, g.SleepTargetMin,
		g.StartDate, g.EndDate, g.ReminderTime, g.IsActive, g.IsSynced, timex.ToUnixMilli(g.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Goal, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM goals WHERE id = ?`, id)
}

func (r *SQLiteRepository) GetActive(ctx context.Context, userID string) (*models.Goal, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM goals WHERE user_id = ? AND is_active = 1
		ORDER BY updated_at DESC LIMIT 1`, userID)
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]*models.Goal, error) {
	return r.list(ctx, `SELECT `+columns+` FROM goals WHERE user_id = ? ORDER BY updated_at`, userID)
}

func (r *SQLiteRepository) ListUnsynced(ctx context.Context, userID string) ([]*models.Goal, error) {
	return r.list(ctx, `SELECT `+columns+` FROM goals WHERE user_id = ? AND is_synced = 0 ORDER BY updated_at`, userID)
}

func (r *SQLiteRepository) DeactivateOthers(ctx context.Context, userID, keepID string, updatedAtMs int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE goals SET is_active = 0, is_synced = 0, updated_at = MAX(?, updated_at + 1)
		WHERE user_id = ? AND id <> ? AND is_active = 1`, updatedAtMs, userID, keepID)
	if err != nil {
		return fmt.Errorf("failed to deactivate goals: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, version time.Time) error {
	query := `UPDATE goals SET is_synced = 1 WHERE id = ? AND updated_at = ?`
	if _, err := r.db.ExecContext(ctx, query, id, timex.ToUnixMilli(version)); err != nil {
		return fmt.Errorf("failed to mark goal synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM goals WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, args ...any) (*models.Goal, error) {
	g, err := scan(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return g, nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]*models.Goal, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select goals: %w", err)
	}
	defer rows.Close()

	var result []*models.Goal
	for rows.Next() {
		g, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scan(row interface{ Scan(...any) error }) (*models.Goal, error) {
	var (
		g         models.Goal
		goalType  string
		updatedAt int64
	)
	if err := row.Scan(&g.ID, &g.UserID, &goalType, &g.CalorieTarget, &g.StepTarget, &g.WaterTargetMl, &g.SleepTargetMin,
		&g.StartDate, &g.EndDate, &g.ReminderTime, &g.IsActive, &g.IsSynced, &updatedAt); err != nil {
		return nil, err
	}
	g.Type = models.ParseGoalType(goalType)
	g.UpdatedAt = timex.UnixMilli(updatedAt)
	return &g, nil
}
