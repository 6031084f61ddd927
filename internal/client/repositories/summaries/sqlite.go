package summaries

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

const columns = `id, user_id, date, calories_in, calories_out, steps, water_ml, protein, carbs, fat,
	sleep_minutes, mood, is_synced, updated_at`

const updateSet = `
			user_id = excluded.user_id,
			date = excluded.date,
			calories_in = excluded.calories_in,
			calories_out = excluded.calories_out,
			steps = excluded.steps,
			water_ml = excluded.water_ml,
			protein = excluded.protein,
			carbs = excluded.carbs,
			fat = excluded.fat,
			sleep_minutes = excluded.sleep_minutes,
			mood = excluded.mood,
			is_synced = excluded.is_synced,
			updated_at = CASE WHEN excluded.is_synced THEN excluded.updated_at
				ELSE MAX(excluded.updated_at, daily_summaries.updated_at + 1) END`

func (r *SQLiteRepository) Upsert(ctx context.Context, s *models.DailySummary) error {
	query := `INSERT INTO daily_summaries (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET` + updateSet + `
		ON CONFLICT(user_id, date) DO UPDATE SET
			id = excluded.id,` + updateSet
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.Date, s.CaloriesIn, s.CaloriesOut, s.Steps, s.WaterMl,
		s.Protein, s.Carbs, s.Fat, s.SleepMinutes, s.Mood, s.IsSynced, timex.ToUnixMilli(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert daily summary: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.DailySummary, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM daily_summaries WHERE id = ?`, id)
}

func (r *SQLiteRepository) GetByDate(ctx context.Context, userID, date string) (*models.DailySummary, error) {
	return r.getOne(ctx, `SELECT `+columns+` FROM daily_summaries WHERE user_id = ? AND date = ?`, userID, date)
}

func (r *SQLiteRepository) ListByUser(ctx context.Context, userID string) ([]*models.DailySummary, error) {
	return r.list(ctx, `SELECT `+columns+` FROM daily_summaries WHERE user_id = ? ORDER BY date DESC`, userID)
}

func (r *SQLiteRepository) ListUnsynced(ctx context.Context, userID string) ([]*models.DailySummary, error) {
	return r.list(ctx, `SELECT `+columns+` FROM daily_summaries WHERE user_id = ? AND is_synced = 0 ORDER BY date`, userID)
}

func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, version time.Time) error {
	query := `UPDATE daily_summaries SET is_synced = 1 WHERE id = ? AND updated_at = ?`
	if _, err := r.db.ExecContext(ctx, query, id, timex.ToUnixMilli(version)); err != nil {
		return fmt.Errorf("failed to mark daily summary synced: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM daily_summaries WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete daily summary: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) getOne(ctx context.Context, query string, args ...any) (*models.DailySummary, error) {
	s, err := scan(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily summary: %w", err)
	}
	return s, nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]*models.DailySummary, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select daily summaries: %w", err)
	}
	defer rows.Close()

	var result []*models.DailySummary
	for rows.Next() {
		s, err := scan(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scan(row interface{ Scan(...any) error }) (*models.DailySummary, error) {
	var (
		s         models.DailySummary
		updatedAt int64
	)
	if err := row.Scan(&s.ID, &s.UserID, &s.Date, &s.CaloriesIn, &s.CaloriesOut, &s.Steps, &s.WaterMl,
		&s.Protein, &s.Carbs, &s.Fat, &s.SleepMinutes, &s.Mood, &s.IsSynced, &updatedAt); err != nil {
		return nil, err
	}
	s.UpdatedAt = timex.UnixMilli(updatedAt)
	return &s, nil
}
