package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/models"
	"github.com/dmitrijs2005/healthsync/internal/client/store"
	"github.com/dmitrijs2005/healthsync/internal/common"
	"github.com/dmitrijs2005/healthsync/internal/timex"
	"github.com/google/uuid"
)

// TrackerService defines the user-facing mutations and reads.
//
// Every mutation marks the touched records dirty with UpdatedAt=now. IDs are
// generated when the caller leaves them empty.
type TrackerService interface {
	SaveProfile(ctx context.Context, uid string, u *models.User) error
	// SetGoal stores g; an active goal deactivates every other goal of uid.
	SetGoal(ctx context.Context, uid string, g *models.Goal) (string, error)
	// AddMeal stores the meal with its foods and totals computed from them.
	AddMeal(ctx context.Context, uid string, m *models.Meal, foods []models.Food) (string, error)
	AddFood(ctx context.Context, uid, mealID string, f models.Food) (string, error)
	DeleteMeal(ctx context.Context, uid, mealID string) error
	// SaveSummary upserts the summary of a day, reusing the id of an
	// existing row for the same date.
	SaveSummary(ctx context.Context, uid string, s *models.DailySummary) (string, error)
	ListMeals(ctx context.Context, uid string, from, to time.Time) ([]*models.Meal, error)
	WatchMeals(ctx context.Context, uid string, from, to time.Time) <-chan store.Snapshot[[]*models.Meal]
	PendingCount(ctx context.Context, uid string) (int, error)
}

// PendingCounter counts dirty records of a user.
type PendingCounter interface {
	Pending(ctx context.Context, uid string) (int, error)
}

type trackerService struct {
	store   *store.Store
	pending PendingCounter
	now     func() time.Time
}

func NewTrackerService(st *store.Store, pending PendingCounter, now func() time.Time) TrackerService {
	if now == nil {
		now = time.Now
	}
	return &trackerService{store: st, pending: pending, now: now}
}

func (s *trackerService) SaveProfile(ctx context.Context, uid string, u *models.User) error {
	if uid == "" {
		return common.ErrNotSignedIn
	}
	u.ID = uid
	u.Touch(s.now())
	if err := s.store.Repos().Users.Upsert(ctx, u); err != nil {
		return fmt.Errorf("saving profile error: %w", err)
	}
	return nil
}

func (s *trackerService) SetGoal(ctx context.Context, uid string, g *models.Goal) (string, error) {
	if uid == "" {
		return "", common.ErrNotSignedIn
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	g.UserID = uid
	g.Touch(s.now())

	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		if err := requireProfile(ctx, r, uid); err != nil {
			return err
		}
		if err := r.Goals.Upsert(ctx, g); err != nil {
			return err
		}
		if !g.IsActive {
			return nil
		}
		return r.Goals.DeactivateOthers(ctx, uid, g.ID, timex.ToUnixMilli(g.UpdatedAt))
	})
	if err != nil {
		return "", fmt.Errorf("saving goal error: %w", err)
	}
	return g.ID, nil
}

func (s *trackerService) AddMeal(ctx context.Context, uid string, m *models.Meal, foods []models.Food) (string, error) {
	if uid == "" {
		return "", common.ErrNotSignedIn
	}
	now := s.now()
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Date.IsZero() {
		m.Date = now.UTC()
	}
	m.UserID = uid
	m.IsDeleted = false
	m.Touch(now)

	for i := range foods {
		if foods[i].ID == "" {
			foods[i].ID = uuid.NewString()
		}
		foods[i].MealID = m.ID
		foods[i].UserID = uid
		foods[i].Touch(now)
	}
	m.Recalculate(foods)

	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		if err := requireProfile(ctx, r, uid); err != nil {
			return err
		}
		if err := r.Meals.Upsert(ctx, m); err != nil {
			return err
		}
		for i := range foods {
			if err := r.Foods.Upsert(ctx, &foods[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("saving meal error: %w", err)
	}
	return m.ID, nil
}

func (s *trackerService) AddFood(ctx context.Context, uid, mealID string, f models.Food) (string, error) {
	if uid == "" {
		return "", common.ErrNotSignedIn
	}
	now := s.now()
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.MealID = mealID
	f.UserID = uid
	f.Touch(now)

	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		m, err := ownedMeal(ctx, r, uid, mealID)
		if err != nil {
			return err
		}
		if err := r.Foods.Upsert(ctx, &f); err != nil {
			return err
		}
		foods, err := r.Foods.ListByMeal(ctx, mealID)
		if err != nil {
			return err
		}
		all := make([]models.Food, 0, len(foods))
		for _, fd := range foods {
			all = append(all, *fd)
		}
		m.Recalculate(all)
		m.Touch(now)
		return r.Meals.Upsert(ctx, m)
	})
	if err != nil {
		return "", fmt.Errorf("adding food error: %w", err)
	}
	return f.ID, nil
}

// DeleteMeal only marks the meal; the upload pipeline removes it remotely
// and then locally.
func (s *trackerService) DeleteMeal(ctx context.Context, uid, mealID string) error {
	if uid == "" {
		return common.ErrNotSignedIn
	}
	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		if _, err := ownedMeal(ctx, r, uid, mealID); err != nil {
			return err
		}
		return r.Meals.MarkDeleted(ctx, mealID, s.now())
	})
	if err != nil {
		return fmt.Errorf("deleting meal error: %w", err)
	}
	return nil
}

// requireProfile guards writes whose rows reference the users table. There
// is no placeholder row; it would be uploaded as a blank profile.
func requireProfile(ctx context.Context, r store.Repos, uid string) error {
	_, err := r.Users.GetByID(ctx, uid)
	if errors.Is(err, common.ErrNotFound) {
		return common.ErrNoProfile
	}
	return err
}

func ownedMeal(ctx context.Context, r store.Repos, uid, mealID string) (*models.Meal, error) {
	m, err := r.Meals.GetByID(ctx, mealID)
	if err != nil {
		return nil, err
	}
	if m.UserID != uid || m.IsDeleted {
		return nil, common.ErrNotFound
	}
	return m, nil
}

func (s *trackerService) SaveSummary(ctx context.Context, uid string, sm *models.DailySummary) (string, error) {
	if uid == "" {
		return "", common.ErrNotSignedIn
	}
	if sm.Date == "" {
		sm.Date = s.now().UTC().Format(models.DateLayout)
	}
	if _, err := time.Parse(models.DateLayout, sm.Date); err != nil {
		return "", fmt.Errorf("invalid summary date %q: %w", sm.Date, err)
	}
	sm.UserID = uid
	sm.Touch(s.now())

	err := s.store.InTx(ctx, func(ctx context.Context, r store.Repos) error {
		if err := requireProfile(ctx, r, uid); err != nil {
			return err
		}
		existing, err := r.Summaries.GetByDate(ctx, uid, sm.Date)
		switch {
		case err == nil:
			sm.ID = existing.ID
		case errors.Is(err, common.ErrNotFound):
			if sm.ID == "" {
				sm.ID = uuid.NewString()
			}
		default:
			return err
		}
		return r.Summaries.Upsert(ctx, sm)
	})
	if err != nil {
		return "", fmt.Errorf("saving summary error: %w", err)
	}
	return sm.ID, nil
}

func (s *trackerService) ListMeals(ctx context.Context, uid string, from, to time.Time) ([]*models.Meal, error) {
	return s.store.Repos().Meals.ListByUser(ctx, uid, from, to)
}

// WatchMeals emits the meal list now and after every committed change to
// meals or foods.
func (s *trackerService) WatchMeals(ctx context.Context, uid string, from, to time.Time) <-chan store.Snapshot[[]*models.Meal] {
	return store.Watch(ctx, s.store, []string{store.TableMeals, store.TableFoods},
		func(ctx context.Context) ([]*models.Meal, error) {
			return s.ListMeals(ctx, uid, from, to)
		})
}

func (s *trackerService) PendingCount(ctx context.Context, uid string) (int, error) {
	if uid == "" {
		return 0, common.ErrNotSignedIn
	}
	return s.pending.Pending(ctx, uid)
}
