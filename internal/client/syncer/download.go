package syncer

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/healthsync/internal/client/remote"
	"github.com/dmitrijs2005/healthsync/internal/client/store"
	"github.com/dmitrijs2005/healthsync/internal/common"
)

// DownloadProfile copies the remote user document into the local store.
// It reports false when the user has no remote profile yet.
func (s *Syncer) DownloadProfile(ctx context.Context, uid string) (bool, error) {
	if uid == "" {
		return false, common.ErrNotSignedIn
	}
	return s.downloadProfile(ctx, s.store.Repos(), uid)
}

// DownloadAll restores the whole remote tree of uid. Everything happens in
// one local transaction; any failure leaves the store as it was.
func (s *Syncer) DownloadAll(ctx context.Context, uid string) error {
	if uid == "" {
		return common.ErrNotSignedIn
	}

	var counts struct{ goals, meals, foods, summaries int }
	found := false
	err := s.store.InTx(ctx, func(ctx context.Context, repos store.Repos) error {
		ok, err := s.downloadProfile(ctx, repos, uid)
		if err != nil || !ok {
			return err
		}
		found = true

		if counts.goals, err = s.downloadGoals(ctx, repos, uid); err != nil {
			return err
		}
		if counts.meals, counts.foods, err = s.downloadMeals(ctx, repos, uid); err != nil {
			return err
		}
		counts.summaries, err = s.downloadSummaries(ctx, repos, uid)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to restore user %s: %w", uid, err)
	}

	if !found {
		s.logger.Info(ctx, "no remote profile, nothing to restore", "uid", uid)
		return nil
	}
	s.logger.Info(ctx, "restore finished", "uid", uid,
		"goals", counts.goals, "meals", counts.meals, "foods", counts.foods, "summaries", counts.summaries)
	return nil
}

func (s *Syncer) downloadProfile(ctx context.Context, repos store.Repos, uid string) (bool, error) {
	doc, err := s.remote.Read(ctx, remote.UserPath(uid))
	if errors.Is(err, remote.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read profile: %w", err)
	}

	if s.resolver.Compares() {
		local, err := repos.Users.GetByID(ctx, uid)
		if err != nil && !errors.Is(err, common.ErrNotFound) {
			return false, fmt.Errorf("failed to read local profile: %w", err)
		}
		lv := Version{ID: uid}
		if local != nil {
			lv = Version{ID: uid, UpdatedAt: local.UpdatedAt, Exists: true}
		}
		if s.resolver.Resolve(Download, lv, versionOf(doc)) == LocalWins {
			return true, nil
		}
	}

	if err := repos.Users.Upsert(ctx, DecodeUser(doc, s.now())); err != nil {
		return false, fmt.Errorf("failed to store profile: %w", err)
	}
	return true, nil
}

func (s *Syncer) downloadGoals(ctx context.Context, repos store.Repos, uid string) (int, error) {
	docs, err := s.remote.ReadCollection(ctx, remote.GoalsPath(uid))
	if err != nil {
		return 0, fmt.Errorf("failed to read goals: %w", err)
	}
	n := 0
	for _, doc := range docs {
		keep, err := s.remoteWins(ctx, doc, func(ctx context.Context, id string) (Version, error) {
			g, err := repos.Goals.GetByID(ctx, id)
			if err != nil {
				return Version{ID: id}, err
			}
			return Version{ID: id, UpdatedAt: g.UpdatedAt, Exists: true}, nil
		})
		if err != nil {
			return n, err
		}
		if !keep {
			continue
		}
		if err := repos.Goals.Upsert(ctx, DecodeGoal(doc, s.now())); err != nil {
			return n, fmt.Errorf("failed to store goal %s: %w", doc.ID(), err)
		}
		n++
	}
	return n, nil
}

func (s *Syncer) downloadMeals(ctx context.Context, repos store.Repos, uid string) (int, int, error) {
	docs, err := s.remote.ReadCollection(ctx, remote.MealsPath(uid))
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read meals: %w", err)
	}
	meals, foods := 0, 0
	for _, doc := range docs {
		keep, err := s.remoteWins(ctx, doc, func(ctx context.Context, id string) (Version, error) {
			m, err := repos.Meals.GetByID(ctx, id)
			if err != nil {
				return Version{ID: id}, err
			}
			return Version{ID: id, UpdatedAt: m.UpdatedAt, Exists: true}, nil
		})
		if err != nil {
			return meals, foods, err
		}
		if keep {
			if err := repos.Meals.Upsert(ctx, DecodeMeal(doc, s.now())); err != nil {
				return meals, foods, fmt.Errorf("failed to store meal %s: %w", doc.ID(), err)
			}
			meals++
		}

		n, err := s.downloadFoods(ctx, repos, uid, doc.ID())
		if err != nil {
			return meals, foods, err
		}
		foods += n
	}
	return meals, foods, nil
}

func (s *Syncer) downloadFoods(ctx context.Context, repos store.Repos, uid, mealID string) (int, error) {
	docs, err := s.remote.ReadCollection(ctx, remote.FoodsPath(uid, mealID))
	if err != nil {
		return 0, fmt.Errorf("failed to read foods of meal %s: %w", mealID, err)
	}
	n := 0
	for _, doc := range docs {
		keep, err := s.remoteWins(ctx, doc, func(ctx context.Context, id string) (Version, error) {
			f, err := repos.Foods.GetByID(ctx, id)
			if err != nil {
				return Version{ID: id}, err
			}
			return Version{ID: id, UpdatedAt: f.UpdatedAt, Exists: true}, nil
		})
		if err != nil {
			return n, err
		}
		if !keep {
			continue
		}
		if err := repos.Foods.Upsert(ctx, DecodeFood(doc, s.now())); err != nil {
			return n, fmt.Errorf("failed to store food %s: %w", doc.ID(), err)
		}
		n++
	}
	return n, nil
}

func (s *Syncer) downloadSummaries(ctx context.Context, repos store.Repos, uid string) (int, error) {
	docs, err := s.remote.ReadCollection(ctx, remote.SummariesPath(uid))
	if err != nil {
		return 0, fmt.Errorf("failed to read summaries: %w", err)
	}
	n := 0
	for _, doc := range docs {
		sm := DecodeSummary(doc, s.now())
		keep, err := s.remoteWins(ctx, doc, func(ctx context.Context, _ string) (Version, error) {
			// the local row for the same day may carry another id
			local, err := repos.Summaries.GetByDate(ctx, uid, sm.Date)
			if err != nil {
				return Version{ID: sm.ID}, err
			}
			return Version{ID: local.ID, UpdatedAt: local.UpdatedAt, Exists: true}, nil
		})
		if err != nil {
			return n, err
		}
		if !keep {
			continue
		}
		if err := repos.Summaries.Upsert(ctx, sm); err != nil {
			return n, fmt.Errorf("failed to store summary %s: %w", doc.ID(), err)
		}
		n++
	}
	return n, nil
}

// remoteWins asks the resolver whether doc should replace the local copy.
// lookup returns common.ErrNotFound when there is no local copy.
func (s *Syncer) remoteWins(ctx context.Context, doc remote.Document,
	lookup func(ctx context.Context, id string) (Version, error)) (bool, error) {
	if !s.resolver.Compares() {
		return true, nil
	}
	local, err := lookup(ctx, doc.ID())
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return false, fmt.Errorf("failed to read local copy of %s: %w", doc.Path, err)
	}
	return s.resolver.Resolve(Download, local, versionOf(doc)) == RemoteWins, nil
}
