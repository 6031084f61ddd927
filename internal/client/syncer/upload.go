package syncer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/remote"
	"github.com/dmitrijs2005/healthsync/internal/common"
)

// UploadReport counts what one upload pass did.
type UploadReport struct {
	Uploaded int
	Deleted  int
	// Pulled counts records the resolver settled in favour of the remote copy.
	Pulled int
	Failed int
}

func (r UploadReport) Total() int {
	return r.Uploaded + r.Deleted + r.Pulled + r.Failed
}

// record is one dirty row prepared for upload.
type record struct {
	kind      string
	id        string
	path      string
	updatedAt time.Time
	fields    map[string]any
	// markSynced clears the dirty flag after the remote write.
	markSynced func(ctx context.Context) error
	// pull stores the remote copy locally, used when the remote side wins.
	pull func(ctx context.Context, doc remote.Document) error
}

// UploadAll pushes every dirty record of uid in the order user, goals,
// meals, foods, summaries. A failing record is logged, counted and left
// dirty; the pass goes on. An error is returned only when the local scan
// itself fails.
func (s *Syncer) UploadAll(ctx context.Context, uid string) (UploadReport, error) {
	var rep UploadReport
	if uid == "" {
		return rep, common.ErrNotSignedIn
	}
	repos := s.store.Repos()

	user, err := repos.Users.GetUnsynced(ctx, uid)
	if err != nil {
		return rep, fmt.Errorf("failed to scan user: %w", err)
	}
	if user != nil {
		s.push(ctx, &rep, record{
			kind: "user", id: user.ID, path: remote.UserPath(uid), updatedAt: user.UpdatedAt,
			fields:     EncodeUser(user),
			markSynced: func(ctx context.Context) error { return repos.Users.MarkSynced(ctx, user.ID, user.UpdatedAt) },
			pull: func(ctx context.Context, doc remote.Document) error {
				return repos.Users.Upsert(ctx, DecodeUser(doc, s.now()))
			},
		})
	}

	goals, err := repos.Goals.ListUnsynced(ctx, uid)
	if err != nil {
		return rep, fmt.Errorf("failed to scan goals: %w", err)
	}
	for _, g := range goals {
		s.push(ctx, &rep, record{
			kind: "goal", id: g.ID, path: remote.GoalPath(uid, g.ID), updatedAt: g.UpdatedAt,
			fields:     EncodeGoal(g),
			markSynced: func(ctx context.Context) error { return repos.Goals.MarkSynced(ctx, g.ID, g.UpdatedAt) },
			pull: func(ctx context.Context, doc remote.Document) error {
				return repos.Goals.Upsert(ctx, DecodeGoal(doc, s.now()))
			},
		})
	}

	deleted, err := repos.Meals.ListDeletedUnsynced(ctx, uid)
	if err != nil {
		return rep, fmt.Errorf("failed to scan deleted meals: %w", err)
	}
	for _, m := range deleted {
		s.deleteMeal(ctx, &rep, uid, m.ID)
	}

	meals, err := repos.Meals.ListUnsynced(ctx, uid)
	if err != nil {
		return rep, fmt.Errorf("failed to scan meals: %w", err)
	}
	for _, m := range meals {
		s.push(ctx, &rep, record{
			kind: "meal", id: m.ID, path: remote.MealPath(uid, m.ID), updatedAt: m.UpdatedAt,
			fields:     EncodeMeal(m),
			markSynced: func(ctx context.Context) error { return repos.Meals.MarkSynced(ctx, m.ID, m.UpdatedAt) },
			pull: func(ctx context.Context, doc remote.Document) error {
				return repos.Meals.Upsert(ctx, DecodeMeal(doc, s.now()))
			},
		})
	}

	foods, err := repos.Foods.ListUnsynced(ctx, uid)
	if err != nil {
		return rep, fmt.Errorf("failed to scan foods: %w", err)
	}
	for _, f := range foods {
		s.push(ctx, &rep, record{
			kind: "food", id: f.ID, path: remote.FoodPath(uid, f.MealID, f.ID), updatedAt: f.UpdatedAt,
			fields:     EncodeFood(f),
			markSynced: func(ctx context.Context) error { return repos.Foods.MarkSynced(ctx, f.ID, f.UpdatedAt) },
			pull: func(ctx context.Context, doc remote.Document) error {
				return repos.Foods.Upsert(ctx, DecodeFood(doc, s.now()))
			},
		})
	}

	summaries, err := repos.Summaries.ListUnsynced(ctx, uid)
	if err != nil {
		return rep, fmt.Errorf("failed to scan summaries: %w", err)
	}
	for _, sm := range summaries {
		s.push(ctx, &rep, record{
			kind: "summary", id: sm.ID, path: remote.SummaryPath(uid, sm.ID), updatedAt: sm.UpdatedAt,
			fields:     EncodeSummary(sm),
			markSynced: func(ctx context.Context) error { return repos.Summaries.MarkSynced(ctx, sm.ID, sm.UpdatedAt) },
			pull: func(ctx context.Context, doc remote.Document) error {
				return repos.Summaries.Upsert(ctx, DecodeSummary(doc, s.now()))
			},
		})
	}

	if rep.Total() > 0 {
		s.logger.Info(ctx, "upload pass finished", "uid", uid,
			"uploaded", rep.Uploaded, "deleted", rep.Deleted, "pulled", rep.Pulled, "failed", rep.Failed)
	}
	return rep, nil
}

func (s *Syncer) push(ctx context.Context, rep *UploadReport, rec record) {
	if s.resolver.Compares() {
		remoteV := Version{ID: rec.id}
		doc, err := s.remote.Read(ctx, rec.path)
		switch {
		case errors.Is(err, remote.ErrNotFound):
		case err != nil:
			s.fail(ctx, rep, rec.kind, rec.id, "failed to read remote copy", err)
			return
		default:
			remoteV = versionOf(doc)
		}

		local := Version{ID: rec.id, UpdatedAt: rec.updatedAt, Exists: true}
		if s.resolver.Resolve(Upload, local, remoteV) == RemoteWins {
			if err := rec.pull(ctx, doc); err != nil {
				s.fail(ctx, rep, rec.kind, rec.id, "failed to store remote copy", err)
				return
			}
			rep.Pulled++
			return
		}
	}

	if err := s.remote.Write(ctx, rec.path, rec.fields); err != nil {
		s.fail(ctx, rep, rec.kind, rec.id, "failed to upload record", err)
		return
	}
	if err := rec.markSynced(ctx); err != nil {
		// the remote copy is current; the next pass rewrites it unchanged
		s.fail(ctx, rep, rec.kind, rec.id, "failed to mark record synced", err)
		return
	}
	rep.Uploaded++
}

// deleteMeal removes the meal document with its foods remotely, then drops
// the local row (foods cascade).
func (s *Syncer) deleteMeal(ctx context.Context, rep *UploadReport, uid, mealID string) {
	if err := s.remote.Delete(ctx, remote.MealPath(uid, mealID)); err != nil {
		s.fail(ctx, rep, "meal", mealID, "failed to delete remote meal", err)
		return
	}
	if err := s.store.Repos().Meals.Delete(ctx, mealID); err != nil {
		s.fail(ctx, rep, "meal", mealID, "failed to delete local meal", err)
		return
	}
	rep.Deleted++
}

func (s *Syncer) fail(ctx context.Context, rep *UploadReport, kind, id, msg string, err error) {
	rep.Failed++
	s.logger.Warn(ctx, msg, "kind", kind, "id", id, "error", err)
}

// Pending counts the dirty records of uid without touching the network.
func (s *Syncer) Pending(ctx context.Context, uid string) (int, error) {
	repos := s.store.Repos()
	n := 0

	user, err := repos.Users.GetUnsynced(ctx, uid)
	if err != nil {
		return 0, err
	}
	if user != nil {
		n++
	}
	goals, err := repos.Goals.ListUnsynced(ctx, uid)
	if err != nil {
		return 0, err
	}
	deleted, err := repos.Meals.ListDeletedUnsynced(ctx, uid)
	if err != nil {
		return 0, err
	}
	meals, err := repos.Meals.ListUnsynced(ctx, uid)
	if err != nil {
		return 0, err
	}
	foods, err := repos.Foods.ListUnsynced(ctx, uid)
	if err != nil {
		return 0, err
	}
	summaries, err := repos.Summaries.ListUnsynced(ctx, uid)
	if err != nil {
		return 0, err
	}
	return n + len(goals) + len(deleted) + len(meals) + len(foods) + len(summaries), nil
}
