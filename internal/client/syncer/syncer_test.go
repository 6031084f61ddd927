package syncer

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/client/models"
	"github.com/dmitrijs2005/healthsync/internal/client/remote"
	"github.com/dmitrijs2005/healthsync/internal/client/store"
	"github.com/dmitrijs2005/healthsync/internal/common"
	"github.com/dmitrijs2005/healthsync/internal/logging"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRemote wraps a MemoryStore, counts calls and fails on demand.
type fakeRemote struct {
	*remote.MemoryStore

	mu    sync.Mutex
	calls int
	// failOn makes any call whose path contains the key return the error.
	failOn map[string]error
	// beforeWrite runs before a write is applied.
	beforeWrite func(path string)
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{MemoryStore: remote.NewMemoryStore(), failOn: map[string]error{}}
}

func (f *fakeRemote) check(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	for k, err := range f.failOn {
		if strings.Contains(path, k) {
			return err
		}
	}
	return nil
}

func (f *fakeRemote) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeRemote) Write(ctx context.Context, path string, fields map[string]any) error {
	if err := f.check(path); err != nil {
		return err
	}
	if f.beforeWrite != nil {
		f.beforeWrite(path)
	}
	return f.MemoryStore.Write(ctx, path, fields)
}

func (f *fakeRemote) Read(ctx context.Context, path string) (remote.Document, error) {
	if err := f.check(path); err != nil {
		return remote.Document{}, err
	}
	return f.MemoryStore.Read(ctx, path)
}

func (f *fakeRemote) ReadCollection(ctx context.Context, path string) ([]remote.Document, error) {
	if err := f.check(path); err != nil {
		return nil, err
	}
	return f.MemoryStore.ReadCollection(ctx, path)
}

func (f *fakeRemote) Delete(ctx context.Context, path string) error {
	if err := f.check(path); err != nil {
		return err
	}
	return f.MemoryStore.Delete(ctx, path)
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(context.Background(), filepath.Join(t.TempDir(), "local.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// seed writes one dirty record of every kind for u1.
func seed(t *testing.T, st *store.Store) {
	t.Helper()
	ctx := context.Background()
	r := st.Repos()
	require.NoError(t, r.Users.Upsert(ctx, fixtureUser()))
	require.NoError(t, r.Goals.Upsert(ctx, fixtureGoal()))
	require.NoError(t, r.Meals.Upsert(ctx, fixtureMeal()))
	require.NoError(t, r.Foods.Upsert(ctx, fixtureFood()))
	second := fixtureFood()
	second.ID, second.Name, second.Unit = "f2", "Milk", models.UnitMilliliter
	require.NoError(t, r.Foods.Upsert(ctx, second))
	require.NoError(t, r.Summaries.Upsert(ctx, fixtureSummary()))
}

func newSyncer(st *store.Store, rs remote.DocumentStore, opts ...Option) *Syncer {
	return New(st, rs, logging.Discard(), opts...)
}

func TestUploadAll_NotSignedIn(t *testing.T) {
	s := newSyncer(openStore(t), newFakeRemote())
	_, err := s.UploadAll(context.Background(), "")
	require.ErrorIs(t, err, common.ErrNotSignedIn)
}

func TestUploadAll_NothingDirtyMakesNoCalls(t *testing.T) {
	rs := newFakeRemote()
	s := newSyncer(openStore(t), rs)

	rep, err := s.UploadAll(context.Background(), "u1")
	require.NoError(t, err)
	assert.Zero(t, rep.Total())
	assert.Zero(t, rs.Calls())
}

func TestUploadAll_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	seed(t, st)
	rs := newFakeRemote()
	s := newSyncer(st, rs)

	rep, err := s.UploadAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, UploadReport{Uploaded: 6}, rep)
	assert.ElementsMatch(t, []string{
		"users/u1",
		"users/u1/goals/g1",
		"users/u1/meals/m1",
		"users/u1/meals/m1/foods/f1",
		"users/u1/meals/m1/foods/f2",
		"users/u1/summaries/s1",
	}, rs.Paths())

	pending, err := s.Pending(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, pending)

	calls := rs.Calls()
	rep, err = s.UploadAll(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, rep.Total())
	assert.Equal(t, calls, rs.Calls(), "second pass must not touch the remote")
}

func TestUploadAll_RecordFailureDoesNotStopPass(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	seed(t, st)
	rs := newFakeRemote()
	rs.failOn["goals/g1"] = remote.ErrUnavailable
	s := newSyncer(st, rs)

	rep, err := s.UploadAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Failed)
	assert.Equal(t, 5, rep.Uploaded)

	goals, err := st.Repos().Goals.ListUnsynced(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, goals, 1, "failed record stays dirty")

	delete(rs.failOn, "goals/g1")
	rep, err = s.UploadAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, UploadReport{Uploaded: 1}, rep)
}

func TestUploadAll_ScanFailureReturnsError(t *testing.T) {
	st := openStore(t)
	s := newSyncer(st, newFakeRemote())
	require.NoError(t, st.Close())

	_, err := s.UploadAll(context.Background(), "u1")
	require.Error(t, err)
}

func TestUploadAll_EditDuringUploadStaysDirty(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	require.NoError(t, st.Repos().Users.Upsert(ctx, fixtureUser()))

	rs := newFakeRemote()
	rs.beforeWrite = func(string) {
		u := fixtureUser()
		u.Name = "Ada L."
		u.Touch(fixtureTime.Add(time.Minute))
		require.NoError(t, st.Repos().Users.Upsert(ctx, u))
	}
	s := newSyncer(st, rs)

	_, err := s.UploadAll(ctx, "u1")
	require.NoError(t, err)

	u, err := st.Repos().Users.GetUnsynced(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.Equal(t, "Ada L.", u.Name)
}

func TestUploadAll_EditInSameMillisecondStaysDirty(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	require.NoError(t, st.Repos().Users.Upsert(ctx, fixtureUser()))

	rs := newFakeRemote()
	edited := false
	rs.beforeWrite = func(path string) {
		if edited || path != remote.UserPath("u1") {
			return
		}
		edited = true
		u := fixtureUser()
		u.Name = "Ada L."
		u.Touch(fixtureTime.Add(300 * time.Microsecond))
		require.NoError(t, st.Repos().Users.Upsert(ctx, u))
	}
	s := newSyncer(st, rs)

	_, err := s.UploadAll(ctx, "u1")
	require.NoError(t, err)

	u, err := st.Repos().Users.GetUnsynced(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, u, "an edit sharing the uploaded millisecond must stay dirty")
	assert.Equal(t, "Ada L.", u.Name)

	doc, err := rs.MemoryStore.Read(ctx, remote.UserPath("u1"))
	require.NoError(t, err)
	assert.Equal(t, "Ada", doc.Fields["name"])

	_, err = s.UploadAll(ctx, "u1")
	require.NoError(t, err)
	doc, err = rs.MemoryStore.Read(ctx, remote.UserPath("u1"))
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", doc.Fields["name"])
	u, err = st.Repos().Users.GetUnsynced(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestUploadAll_SoftDeletedMealIsRemovedEverywhere(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	seed(t, st)
	rs := newFakeRemote()
	s := newSyncer(st, rs)

	_, err := s.UploadAll(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, st.Repos().Meals.MarkDeleted(ctx, "m1", fixtureTime.Add(time.Hour)))
	rep, err := s.UploadAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, UploadReport{Deleted: 1}, rep)

	for _, p := range rs.Paths() {
		assert.False(t, strings.HasPrefix(p, "users/u1/meals/"), "remote still has %s", p)
	}
	_, err = st.Repos().Meals.GetByID(ctx, "m1")
	require.ErrorIs(t, err, common.ErrNotFound)
	foods, err := st.Repos().Foods.ListByMeal(ctx, "m1")
	require.NoError(t, err)
	assert.Empty(t, foods)
}

func TestUploadAll_FailedRemoteDeleteKeepsTombstone(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	seed(t, st)
	rs := newFakeRemote()
	s := newSyncer(st, rs)
	_, err := s.UploadAll(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, st.Repos().Meals.MarkDeleted(ctx, "m1", fixtureTime.Add(time.Hour)))
	rs.failOn["meals/m1"] = remote.ErrUnavailable
	rep, err := s.UploadAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, UploadReport{Failed: 1}, rep)

	m, err := st.Repos().Meals.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, m.IsDeleted)
}

func TestDownloadAll_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := openStore(t)
	seed(t, src)
	rs := newFakeRemote()
	_, err := newSyncer(src, rs).UploadAll(ctx, "u1")
	require.NoError(t, err)

	dst := openStore(t)
	require.NoError(t, newSyncer(dst, rs).DownloadAll(ctx, "u1"))

	r := dst.Repos()
	u, err := r.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	want := fixtureUser()
	want.IsSynced = true
	assert.Empty(t, cmp.Diff(want, u))

	meal, err := r.Meals.GetByID(ctx, "m1")
	require.NoError(t, err)
	wantMeal := fixtureMeal()
	wantMeal.IsSynced = true
	assert.Empty(t, cmp.Diff(wantMeal, meal))

	foods, err := r.Foods.ListByMeal(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, foods, 2)
	names := []string{foods[0].Name, foods[1].Name}
	assert.ElementsMatch(t, []string{"Oatmeal", "Milk"}, names)

	sm, err := r.Summaries.GetByDate(ctx, "u1", "2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, "s1", sm.ID)
	assert.True(t, sm.IsSynced)

	goal, err := r.Goals.GetActive(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "g1", goal.ID)

	pending, err := newSyncer(dst, rs).Pending(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, pending, "restored rows are clean")
}

func TestDownloadAll_BootstrapNoop(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	rs := newFakeRemote()

	require.NoError(t, newSyncer(st, rs).DownloadAll(ctx, "u1"))
	_, err := st.Repos().Users.GetByID(ctx, "u1")
	require.ErrorIs(t, err, common.ErrNotFound)
	assert.Equal(t, 1, rs.Calls(), "only the profile is read")
}

// localState reads every table row owned by uid.
type localState struct {
	User      *models.User
	Goals     []*models.Goal
	Meals     []*models.Meal
	Foods     []*models.Food
	Summaries []*models.DailySummary
}

func snapshot(t *testing.T, st *store.Store, uid string) localState {
	t.Helper()
	ctx := context.Background()
	r := st.Repos()

	var (
		s   localState
		err error
	)
	s.User, err = r.Users.GetByID(ctx, uid)
	require.NoError(t, err)
	s.Goals, err = r.Goals.ListByUser(ctx, uid)
	require.NoError(t, err)
	s.Meals, err = r.Meals.ListByUser(ctx, uid, time.Time{}, time.Time{})
	require.NoError(t, err)
	for _, m := range s.Meals {
		foods, err := r.Foods.ListByMeal(ctx, m.ID)
		require.NoError(t, err)
		s.Foods = append(s.Foods, foods...)
	}
	s.Summaries, err = r.Summaries.ListByUser(ctx, uid)
	require.NoError(t, err)
	return s
}

func TestDownloadAll_IsAtomic(t *testing.T) {
	ctx := context.Background()
	src := openStore(t)
	seed(t, src)
	rs := newFakeRemote()
	_, err := newSyncer(src, rs).UploadAll(ctx, "u1")
	require.NoError(t, err)

	dst := openStore(t)
	r := dst.Repos()
	local := fixtureUser()
	local.Name = "Local Ada"
	local.Touch(fixtureTime.Add(time.Hour))
	require.NoError(t, r.Users.Upsert(ctx, local))
	goal := fixtureGoal()
	goal.CalorieTarget = 2500
	goal.Touch(fixtureTime.Add(time.Hour))
	require.NoError(t, r.Goals.Upsert(ctx, goal))
	meal := fixtureMeal()
	meal.TotalCalories = 999
	meal.Touch(fixtureTime.Add(time.Hour))
	require.NoError(t, r.Meals.Upsert(ctx, meal))
	before := snapshot(t, dst, "u1")

	// Goals and the first meal are already written when the foods read fails.
	rs.failOn["/foods"] = remote.ErrUnavailable
	err = newSyncer(dst, rs).DownloadAll(ctx, "u1")
	require.ErrorIs(t, err, remote.ErrUnavailable)

	after := snapshot(t, dst, "u1")
	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("local state changed by a failed restore (-before +after):\n%s", diff)
	}
	assert.False(t, after.User.IsSynced)
	require.Len(t, after.Goals, 1)
	assert.False(t, after.Goals[0].IsSynced)
	require.Len(t, after.Meals, 1)
	assert.False(t, after.Meals[0].IsSynced)
}

func TestDownloadAll_FailureOnEmptyStoreLeavesItEmpty(t *testing.T) {
	ctx := context.Background()
	src := openStore(t)
	seed(t, src)
	rs := newFakeRemote()
	_, err := newSyncer(src, rs).UploadAll(ctx, "u1")
	require.NoError(t, err)

	rs.failOn["/summaries"] = remote.ErrUnavailable
	dst := openStore(t)
	err = newSyncer(dst, rs).DownloadAll(ctx, "u1")
	require.ErrorIs(t, err, remote.ErrUnavailable)

	_, err = dst.Repos().Users.GetByID(ctx, "u1")
	require.ErrorIs(t, err, common.ErrNotFound, "profile upsert rolled back")
	_, err = dst.Repos().Meals.GetByID(ctx, "m1")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestDownloadProfile(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	rs := newFakeRemote()
	s := newSyncer(st, rs, WithClock(func() time.Time { return fixtureTime }))

	ok, err := s.DownloadProfile(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rs.MemoryStore.Write(ctx, "users/u1", map[string]any{"name": "Ada"}))
	ok, err = s.DownloadProfile(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)

	u, err := st.Repos().Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, fixtureTime, u.UpdatedAt, "missing updatedAt takes the clock")
	assert.True(t, u.IsSynced)

	rs.failOn["users/u1"] = remote.ErrUnauthorized
	_, err = s.DownloadProfile(ctx, "u1")
	require.ErrorIs(t, err, remote.ErrUnauthorized)
}

func TestConvergence_TwoDevices(t *testing.T) {
	ctx := context.Background()
	rs := newFakeRemote()
	phone, tablet := openStore(t), openStore(t)
	seed(t, phone)

	_, err := newSyncer(phone, rs).UploadAll(ctx, "u1")
	require.NoError(t, err)
	require.NoError(t, newSyncer(tablet, rs).DownloadAll(ctx, "u1"))

	u, err := tablet.Repos().Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	u.WeightKg = 61
	u.Touch(fixtureTime.Add(24 * time.Hour))
	require.NoError(t, tablet.Repos().Users.Upsert(ctx, u))
	_, err = newSyncer(tablet, rs).UploadAll(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, newSyncer(phone, rs).DownloadAll(ctx, "u1"))

	a, err := phone.Repos().Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	b, err := tablet.Repos().Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(a, b))
	assert.Equal(t, 61.0, a.WeightKg)
}

func TestNewestWins(t *testing.T) {
	ctx := context.Background()
	rs := newFakeRemote()
	st := openStore(t)
	s := newSyncer(st, rs, WithResolver(NewestWinsResolver{}))

	// remote copy is newer than the local edit
	newer := EncodeUser(fixtureUser())
	newer["name"] = "Remote"
	newer["updatedAt"] = fixtureTime.Add(time.Hour).UnixMilli()
	require.NoError(t, rs.MemoryStore.Write(ctx, "users/u1", newer))
	require.NoError(t, st.Repos().Users.Upsert(ctx, fixtureUser()))

	rep, err := s.UploadAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, UploadReport{Pulled: 1}, rep)
	u, err := st.Repos().Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Remote", u.Name)
	assert.True(t, u.IsSynced)

	// a newer local edit survives a restore
	u.Name = "Local"
	u.Touch(fixtureTime.Add(2 * time.Hour))
	require.NoError(t, st.Repos().Users.Upsert(ctx, u))
	require.NoError(t, s.DownloadAll(ctx, "u1"))
	u, err = st.Repos().Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Local", u.Name)
	assert.False(t, u.IsSynced)

	rep, err = s.UploadAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, UploadReport{Uploaded: 1}, rep)
	doc, err := rs.MemoryStore.Read(ctx, "users/u1")
	require.NoError(t, err)
	assert.Equal(t, "Local", doc.Fields["name"])
}

func TestOverwrite_NeverReadsBeforeUpload(t *testing.T) {
	ctx := context.Background()
	rs := newFakeRemote()
	st := openStore(t)
	require.NoError(t, st.Repos().Users.Upsert(ctx, fixtureUser()))

	callsAtWrite := 0
	rs.beforeWrite = func(string) { callsAtWrite = rs.Calls() }
	_, err := newSyncer(st, rs).UploadAll(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, callsAtWrite, "the write is the first and only remote call")
}

func TestUploadAll_CancelledContext(t *testing.T) {
	st := openStore(t)
	seed(t, st)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newSyncer(st, newFakeRemote()).UploadAll(ctx, "u1")
	require.True(t, err == nil || errors.Is(err, context.Canceled))
	pending, err := newSyncer(st, newFakeRemote()).Pending(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 6, pending)
}
