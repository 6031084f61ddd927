package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/logging"
	"github.com/sethvargo/go-retry"
)

type Options struct {
	BackoffBase time.Duration
	BackoffCap  time.Duration
	// JitterPercent spreads each retry delay by up to this share of it.
	// Zero selects the default of 10.
	JitterPercent uint64
	// MaxAttempts bounds consecutive Retry results; zero means unbounded.
	MaxAttempts int
	// RecheckInterval re-evaluates constraints of blocked work.
	RecheckInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.BackoffBase <= 0 {
		o.BackoffBase = 30 * time.Second
	}
	if o.BackoffCap <= 0 {
		o.BackoffCap = time.Hour
	}
	if o.JitterPercent == 0 {
		o.JitterPercent = 10
	}
	if o.RecheckInterval <= 0 {
		o.RecheckInterval = time.Minute
	}
	return o
}

type State int

const (
	Idle State = iota
	Enqueued
	Blocked
	Running
)

func (s State) String() string {
	switch s {
	case Enqueued:
		return "enqueued"
	case Blocked:
		return "blocked"
	case Running:
		return "running"
	default:
		return "idle"
	}
}

// Info is a snapshot of one named unit.
type Info struct {
	Name       string
	State      State
	Periodic   bool
	Runs       int
	Attempt    int
	LastResult Result
	LastRun    time.Time
	NextRun    time.Time
}

type unit struct {
	name     string
	pending  *WorkRequest
	running  bool
	cancel   context.CancelFunc
	nextRun  time.Time
	backoff  retry.Backoff
	attempt  int
	periodic *PeriodicRequest

	runs       int
	lastResult Result
	lastRun    time.Time
}

type Scheduler struct {
	opts   Options
	logger logging.Logger
	now    func() time.Time

	mu    sync.Mutex
	units map[string]*unit
	wg    sync.WaitGroup
	wake  chan struct{}
}

func New(opts Options, l logging.Logger) *Scheduler {
	return &Scheduler{
		opts:   opts.withDefaults(),
		logger: l.With("module", "scheduler"),
		now:    time.Now,
		units:  make(map[string]*unit),
		wake:   make(chan struct{}, 1),
	}
}

// Enqueue submits one-off work under req.Name according to req.Policy.
// It reports whether the request was accepted.
func (s *Scheduler) Enqueue(req WorkRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.unit(req.Name)
	busy := u.running || u.pending != nil

	switch req.Policy {
	case Keep:
		if busy {
			return false
		}
	case Replace:
		if u.running && u.cancel != nil {
			u.cancel()
		}
	}

	r := req
	u.pending = &r
	u.nextRun = time.Time{}
	u.backoff = nil
	u.attempt = 0
	s.poke()
	return true
}

// EnqueuePeriodic schedules req unless its name is already periodic. The
// first run is due immediately.
func (s *Scheduler) EnqueuePeriodic(req PeriodicRequest) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.unit(req.Name)
	if u.periodic != nil {
		return false
	}
	r := req
	u.periodic = &r
	if !u.running && u.pending == nil {
		u.pending = r.workRequest()
		u.nextRun = time.Time{}
	}
	s.poke()
	return true
}

func (r *PeriodicRequest) workRequest() *WorkRequest {
	return &WorkRequest{Name: r.Name, Job: r.Job, Policy: Keep, Constraints: r.Constraints}
}

// Cancel drops queued work for name and cancels a running instance.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.units[name]
	if !ok {
		return
	}
	if u.running && u.cancel != nil {
		u.cancel()
	}
	delete(s.units, name)
}

// Poke re-evaluates constraints now.
func (s *Scheduler) Poke() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.poke()
}

func (s *Scheduler) poke() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) Info(name string) (Info, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[name]
	if !ok {
		return Info{}, false
	}
	return s.info(u), true
}

func (s *Scheduler) List() []Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Info, 0, len(s.units))
	for _, u := range s.units {
		out = append(out, s.info(u))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *Scheduler) info(u *unit) Info {
	st := Idle
	switch {
	case u.running:
		st = Running
	case u.pending != nil && !satisfied(u.pending.Constraints):
		st = Blocked
	case u.pending != nil:
		st = Enqueued
	}
	return Info{
		Name: u.name, State: st, Periodic: u.periodic != nil,
		Runs: u.runs, Attempt: u.attempt, LastResult: u.lastResult,
		LastRun: u.lastRun, NextRun: u.nextRun,
	}
}

func (s *Scheduler) unit(name string) *unit {
	u, ok := s.units[name]
	if !ok {
		u = &unit{name: name}
		s.units[name] = u
	}
	return u
}

// Run dispatches work until ctx is done, then cancels running jobs and waits
// for them to return.
func (s *Scheduler) Run(ctx context.Context) error {
	recheck := time.NewTicker(s.opts.RecheckInterval)
	defer recheck.Stop()

	timer := time.NewTimer(time.Hour)
	defer timer.Stop()

	for {
		next := s.dispatch(ctx)

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		if !next.IsZero() {
			timer.Reset(time.Until(next))
		}

		select {
		case <-ctx.Done():
			s.stopAll()
			s.wg.Wait()
			return nil
		case <-s.wake:
		case <-recheck.C:
		case <-timer.C:
		}
	}
}

// dispatch starts every ready unit and returns the earliest future due time.
func (s *Scheduler) dispatch(ctx context.Context) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var ready []*unit
	var next time.Time
	for _, u := range s.units {
		if u.running || u.pending == nil {
			continue
		}
		if u.nextRun.After(now) {
			if next.IsZero() || u.nextRun.Before(next) {
				next = u.nextRun
			}
			continue
		}
		if !satisfied(u.pending.Constraints) {
			continue
		}
		ready = append(ready, u)
	}
	sort.Slice(ready, func(i, j int) bool {
		if ready[i].pending.Expedited != ready[j].pending.Expedited {
			return ready[i].pending.Expedited
		}
		return ready[i].name < ready[j].name
	})

	for _, u := range ready {
		s.start(ctx, u)
	}
	return next
}

func (s *Scheduler) start(ctx context.Context, u *unit) {
	req := u.pending
	u.pending = nil
	u.running = true
	u.lastRun = s.now()
	attempt := u.attempt
	runCtx, cancel := context.WithCancel(ctx)
	u.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()

		s.logger.Debug(runCtx, "job started", "name", req.Name, "attempt", attempt)
		res := s.execute(runCtx, req)
		s.finish(u, req, res, runCtx.Err() != nil)
	}()
}

func (s *Scheduler) execute(ctx context.Context, req *WorkRequest) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			s.logger.Error(ctx, "job panicked", "name", req.Name, "panic", p)
			res = Failure
		}
	}()
	return req.Job(ctx)
}

func (s *Scheduler) finish(u *unit, req *WorkRequest, res Result, cancelled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer s.poke()

	u.running = false
	u.cancel = nil
	u.runs++
	u.lastResult = res

	ctx := context.Background()
	if s.units[u.name] != u {
		// cancelled and removed
		return
	}

	if cancelled {
		s.logger.Debug(ctx, "job cancelled", "name", u.name)
		s.reschedulePeriodic(u)
		return
	}

	if res == Retry && u.pending == nil {
		if u.backoff == nil {
			u.backoff = s.newBackoff()
		}
		delay, stop := u.backoff.Next()
		if !stop {
			u.attempt++
			u.pending = req
			u.nextRun = s.now().Add(delay)
			s.logger.Info(ctx, "job will retry", "name", u.name, "attempt", u.attempt, "delay", delay.String())
			return
		}
		s.logger.Warn(ctx, "job gave up after retries", "name", u.name, "attempts", u.attempt)
		res = Failure
	}

	if res == Failure {
		s.logger.Warn(ctx, "job failed", "name", u.name)
	}
	u.attempt = 0
	u.backoff = nil
	s.reschedulePeriodic(u)
}

func (s *Scheduler) reschedulePeriodic(u *unit) {
	if u.periodic == nil || u.pending != nil {
		return
	}
	u.pending = u.periodic.workRequest()
	u.nextRun = u.lastRun.Add(u.periodic.Interval)
}

func (s *Scheduler) newBackoff() retry.Backoff {
	b := retry.NewExponential(s.opts.BackoffBase)
	// capped before and after the jitter; the raw exponential overflows
	b = retry.WithCappedDuration(s.opts.BackoffCap, b)
	b = retry.WithJitterPercent(s.opts.JitterPercent, b)
	b = retry.WithCappedDuration(s.opts.BackoffCap, b)
	if s.opts.MaxAttempts > 0 {
		b = retry.WithMaxRetries(uint64(s.opts.MaxAttempts), b)
	}
	return b
}

func (s *Scheduler) stopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.units {
		if u.cancel != nil {
			u.cancel()
		}
	}
}
