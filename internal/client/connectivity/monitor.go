package connectivity

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/healthsync/internal/logging"
)

// Monitor fans a Source out to subscribers. The source runs only while at
// least one subscriber is active.
type Monitor struct {
	src    Source
	logger logging.Logger

	mu     sync.Mutex
	subs   map[int]*subscriber
	nextID int

	refMu sync.Mutex
	refs  int
}

func NewMonitor(src Source, l logging.Logger) *Monitor {
	return &Monitor{
		src:    src,
		logger: l.With("module", "connectivity"),
		subs:   make(map[int]*subscriber),
	}
}

// Current returns the state computed from current capabilities.
func (m *Monitor) Current() Status {
	return m.src.Current()
}

// Subscribe returns a channel whose first value is the current state and
// which then carries every change. Consecutive duplicates are dropped. The
// channel is closed after ctx is done.
func (m *Monitor) Subscribe(ctx context.Context) <-chan Status {
	out := make(chan Status)
	s := newSubscriber()

	// dispatch holds mu too, so no transition falls between the initial
	// state and registration
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subs[id] = s
	s.push(m.src.Current())
	m.mu.Unlock()

	m.refMu.Lock()
	m.refs++
	if m.refs == 1 {
		if err := m.src.Start(m.dispatch); err != nil {
			m.logger.Warn(ctx, "failed to start connectivity source", "error", err)
		}
	}
	m.refMu.Unlock()

	go func() {
		defer close(out)
		defer m.unsubscribe(id)
		s.run(ctx, out)
	}()

	return out
}

// Subscribers reports how many subscriptions are active.
func (m *Monitor) Subscribers() int {
	m.refMu.Lock()
	defer m.refMu.Unlock()
	return m.refs
}

func (m *Monitor) unsubscribe(id int) {
	m.mu.Lock()
	delete(m.subs, id)
	m.mu.Unlock()

	m.refMu.Lock()
	defer m.refMu.Unlock()
	m.refs--
	if m.refs == 0 {
		m.src.Stop()
	}
}

func (m *Monitor) dispatch(st Status) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		s.push(st)
	}
}

// subscriber queues states so a slow reader never blocks the source and
// never misses a transition.
type subscriber struct {
	mu      sync.Mutex
	queue   []Status
	last    Status
	hasLast bool
	wake    chan struct{}
}

func newSubscriber() *subscriber {
	return &subscriber{wake: make(chan struct{}, 1)}
}

func (s *subscriber) push(st Status) {
	s.mu.Lock()
	if s.hasLast && s.last == st {
		s.mu.Unlock()
		return
	}
	s.last, s.hasLast = st, true
	s.queue = append(s.queue, st)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) pop() (Status, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return 0, false
	}
	st := s.queue[0]
	s.queue = s.queue[1:]
	return st, true
}

func (s *subscriber) run(ctx context.Context, out chan<- Status) {
	for {
		for {
			st, ok := s.pop()
			if !ok {
				break
			}
			select {
			case out <- st:
			case <-ctx.Done():
				return
			}
		}
		select {
		case <-s.wake:
		case <-ctx.Done():
			return
		}
	}
}
