package store

import "sync"

// cascades lists the tables whose rows disappear with a parent row.
var cascades = map[string][]string{
	TableUsers: {TableGoals, TableMeals, TableFoods, TableSummaries},
	TableMeals: {TableFoods},
}

type subscriber struct {
	tables map[string]struct{}
	ch     chan struct{}
}

type hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*subscriber
	closed bool
}

func newHub() *hub {
	return &hub{subs: make(map[int]*subscriber)}
}

func (h *hub) subscribe(tables []string) (<-chan struct{}, func()) {
	sub := &subscriber{ch: make(chan struct{}, 1)}
	if len(tables) > 0 {
		sub.tables = make(map[string]struct{}, len(tables))
		for _, t := range tables {
			sub.tables[t] = struct{}{}
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(sub.ch)
		return sub.ch, func() {}
	}
	id := h.nextID
	h.nextID++
	h.subs[id] = sub

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub.ch)
			}
		})
	}
}

func (h *hub) publish(tables ...string) {
	if len(tables) == 0 {
		return
	}
	changed := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		changed[t] = struct{}{}
		for _, c := range cascades[t] {
			changed[c] = struct{}{}
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs {
		if !sub.wants(changed) {
			continue
		}
		select {
		case sub.ch <- struct{}{}:
		default:
		}
	}
}

func (h *hub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, sub := range h.subs {
		close(sub.ch)
		delete(h.subs, id)
	}
}

func (s *subscriber) wants(changed map[string]struct{}) bool {
	if s.tables == nil {
		return true
	}
	for t := range changed {
		if _, ok := s.tables[t]; ok {
			return true
		}
	}
	return false
}
