package connectivity

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	mu       sync.Mutex
	current  Status
	onChange func(Status)
	starts   int
	stops    int
	// afterRead runs once, after Current has read the state it returns.
	afterRead func()
}

func (f *fakeSource) Current() Status {
	f.mu.Lock()
	st := f.current
	hook := f.afterRead
	f.afterRead = nil
	f.mu.Unlock()
	if hook != nil {
		hook()
	}
	return st
}

func (f *fakeSource) Start(cb func(Status)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts++
	f.onChange = cb
	return nil
}

func (f *fakeSource) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	f.onChange = nil
}

func (f *fakeSource) emit(st Status) {
	f.mu.Lock()
	f.current = st
	cb := f.onChange
	f.mu.Unlock()
	if cb != nil {
		cb(st)
	}
}

func (f *fakeSource) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.starts, f.stops
}

func recv(t *testing.T, ch <-chan Status) Status {
	t.Helper()
	select {
	case st, ok := <-ch:
		require.True(t, ok, "channel closed")
		return st
	case <-time.After(2 * time.Second):
		t.Fatal("no status received")
		return Unavailable
	}
}

func TestSubscribe_FirstValueIsCurrent(t *testing.T) {
	src := &fakeSource{current: Lost}
	m := NewMonitor(src, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := m.Subscribe(ctx)
	assert.Equal(t, Lost, recv(t, ch))
}

func TestSubscribe_SuppressesDuplicatesAndKeepsOrder(t *testing.T) {
	src := &fakeSource{current: Available}
	m := NewMonitor(src, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := m.Subscribe(ctx)
	src.emit(Available)
	src.emit(Losing)
	src.emit(Losing)
	src.emit(Lost)
	src.emit(Available)

	assert.Equal(t, Available, recv(t, ch))
	assert.Equal(t, Losing, recv(t, ch))
	assert.Equal(t, Lost, recv(t, ch))
	assert.Equal(t, Available, recv(t, ch))

	select {
	case st := <-ch:
		t.Fatalf("unexpected extra status %v", st)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribe_SharesSourceAndStopsWithLastSubscriber(t *testing.T) {
	src := &fakeSource{current: Available}
	m := NewMonitor(src, logging.Discard())

	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	ch1 := m.Subscribe(ctx1)
	ch2 := m.Subscribe(ctx2)
	recv(t, ch1)
	recv(t, ch2)

	starts, stops := src.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 0, stops)

	cancel1()
	for range ch1 {
	}
	_, stops = src.counts()
	assert.Equal(t, 0, stops)

	src.emit(Lost)
	assert.Equal(t, Lost, recv(t, ch2))

	cancel2()
	for range ch2 {
	}
	starts, stops = src.counts()
	assert.Equal(t, 1, starts)
	assert.Equal(t, 1, stops)
	assert.Equal(t, 0, m.Subscribers())

	ch3 := m.Subscribe(context.Background())
	assert.Equal(t, Lost, recv(t, ch3))
	starts, _ = src.counts()
	assert.Equal(t, 2, starts)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "available", Available.String())
	assert.Equal(t, "losing", Losing.String())
	assert.Equal(t, "lost", Lost.String())
	assert.Equal(t, "unavailable", Unavailable.String())
}

func TestSubscribe_TransitionDuringSubscribeIsDelivered(t *testing.T) {
	src := &fakeSource{current: Available}
	m := NewMonitor(src, logging.Discard())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first := m.Subscribe(ctx)
	require.Equal(t, Available, recv(t, first))

	src.mu.Lock()
	src.afterRead = func() {
		done := make(chan struct{})
		go func() {
			defer close(done)
			src.emit(Lost)
		}()
		select {
		case <-done:
		case <-time.After(50 * time.Millisecond):
		}
	}
	src.mu.Unlock()

	second := m.Subscribe(ctx)
	st := recv(t, second)
	if st != Lost {
		assert.Equal(t, Available, st)
		assert.Equal(t, Lost, recv(t, second))
	}
	assert.Equal(t, Lost, recv(t, first))
}
