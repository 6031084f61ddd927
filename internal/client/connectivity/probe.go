package connectivity

import (
	"context"
	"net"
	"path/filepath"
	"sync"
	"time"

	"github.com/dmitrijs2005/healthsync/internal/logging"
	"github.com/fsnotify/fsnotify"
)

// DefaultWatchPaths are files whose change means the OS network
// configuration moved.
var DefaultWatchPaths = []string{"/etc/resolv.conf"}

// Pinger checks that the remote end answers.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ProbeOptions struct {
	Interval time.Duration
	Timeout  time.Duration
	// LostAfter consecutive failed probes turn Losing into Lost.
	LostAfter  int
	WatchPaths []string
}

func (o ProbeOptions) withDefaults() ProbeOptions {
	if o.Interval <= 0 {
		o.Interval = 30 * time.Second
	}
	if o.Timeout <= 0 {
		o.Timeout = 5 * time.Second
	}
	if o.LostAfter <= 0 {
		o.LostAfter = 3
	}
	return o
}

// ProbeSource derives connectivity from the host's interfaces and a
// periodic Ping against the remote store.
type ProbeSource struct {
	pinger     Pinger
	opts       ProbeOptions
	logger     logging.Logger
	interfaces func() ([]net.Interface, error)

	mu       sync.Mutex
	status   Status
	probed   bool
	failures int

	runMu   sync.Mutex
	cancel  context.CancelFunc
	done    chan struct{}
	trigger chan struct{}
}

func NewProbeSource(p Pinger, opts ProbeOptions, l logging.Logger) *ProbeSource {
	return &ProbeSource{
		pinger:     p,
		opts:       opts.withDefaults(),
		logger:     l.With("module", "connectivity_probe"),
		interfaces: net.Interfaces,
		trigger:    make(chan struct{}, 1),
	}
}

// HasInterface reports whether a non-loopback interface is up.
func (p *ProbeSource) HasInterface() bool {
	ifaces, err := p.interfaces()
	if err != nil {
		return false
	}
	for _, i := range ifaces {
		if i.Flags&net.FlagUp != 0 && i.Flags&net.FlagLoopback == 0 {
			return true
		}
	}
	return false
}

func (p *ProbeSource) Current() Status {
	if !p.HasInterface() {
		return Unavailable
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.probed || p.status == Unavailable {
		return Available
	}
	return p.status
}

// Probe runs one check and returns the resulting state.
func (p *ProbeSource) Probe(ctx context.Context) Status {
	if !p.HasInterface() {
		return p.record(Unavailable, true)
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()
	if err := p.pinger.Ping(ctx); err != nil {
		p.logger.Debug(ctx, "reachability probe failed", "error", err)
		return p.record(Available, false)
	}
	return p.record(Available, true)
}

func (p *ProbeSource) record(reachable Status, ok bool) Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.probed = true
	switch {
	case reachable == Unavailable:
		p.failures = 0
		p.status = Unavailable
	case ok:
		p.failures = 0
		p.status = Available
	default:
		p.failures++
		if p.failures >= p.opts.LostAfter {
			p.status = Lost
		} else {
			p.status = Losing
		}
	}
	return p.status
}

// Trigger asks a running source to probe now.
func (p *ProbeSource) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *ProbeSource) Start(onChange func(Status)) error {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.cancel != nil {
		return nil
	}

	watcher, err := p.newWatcher()
	if err != nil {
		p.logger.Warn(context.Background(), "network config watch disabled", "error", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.loop(ctx, onChange, watcher)
	return nil
}

func (p *ProbeSource) Stop() {
	p.runMu.Lock()
	defer p.runMu.Unlock()
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
	p.cancel = nil
}

func (p *ProbeSource) newWatcher() (*fsnotify.Watcher, error) {
	if len(p.opts.WatchPaths) == 0 {
		return nil, nil
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// watch the directories: resolv.conf is usually replaced, not written
	dirs := map[string]struct{}{}
	for _, path := range p.opts.WatchPaths {
		dirs[filepath.Dir(path)] = struct{}{}
	}
	for d := range dirs {
		if err := w.Add(d); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	return w, nil
}

func (p *ProbeSource) watched(name string) bool {
	for _, path := range p.opts.WatchPaths {
		if filepath.Clean(name) == filepath.Clean(path) {
			return true
		}
	}
	return false
}

func (p *ProbeSource) loop(ctx context.Context, onChange func(Status), w *fsnotify.Watcher) {
	defer close(p.done)

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	if w != nil {
		defer w.Close()
		events, errs = w.Events, w.Errors
	}

	ticker := time.NewTicker(p.opts.Interval)
	defer ticker.Stop()

	last := p.Current()
	check := func() {
		st := p.Probe(ctx)
		if ctx.Err() != nil {
			return
		}
		if st != last {
			last = st
			onChange(st)
		}
	}

	check()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		case <-p.trigger:
			check()
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if p.watched(ev.Name) {
				p.logger.Debug(ctx, "network configuration changed", "file", ev.Name, "op", ev.Op.String())
				check()
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			p.logger.Warn(ctx, "network config watch error", "error", err)
		}
	}
}
