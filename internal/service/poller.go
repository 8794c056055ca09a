package service

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Task is one poll. Errors are logged and retried on the next tick.
type Task func(ctx context.Context) error

// PollerStatus is a point-in-time view of a poller
type PollerStatus struct {
	Name      string        `json:"name"`
	Interval  time.Duration `json:"interval"`
	Running   bool          `json:"running"`
	Runs      int           `json:"runs"`
	LastRun   time.Time     `json:"last_run,omitempty"`
	LastError string        `json:"last_error,omitempty"`
}

// Poller runs a task immediately on Start and then on every tick. The task
// runs on the poller's own goroutine, so runs never overlap; ticks and
// triggers that arrive during a run collapse into at most one more run.
type Poller struct {
	name     string
	interval time.Duration
	task     Task
	clock    Clock
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	trigger chan struct{}
	wg      sync.WaitGroup

	runs    int
	lastRun time.Time
	lastErr error
}

// NewPoller creates a new poller. A nil clock uses the wall clock.
func NewPoller(name string, interval time.Duration, task Task, clock Clock, logger *slog.Logger) *Poller {
	if clock == nil {
		clock = RealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		name:     name,
		interval: interval,
		task:     task,
		clock:    clock,
		logger:   logger.With("poller", name),
		trigger:  make(chan struct{}, 1),
	}
}

// Start starts polling until ctx is done or Stop is called
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.running = true

	// Drop a trigger left over from a previous run
	select {
	case <-p.trigger:
	default:
	}

	p.wg.Add(1)
	go p.loop(ctx)
	p.logger.Debug("poller started", "interval", p.interval)
}

// Stop cancels the poller and waits for a running task to return. The task
// never runs after Stop returns.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.cancel()
	p.mu.Unlock()

	p.wg.Wait()
	p.logger.Debug("poller stopped")
}

// Trigger requests an extra run as soon as the current one finishes
func (p *Poller) Trigger() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Running reports whether the poller is started
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Status returns counters for diagnostics
func (p *Poller) Status() PollerStatus {
	p.mu.Lock()
	defer p.mu.Unlock()
	st := PollerStatus{
		Name:     p.name,
		Interval: p.interval,
		Running:  p.running,
		Runs:     p.runs,
		LastRun:  p.lastRun,
	}
	if p.lastErr != nil {
		st.LastError = p.lastErr.Error()
	}
	return st
}

func (p *Poller) loop(ctx context.Context) {
	defer p.wg.Done()

	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	// Initial run
	p.run(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			p.run(ctx)
		case <-p.trigger:
			p.run(ctx)
		}
	}
}

func (p *Poller) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	err := p.task(ctx)

	p.mu.Lock()
	p.runs++
	p.lastRun = p.clock.Now()
	p.lastErr = err
	p.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		p.logger.Warn("poll failed", "error", err)
	}
}
