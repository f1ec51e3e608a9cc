// Package scheduler runs the periodic reconciliation of intern state.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/yukikurage/intern-management-api/internal/clock"
)

// ErrAlreadyRunning is returned by Start on a running Timer.
var ErrAlreadyRunning = errors.New("scheduler: timer already running")

// Job is one unit of periodic work. now is read from the timer's clock.
type Job func(ctx context.Context, now time.Time)

// tickerFunc returns a tick channel and a function releasing it.
type tickerFunc func(d time.Duration) (<-chan time.Time, func())

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Timer runs a Job once on Start and then every interval until Stop.
// Ticks never overlap: a tick that arrives while the job runs is dropped.
type Timer struct {
	interval time.Duration
	clock    clock.Clock
	job      Job
	logger   *slog.Logger
	ticker   tickerFunc

	mu      sync.Mutex
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewTimer creates a stopped Timer.
func NewTimer(interval time.Duration, clk clock.Clock, job Job, logger *slog.Logger) *Timer {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Timer{
		interval: interval,
		clock:    clk,
		job:      job,
		logger:   logger,
		ticker:   realTicker,
	}
}

// Start runs the job immediately in the background and then on every
// interval. Cancelling ctx stops the timer like Stop does.
func (t *Timer) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return ErrAlreadyRunning
	}

	t.running = true
	t.stop = make(chan struct{})
	t.done = make(chan struct{})

	go t.loop(ctx, t.stop, t.done)
	return nil
}

// Stop prevents further ticks and waits for an in-flight tick to finish.
// The in-flight tick is not interrupted. Stop on a stopped Timer is a no-op.
func (t *Timer) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	done := t.done
	t.mu.Unlock()

	<-done
}

// Running reports whether the timer is started.
func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}

// Interval returns the tick period.
func (t *Timer) Interval() time.Duration {
	return t.interval
}

func (t *Timer) loop(ctx context.Context, stop <-chan struct{}, done chan struct{}) {
	defer func() {
		t.mu.Lock()
		t.running = false
		t.stop = nil
		t.mu.Unlock()
		close(done)
	}()

	t.run(ctx)

	ticks, release := t.ticker(t.interval)
	defer release()

	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-ticks:
			// A stop that raced with the tick wins.
			select {
			case <-stop:
				return
			default:
			}
			t.run(ctx)
		}
	}
}

func (t *Timer) run(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			t.logger.ErrorContext(ctx, "scheduled job panicked", "panic", r)
		}
	}()

	t.job(ctx, t.clock.Now())
}
