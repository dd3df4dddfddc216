// Package dispatch runs the cooperative event loop: it installs native
// hooks for every registered subscription, pumps hook messages to the
// derived callbacks, and polls timed conditions between messages.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"winwatch/internal/metrics"
	"winwatch/internal/native"
	"winwatch/internal/registry"
	"winwatch/internal/window"
	"winwatch/internal/winevent"
)

// DefaultTick is the wait timeout between condition polls.
const DefaultTick = 75 * time.Millisecond

// ErrLoopRunning is returned when Run is called while a previous Run has
// not finished.
var ErrLoopRunning = errors.New("dispatch: loop already running")

// Recorder receives every payload delivered to a subscription callback.
type Recorder interface {
	Record(*winevent.Payload) error
}

// Loop drives event delivery for one registry store over one native
// backend. A Loop is single-threaded: callbacks and condition checks run
// on the goroutine that called Run.
type Loop struct {
	store    *registry.Store
	api      native.API
	sys      window.Access
	log      *slog.Logger
	metrics  *metrics.WatchMetrics
	recorder Recorder
	tick     time.Duration

	running     atomic.Bool
	bound       bool
	dispatchErr error
}

// Option configures a Loop.
type Option func(*Loop)

// WithTick sets the wait timeout between condition polls.
func WithTick(d time.Duration) Option {
	return func(l *Loop) {
		if d > 0 {
			l.tick = d
		}
	}
}

// WithLogger sets the loop logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loop) {
		if log != nil {
			l.log = log
		}
	}
}

// WithMetrics attaches loop instrumentation.
func WithMetrics(m *metrics.WatchMetrics) Option {
	return func(l *Loop) {
		l.metrics = m
	}
}

// WithRecorder attaches a payload recorder.
func WithRecorder(r Recorder) Option {
	return func(l *Loop) {
		l.recorder = r
	}
}

// WithWindowAccess sets the window system used to resolve payload windows.
func WithWindowAccess(sys window.Access) Option {
	return func(l *Loop) {
		if sys != nil {
			l.sys = sys
		}
	}
}

// NewLoop builds a Loop over store and api.
func NewLoop(store *registry.Store, api native.API, opts ...Option) *Loop {
	l := &Loop{
		store: store,
		api:   api,
		sys:   window.System(),
		log:   slog.Default().With("component", "dispatch"),
		tick:  DefaultTick,
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Run binds hooks and drives the loop until the stop signal, a quit
// message, a callback error on the message path, the context, or the wait
// budget ends it. budget caps the run's wall-clock time, resolved at tick
// granularity; zero means no cap. Hooks are released before Run returns,
// whatever the exit path.
func (l *Loop) Run(ctx context.Context, budget time.Duration) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)

	l.dispatchErr = nil
	if err := l.bindAll(); err != nil {
		return err
	}
	defer l.unbindAll()

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			l.api.SignalStop()
		case <-done:
		}
	}()

	l.log.Info("loop started", "tick", l.tick, "budget", budget)

	started := time.Now()
	for {
		res, err := l.api.Wait(l.tick)
		if err != nil {
			return err
		}

		if budget > 0 && time.Since(started) > budget {
			l.log.Debug("wait budget exhausted", "elapsed", time.Since(started))
			return nil
		}

		switch res {
		case native.WaitStop:
			l.log.Info("loop stopped")
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return nil

		case native.WaitMessage:
			var timer *metrics.HistogramTimer
			if l.metrics != nil {
				timer = l.metrics.StartPumpTimer()
			}
			quit, err := l.api.PumpMessages()
			if timer != nil {
				timer.Stop()
			}
			if err != nil {
				return err
			}
			if l.dispatchErr != nil {
				return l.dispatchErr
			}
			if quit {
				l.log.Info("quit message received")
				return nil
			}

		case native.WaitTimeout:
			if l.metrics != nil {
				l.metrics.RecordTick()
			}
			l.poll()
		}
	}
}

// Stop signals the loop to exit. Safe to call from any goroutine.
func (l *Loop) Stop() {
	l.api.SignalStop()
}

// Running reports whether Run is in progress.
func (l *Loop) Running() bool {
	return l.running.Load()
}

// poll evaluates every timed condition once. A failing callback is logged
// and skipped; conditions are isolated from each other.
func (l *Loop) poll() {
	for _, e := range l.store.Entries() {
		cb := l.store.Derived(e.Token)
		for _, c := range e.Checkables {
			fired := c.Check()
			if l.metrics != nil {
				l.metrics.RecordCheck(fired)
			}
			if !fired || cb == nil {
				continue
			}
			p := c.Result()
			if l.recorder != nil {
				if err := l.recorder.Record(p); err != nil {
					l.log.Warn("record condition result", "error", err)
				}
			}
			if err := cb(p); err != nil {
				l.log.Warn("condition callback failed", "token", e.Token, "error", err)
				if l.metrics != nil {
					l.metrics.RecordCallbackError()
				}
			}
		}
	}
}
