package sched

import (
	"context"
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

var (
	// ErrLoopAlreadyRunning is returned when Run is called twice.
	ErrLoopAlreadyRunning = errors.New("sched: loop is already running")

	// ErrLoopTerminated is returned by Submit after Run has returned.
	ErrLoopTerminated = errors.New("sched: loop has been terminated")
)

// DefaultSlice is the idle slice budget used when none is configured.
const DefaultSlice = 5 * time.Millisecond

// Loop runs submitted tasks and idle slices on a single goroutine.
//
// Submitted tasks always take priority: an idle slice only starts when no
// submitted task is waiting, so a long render yields to incoming events at
// every slice boundary. Everything the loop runs executes on the goroutine
// that called Run, which makes it the owner of any engine it drives.
type Loop struct {
	ingress chan func()
	idle    []func(Deadline)

	budget time.Duration
	clock  Clock
	logger *slog.Logger

	running  atomic.Bool
	done     chan struct{}
	doneOnce sync.Once
}

// LoopOption configures a Loop.
type LoopOption func(*Loop)

// WithSlice sets the per-slice budget.
func WithSlice(d time.Duration) LoopOption {
	return func(l *Loop) {
		l.budget = d
	}
}

// WithClock sets the clock used to build slice deadlines.
func WithClock(c Clock) LoopOption {
	return func(l *Loop) {
		l.clock = c
	}
}

// WithLogger sets the logger used to report panicking tasks.
func WithLogger(logger *slog.Logger) LoopOption {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithQueueSize sets the capacity of the submit queue.
func WithQueueSize(n int) LoopOption {
	return func(l *Loop) {
		l.ingress = make(chan func(), n)
	}
}

// NewLoop creates a loop. It does nothing until Run is called.
func NewLoop(opts ...LoopOption) *Loop {
	l := &Loop{
		ingress: make(chan func(), 256),
		budget:  DefaultSlice,
		clock:   time.Now,
		logger:  slog.Default(),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Submit enqueues fn to run on the loop goroutine. It is safe to call from
// any goroutine and blocks while the queue is full.
func (l *Loop) Submit(fn func()) error {
	select {
	case <-l.done:
		return ErrLoopTerminated
	default:
	}
	select {
	case l.ingress <- fn:
		return nil
	case <-l.done:
		return ErrLoopTerminated
	}
}

// RequestIdle implements IdleScheduler. It must be called from the loop
// goroutine, or before Run starts.
func (l *Loop) RequestIdle(task func(Deadline)) {
	l.idle = append(l.idle, task)
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Run processes tasks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopAlreadyRunning
	}
	defer l.doneOnce.Do(func() { close(l.done) })

	for {
		if len(l.idle) == 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case fn := <-l.ingress:
				l.safeExecute(fn)
			}
			continue
		}

		// Pending events preempt idle work.
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-l.ingress:
			l.safeExecute(fn)
			continue
		default:
		}

		task := l.idle[0]
		l.idle[0] = nil
		l.idle = l.idle[1:]
		deadline := NewSliceDeadline(l.clock, l.budget)
		l.safeExecute(func() { task(deadline) })
	}
}

// safeExecute runs fn and recovers from panics so one bad task cannot
// take the loop down.
func (l *Loop) safeExecute(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panic",
				"panic", r,
				"stack", string(debug.Stack()))
		}
	}()
	fn()
}
