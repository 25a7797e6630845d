package engine

import (
	"log/slog"
	"time"

	"github.com/vango-dev/weft/pkg/sched"
)

// DefaultYieldThreshold is the remaining slice time below which the work
// loop yields.
const DefaultYieldThreshold = time.Millisecond

// DefaultMaxRestarts bounds consecutive restarts caused by state updates
// issued during evaluation.
const DefaultMaxRestarts = 50

type options struct {
	scheduler      sched.IdleScheduler
	logger         *slog.Logger
	observers      []Observer
	yieldThreshold time.Duration
	onError        func(error)
	keyed          bool
	maxRestarts    int
}

func defaultOptions() options {
	return options{
		logger:         slog.Default(),
		yieldThreshold: DefaultYieldThreshold,
		maxRestarts:    DefaultMaxRestarts,
	}
}

// Option configures an Engine.
type Option func(*options)

// WithScheduler sets the idle facility the engine yields to. Without one,
// work only happens inside Flush.
func WithScheduler(s sched.IdleScheduler) Option {
	return func(o *options) {
		o.scheduler = s
	}
}

// WithLogger sets the logger. If nil, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver adds an observer. May be given more than once.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observers = append(o.observers, obs)
		}
	}
}

// WithYieldThreshold sets the remaining-time threshold below which the
// work loop yields between units.
func WithYieldThreshold(d time.Duration) Option {
	return func(o *options) {
		o.yieldThreshold = d
	}
}

// WithOnError registers a callback for errors raised outside Flush:
// aborted commits, slot mismatches and effect failures.
func WithOnError(fn func(error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

// WithKeyedReconciliation enables matching children by Key. It is off by
// default: children are matched purely by position and keys are ignored,
// so reordering a list re-renders items in place instead of moving them.
func WithKeyedReconciliation(enabled bool) Option {
	return func(o *options) {
		o.keyed = enabled
	}
}

// WithMaxRestarts bounds consecutive render restarts triggered from inside
// component evaluation.
func WithMaxRestarts(n int) Option {
	return func(o *options) {
		o.maxRestarts = n
	}
}
