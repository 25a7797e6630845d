package engine

import (
	"time"

	"github.com/vango-dev/weft/pkg/vdom"
)

// Reason says why a render cycle started.
type Reason uint8

const (
	ReasonRender  Reason = iota + 1 // Render was called
	ReasonUpdate                    // a state setter was called
	ReasonRestart                   // an update arrived during evaluation
)

// String returns a human-readable name for the reason.
func (r Reason) String() string {
	switch r {
	case ReasonRender:
		return "render"
	case ReasonUpdate:
		return "update"
	case ReasonRestart:
		return "restart"
	default:
		return "unknown"
	}
}

// CommitStats summarizes one render cycle.
type CommitStats struct {
	Inserts int
	Updates int
	Deletes int
	Moves   int

	// HostOps counts calls made to the host adapter.
	HostOps int

	// Units is the number of work nodes processed, Slices the number of
	// scheduler slices the cycle spanned.
	Units  int
	Slices int

	// Effects is the number of effect callbacks run after the commit.
	Effects int

	Render time.Duration // first unit to end of commit
	Commit time.Duration // commit phase only
}

// Observer receives engine lifecycle notifications. All methods are
// called on the engine's goroutine and must not call back into it.
type Observer interface {
	RenderStarted(reason Reason)
	UnitProcessed(kind vdom.Kind, d time.Duration)
	Yielded(units int)
	Committed(stats CommitStats)
	Aborted(err error)
	EffectFailed(err *EffectError)
}

// BaseObserver implements Observer with no-ops. Embed it to implement
// only the notifications you need.
type BaseObserver struct{}

func (BaseObserver) RenderStarted(Reason)                  {}
func (BaseObserver) UnitProcessed(vdom.Kind, time.Duration) {}
func (BaseObserver) Yielded(int)                           {}
func (BaseObserver) Committed(CommitStats)                 {}
func (BaseObserver) Aborted(error)                         {}
func (BaseObserver) EffectFailed(*EffectError)             {}

// multiObserver fans notifications out in order.
type multiObserver []Observer

func (m multiObserver) RenderStarted(r Reason) {
	for _, o := range m {
		o.RenderStarted(r)
	}
}

func (m multiObserver) UnitProcessed(k vdom.Kind, d time.Duration) {
	for _, o := range m {
		o.UnitProcessed(k, d)
	}
}

func (m multiObserver) Yielded(units int) {
	for _, o := range m {
		o.Yielded(units)
	}
}

func (m multiObserver) Committed(s CommitStats) {
	for _, o := range m {
		o.Committed(s)
	}
}

func (m multiObserver) Aborted(err error) {
	for _, o := range m {
		o.Aborted(err)
	}
}

func (m multiObserver) EffectFailed(err *EffectError) {
	for _, o := range m {
		o.EffectFailed(err)
	}
}
