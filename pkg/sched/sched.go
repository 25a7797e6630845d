// Package sched provides the time-slicing facilities the engine yields to.
//
// The engine never blocks and never sleeps. It asks an IdleScheduler for a
// slice, processes units of work while the slice's Deadline has time left,
// and asks for another slice if work remains. Hosts plug in their own idle
// facility; Manual and Loop cover tests and standalone processes.
package sched

import "time"

// Deadline reports how much of the current slice is left.
type Deadline interface {
	TimeRemaining() time.Duration
	DidTimeout() bool
}

// IdleScheduler runs a task on the host's next available slice.
type IdleScheduler interface {
	RequestIdle(task func(Deadline))
}

// Clock returns the current time. Tests substitute a fake.
type Clock func() time.Time

// unlimited never runs out.
type unlimited struct{}

func (unlimited) TimeRemaining() time.Duration { return time.Duration(1<<63 - 1) }
func (unlimited) DidTimeout() bool             { return false }

// Unlimited is a Deadline that never expires.
var Unlimited Deadline = unlimited{}

// SliceDeadline expires a fixed budget after it was created.
type SliceDeadline struct {
	clock Clock
	end   time.Time
}

// NewSliceDeadline starts a slice of the given budget. A nil clock uses
// time.Now.
func NewSliceDeadline(clock Clock, budget time.Duration) *SliceDeadline {
	if clock == nil {
		clock = time.Now
	}
	return &SliceDeadline{clock: clock, end: clock().Add(budget)}
}

// TimeRemaining implements Deadline.
func (d *SliceDeadline) TimeRemaining() time.Duration {
	left := d.end.Sub(d.clock())
	if left < 0 {
		return 0
	}
	return left
}

// DidTimeout implements Deadline.
func (d *SliceDeadline) DidTimeout() bool {
	return d.TimeRemaining() == 0
}

// UnitBudget is a Deadline measured in units of work instead of time. It
// makes yielding deterministic in tests.
//
// The engine always runs one unit per slice and checks the deadline before
// each further unit, so a budget of n admits n units per slice.
type UnitBudget struct {
	left int
}

// NewUnitBudget returns a budget admitting n units per slice.
func NewUnitBudget(n int) *UnitBudget {
	if n < 1 {
		n = 1
	}
	return &UnitBudget{left: n - 1}
}

// TimeRemaining implements Deadline. Each call consumes one unit.
func (b *UnitBudget) TimeRemaining() time.Duration {
	if b.left <= 0 {
		return 0
	}
	b.left--
	return time.Hour
}

// DidTimeout implements Deadline.
func (b *UnitBudget) DidTimeout() bool {
	return b.left <= 0
}
