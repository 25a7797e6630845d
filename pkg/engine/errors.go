package engine

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/vango-dev/weft/pkg/vdom"
)

var (
	// ErrSlotMismatch is returned when a component declares a different
	// number or order of state/effect slots than on its previous
	// evaluation. Slots are bound by position, so this is a programming
	// error, not something the engine can recover from.
	ErrSlotMismatch = errors.New("weft: slot declarations changed between renders")

	// ErrHostAdapter wraps errors returned by the host adapter during commit.
	// The commit is aborted and the committed tree is left unchanged.
	ErrHostAdapter = errors.New("weft: host adapter rejected operation")

	// ErrComponentPanic wraps a panic raised by a component function.
	ErrComponentPanic = errors.New("weft: component panicked")

	// ErrNoContainer is returned by Render when the mount target is nil.
	ErrNoContainer = errors.New("weft: nil mount container")

	// ErrRenderLoop is returned when components keep requesting renders
	// during their own evaluation.
	ErrRenderLoop = errors.New("weft: too many restarts during render")
)

// slotKind distinguishes state and effect slots.
type slotKind uint8

const (
	slotState slotKind = iota + 1
	slotEffect
)

// String returns a human-readable name for the slot kind.
func (k slotKind) String() string {
	switch k {
	case slotState:
		return "State"
	case slotEffect:
		return "Effect"
	default:
		return "Unknown"
	}
}

// SlotError describes a component whose slot declarations changed
// between evaluations.
type SlotError struct {
	Component string
	Index     int
	Want      string // slot kind at Index on the previous evaluation, or "" if none
	Got       string // slot kind declared now, or "" if none
}

// Error implements the error interface.
func (e *SlotError) Error() string {
	switch {
	case e.Want == "":
		return fmt.Sprintf("%s: %s: extra %s slot at index %d", ErrSlotMismatch, e.Component, e.Got, e.Index)
	case e.Got == "":
		return fmt.Sprintf("%s: %s: missing %s slot at index %d", ErrSlotMismatch, e.Component, e.Want, e.Index)
	default:
		return fmt.Sprintf("%s: %s: slot %d was %s, now %s", ErrSlotMismatch, e.Component, e.Index, e.Want, e.Got)
	}
}

// Unwrap returns ErrSlotMismatch for errors.Is support.
func (e *SlotError) Unwrap() error {
	return ErrSlotMismatch
}

// EffectError reports an effect callback or cleanup that panicked.
// Other effects of the same flush still run.
type EffectError struct {
	Component string
	Cleanup   bool // true when the cleanup, not the callback, panicked
	Panic     any
}

// Error implements the error interface.
func (e *EffectError) Error() string {
	what := "effect"
	if e.Cleanup {
		what = "effect cleanup"
	}
	return fmt.Sprintf("weft: %s in %s panicked: %v", what, e.Component, e.Panic)
}

// componentName returns a readable name for a component function.
func componentName(c vdom.Component) string {
	if c == nil {
		return "<nil>"
	}
	fn := runtime.FuncForPC(reflect.ValueOf(c).Pointer())
	if fn == nil {
		return "<component>"
	}
	name := fn.Name()
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	return name
}
