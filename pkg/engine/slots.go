package engine

import (
	"github.com/vango-dev/weft/pkg/vdom"
)

// stateCell holds one state slot's value and its pending updates. The cell
// is shared by every work node that represents the same component instance,
// so updates survive discarded work-in-progress trees.
type stateCell struct {
	value    any
	queue    []vdom.StateUpdate
	detached bool
	enqueue  func(vdom.StateUpdate)
}

// drain folds queued updates into the value in arrival order.
func (c *stateCell) drain() {
	for _, u := range c.queue {
		c.value = u(c.value)
	}
	c.queue = nil
}

// effectSlot is one effect declaration of one evaluation.
type effectSlot struct {
	fn      vdom.EffectFunc
	deps    []any
	hasDeps bool
	cleanup vdom.Cleanup
	changed bool
}

// runCleanup runs the recorded cleanup at most once.
func (s *effectSlot) runCleanup() {
	c := s.cleanup
	s.cleanup = nil
	if c != nil {
		c()
	}
}

// runEffect invokes the callback and records the cleanup it returns.
func (s *effectSlot) runEffect() {
	if s.fn != nil {
		s.cleanup = s.fn()
	}
}

type slot struct {
	kind   slotKind
	state  *stateCell
	effect *effectSlot
}

// scope implements vdom.Scope for a single component evaluation.
type scope struct {
	e      *Engine
	comp   vdom.Component
	prev   []slot // slots of the committed node, valid when hasAlt
	hasAlt bool
	again  []slot // slots of the previous pass when re-running in place
	slots  []slot

	rerender bool
	closed   bool
}

// base returns the slot list the current evaluation must match.
func (s *scope) base() ([]slot, bool) {
	if s.again != nil {
		return s.again, true
	}
	return s.prev, s.hasAlt
}

// owns reports whether cell was declared by this evaluation.
func (s *scope) owns(cell *stateCell) bool {
	for _, sl := range s.slots {
		if sl.state == cell {
			return true
		}
	}
	return false
}

// take validates the next slot index against the slots being matched and
// returns the matching slot, if any.
func (s *scope) take(kind slotKind) (slot, bool) {
	if s.closed {
		panic("weft: Scope used outside of component evaluation")
	}
	base, ok := s.base()
	if !ok {
		return slot{}, false
	}
	i := len(s.slots)
	if i >= len(base) {
		panic(&SlotError{Component: componentName(s.comp), Index: i, Got: kind.String()})
	}
	p := base[i]
	if p.kind != kind {
		panic(&SlotError{Component: componentName(s.comp), Index: i, Want: p.kind.String(), Got: kind.String()})
	}
	return p, true
}

// State implements vdom.Scope.
func (s *scope) State(initial func() any) (any, func(vdom.StateUpdate)) {
	var cell *stateCell
	if p, ok := s.take(slotState); ok {
		cell = p.state
		cell.drain()
	} else {
		cell = &stateCell{}
		if initial != nil {
			cell.value = initial()
		}
		e := s.e
		cell.enqueue = func(u vdom.StateUpdate) {
			e.enqueueUpdate(cell, u)
		}
	}
	s.slots = append(s.slots, slot{kind: slotState, state: cell})
	return cell.value, cell.enqueue
}

// Effect implements vdom.Scope. Whether the effect changed is always
// decided against the committed evaluation, not an earlier pass.
func (s *scope) Effect(fn vdom.EffectFunc, deps []any) {
	i := len(s.slots)
	eff := &effectSlot{fn: fn, hasDeps: deps != nil, changed: true}
	if deps != nil {
		eff.deps = append(make([]any, 0, len(deps)), deps...)
	}
	if p, ok := s.take(slotEffect); ok {
		eff.cleanup = p.effect.cleanup
	}
	if s.hasAlt && i < len(s.prev) && s.prev[i].kind == slotEffect {
		prev := s.prev[i].effect
		eff.changed = !eff.hasDeps || !prev.hasDeps || !vdom.EqualSlices(prev.deps, eff.deps)
	}
	s.slots = append(s.slots, slot{kind: slotEffect, effect: eff})
}

// finish closes the scope and checks that no slot went missing.
func (s *scope) finish() {
	s.closed = true
	base, ok := s.base()
	if ok && len(s.slots) < len(base) {
		i := len(s.slots)
		panic(&SlotError{Component: componentName(s.comp), Index: i, Want: base[i].kind.String()})
	}
}

// detachSlots makes the state cells of a deleted node inert.
func detachSlots(slots []slot) {
	for _, sl := range slots {
		if sl.kind == slotState {
			sl.state.detached = true
			sl.state.queue = nil
		}
	}
}
