package engine

import (
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/vango-dev/weft/pkg/sched"
	"github.com/vango-dev/weft/pkg/vdom"
)

// workLoop processes units until the tree is committed or the slice runs
// out. At least one unit runs per slice so progress is guaranteed even
// under an exhausted deadline. A finished tree is committed in the same
// slice as its last unit.
func (e *Engine) workLoop(d sched.Deadline) {
	if e.running {
		return
	}
	e.running = true
	defer func() { e.running = false }()

	e.slice++
	units := 0
	for {
		if e.restart {
			e.restart = false
			e.restarts++
			if e.restarts > e.opts.maxRestarts {
				n := e.restarts - 1
				e.restarts = 0
				e.abort(fmt.Errorf("%w: %d consecutive restarts", ErrRenderLoop, n))
				return
			}
			e.startWork(e.restartReason)
		}
		if e.root == nil || e.root.wip == nil {
			break
		}
		if e.next == noNode {
			e.commitRoot()
			continue
		}
		if units > 0 && d.TimeRemaining() < e.opts.yieldThreshold {
			e.logger.Debug("render yielded", "units", units)
			e.observer.Yielded(units)
			e.schedule()
			return
		}
		units++
		e.performUnit(e.next)
	}
	e.restarts = 0
}

// performUnit processes one work node and advances to the next.
func (e *Engine) performUnit(id nodeID) {
	start := time.Now()
	if e.stats.Units == 0 {
		e.started = start
	}
	if e.lastSlice != e.slice {
		e.lastSlice = e.slice
		e.stats.Slices++
	}
	kind := e.root.wip.node(id).kind

	if err := e.beginUnit(id); err != nil {
		e.abort(err)
		return
	}
	e.stats.Units++
	e.observer.UnitProcessed(kind, time.Since(start))
	e.next = e.root.wip.next(id)
}

// beginUnit evaluates a component or reconciles a host node's children.
// Panics are converted to errors so a failing component abandons only the
// work in progress.
func (e *Engine) beginUnit(id nodeID) (err error) {
	defer func() {
		if r := recover(); r != nil {
			e.evaluating = false
			e.scope = nil
			if perr, ok := r.(error); ok &&
				(errors.Is(perr, ErrSlotMismatch) || errors.Is(perr, ErrRenderLoop)) {
				err = perr
				return
			}
			name := componentName(e.root.wip.node(id).comp)
			e.logger.Error("component panic",
				"component", name,
				"panic", r,
				"stack", string(debug.Stack()))
			err = fmt.Errorf("%w: %s: %v", ErrComponentPanic, name, r)
		}
	}()

	n := e.root.wip.node(id)
	switch n.kind {
	case vdom.KindComponent:
		e.updateComponent(id)
	case vdom.KindText:
	default:
		e.reconcileChildren(id, n.children)
	}
	return nil
}

// updateComponent runs the component function and reconciles its output.
// A component that updates its own state while rendering is run again in
// place, up to the restart limit, before its output is used.
func (e *Engine) updateComponent(id nodeID) {
	n := e.root.wip.node(id)
	comp := n.comp
	var prev []slot
	hasAlt := n.alternate != noNode
	if hasAlt {
		prev = e.root.current.node(n.alternate).slots
	}
	props := make(vdom.Props, len(n.props)+1)
	for k, v := range n.props {
		props[k] = v
	}
	if len(n.children) > 0 {
		props[vdom.ChildrenProp] = n.children
	}

	var out *vdom.VNode
	var again []slot
	for pass := 0; ; pass++ {
		s := &scope{e: e, comp: comp, prev: prev, hasAlt: hasAlt, again: again}
		if comp != nil {
			e.evaluating = true
			e.scope = s
			out = comp(s, props)
			e.scope = nil
			e.evaluating = false
		}
		s.finish()
		if !s.rerender {
			e.root.wip.node(id).slots = s.slots
			break
		}
		if pass >= e.opts.maxRestarts {
			panic(fmt.Errorf("%w: %s updated its own state %d times while rendering",
				ErrRenderLoop, componentName(comp), pass+1))
		}
		again = s.slots
		if again == nil {
			again = []slot{}
		}
	}

	var children []*vdom.VNode
	if out != nil {
		children = []*vdom.VNode{out}
	}
	e.reconcileChildren(id, children)
}

// next returns the node after id in pre-order: its first child, else the
// nearest sibling of id or of one of its ancestors.
func (t *tree) next(id nodeID) nodeID {
	if c := t.node(id).child; c != noNode {
		return c
	}
	for id != noNode {
		n := t.node(id)
		if n.sibling != noNode {
			return n.sibling
		}
		id = n.parent
	}
	return noNode
}
