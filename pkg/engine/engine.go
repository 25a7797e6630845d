package engine

import (
	"errors"
	"log/slog"
	"time"

	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/sched"
	"github.com/vango-dev/weft/pkg/vdom"
)

// Engine renders virtual node trees into a host through an Adapter.
//
// An Engine owns one root. Work is split into units of one work node each;
// the engine processes units while the scheduler's slice has time left and
// commits the finished tree in a single uninterruptible step. An Engine is
// not safe for concurrent use: every call, including state setters and
// event listeners, must happen on the goroutine that drives it.
type Engine struct {
	adapter  host.Adapter
	inserter host.Inserter
	opts     options
	logger   *slog.Logger
	observer Observer

	root  *root
	next  nodeID
	scope *scope // component being evaluated

	scheduled     bool
	running       bool
	evaluating    bool
	committing    bool
	restart       bool
	restartReason Reason
	restarts      int

	flushing  bool
	flushErrs []error

	slice     int
	lastSlice int
	stats     CommitStats
	started   time.Time
	last      CommitStats
	commits   int
}

// New creates an engine that mutates the host through adapter. If the
// adapter also implements host.Inserter, new and moved nodes are placed
// in order; otherwise they are appended to their host parent.
func New(adapter host.Adapter, opts ...Option) *Engine {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	e := &Engine{
		adapter: adapter,
		opts:    o,
		logger:  o.logger,
		next:    noNode,
	}
	if ins, ok := adapter.(host.Inserter); ok {
		e.inserter = ins
	}
	switch len(o.observers) {
	case 0:
		e.observer = BaseObserver{}
	case 1:
		e.observer = o.observers[0]
	default:
		e.observer = multiObserver(o.observers)
	}
	if o.keyed && e.inserter == nil {
		e.logger.Warn("keyed reconciliation without an inserting adapter; moved children will be appended")
	}
	return e
}

// Render sets the element mounted into container and schedules a render of
// the whole tree. Rendering into a different container starts a new root;
// the previous one is abandoned without unmounting.
func (e *Engine) Render(node *vdom.VNode, container host.Node) error {
	if container == nil {
		return ErrNoContainer
	}
	if e.running && e.root != nil && e.root.container != container {
		return errors.New("weft: cannot switch containers during a render")
	}
	if e.root == nil || e.root.container != container {
		if e.root != nil {
			e.logger.Debug("replacing root", "container", container)
		}
		e.root = &root{container: container}
		e.next = noNode
		e.restart = false
	}
	e.root.element = node
	e.requestRender(ReasonRender)
	return nil
}

// Unmount renders nothing into the current container, which deletes the
// whole tree and runs every pending cleanup once the render commits.
func (e *Engine) Unmount() {
	if e.root == nil {
		return
	}
	e.root.element = nil
	e.requestRender(ReasonRender)
}

// Flush runs pending work to completion on the calling goroutine, ignoring
// slice deadlines. It returns the errors raised while doing so, joined.
// Flush called from inside a component or effect does nothing.
func (e *Engine) Flush() error {
	if e.running {
		return nil
	}
	e.flushing = true
	e.flushErrs = nil
	for e.Pending() {
		e.workLoop(sched.Unlimited)
	}
	err := errors.Join(e.flushErrs...)
	e.flushing = false
	e.flushErrs = nil
	return err
}

// Pending reports whether a render is in progress or requested.
func (e *Engine) Pending() bool {
	return e.root != nil && (e.root.wip != nil || e.restart)
}

// LastCommit returns the statistics of the most recent commit.
func (e *Engine) LastCommit() CommitStats {
	return e.last
}

// Commits returns the number of commits so far.
func (e *Engine) Commits() int {
	return e.commits
}

// requestRender starts a whole-tree render from the committed root. Inside
// evaluation or commit the render is deferred until the current unit or
// commit finishes.
func (e *Engine) requestRender(reason Reason) {
	if e.root == nil {
		return
	}
	if e.evaluating || e.committing {
		e.restart = true
		e.restartReason = reason
		if e.evaluating {
			e.restartReason = ReasonRestart
		}
		if !e.running {
			e.schedule()
		}
		return
	}
	e.startWork(reason)
}

// enqueueUpdate records a state update and requests a render.
func (e *Engine) enqueueUpdate(c *stateCell, u vdom.StateUpdate) {
	if u == nil {
		return
	}
	if c.detached {
		e.logger.Debug("state update on unmounted component ignored")
		return
	}
	c.queue = append(c.queue, u)
	if e.scope != nil && e.scope.owns(c) {
		e.scope.rerender = true
		return
	}
	e.requestRender(ReasonUpdate)
}

// startWork discards any work in progress and begins a new tree.
func (e *Engine) startWork(reason Reason) {
	r := e.root
	alt := noNode
	if r.current != nil {
		alt = rootID
	}
	r.wip = newTree(r.container, r.element, alt)
	if r.current != nil {
		r.wip.node(rootID).inst = r.current.node(rootID).inst
	}
	r.deletions = nil
	e.next = rootID
	e.stats = CommitStats{}
	e.lastSlice = 0

	e.logger.Debug("render started", "reason", reason.String())
	e.observer.RenderStarted(reason)
	if !e.running {
		e.schedule()
	}
}

// schedule asks the scheduler for a slice unless one is already pending.
func (e *Engine) schedule() {
	if e.opts.scheduler == nil || e.scheduled {
		return
	}
	e.scheduled = true
	e.opts.scheduler.RequestIdle(e.performSlice)
}

func (e *Engine) performSlice(d sched.Deadline) {
	e.scheduled = false
	e.workLoop(d)
}

// abort discards the work in progress and reports err.
func (e *Engine) abort(err error) {
	if e.root != nil {
		e.root.wip = nil
		e.root.deletions = nil
	}
	e.next = noNode
	e.restart = false
	e.evaluating = false

	e.logger.Error("render aborted", "error", err)
	e.observer.Aborted(err)
	e.report(err)
}

// report hands err to Flush's caller and the error callback.
func (e *Engine) report(err error) {
	if e.flushing {
		e.flushErrs = append(e.flushErrs, err)
	}
	if e.opts.onError != nil {
		e.opts.onError(err)
	}
}
