package engine

import (
	"fmt"
	"sort"
	"time"

	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/vdom"
)

// committer applies one finished work tree to the host.
type committer struct {
	e        *Engine
	adapter  host.Adapter
	inserter host.Inserter
	wip      *tree
	cur      *tree

	ops      int
	effects  []pendingEffect
	detached [][]slot
	inserted []attachment
}

// attachment is a new host node placed under an already mounted parent.
type attachment struct {
	parent host.Node
	node   host.Node
}

type pendingEffect struct {
	comp vdom.Component
	slot *effectSlot
}

// commitRoot applies the finished tree, swaps it in as the committed tree
// and flushes effects. A host error aborts the commit and leaves the
// committed tree in place.
func (e *Engine) commitRoot() {
	r := e.root
	start := time.Now()
	e.committing = true
	defer func() { e.committing = false }()

	c := &committer{
		e:        e,
		adapter:  e.adapter,
		inserter: e.inserter,
		wip:      r.wip,
		cur:      r.current,
	}
	for _, id := range r.deletions {
		if err := c.commitDeletion(id); err != nil {
			e.abort(err)
			return
		}
	}
	if err := c.commitTree(); err != nil {
		c.rollback()
		e.abort(err)
		return
	}
	for _, slots := range c.detached {
		detachSlots(slots)
	}

	r.current = r.wip
	r.wip = nil
	r.deletions = nil
	e.next = noNode
	e.stats.HostOps = c.ops
	e.stats.Commit = time.Since(start)

	e.stats.Effects = e.flushEffects(c.effects)
	if !e.started.IsZero() {
		e.stats.Render = time.Since(e.started)
	}
	e.last = e.stats
	e.commits++

	e.logger.Debug("render committed",
		"units", e.stats.Units,
		"slices", e.stats.Slices,
		"inserts", e.stats.Inserts,
		"updates", e.stats.Updates,
		"deletes", e.stats.Deletes,
		"host_ops", e.stats.HostOps)
	e.observer.Committed(e.stats)
}

// commitDeletion runs the cleanups of a deleted subtree and then detaches
// its host nodes.
func (c *committer) commitDeletion(id nodeID) error {
	c.cleanupSubtree(id)
	return c.removeHost(id, c.hostParentOf(c.cur, id))
}

// cleanupSubtree runs effect cleanups in pre-order: the node's own slots,
// then each child subtree in sibling order. It never leaves the subtree.
func (c *committer) cleanupSubtree(id nodeID) {
	n := c.cur.node(id)
	if len(n.slots) > 0 {
		c.detached = append(c.detached, n.slots)
	}
	for _, sl := range n.slots {
		if sl.kind == slotEffect {
			c.e.safeEffect(n.comp, true, sl.effect.runCleanup)
		}
	}
	for ch := n.child; ch != noNode; ch = c.cur.node(ch).sibling {
		c.cleanupSubtree(ch)
	}
}

// removeHost detaches the top-level host nodes of a deleted subtree.
// Nodes without a host handle recurse into all of their children.
func (c *committer) removeHost(id nodeID, parent host.Node) error {
	n := c.cur.node(id)
	if n.inst != nil {
		if n.inst.detached {
			return nil
		}
		c.ops++
		if err := c.adapter.RemoveChild(parent, n.inst.node); err != nil {
			return hostError("RemoveChild", err)
		}
		n.inst.detached = true
		return nil
	}
	for ch := n.child; ch != noNode; ch = c.cur.node(ch).sibling {
		if err := c.removeHost(ch, parent); err != nil {
			return err
		}
	}
	return nil
}

// hostParentOf returns the host node of the nearest ancestor owning one.
func (c *committer) hostParentOf(t *tree, id nodeID) host.Node {
	for p := t.node(id).parent; p != noNode; p = t.node(p).parent {
		if inst := t.node(p).inst; inst != nil {
			return inst.node
		}
	}
	return nil
}

// commitTree walks the work tree in pre-order applying each node's effect.
func (c *committer) commitTree() error {
	for id := c.wip.node(rootID).child; id != noNode; id = c.wip.next(id) {
		if err := c.commitNode(id); err != nil {
			return err
		}
	}
	return nil
}

func (c *committer) commitNode(id nodeID) error {
	n := c.wip.node(id)
	switch n.effect {
	case tagInsert:
		if n.isHost() {
			if err := c.create(n); err != nil {
				return err
			}
			if err := c.place(id); err != nil {
				return err
			}
			c.recordInsert(id)
		}
	case tagUpdate:
		if n.isHost() {
			if err := c.update(n); err != nil {
				return err
			}
		}
		if n.moved {
			if err := c.place(id); err != nil {
				return err
			}
		}
	}
	for _, sl := range n.slots {
		if sl.kind == slotEffect && sl.effect.changed {
			c.effects = append(c.effects, pendingEffect{comp: n.comp, slot: sl.effect})
		}
	}
	return nil
}

// recordInsert remembers an inserted host node whose host parent was
// mounted before this commit. Nodes placed under new parents leave with
// them.
func (c *committer) recordInsert(id nodeID) {
	t := c.wip
	for p := t.node(id).parent; p != noNode; p = t.node(p).parent {
		pn := t.node(p)
		if pn.inst == nil {
			continue
		}
		if pn.effect != tagInsert {
			c.inserted = append(c.inserted, attachment{parent: pn.inst.node, node: t.node(id).inst.node})
		}
		return
	}
}

// rollback detaches the host nodes an aborted commit inserted under
// mounted parents, newest first. Updates and moves already applied stay.
func (c *committer) rollback() {
	for i := len(c.inserted) - 1; i >= 0; i-- {
		a := c.inserted[i]
		if err := c.adapter.RemoveChild(a.parent, a.node); err != nil {
			c.e.logger.Warn("rollback of inserted node failed", "error", err)
		}
	}
}

// create materializes a host node for an inserted element or text node.
func (c *committer) create(n *workNode) error {
	var (
		node host.Node
		err  error
	)
	c.ops++
	if n.kind == vdom.KindText {
		node, err = c.adapter.CreateText(textOf(n.props))
		if err != nil {
			return hostError("CreateText", err)
		}
		n.inst = &instance{node: node}
		return nil
	}
	node, err = c.adapter.CreateNode(n.tag)
	if err != nil {
		return hostError("CreateNode", err)
	}
	n.inst = &instance{node: node}
	return c.diffProps(n.inst, nil, n.props)
}

// update applies the changed attributes and listeners of a reused node.
func (c *committer) update(n *workNode) error {
	old := c.cur.node(n.alternate).props
	return c.diffProps(n.inst, old, n.props)
}

// diffProps brings inst from the old props to the new ones. Removals are
// applied before additions, each in key order. Listener changes go through
// the instance's trampolines, so swapping a handler costs no host call.
func (c *committer) diffProps(inst *instance, old, props vdom.Props) error {
	for _, k := range sortedKeys(old) {
		if vdom.IsEventProp(k) || old[k] == nil {
			continue
		}
		if v, ok := props[k]; ok && v != nil {
			continue
		}
		c.ops++
		if err := c.adapter.RemoveAttribute(inst.node, k); err != nil {
			return hostError("RemoveAttribute", err)
		}
	}

	for _, event := range sortedKeys(inst.listeners) {
		if _, ok := listenerFor(props, event); ok {
			continue
		}
		box := inst.listeners[event]
		c.ops++
		if err := c.adapter.RemoveListener(inst.node, event, box.trampoline); err != nil {
			return hostError("RemoveListener", err)
		}
		delete(inst.listeners, event)
	}

	for _, k := range sortedKeys(props) {
		v := props[k]
		if v == nil {
			continue
		}
		if vdom.IsEventProp(k) {
			if err := c.setListener(inst, k, v); err != nil {
				return err
			}
			continue
		}
		if prev, ok := old[k]; ok && vdom.Equal(prev, v) {
			continue
		}
		c.ops++
		if err := c.adapter.SetAttribute(inst.node, k, v); err != nil {
			return hostError("SetAttribute", err)
		}
	}
	return nil
}

func (c *committer) setListener(inst *instance, key string, v any) error {
	fn, ok := toListener(v)
	if !ok {
		c.e.logger.Warn("unsupported listener type ignored", "prop", key, "type", fmt.Sprintf("%T", v))
		return nil
	}
	event := vdom.EventName(key)
	if box, ok := inst.listeners[event]; ok {
		box.fn = fn
		return nil
	}
	box := newListenerBox(fn)
	c.ops++
	if err := c.adapter.AddListener(inst.node, event, box.trampoline); err != nil {
		return hostError("AddListener", err)
	}
	if inst.listeners == nil {
		inst.listeners = make(map[string]*listenerBox)
	}
	inst.listeners[event] = box
	return nil
}

// place attaches the host nodes of id under its host parent, before the
// next host sibling that is already in place.
func (c *committer) place(id nodeID) error {
	parent := c.hostParentOf(c.wip, id)
	var before host.Node
	if c.inserter != nil {
		before = c.hostSibling(id)
	}
	return c.insertOrAppend(id, before, parent)
}

func (c *committer) insertOrAppend(id nodeID, before, parent host.Node) error {
	n := c.wip.node(id)
	if n.isHost() {
		if n.inst == nil {
			return nil
		}
		c.ops++
		if before != nil {
			if err := c.inserter.InsertBefore(parent, n.inst.node, before); err != nil {
				return hostError("InsertBefore", err)
			}
			return nil
		}
		if err := c.adapter.AppendChild(parent, n.inst.node); err != nil {
			return hostError("AppendChild", err)
		}
		return nil
	}
	for ch := n.child; ch != noNode; ch = c.wip.node(ch).sibling {
		if err := c.insertOrAppend(ch, before, parent); err != nil {
			return err
		}
	}
	return nil
}

// hostSibling finds the first host node after id, under the same host
// parent, that will not itself be placed during this commit. It descends
// into component and fragment siblings and climbs out of them, but never
// past the host parent.
func (c *committer) hostSibling(id nodeID) host.Node {
	t := c.wip
	node := id
siblings:
	for {
		for t.node(node).sibling == noNode {
			p := t.node(node).parent
			if p == noNode || t.node(p).isHost() {
				return nil
			}
			node = p
		}
		node = t.node(node).sibling
		for !t.node(node).isHost() {
			n := t.node(node)
			if n.placement() || n.child == noNode {
				continue siblings
			}
			node = n.child
		}
		if n := t.node(node); !n.placement() && n.inst != nil {
			return n.inst.node
		}
	}
}

func hostError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrHostAdapter, op, err)
}

// toListener normalizes the handler types accepted in listener props.
func toListener(v any) (host.Listener, bool) {
	switch fn := v.(type) {
	case host.Listener:
		return fn, fn != nil
	case func(host.Event):
		return fn, fn != nil
	case func():
		if fn == nil {
			return nil, false
		}
		return func(host.Event) { fn() }, true
	case func(string):
		if fn == nil {
			return nil, false
		}
		return func(ev host.Event) { fn(ev.Value) }, true
	default:
		return nil, false
	}
}

// listenerFor reports whether props hold a usable listener for event.
func listenerFor(props vdom.Props, event string) (host.Listener, bool) {
	for k, v := range props {
		if vdom.IsEventProp(k) && vdom.EventName(k) == event {
			return toListener(v)
		}
	}
	return nil, false
}

func textOf(props vdom.Props) string {
	switch v := props[vdom.TextProp].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
