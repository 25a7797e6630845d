package engine

import (
	"strconv"

	"github.com/vango-dev/weft/pkg/vdom"
)

// oldChildren returns the committed children of the node's alternate.
func (e *Engine) oldChildren(alt nodeID) []nodeID {
	cur := e.root.current
	if alt == noNode || cur == nil {
		return nil
	}
	var out []nodeID
	for c := cur.node(alt).child; c != noNode; c = cur.node(c).sibling {
		out = append(out, c)
	}
	return out
}

// reconcileChildren builds the work nodes for parent's new children and
// links them under parent. Old children that are not reused are queued
// for deletion in their committed order.
func (e *Engine) reconcileChildren(parent nodeID, elements []*vdom.VNode) {
	wip := e.root.wip
	olds := e.oldChildren(wip.node(parent).alternate)
	elements = compact(elements)

	var ids []nodeID
	var reused []bool
	if e.opts.keyed && hasKeys(e.root.current, olds, elements) {
		ids, reused = e.reconcileKeyed(parent, olds, elements)
	} else {
		ids, reused = e.reconcilePositional(parent, olds, elements)
	}

	for i, old := range olds {
		if !reused[i] {
			e.root.deletions = append(e.root.deletions, old)
			e.stats.Deletes++
		}
	}

	prev := noNode
	for _, id := range ids {
		if prev == noNode {
			wip.node(parent).child = id
		} else {
			wip.node(prev).sibling = id
		}
		prev = id
	}
}

// reconcilePositional matches children by index only.
func (e *Engine) reconcilePositional(parent nodeID, olds []nodeID, elements []*vdom.VNode) ([]nodeID, []bool) {
	cur := e.root.current
	ids := make([]nodeID, 0, len(elements))
	reused := make([]bool, len(olds))
	for i, el := range elements {
		if i < len(olds) && sameKind(cur.node(olds[i]), el) {
			reused[i] = true
			ids = append(ids, e.reuse(parent, olds[i], el))
			continue
		}
		ids = append(ids, e.insert(parent, el))
	}
	return ids, reused
}

// reconcileKeyed matches children by key, falling back to the position
// for unkeyed children. A reused child that now precedes a child placed
// from a later old position is flagged as moved.
func (e *Engine) reconcileKeyed(parent nodeID, olds []nodeID, elements []*vdom.VNode) ([]nodeID, []bool) {
	cur := e.root.current
	byKey := make(map[string]int, len(olds))
	for i, old := range olds {
		byKey[childKey(cur.node(old).key, i)] = i
	}

	ids := make([]nodeID, 0, len(elements))
	reused := make([]bool, len(olds))
	lastPlaced := 0
	for i, el := range elements {
		oi, ok := byKey[childKey(el.Key, i)]
		if !ok || reused[oi] || !sameKind(cur.node(olds[oi]), el) {
			ids = append(ids, e.insert(parent, el))
			continue
		}
		reused[oi] = true
		id := e.reuse(parent, olds[oi], el)
		if oi < lastPlaced {
			e.root.wip.node(id).moved = true
			e.stats.Moves++
		} else {
			lastPlaced = oi
		}
		ids = append(ids, id)
	}
	return ids, reused
}

// reuse allocates an update node continuing the committed node old.
func (e *Engine) reuse(parent, old nodeID, el *vdom.VNode) nodeID {
	w := fromVNode(el, parent)
	w.inst = e.root.current.node(old).inst
	w.alternate = old
	w.effect = tagUpdate
	e.stats.Updates++
	return e.root.wip.alloc(w)
}

// insert allocates a fresh node with no host handle.
func (e *Engine) insert(parent nodeID, el *vdom.VNode) nodeID {
	w := fromVNode(el, parent)
	w.effect = tagInsert
	e.stats.Inserts++
	return e.root.wip.alloc(w)
}

func hasKeys(cur *tree, olds []nodeID, elements []*vdom.VNode) bool {
	for _, el := range elements {
		if el.Key != "" {
			return true
		}
	}
	for _, old := range olds {
		if cur.node(old).key != "" {
			return true
		}
	}
	return false
}

// childKey namespaces explicit keys apart from implicit positional ones.
func childKey(key string, index int) string {
	if key != "" {
		return "k:" + key
	}
	return "i:" + strconv.Itoa(index)
}

// compact drops nil entries without copying in the common case.
func compact(elements []*vdom.VNode) []*vdom.VNode {
	for i, el := range elements {
		if el != nil {
			continue
		}
		out := append([]*vdom.VNode(nil), elements[:i]...)
		for _, rest := range elements[i+1:] {
			if rest != nil {
				out = append(out, rest)
			}
		}
		return out
	}
	return elements
}
