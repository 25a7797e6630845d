package engine

import (
	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/vdom"
)

// nodeID addresses a work node inside one tree's arena.
type nodeID int32

const (
	noNode nodeID = -1
	rootID nodeID = 0
)

// effectTag tells the committer what to do with a work node.
type effectTag uint8

const (
	tagNone effectTag = iota
	tagInsert
	tagUpdate
	tagDelete
)

// String returns the name of the tag.
func (t effectTag) String() string {
	switch t {
	case tagNone:
		return "none"
	case tagInsert:
		return "insert"
	case tagUpdate:
		return "update"
	case tagDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// instance is a host node plus the listener trampolines attached to it.
// It is shared by a work node and its matches in later cycles.
type instance struct {
	node      host.Node
	listeners map[string]*listenerBox

	// detached is set once the node has been removed from the host. An
	// aborted commit can leave it set on a node the committed tree still
	// links.
	detached bool
}

// listenerBox indirects a host listener so a changed handler can be
// swapped in without touching the host.
type listenerBox struct {
	fn         host.Listener
	trampoline host.Listener
}

func newListenerBox(fn host.Listener) *listenerBox {
	b := &listenerBox{fn: fn}
	b.trampoline = func(ev host.Event) {
		if b.fn != nil {
			b.fn(ev)
		}
	}
	return b
}

// workNode is one unit of the engine's internal tree. Structural links are
// arena indices; alternate indexes the previously committed tree's arena
// and is only used for lookups while diffing.
type workNode struct {
	kind  vdom.Kind
	tag   string
	comp  vdom.Component
	key   string
	props vdom.Props

	// children are the virtual children still to be reconciled.
	children []*vdom.VNode

	inst *instance

	parent    nodeID
	child     nodeID
	sibling   nodeID
	alternate nodeID

	effect effectTag
	moved  bool
	slots  []slot
}

// isHost reports whether the node owns (or will own) a host node.
func (n *workNode) isHost() bool {
	return n.kind == vdom.KindElement || n.kind == vdom.KindText
}

// placement reports whether the committer must attach the node.
func (n *workNode) placement() bool {
	return n.effect == tagInsert || n.moved
}

// tree is an arena of work nodes. Index rootID is always the root, which
// wraps the mount container.
type tree struct {
	nodes []workNode
}

func newTree(container host.Node, element *vdom.VNode, alternate nodeID) *tree {
	var children []*vdom.VNode
	if element != nil {
		children = []*vdom.VNode{element}
	}
	t := &tree{nodes: make([]workNode, 0, 64)}
	t.alloc(workNode{
		kind:      vdom.KindElement,
		inst:      &instance{node: container},
		children:  children,
		parent:    noNode,
		alternate: alternate,
	})
	return t
}

// node returns the node at id. The pointer is only valid until the next
// alloc on the same tree.
func (t *tree) node(id nodeID) *workNode {
	return &t.nodes[id]
}

func (t *tree) alloc(n workNode) nodeID {
	n.child = noNode
	n.sibling = noNode
	t.nodes = append(t.nodes, n)
	return nodeID(len(t.nodes) - 1)
}

// fromVNode builds an unlinked work node for a virtual node.
func fromVNode(el *vdom.VNode, parent nodeID) workNode {
	props := el.Props
	if props == nil {
		props = vdom.Props{}
	}
	return workNode{
		kind:      el.Kind,
		tag:       el.Tag,
		comp:      el.Comp,
		key:       el.Key,
		props:     props,
		children:  el.Children,
		parent:    parent,
		alternate: noNode,
	}
}

// sameKind reports whether an old work node can be reused for el. A node
// whose host node is already detached is never reused.
func sameKind(n *workNode, el *vdom.VNode) bool {
	if n.kind != el.Kind || (n.inst != nil && n.inst.detached) {
		return false
	}
	switch n.kind {
	case vdom.KindElement:
		return n.tag == el.Tag
	case vdom.KindComponent:
		return vdom.SameComponent(n.comp, el.Comp)
	default:
		return true
	}
}

// root is the per-engine root descriptor.
type root struct {
	container host.Node
	element   *vdom.VNode

	current *tree // committed; nil before the first commit
	wip     *tree // being built; nil when idle

	// deletions are nodes of current removed by the in-progress render.
	deletions []nodeID
}
