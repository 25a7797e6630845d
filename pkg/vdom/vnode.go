package vdom

import "reflect"

// Kind is the node type discriminator.
type Kind uint8

const (
	KindElement   Kind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
	KindComponent             // Function component
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// TextProp is the prop holding the content of a text node.
const TextProp = "nodeValue"

// ChildrenProp is the prop a component receives its children under.
const ChildrenProp = "children"

// VNode is an immutable description of one node of desired UI.
// VNodes are built fresh on every render pass and never mutated afterwards.
type VNode struct {
	Kind     Kind      // Node type
	Tag      string    // Element tag name (e.g., "div")
	Comp     Component // For KindComponent
	Props    Props     // Attributes and event handlers
	Children []*VNode  // Child nodes
	Key      string    // Optional reconciliation key
}

// Text returns the content of a text node.
func (v *VNode) Text() string {
	if v == nil || v.Kind != KindText {
		return ""
	}
	s, _ := v.Props[TextProp].(string)
	return s
}

// SameKind reports whether a and b would be matched as the same node by
// the reconciler: equal element tags, both text, both fragments, or
// components backed by the same function.
func SameKind(a, b *VNode) bool {
	if a == nil || b == nil || a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindElement:
		return a.Tag == b.Tag
	case KindComponent:
		return SameComponent(a.Comp, b.Comp)
	default:
		return true
	}
}

// SameComponent compares two components by the function they run.
// Closures created from the same function literal compare equal.
func SameComponent(a, b Component) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.ValueOf(a).Pointer() == reflect.ValueOf(b).Pointer()
}

// Props holds attributes and event handlers.
type Props map[string]any

// Children returns the children passed to a component.
func (p Props) Children() []*VNode {
	c, _ := p[ChildrenProp].([]*VNode)
	return c
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}

// EventHandler represents an event handler.
type EventHandler struct {
	Event   string // "onclick", "oninput", etc.
	Handler any    // Function to call
}

// Component renders a description of UI from its props. The Scope is only
// valid for the duration of the call.
type Component func(s Scope, props Props) *VNode

// Cleanup undoes the work of an effect.
type Cleanup func()

// EffectFunc is an after-commit callback. It may return a Cleanup that runs
// before the next invocation or when the owning component is deleted.
type EffectFunc func() Cleanup

// StateUpdate maps the previous value of a state slot to the next one.
type StateUpdate func(prev any) any

// Scope is the per-evaluation handle through which a component declares its
// stateful slots. Slots are matched by declaration order, so a component
// must declare the same slots in the same order on every evaluation.
type Scope interface {
	// State declares the next state slot. initial is called only when the
	// slot is created. The returned function enqueues an update and
	// requests a re-render.
	State(initial func() any) (value any, enqueue func(StateUpdate))

	// Effect declares the next effect slot. A nil deps slice means the
	// effect runs after every commit; an empty non-nil slice means it runs
	// once after the commit that created it.
	Effect(fn EffectFunc, deps []any)
}
