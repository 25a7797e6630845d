// Package host defines the boundary between the engine and a concrete UI
// tree, and provides Memory, an in-process host used by tests, the HTML
// renderer and the patch stream.
package host

import "errors"

// Node is an opaque handle to a node owned by a host.
type Node any

// Event is delivered to listeners attached through an Adapter.
type Event struct {
	Type   string         // "click", "input", ...
	Target Node           // Node the event was dispatched on
	Value  string         // Current value for input-like events
	Data   map[string]any // Host-specific payload
}

// Listener receives events for one (node, event type) pair.
type Listener func(Event)

// Adapter creates and mutates real platform nodes. The engine only ever
// talks to the host through this interface, so an Adapter may target a
// browser bridge, a terminal, a test double, or a patch stream.
//
// Implementations report rejected operations as errors; the engine aborts
// the current commit on the first error.
type Adapter interface {
	CreateNode(tag string) (Node, error)
	CreateText(text string) (Node, error)
	SetAttribute(n Node, key string, value any) error
	RemoveAttribute(n Node, key string) error
	AddListener(n Node, event string, l Listener) error
	RemoveListener(n Node, event string, l Listener) error
	AppendChild(parent, child Node) error
	RemoveChild(parent, child Node) error
}

// Inserter is implemented by adapters that can place a child before an
// existing sibling. When child is already attached it is moved.
// Without it the engine falls back to AppendChild, which keeps the
// order of freshly mounted trees but not of nodes inserted mid-list.
type Inserter interface {
	InsertBefore(parent, child, ref Node) error
}

var (
	// ErrForeignNode is returned when a handle was not created by the host.
	ErrForeignNode = errors.New("host: node does not belong to this host")

	// ErrNotChild is returned when removing or inserting relative to a
	// node that is not a child of the given parent.
	ErrNotChild = errors.New("host: node is not a child of parent")

	// ErrTextNode is returned when a text node is used as a parent.
	ErrTextNode = errors.New("host: text nodes cannot have children")
)
