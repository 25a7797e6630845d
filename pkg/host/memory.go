package host

import (
	"fmt"
	"strings"
)

// Op identifies a host mutation recorded by Memory.
type Op uint8

const (
	OpCreateNode Op = iota + 1
	OpCreateText
	OpSetAttr
	OpRemoveAttr
	OpAddListener
	OpRemoveListener
	OpAppendChild
	OpInsertBefore
	OpRemoveChild
)

// String returns a human-readable name for the op.
func (op Op) String() string {
	switch op {
	case OpCreateNode:
		return "CreateNode"
	case OpCreateText:
		return "CreateText"
	case OpSetAttr:
		return "SetAttr"
	case OpRemoveAttr:
		return "RemoveAttr"
	case OpAddListener:
		return "AddListener"
	case OpRemoveListener:
		return "RemoveListener"
	case OpAppendChild:
		return "AppendChild"
	case OpInsertBefore:
		return "InsertBefore"
	case OpRemoveChild:
		return "RemoveChild"
	default:
		return "Unknown"
	}
}

// Mutation is one recorded host operation. Node and Parent are element IDs.
type Mutation struct {
	Op     Op
	Node   int
	Parent int
	Ref    int
	Key    string
	Value  any
}

// String formats the mutation for test failure output.
func (m Mutation) String() string {
	switch m.Op {
	case OpSetAttr:
		return fmt.Sprintf("%s(#%d %s=%v)", m.Op, m.Node, m.Key, m.Value)
	case OpRemoveAttr, OpAddListener, OpRemoveListener:
		return fmt.Sprintf("%s(#%d %s)", m.Op, m.Node, m.Key)
	case OpAppendChild, OpRemoveChild:
		return fmt.Sprintf("%s(#%d <- #%d)", m.Op, m.Parent, m.Node)
	case OpInsertBefore:
		return fmt.Sprintf("%s(#%d <- #%d before #%d)", m.Op, m.Parent, m.Node, m.Ref)
	default:
		return fmt.Sprintf("%s(#%d %v)", m.Op, m.Node, m.Value)
	}
}

// Element is a node of the in-memory host tree. A text node has an empty Tag.
type Element struct {
	ID        int
	Tag       string
	Text      string
	Attrs     map[string]any
	Listeners map[string]Listener
	Parent    *Element
	Children  []*Element
}

// IsText reports whether the element is a text node.
func (e *Element) IsText() bool {
	return e.Tag == ""
}

// Attr returns the string form of an attribute, or "" when unset.
func (e *Element) Attr(key string) string {
	v, ok := e.Attrs[key]
	if !ok {
		return ""
	}
	return fmt.Sprint(v)
}

// TextContent returns the concatenated text of the element's subtree.
func (e *Element) TextContent() string {
	if e.IsText() {
		return e.Text
	}
	var b strings.Builder
	for _, c := range e.Children {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// Find returns the first element in pre-order for which match is true.
func (e *Element) Find(match func(*Element) bool) *Element {
	if match(e) {
		return e
	}
	for _, c := range e.Children {
		if found := c.Find(match); found != nil {
			return found
		}
	}
	return nil
}

// FindAll returns every element with the given tag in pre-order.
func (e *Element) FindAll(tag string) []*Element {
	var out []*Element
	var walk func(*Element)
	walk = func(n *Element) {
		if n.Tag == tag {
			out = append(out, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(e)
	return out
}

func (e *Element) indexOf(child *Element) int {
	for i, c := range e.Children {
		if c == child {
			return i
		}
	}
	return -1
}

func (e *Element) detach() {
	if e.Parent == nil {
		return
	}
	if i := e.Parent.indexOf(e); i >= 0 {
		e.Parent.Children = append(e.Parent.Children[:i], e.Parent.Children[i+1:]...)
	}
	e.Parent = nil
}

// Memory is an Adapter backed by an in-process tree of Elements. Every
// operation is appended to a mutation log. Memory is not goroutine-safe.
type Memory struct {
	nextID int
	log    []Mutation

	// FailOn, when set, is consulted before each operation; a non-nil
	// return rejects the operation with that error.
	FailOn func(op Op, n *Element) error
}

// NewMemory creates an empty memory host.
func NewMemory() *Memory {
	return &Memory{}
}

// NewContainer creates a detached element to mount a tree into.
// It is not recorded in the mutation log.
func (m *Memory) NewContainer(tag string) *Element {
	return m.newElement(tag)
}

// Log returns the mutations recorded since the last ResetLog.
func (m *Memory) Log() []Mutation {
	return m.log
}

// ResetLog clears the mutation log.
func (m *Memory) ResetLog() {
	m.log = nil
}

// Count returns the number of logged mutations with the given op.
func (m *Memory) Count(op Op) int {
	n := 0
	for _, mu := range m.log {
		if mu.Op == op {
			n++
		}
	}
	return n
}

// Dispatch delivers an event to the listener registered on el for
// ev.Type. It reports whether a listener was found.
func (m *Memory) Dispatch(el *Element, ev Event) bool {
	l, ok := el.Listeners[ev.Type]
	if !ok {
		return false
	}
	ev.Target = el
	l(ev)
	return true
}

func (m *Memory) newElement(tag string) *Element {
	m.nextID++
	return &Element{
		ID:        m.nextID,
		Tag:       tag,
		Attrs:     make(map[string]any),
		Listeners: make(map[string]Listener),
	}
}

func (m *Memory) check(op Op, n *Element) error {
	if m.FailOn == nil {
		return nil
	}
	return m.FailOn(op, n)
}

func element(n Node) (*Element, error) {
	el, ok := n.(*Element)
	if !ok || el == nil {
		return nil, fmt.Errorf("%w: %T", ErrForeignNode, n)
	}
	return el, nil
}

// CreateNode implements Adapter.
func (m *Memory) CreateNode(tag string) (Node, error) {
	if err := m.check(OpCreateNode, nil); err != nil {
		return nil, err
	}
	el := m.newElement(tag)
	m.log = append(m.log, Mutation{Op: OpCreateNode, Node: el.ID, Value: tag})
	return el, nil
}

// CreateText implements Adapter.
func (m *Memory) CreateText(text string) (Node, error) {
	if err := m.check(OpCreateText, nil); err != nil {
		return nil, err
	}
	el := m.newElement("")
	el.Text = text
	m.log = append(m.log, Mutation{Op: OpCreateText, Node: el.ID, Value: text})
	return el, nil
}

// SetAttribute implements Adapter. Setting "nodeValue" on a text node
// replaces its text.
func (m *Memory) SetAttribute(n Node, key string, value any) error {
	el, err := element(n)
	if err != nil {
		return err
	}
	if err := m.check(OpSetAttr, el); err != nil {
		return err
	}
	if el.IsText() && key == "nodeValue" {
		el.Text = fmt.Sprint(value)
	} else {
		el.Attrs[key] = value
	}
	m.log = append(m.log, Mutation{Op: OpSetAttr, Node: el.ID, Key: key, Value: value})
	return nil
}

// RemoveAttribute implements Adapter.
func (m *Memory) RemoveAttribute(n Node, key string) error {
	el, err := element(n)
	if err != nil {
		return err
	}
	if err := m.check(OpRemoveAttr, el); err != nil {
		return err
	}
	delete(el.Attrs, key)
	m.log = append(m.log, Mutation{Op: OpRemoveAttr, Node: el.ID, Key: key})
	return nil
}

// AddListener implements Adapter. A node holds one listener per event.
func (m *Memory) AddListener(n Node, event string, l Listener) error {
	el, err := element(n)
	if err != nil {
		return err
	}
	if err := m.check(OpAddListener, el); err != nil {
		return err
	}
	el.Listeners[event] = l
	m.log = append(m.log, Mutation{Op: OpAddListener, Node: el.ID, Key: event})
	return nil
}

// RemoveListener implements Adapter.
func (m *Memory) RemoveListener(n Node, event string, _ Listener) error {
	el, err := element(n)
	if err != nil {
		return err
	}
	if err := m.check(OpRemoveListener, el); err != nil {
		return err
	}
	delete(el.Listeners, event)
	m.log = append(m.log, Mutation{Op: OpRemoveListener, Node: el.ID, Key: event})
	return nil
}

// AppendChild implements Adapter. An attached child is moved.
func (m *Memory) AppendChild(parent, child Node) error {
	p, c, err := m.pair(OpAppendChild, parent, child)
	if err != nil {
		return err
	}
	c.detach()
	c.Parent = p
	p.Children = append(p.Children, c)
	m.log = append(m.log, Mutation{Op: OpAppendChild, Node: c.ID, Parent: p.ID})
	return nil
}

// InsertBefore implements Inserter. An attached child is moved.
func (m *Memory) InsertBefore(parent, child, ref Node) error {
	p, c, err := m.pair(OpInsertBefore, parent, child)
	if err != nil {
		return err
	}
	r, err := element(ref)
	if err != nil {
		return err
	}
	if r.Parent != p {
		return fmt.Errorf("%w: #%d under #%d", ErrNotChild, r.ID, p.ID)
	}
	c.detach()
	i := p.indexOf(r)
	p.Children = append(p.Children, nil)
	copy(p.Children[i+1:], p.Children[i:])
	p.Children[i] = c
	c.Parent = p
	m.log = append(m.log, Mutation{Op: OpInsertBefore, Node: c.ID, Parent: p.ID, Ref: r.ID})
	return nil
}

// RemoveChild implements Adapter.
func (m *Memory) RemoveChild(parent, child Node) error {
	p, c, err := m.pair(OpRemoveChild, parent, child)
	if err != nil {
		return err
	}
	if c.Parent != p {
		return fmt.Errorf("%w: #%d under #%d", ErrNotChild, c.ID, p.ID)
	}
	c.detach()
	m.log = append(m.log, Mutation{Op: OpRemoveChild, Node: c.ID, Parent: p.ID})
	return nil
}

func (m *Memory) pair(op Op, parent, child Node) (*Element, *Element, error) {
	p, err := element(parent)
	if err != nil {
		return nil, nil, err
	}
	c, err := element(child)
	if err != nil {
		return nil, nil, err
	}
	if p.IsText() {
		return nil, nil, ErrTextNode
	}
	if err := m.check(op, c); err != nil {
		return nil, nil, err
	}
	return p, c, nil
}
