package protocol

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/vango-dev/weft/pkg/host"
)

// RootID is the stream ID of the mount container.
const RootID uint32 = 0

// ErrUnknownNode is returned when a node has no stream ID.
var ErrUnknownNode = errors.New("protocol: node not known to stream")

// Stream is a host.Adapter that forwards every operation to an inner
// adapter and records it as a Patch addressed by numeric node IDs. A
// remote client replaying the patches in order reproduces the inner
// host's tree under its own mount point.
//
// Nodes produced by the inner adapter must be comparable. Stream is not
// safe for concurrent use; it belongs to the engine's goroutine.
type Stream struct {
	inner    host.Adapter
	inserter host.Inserter

	ids       map[host.Node]uint32
	nodes     map[uint32]host.Node
	kids      map[uint32][]uint32
	listeners map[uint32]map[string]host.Listener
	text      map[uint32]bool
	next      uint32

	pending []Patch
	seq     uint64
	flags   FrameFlags
}

// NewStream wraps inner. container becomes RootID.
func NewStream(inner host.Adapter, container host.Node) *Stream {
	s := &Stream{
		inner:     inner,
		ids:       map[host.Node]uint32{container: RootID},
		nodes:     map[uint32]host.Node{RootID: container},
		kids:      make(map[uint32][]uint32),
		listeners: make(map[uint32]map[string]host.Listener),
		text:      make(map[uint32]bool),
		next:      RootID + 1,
		flags:     FlagReset,
	}
	if ins, ok := inner.(host.Inserter); ok {
		s.inserter = ins
	}
	return s
}

// ID returns the stream ID of n.
func (s *Stream) ID(n host.Node) (uint32, bool) {
	id, ok := s.ids[n]
	return id, ok
}

// Node returns the inner node with the given stream ID.
func (s *Stream) Node(id uint32) (host.Node, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

// Len returns the number of live nodes, including the container.
func (s *Stream) Len() int {
	return len(s.nodes)
}

// Pending returns the number of patches not yet taken.
func (s *Stream) Pending() int {
	return len(s.pending)
}

// Take returns the recorded patches as a frame and starts a new batch.
// It returns nil when nothing was recorded.
func (s *Stream) Take() *Frame {
	if len(s.pending) == 0 {
		return nil
	}
	s.seq++
	pf := &PatchesFrame{Seq: s.seq, Patches: s.pending}
	s.pending = nil
	f := &Frame{Type: FramePatches, Flags: s.flags, Payload: EncodePatches(pf)}
	s.flags = 0
	return f
}

// Dispatch invokes the listener registered for ev. It reports whether
// one was found.
func (s *Stream) Dispatch(ev *Event) bool {
	l, ok := s.listeners[ev.Node][ev.Type]
	if !ok {
		return false
	}
	l(host.Event{Type: ev.Type, Target: s.nodes[ev.Node], Value: ev.Value})
	return true
}

func (s *Stream) record(p Patch) {
	s.pending = append(s.pending, p)
}

func (s *Stream) register(n host.Node) uint32 {
	id := s.next
	s.next++
	s.ids[n] = id
	s.nodes[id] = n
	return id
}

func (s *Stream) lookup(n host.Node) (uint32, error) {
	id, ok := s.ids[n]
	if !ok {
		return 0, fmt.Errorf("%w: %T", ErrUnknownNode, n)
	}
	return id, nil
}

// CreateNode implements host.Adapter.
func (s *Stream) CreateNode(tag string) (host.Node, error) {
	n, err := s.inner.CreateNode(tag)
	if err != nil {
		return nil, err
	}
	id := s.register(n)
	s.record(Patch{Op: PatchCreateElement, Node: id, Key: tag})
	return n, nil
}

// CreateText implements host.Adapter.
func (s *Stream) CreateText(text string) (host.Node, error) {
	n, err := s.inner.CreateText(text)
	if err != nil {
		return nil, err
	}
	id := s.register(n)
	s.text[id] = true
	s.record(Patch{Op: PatchCreateText, Node: id, Value: text})
	return n, nil
}

// SetAttribute implements host.Adapter. Text content of text nodes is
// sent as SetText; a false boolean is sent as a removal.
func (s *Stream) SetAttribute(n host.Node, key string, value any) error {
	id, err := s.lookup(n)
	if err != nil {
		return err
	}
	if err := s.inner.SetAttribute(n, key, value); err != nil {
		return err
	}
	switch {
	case s.text[id]:
		s.record(Patch{Op: PatchSetText, Node: id, Value: formatValue(value)})
	case value == false:
		s.record(Patch{Op: PatchRemoveAttr, Node: id, Key: key})
	default:
		s.record(Patch{Op: PatchSetAttr, Node: id, Key: key, Value: formatValue(value)})
	}
	return nil
}

// RemoveAttribute implements host.Adapter.
func (s *Stream) RemoveAttribute(n host.Node, key string) error {
	id, err := s.lookup(n)
	if err != nil {
		return err
	}
	if err := s.inner.RemoveAttribute(n, key); err != nil {
		return err
	}
	s.record(Patch{Op: PatchRemoveAttr, Node: id, Key: key})
	return nil
}

// AddListener implements host.Adapter. The listener stays on the server;
// the client only learns that the event should be forwarded.
func (s *Stream) AddListener(n host.Node, event string, l host.Listener) error {
	id, err := s.lookup(n)
	if err != nil {
		return err
	}
	if err := s.inner.AddListener(n, event, l); err != nil {
		return err
	}
	if s.listeners[id] == nil {
		s.listeners[id] = make(map[string]host.Listener)
	}
	s.listeners[id][event] = l
	s.record(Patch{Op: PatchAddListener, Node: id, Key: event})
	return nil
}

// RemoveListener implements host.Adapter.
func (s *Stream) RemoveListener(n host.Node, event string, l host.Listener) error {
	id, err := s.lookup(n)
	if err != nil {
		return err
	}
	if err := s.inner.RemoveListener(n, event, l); err != nil {
		return err
	}
	delete(s.listeners[id], event)
	s.record(Patch{Op: PatchRemoveListener, Node: id, Key: event})
	return nil
}

// AppendChild implements host.Adapter.
func (s *Stream) AppendChild(parent, child host.Node) error {
	pid, cid, err := s.pair(parent, child)
	if err != nil {
		return err
	}
	if err := s.inner.AppendChild(parent, child); err != nil {
		return err
	}
	s.detach(cid)
	s.kids[pid] = append(s.kids[pid], cid)
	s.record(Patch{Op: PatchAppendChild, Parent: pid, Node: cid})
	return nil
}

// InsertBefore implements host.Inserter. It falls back to AppendChild
// when the inner adapter cannot insert.
func (s *Stream) InsertBefore(parent, child, ref host.Node) error {
	if s.inserter == nil {
		return s.AppendChild(parent, child)
	}
	pid, cid, err := s.pair(parent, child)
	if err != nil {
		return err
	}
	rid, err := s.lookup(ref)
	if err != nil {
		return err
	}
	if err := s.inserter.InsertBefore(parent, child, ref); err != nil {
		return err
	}
	s.detach(cid)
	s.kids[pid] = append(s.kids[pid], cid)
	s.record(Patch{Op: PatchInsertBefore, Parent: pid, Node: cid, Ref: rid})
	return nil
}

// RemoveChild implements host.Adapter. The removed subtree's IDs are
// released.
func (s *Stream) RemoveChild(parent, child host.Node) error {
	pid, cid, err := s.pair(parent, child)
	if err != nil {
		return err
	}
	if err := s.inner.RemoveChild(parent, child); err != nil {
		return err
	}
	s.detach(cid)
	s.record(Patch{Op: PatchRemoveChild, Parent: pid, Node: cid})
	s.release(cid)
	return nil
}

func (s *Stream) pair(parent, child host.Node) (uint32, uint32, error) {
	pid, err := s.lookup(parent)
	if err != nil {
		return 0, 0, err
	}
	cid, err := s.lookup(child)
	if err != nil {
		return 0, 0, err
	}
	return pid, cid, nil
}

// detach forgets cid as a child of any parent. Order within kids does not
// matter; it only tracks ownership for release.
func (s *Stream) detach(cid uint32) {
	for pid, ks := range s.kids {
		for i, k := range ks {
			if k == cid {
				s.kids[pid] = append(ks[:i], ks[i+1:]...)
				return
			}
		}
	}
}

func (s *Stream) release(id uint32) {
	for _, k := range s.kids[id] {
		s.release(k)
	}
	delete(s.kids, id)
	delete(s.listeners, id)
	delete(s.text, id)
	if n, ok := s.nodes[id]; ok {
		delete(s.ids, n)
		delete(s.nodes, id)
	}
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return ""
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case float64:
		return strconv.FormatFloat(val, 'g', -1, 64)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
