package protocol

// Event is a listener invocation sent by a remote client.
type Event struct {
	Node  uint32 // stream ID of the target node
	Type  string // event name, e.g. "click"
	Value string // current value of form controls, if any
}

// EncodeEvent encodes an event payload.
func EncodeEvent(ev *Event) []byte {
	e := NewEncoder()
	EncodeEventTo(e, ev)
	return e.Bytes()
}

// EncodeEventTo encodes an event payload into e.
func EncodeEventTo(e *Encoder, ev *Event) {
	e.WriteUvarint(uint64(ev.Node))
	e.WriteString(ev.Type)
	e.WriteString(ev.Value)
}

// DecodeEvent decodes an event payload.
func DecodeEvent(data []byte) (*Event, error) {
	d := NewDecoder(data)
	var ev Event
	var err error
	if ev.Node, err = d.ReadUint32Varint(); err != nil {
		return nil, err
	}
	if ev.Type, err = d.ReadString(); err != nil {
		return nil, err
	}
	if ev.Value, err = d.ReadString(); err != nil {
		return nil, err
	}
	return &ev, nil
}
