package protocol

import (
	"errors"
	"fmt"
)

// PatchOp is a host mutation replayed by a remote client.
type PatchOp uint8

const (
	PatchCreateElement  PatchOp = 0x01
	PatchCreateText     PatchOp = 0x02
	PatchSetText        PatchOp = 0x03
	PatchSetAttr        PatchOp = 0x04
	PatchRemoveAttr     PatchOp = 0x05
	PatchAddListener    PatchOp = 0x06
	PatchRemoveListener PatchOp = 0x07
	PatchAppendChild    PatchOp = 0x08
	PatchInsertBefore   PatchOp = 0x09
	PatchRemoveChild    PatchOp = 0x0A
)

// String returns the name of the operation.
func (op PatchOp) String() string {
	switch op {
	case PatchCreateElement:
		return "CreateElement"
	case PatchCreateText:
		return "CreateText"
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchAddListener:
		return "AddListener"
	case PatchRemoveListener:
		return "RemoveListener"
	case PatchAppendChild:
		return "AppendChild"
	case PatchInsertBefore:
		return "InsertBefore"
	case PatchRemoveChild:
		return "RemoveChild"
	default:
		return fmt.Sprintf("PatchOp(%d)", uint8(op))
	}
}

// ErrUnknownPatchOp is returned when decoding an unrecognized operation.
var ErrUnknownPatchOp = errors.New("protocol: unknown patch op")

// Patch is one host mutation addressed by stream node IDs. Which fields
// are meaningful depends on Op:
//
//	CreateElement             Node, Key (tag)
//	CreateText, SetText       Node, Value (text)
//	SetAttr                   Node, Key, Value
//	RemoveAttr                Node, Key
//	Add/RemoveListener        Node, Key (event)
//	AppendChild, RemoveChild  Parent, Node
//	InsertBefore              Parent, Node, Ref
type Patch struct {
	Op     PatchOp
	Node   uint32
	Parent uint32
	Ref    uint32
	Key    string
	Value  string
}

// PatchesFrame is an ordered batch of patches produced by one commit.
type PatchesFrame struct {
	Seq     uint64
	Patches []Patch
}

// EncodePatches encodes a batch.
func EncodePatches(pf *PatchesFrame) []byte {
	e := NewEncoder()
	EncodePatchesTo(e, pf)
	return e.Bytes()
}

// EncodePatchesTo encodes a batch into e.
func EncodePatchesTo(e *Encoder, pf *PatchesFrame) {
	e.WriteUvarint(pf.Seq)
	e.WriteUvarint(uint64(len(pf.Patches)))
	for i := range pf.Patches {
		encodePatch(e, &pf.Patches[i])
	}
}

func encodePatch(e *Encoder, p *Patch) {
	e.WriteByte(byte(p.Op))
	switch p.Op {
	case PatchCreateElement, PatchRemoveAttr, PatchAddListener, PatchRemoveListener:
		e.WriteUvarint(uint64(p.Node))
		e.WriteString(p.Key)
	case PatchCreateText, PatchSetText:
		e.WriteUvarint(uint64(p.Node))
		e.WriteString(p.Value)
	case PatchSetAttr:
		e.WriteUvarint(uint64(p.Node))
		e.WriteString(p.Key)
		e.WriteString(p.Value)
	case PatchAppendChild, PatchRemoveChild:
		e.WriteUvarint(uint64(p.Parent))
		e.WriteUvarint(uint64(p.Node))
	case PatchInsertBefore:
		e.WriteUvarint(uint64(p.Parent))
		e.WriteUvarint(uint64(p.Node))
		e.WriteUvarint(uint64(p.Ref))
	}
}

// DecodePatches decodes a batch.
func DecodePatches(data []byte) (*PatchesFrame, error) {
	d := NewDecoder(data)
	seq, err := d.ReadUvarint()
	if err != nil {
		return nil, err
	}
	count, err := d.ReadCollectionCount()
	if err != nil {
		return nil, err
	}
	pf := &PatchesFrame{Seq: seq, Patches: make([]Patch, count)}
	for i := range pf.Patches {
		if err := decodePatch(d, &pf.Patches[i]); err != nil {
			return nil, fmt.Errorf("patch %d: %w", i, err)
		}
	}
	return pf, nil
}

func decodePatch(d *Decoder, p *Patch) error {
	op, err := d.ReadByte()
	if err != nil {
		return err
	}
	p.Op = PatchOp(op)
	switch p.Op {
	case PatchCreateElement, PatchRemoveAttr, PatchAddListener, PatchRemoveListener:
		if p.Node, err = d.ReadUint32Varint(); err != nil {
			return err
		}
		p.Key, err = d.ReadString()
	case PatchCreateText, PatchSetText:
		if p.Node, err = d.ReadUint32Varint(); err != nil {
			return err
		}
		p.Value, err = d.ReadString()
	case PatchSetAttr:
		if p.Node, err = d.ReadUint32Varint(); err != nil {
			return err
		}
		if p.Key, err = d.ReadString(); err != nil {
			return err
		}
		p.Value, err = d.ReadString()
	case PatchAppendChild, PatchRemoveChild:
		if p.Parent, err = d.ReadUint32Varint(); err != nil {
			return err
		}
		p.Node, err = d.ReadUint32Varint()
	case PatchInsertBefore:
		if p.Parent, err = d.ReadUint32Varint(); err != nil {
			return err
		}
		if p.Node, err = d.ReadUint32Varint(); err != nil {
			return err
		}
		p.Ref, err = d.ReadUint32Varint()
	default:
		return fmt.Errorf("%w: 0x%02x", ErrUnknownPatchOp, op)
	}
	return err
}
