package protocol

import (
	"errors"
	"io"
)

const (
	// FrameHeaderSize is the size of the frame header in bytes.
	FrameHeaderSize = 6

	// MaxPayloadSize bounds a single frame's payload. A first render of a
	// large page is sent as one frame, so this is generous.
	MaxPayloadSize = 16 << 20
)

// FrameType identifies the payload of a frame.
type FrameType uint8

const (
	FramePatches FrameType = 0x01 // server → client host mutations
	FrameEvent   FrameType = 0x02 // client → server listener invocation
	FrameError   FrameType = 0x03 // either direction
)

// String returns the name of the frame type.
func (ft FrameType) String() string {
	switch ft {
	case FramePatches:
		return "Patches"
	case FrameEvent:
		return "Event"
	case FrameError:
		return "Error"
	default:
		return "Unknown"
	}
}

// FrameFlags are optional per-frame flags.
type FrameFlags uint8

const (
	// FlagReset tells the client to clear its mount point before applying
	// the patches. It is set on the first frame of a session.
	FlagReset FrameFlags = 0x01
)

// Has reports whether flag is set.
func (ff FrameFlags) Has(flag FrameFlags) bool {
	return ff&flag != 0
}

// Frame errors.
var (
	ErrFrameTooLarge    = errors.New("protocol: frame payload too large")
	ErrInvalidFrameType = errors.New("protocol: invalid frame type")
)

// Frame is one protocol message.
//
// Wire format:
//
//	type (1 byte) | flags (1 byte) | payload length (4 bytes, big-endian) | payload
type Frame struct {
	Type    FrameType
	Flags   FrameFlags
	Payload []byte
}

// NewFrame creates a frame without flags.
func NewFrame(ft FrameType, payload []byte) *Frame {
	return &Frame{Type: ft, Payload: payload}
}

// Encode returns the frame including its header.
func (f *Frame) Encode() []byte {
	e := &Encoder{buf: make([]byte, 0, FrameHeaderSize+len(f.Payload))}
	e.WriteByte(byte(f.Type))
	e.WriteByte(byte(f.Flags))
	e.WriteUint32(uint32(len(f.Payload)))
	e.WriteBytes(f.Payload)
	return e.buf
}

// DecodeFrame decodes one complete frame from data.
func DecodeFrame(data []byte) (*Frame, error) {
	d := NewDecoder(data)
	f, length, err := decodeHeader(d)
	if err != nil {
		return nil, err
	}
	if d.Remaining() < length {
		return nil, io.ErrUnexpectedEOF
	}
	f.Payload = append([]byte(nil), data[FrameHeaderSize:FrameHeaderSize+length]...)
	return f, nil
}

func decodeHeader(d *Decoder) (*Frame, int, error) {
	ft, err := d.ReadByte()
	if err != nil {
		return nil, 0, err
	}
	flags, err := d.ReadByte()
	if err != nil {
		return nil, 0, err
	}
	length, err := d.ReadUint32()
	if err != nil {
		return nil, 0, err
	}
	if length > MaxPayloadSize {
		return nil, 0, ErrFrameTooLarge
	}
	switch FrameType(ft) {
	case FramePatches, FrameEvent, FrameError:
	default:
		return nil, 0, ErrInvalidFrameType
	}
	return &Frame{Type: FrameType(ft), Flags: FrameFlags(flags)}, int(length), nil
}

// ReadFrame reads one frame from r.
func ReadFrame(r io.Reader) (*Frame, error) {
	header := make([]byte, FrameHeaderSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}
	f, length, err := decodeHeader(NewDecoder(header))
	if err != nil {
		return nil, err
	}
	f.Payload = make([]byte, length)
	if _, err := io.ReadFull(r, f.Payload); err != nil {
		return nil, err
	}
	return f, nil
}

// WriteFrame writes f to w.
func WriteFrame(w io.Writer, f *Frame) error {
	if len(f.Payload) > MaxPayloadSize {
		return ErrFrameTooLarge
	}
	_, err := w.Write(f.Encode())
	return err
}
