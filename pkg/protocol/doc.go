// Package protocol implements the binary wire format used to mirror an
// engine's host tree onto a remote client.
//
// The server side wraps its host adapter in a Stream. Every mutation the
// engine commits is forwarded to the inner adapter and recorded as a Patch
// addressed by a numeric node ID. After each commit the server calls Take
// and sends the resulting frame. The client replays the patches in order
// and answers with Event frames, which the server hands to Stream.Dispatch.
//
// # Wire Format
//
// Every message is a frame:
//
//	type (1 byte) | flags (1 byte) | payload length (4 bytes, big-endian) | payload
//
// Integers inside payloads are unsigned varints. Strings are a varint
// length followed by UTF-8 bytes.
//
// # Frame Types
//
//   - FramePatches: server to client, a sequence number and a patch list
//   - FrameEvent: client to server, a node ID, event name and value
//   - FrameError: either direction, an error code and message
//
// The first patches frame of a session carries FlagReset.
//
// # Usage
//
//	mem := host.NewMemory()
//	root := mem.NewContainer("div")
//	stream := protocol.NewStream(mem, root)
//	eng := engine.New(stream)
//	eng.Render(app, root)
//	eng.Flush()
//	if f := stream.Take(); f != nil {
//		protocol.WriteFrame(conn, f)
//	}
package protocol
