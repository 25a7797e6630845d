package server

import (
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/weft/pkg/protocol"
)

// ReadLoop reads frames from the connection and queues client events on
// the session loop. It blocks until the connection fails, then closes the
// session.
func (s *Session) ReadLoop() {
	defer s.Close()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			s.logger.Error("frame decode error", "error", err)
			s.sendError(protocol.ErrInvalidFrame, err.Error())
			continue
		}

		switch frame.Type {
		case protocol.FrameEvent:
			s.handleEventFrame(frame.Payload)

		case protocol.FrameError:
			if em, err := protocol.DecodeErrorMessage(frame.Payload); err == nil {
				s.logger.Warn("client error", "code", em.Code.String(), "message", em.Message)
				if em.Fatal {
					return
				}
			}

		default:
			s.logger.Warn("unexpected frame type", "type", frame.Type.String())
			s.sendError(protocol.ErrInvalidFrame, "unexpected frame type "+frame.Type.String())
		}
	}
}

// handleEventFrame decodes an event and runs its listener on the loop.
func (s *Session) handleEventFrame(payload []byte) {
	ev, err := protocol.DecodeEvent(payload)
	if err != nil {
		s.logger.Error("event decode error", "error", err)
		s.sendError(protocol.ErrInvalidEvent, "invalid event format")
		return
	}
	s.events.Add(1)

	err = s.loop.Submit(func() {
		if !s.stream.Dispatch(ev) {
			s.logger.Debug("no listener", "node", ev.Node, "event", ev.Type)
			s.sendError(protocol.ErrHandlerNotFound, "no "+ev.Type+" listener")
		}
	})
	if err != nil {
		s.logger.Debug("event dropped", "error", err)
	}
}

// WriteLoop writes queued frames and heartbeat pings. It runs until the
// session is closed or a write fails.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case f := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.BinaryMessage, f.Encode()); err != nil {
				s.logger.Debug("write error", "error", err)
				s.Close()
				return
			}

		case <-ticker.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				s.logger.Debug("ping error", "error", err)
				s.Close()
				return
			}

		case <-s.done:
			return
		}
	}
}
