package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"

	"github.com/vango-dev/weft/pkg/engine"
	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/protocol"
	"github.com/vango-dev/weft/pkg/sched"
	"github.com/vango-dev/weft/pkg/telemetry"
)

// Session is one live client. It owns a host tree, an engine rendering
// into it and the loop goroutine that drives the engine. Host mutations
// reach the client as patch frames; client events come back as event
// frames and run on the loop.
type Session struct {
	ID        string
	CreatedAt time.Time

	conn    *websocket.Conn
	config  *Config
	app     App
	logger  *slog.Logger
	metrics *telemetry.Metrics

	mem    *host.Memory
	root   *host.Element
	stream *protocol.Stream
	loop   *sched.Loop
	engine *engine.Engine

	out      chan *protocol.Frame
	done     chan struct{}
	closed   atomic.Bool
	cancel   context.CancelFunc
	stopLoop context.CancelFunc
	onOpen   func(*Session)
	onClose  func(*Session)

	events  atomic.Uint64
	patches atomic.Uint64
}

func newSession(conn *websocket.Conn, app App, config *Config, metrics *telemetry.Metrics) *Session {
	id := generateSessionID()
	mem := host.NewMemory()
	root := mem.NewContainer("div")
	s := &Session{
		ID:        id,
		CreatedAt: time.Now(),
		conn:      conn,
		config:    config,
		app:       app,
		logger:    config.Logger.With("session_id", id),
		metrics:   metrics,
		mem:       mem,
		root:      root,
		stream:    protocol.NewStream(mem, root),
		out:       make(chan *protocol.Frame, config.QueueSize),
		done:      make(chan struct{}),
	}
	s.loop = sched.NewLoop(
		sched.WithSlice(config.Slice),
		sched.WithLogger(s.logger),
		sched.WithQueueSize(config.QueueSize),
	)
	return s
}

// generateSessionID returns a random 16-byte hex string.
func generateSessionID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Serve renders the app and processes client frames until the connection
// closes or ctx is cancelled.
func (s *Session) Serve(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	opts := slices.Clone(s.config.Engine)
	opts = append(opts,
		engine.WithScheduler(s.loop),
		engine.WithLogger(s.logger),
		engine.WithObserver(sessionObserver{s: s}),
		engine.WithObserver(telemetry.NewTracer(ctx,
			telemetry.WithTracerProvider(s.config.TracerProvider),
			telemetry.WithAttributes(attribute.String("weft.session", s.ID)))),
		engine.WithOnError(s.reportError),
	)
	if s.metrics != nil {
		opts = append(opts, engine.WithObserver(s.metrics))
	}
	s.engine = engine.New(s.stream, opts...)

	// The loop outlives ctx so Close can still unmount on it.
	loopCtx, stopLoop := context.WithCancel(context.Background())
	s.stopLoop = stopLoop
	if s.onOpen != nil {
		s.onOpen(s)
	}

	go func() {
		<-ctx.Done()
		s.Close()
	}()
	go func() {
		if err := s.loop.Run(loopCtx); err != nil && loopCtx.Err() == nil {
			s.logger.Error("session loop stopped", "error", err)
		}
	}()
	go s.WriteLoop()

	if err := s.loop.Submit(s.mount); err != nil {
		s.logger.Error("mount failed", "error", err)
		s.Close()
		return
	}
	s.ReadLoop()
}

func (s *Session) mount() {
	if err := s.engine.Render(s.app(), s.root); err != nil {
		s.reportError(err)
	}
}

// Close unmounts the tree, running pending cleanups, and closes the
// connection. It is safe to call more than once.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	close(s.done)
	s.unmount()
	s.stopLoop()
	s.cancel()

	_ = s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	_ = s.conn.Close()

	s.logger.Debug("session closed",
		"events", s.events.Load(),
		"patches", s.patches.Load(),
		"duration", time.Since(s.CreatedAt))
	if s.onClose != nil {
		s.onClose(s)
	}
}

// unmount runs the unmount on the loop and waits for it, bounded by the
// write timeout.
func (s *Session) unmount() {
	finished := make(chan struct{})
	err := s.loop.Submit(func() {
		defer close(finished)
		s.engine.Unmount()
		if err := s.engine.Flush(); err != nil {
			s.logger.Warn("unmount failed", "error", err)
		}
	})
	if err != nil {
		return
	}
	select {
	case <-finished:
	case <-time.After(s.config.WriteTimeout):
		s.logger.Warn("unmount timed out")
	}
}

// Done is closed when the session closes.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Events returns the number of client events received.
func (s *Session) Events() uint64 {
	return s.events.Load()
}

// flushPatches sends everything the stream recorded since the last frame.
// It runs on the loop goroutine.
func (s *Session) flushPatches() {
	n := s.stream.Pending()
	frame := s.stream.Take()
	if frame == nil {
		return
	}
	s.patches.Add(uint64(n))
	if s.metrics != nil {
		s.metrics.RecordPatches(n)
	}
	s.send(frame)
}

// reportError forwards engine errors to the client as non-fatal error
// frames.
func (s *Session) reportError(err error) {
	s.logger.Warn("render error", "error", err)
	s.sendError(protocol.ErrRenderFailed, err.Error())
}

func (s *Session) sendError(code protocol.ErrorCode, message string) {
	payload := protocol.EncodeErrorMessage(protocol.NewError(code, message))
	s.send(protocol.NewFrame(protocol.FrameError, payload))
}

// send queues a frame for the write loop. It blocks while the buffer is
// full and drops the frame once the session is closed.
func (s *Session) send(f *protocol.Frame) {
	select {
	case <-s.done:
		return
	default:
	}
	select {
	case s.out <- f:
	case <-s.done:
	}
}

// sessionObserver ships patches after every commit. An aborted commit
// may have applied some operations before failing; those are shipped too
// so the client mirrors the host.
type sessionObserver struct {
	engine.BaseObserver
	s *Session
}

func (o sessionObserver) Committed(engine.CommitStats) { o.s.flushPatches() }
func (o sessionObserver) Aborted(error)                { o.s.flushPatches() }
