package server

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vango-dev/weft/pkg/engine"
	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/render"
	"github.com/vango-dev/weft/pkg/telemetry"
	"github.com/vango-dev/weft/pkg/vdom"
)

// Paths served by the router.
const (
	WebSocketPath = "/_weft/live"
	ClientPath    = "/_weft/client.js"
	HealthPath    = "/healthz"
)

// App builds the root node rendered for each page view and session.
type App func() *vdom.VNode

// Server serves an App: GET / returns the server-rendered page, and the
// page's client script opens a websocket session that keeps it live.
type Server struct {
	config   *Config
	app      App
	logger   *slog.Logger
	upgrader websocket.Upgrader
	renderer *render.Renderer
	metrics  *telemetry.Metrics
	router   chi.Router

	mu         sync.Mutex
	sessions   map[string]*Session
	httpServer *http.Server
}

// New creates a server for app. A nil config uses DefaultConfig.
func New(app App, config *Config) *Server {
	if config == nil {
		config = DefaultConfig()
	}
	config = config.Clone()
	config.normalize()

	s := &Server{
		config: config,
		app:    app,
		logger: config.Logger.With("component", "server"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		renderer: render.NewRenderer(render.RendererConfig{}),
		sessions: make(map[string]*Session),
	}
	if config.Registry != nil {
		s.metrics = telemetry.NewMetrics(telemetry.WithRegistry(config.Registry))
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handlePage)
	r.Get(WebSocketPath, s.HandleWebSocket)
	r.Get(ClientPath, s.serveClient)
	r.Head(ClientPath, s.serveClient)
	r.Get(HealthPath, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok\n"))
	})
	if s.config.Registry != nil {
		r.Handle(s.config.MetricsPath, promhttp.HandlerFor(s.config.Registry, promhttp.HandlerOpts{}))
	}
	return r
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Config returns the server configuration.
func (s *Server) Config() *Config {
	return s.config
}

// Metrics returns the server metrics, or nil when disabled.
func (s *Server) Metrics() *telemetry.Metrics {
	return s.metrics
}

// handlePage renders the app once on a throwaway host and writes the
// resulting document.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	mem := host.NewMemory()
	root := mem.NewContainer("div")
	opts := append(slices.Clone(s.config.Engine), engine.WithLogger(s.logger))
	if s.metrics != nil {
		opts = append(opts, engine.WithObserver(s.metrics))
	}
	eng := engine.New(mem, opts...)
	defer func() {
		eng.Unmount()
		if err := eng.Flush(); err != nil {
			s.logger.Warn("page unmount failed", "error", err)
		}
	}()

	err := eng.Render(s.app(), root)
	if err == nil {
		err = eng.Flush()
	}
	if err != nil {
		s.logger.Error("page render failed", "path", r.URL.Path, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	page := render.PageData{
		Body:    root,
		Title:   s.config.Title,
		Scripts: []render.ScriptTag{{Src: ClientPath, Defer: true}},
	}
	if err := s.renderer.RenderPage(&buf, page); err != nil {
		s.logger.Error("page write failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}

// HandleWebSocket upgrades the request and serves a session on it until
// the connection closes.
func (s *Server) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("upgrade failed", "error", err)
		return
	}

	sess := newSession(conn, s.app, s.config, s.metrics)
	sess.onOpen = s.register
	sess.onClose = s.unregister
	// The request context ends when the handler returns, which is only
	// after the session does.
	sess.Serve(context.WithoutCancel(r.Context()))
}

func (s *Server) register(sess *Session) {
	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	if s.metrics != nil {
		s.metrics.SessionOpened()
	}
	sess.logger.Info("session opened")
}

func (s *Server) unregister(sess *Session) {
	s.mu.Lock()
	_, ok := s.sessions[sess.ID]
	delete(s.sessions, sess.ID)
	s.mu.Unlock()
	if !ok {
		return
	}
	if s.metrics != nil {
		s.metrics.SessionClosed()
	}
	sess.logger.Info("session closed")
}

// Sessions returns the number of open sessions.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run listens on the configured address until ctx is cancelled, then
// shuts down.
func (s *Server) Run(ctx context.Context) error {
	s.mu.Lock()
	s.httpServer = &http.Server{
		Addr:              s.config.Address,
		Handler:           s,
		ReadHeaderTimeout: s.config.WriteTimeout,
	}
	srv := s.httpServer
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", s.config.Address)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down...")
		return s.Shutdown(context.Background())
	}
}

// Shutdown closes every session and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	s.mu.Lock()
	open := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		open = append(open, sess)
	}
	srv := s.httpServer
	s.mu.Unlock()

	for _, sess := range open {
		sess.Close()
	}

	if srv != nil {
		if err := srv.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}
	s.logger.Info("server shutdown complete")
	return nil
}
