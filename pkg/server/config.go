package server

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/weft/pkg/engine"
)

// Config holds configuration for a Server and the sessions it opens.
type Config struct {
	// Address is the listen address used by Run.
	// Default: "localhost:8080".
	Address string

	// Title is the document title of the served page.
	Title string

	// ReadTimeout is the maximum time to wait for a message from the
	// client. Pongs extend it. Default: 60 seconds.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum time to wait when sending a message.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// HeartbeatInterval is the time between pings. It must be shorter
	// than ReadTimeout. Default: 30 seconds.
	HeartbeatInterval time.Duration

	// ShutdownTimeout bounds Shutdown. Default: 10 seconds.
	ShutdownTimeout time.Duration

	// MaxMessageSize is the maximum size of an incoming message.
	// Default: 64KB.
	MaxMessageSize int64

	// QueueSize is the capacity of each session's event queue and of its
	// outgoing frame buffer. Default: 256.
	QueueSize int

	// Slice is the idle slice budget of each session loop. Default: 5ms.
	Slice time.Duration

	// ReadBufferSize and WriteBufferSize size the websocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// CheckOrigin validates the Origin header of upgrade requests. Nil
	// accepts same-origin requests only.
	CheckOrigin func(r *http.Request) bool

	// DevMode disables caching of the client script.
	DevMode bool

	// Engine options applied to every engine the server creates.
	Engine []engine.Option

	// Registry enables Prometheus metrics: they are registered on it and
	// served at MetricsPath.
	Registry    *prometheus.Registry
	MetricsPath string

	// TracerProvider receives render spans. Nil uses the global provider.
	TracerProvider trace.TracerProvider

	// Logger is the server logger. Nil uses slog.Default().
	Logger *slog.Logger
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Address:           "localhost:8080",
		Title:             "weft",
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
		HeartbeatInterval: 30 * time.Second,
		ShutdownTimeout:   10 * time.Second,
		MaxMessageSize:    64 * 1024,
		QueueSize:         256,
		Slice:             5 * time.Millisecond,
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		MetricsPath:       "/metrics",
	}
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Engine = slices.Clone(c.Engine)
	return &clone
}

// WithAddress returns a copy with the listen address set.
func (c *Config) WithAddress(addr string) *Config {
	clone := c.Clone()
	clone.Address = addr
	return clone
}

// WithDevMode returns a copy with DevMode enabled.
func (c *Config) WithDevMode() *Config {
	clone := c.Clone()
	clone.DevMode = true
	return clone
}

// normalize fills zero fields with defaults.
func (c *Config) normalize() {
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.ReadTimeout <= 0 {
		c.ReadTimeout = d.ReadTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.HeartbeatInterval <= 0 || c.HeartbeatInterval >= c.ReadTimeout {
		c.HeartbeatInterval = c.ReadTimeout / 2
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	if c.MaxMessageSize <= 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.QueueSize <= 0 {
		c.QueueSize = d.QueueSize
	}
	if c.Slice <= 0 {
		c.Slice = d.Slice
	}
	if c.MetricsPath == "" {
		c.MetricsPath = d.MetricsPath
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}
