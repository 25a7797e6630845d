package config

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/vango-dev/weft/internal/errors"
	"github.com/vango-dev/weft/pkg/engine"
)

const (
	// TOMLFileName is the preferred configuration file.
	TOMLFileName = "weft.toml"

	// JSONFileName is read when no TOML file exists.
	JSONFileName = "weft.json"

	// DefaultPort is the default server port.
	DefaultPort = 8080

	// DefaultHost is the default server host.
	DefaultHost = "localhost"

	// DefaultDemo is the app rendered when none is named.
	DefaultDemo = "counter"
)

// Config represents the complete weft configuration.
type Config struct {
	// Demo is the demo app rendered and served by default.
	Demo string `json:"demo,omitempty" toml:"demo"`

	Render RenderConfig `json:"render,omitempty" toml:"render"`
	Serve  ServeConfig  `json:"serve,omitempty" toml:"serve"`
	Export ExportConfig `json:"export,omitempty" toml:"export"`
	Log    LogConfig    `json:"log,omitempty" toml:"log"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// RenderConfig tunes the engine.
type RenderConfig struct {
	// Slice is the idle slice budget of the server loop (e.g. "5ms").
	Slice string `json:"slice,omitempty" toml:"slice"`

	// YieldThreshold is the remaining time below which the work loop
	// yields (e.g. "1ms").
	YieldThreshold string `json:"yieldThreshold,omitempty" toml:"yieldThreshold"`

	// Keyed enables keyed child reconciliation.
	Keyed bool `json:"keyed,omitempty" toml:"keyed"`

	// MaxRestarts bounds render restarts caused by updates during
	// evaluation.
	MaxRestarts int `json:"maxRestarts,omitempty" toml:"maxRestarts"`
}

// ServeConfig configures `weft serve`.
type ServeConfig struct {
	Host string `json:"host,omitempty" toml:"host"`
	Port int    `json:"port,omitempty" toml:"port"`

	// Metrics exposes Prometheus metrics at MetricsPath.
	Metrics     bool   `json:"metrics,omitempty" toml:"metrics"`
	MetricsPath string `json:"metricsPath,omitempty" toml:"metricsPath"`
}

// ExportConfig configures snapshot export. A non-empty Bucket selects S3.
type ExportConfig struct {
	Dir       string `json:"dir,omitempty" toml:"dir"`
	Bucket    string `json:"bucket,omitempty" toml:"bucket"`
	Prefix    string `json:"prefix,omitempty" toml:"prefix"`
	Region    string `json:"region,omitempty" toml:"region"`
	Endpoint  string `json:"endpoint,omitempty" toml:"endpoint"`
	PathStyle bool   `json:"pathStyle,omitempty" toml:"pathStyle"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty" toml:"level"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty" toml:"format"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		Demo: DefaultDemo,
		Render: RenderConfig{
			Slice:          "5ms",
			YieldThreshold: "1ms",
			MaxRestarts:    engine.DefaultMaxRestarts,
		},
		Serve: ServeConfig{
			Host:        DefaultHost,
			Port:        DefaultPort,
			Metrics:     true,
			MetricsPath: "/metrics",
		},
		Export: ExportConfig{
			Dir: "dist",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads weft.toml or weft.json from dir. A directory without
// either file yields the defaults.
func Load(dir string) (*Config, error) {
	for _, name := range []string{TOMLFileName, JSONFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return New(), nil
}

// LoadFile reads the configuration file at path. The format follows the
// file extension.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("W050").
				WithDetail("No configuration file at " + path).
				Wrap(err)
		}
		return nil, errors.New("W050").Wrap(err)
	}

	cfg := New()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = decodeTOML(path, data, cfg)
	case ".json":
		err = decodeJSON(path, data, cfg)
	default:
		return nil, errors.New("W050").
			WithDetail("Unsupported configuration format: " + filepath.Ext(path)).
			WithSuggestion("Use weft.toml or weft.json")
	}
	if err != nil {
		return nil, err
	}

	cfg.configPath = path
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeTOML(path string, data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		we := errors.New("W050").Wrap(err).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid TOML")
		var perr toml.ParseError
		if stderrors.As(err, &perr) {
			we.WithLocation(path, perr.Position.Line, 0)
		}
		return we
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New("W051").
			WithDetail(fmt.Sprintf("Unknown key %q in %s", undecoded[0].String(), filepath.Base(path)))
	}
	return nil
}

func decodeJSON(path string, data []byte, cfg *Config) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		we := errors.New("W050").Wrap(err).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
		var serr *json.SyntaxError
		var terr *json.UnmarshalTypeError
		switch {
		case stderrors.As(err, &serr):
			line, col := position(data, serr.Offset)
			we.WithLocation(path, line, col)
		case stderrors.As(err, &terr):
			line, col := position(data, terr.Offset)
			we.WithLocation(path, line, col)
		}
		return we
	}
	return nil
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	before := data[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	col := int(offset) - bytes.LastIndexByte(before, '\n')
	return line, col
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		return errors.New("W051").
			WithDetail("serve.port must be between 0 and 65535, got " + strconv.Itoa(c.Serve.Port))
	}
	if c.Render.MaxRestarts < 0 {
		return errors.New("W051").
			WithDetail("render.maxRestarts must not be negative")
	}
	for key, val := range map[string]string{
		"render.slice":          c.Render.Slice,
		"render.yieldThreshold": c.Render.YieldThreshold,
	} {
		if val == "" {
			continue
		}
		if d, err := time.ParseDuration(val); err != nil || d < 0 {
			return errors.New("W051").
				WithDetail(fmt.Sprintf("%s must be a duration, got %q", key, val)).
				WithSuggestion(`durations are strings like "5ms"`)
		}
	}
	if _, err := parseLevel(c.Log.Level); err != nil {
		return errors.New("W051").Wrap(err).
			WithSuggestion("log.level is one of debug, info, warn, error")
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return errors.New("W051").
			WithDetail(fmt.Sprintf("log.format must be text or json, got %q", c.Log.Format))
	}
	return nil
}

// Address returns the listen address for `weft serve`.
func (c *Config) Address() string {
	return c.Serve.Host + ":" + strconv.Itoa(c.Serve.Port)
}

// SliceBudget returns the parsed render.slice, or zero when unset.
func (c *Config) SliceBudget() time.Duration {
	d, _ := time.ParseDuration(c.Render.Slice)
	return d
}

// EngineOptions translates the render section into engine options.
func (c *Config) EngineOptions() []engine.Option {
	opts := []engine.Option{engine.WithKeyedReconciliation(c.Render.Keyed)}
	if d, err := time.ParseDuration(c.Render.YieldThreshold); err == nil {
		opts = append(opts, engine.WithYieldThreshold(d))
	}
	if c.Render.MaxRestarts > 0 {
		opts = append(opts, engine.WithMaxRestarts(c.Render.MaxRestarts))
	}
	return opts
}

// Logger builds a slog.Logger writing to w per the log section.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, _ := parseLevel(c.Log.Level)
	hopts := &slog.HandlerOptions{Level: level}
	if c.Log.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	err := level.UnmarshalText([]byte(s))
	return level, err
}
