package config

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/vango-dev/weft/internal/errors"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(New(), cfg, cmpopts.IgnoreUnexported(Config{})); diff != "" {
		t.Errorf("defaults mismatch (-want +got):\n%s", diff)
	}
	if cfg.Address() != "localhost:8080" {
		t.Errorf("Address = %q", cfg.Address())
	}
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, TOMLFileName, `
demo = "todo"

[render]
slice = "8ms"
keyed = true

[serve]
port = 9000

[export]
bucket = "snaps"
pathStyle = true

[log]
level = "debug"
format = "json"
`)
	// TOML wins over JSON.
	writeFile(t, dir, JSONFileName, `{"demo": "counter"}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Demo != "todo" || !cfg.Render.Keyed || cfg.Serve.Port != 9000 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Serve.Host != DefaultHost {
		t.Errorf("Host = %q, want default kept", cfg.Serve.Host)
	}
	if !cfg.Export.PathStyle || cfg.Export.Bucket != "snaps" {
		t.Errorf("Export = %+v", cfg.Export)
	}
	if cfg.SliceBudget() != 8*time.Millisecond {
		t.Errorf("SliceBudget = %v", cfg.SliceBudget())
	}
	if filepath.Base(cfg.Path()) != TOMLFileName {
		t.Errorf("Path = %q", cfg.Path())
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, JSONFileName, `{"demo": "list", "render": {"maxRestarts": 7}}`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Demo != "list" || cfg.Render.MaxRestarts != 7 {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Render.Slice != "5ms" {
		t.Errorf("Slice = %q, want default", cfg.Render.Slice)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		content  string
		wantCode string
		wantLine int
	}{
		{"toml syntax", TOMLFileName, "demo = \"x\"\n[render\n", "W050", 2},
		{"toml unknown key", TOMLFileName, "colour = \"red\"\n", "W051", 0},
		{"json syntax", JSONFileName, "{\n  \"demo\": \"x\",\n}\n", "W050", 3},
		{"json unknown key", JSONFileName, `{"colour": "red"}`, "W050", 0},
		{"bad port", JSONFileName, `{"serve": {"port": 70000}}`, "W051", 0},
		{"bad duration", TOMLFileName, "[render]\nslice = \"fast\"\n", "W051", 0},
		{"bad level", TOMLFileName, "[log]\nlevel = \"loud\"\n", "W051", 0},
		{"bad format", TOMLFileName, "[log]\nformat = \"xml\"\n", "W051", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), tt.file, tt.content)
			_, err := LoadFile(path)
			var we *errors.WeftError
			if !stderrors.As(err, &we) {
				t.Fatalf("err = %v, want *WeftError", err)
			}
			if we.Code != tt.wantCode {
				t.Errorf("Code = %s, want %s (%v)", we.Code, tt.wantCode, err)
			}
			if tt.wantLine > 0 {
				if we.Location == nil || we.Location.Line != tt.wantLine {
					t.Errorf("Location = %v, want line %d", we.Location, tt.wantLine)
				}
			}
		})
	}
}

func TestLoadFileMissingAndUnsupported(t *testing.T) {
	dir := t.TempDir()
	if _, err := LoadFile(filepath.Join(dir, "weft.toml")); !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want wrapped ErrNotExist", err)
	}
	path := writeFile(t, dir, "weft.yaml", "demo: x")
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "W050") {
		t.Errorf("err = %v, want W050", err)
	}
}

func TestPosition(t *testing.T) {
	data := []byte("ab\ncd\nef")
	tests := []struct {
		offset    int64
		line, col int
	}{
		{0, 1, 1},
		{1, 1, 2},
		{3, 2, 1},
		{7, 3, 2},
		{100, 3, 3},
	}
	for _, tt := range tests {
		line, col := position(data, tt.offset)
		if line != tt.line || col != tt.col {
			t.Errorf("position(%d) = %d:%d, want %d:%d", tt.offset, line, col, tt.line, tt.col)
		}
	}
}

func TestEngineOptions(t *testing.T) {
	cfg := New()
	if got := len(cfg.EngineOptions()); got != 3 {
		t.Errorf("len(EngineOptions) = %d, want 3", got)
	}
	cfg.Render.YieldThreshold = ""
	cfg.Render.MaxRestarts = 0
	if got := len(cfg.EngineOptions()); got != 1 {
		t.Errorf("len(EngineOptions) = %d, want 1", got)
	}
}

func TestLogger(t *testing.T) {
	cfg := New()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "k", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level: %s", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("missing JSON record: %s", out)
	}
}
