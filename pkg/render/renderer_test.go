package render

import (
	"errors"
	"strings"
	"testing"

	"github.com/vango-dev/weft/pkg/host"
)

// build creates <tag attrs...>children</tag> on mem.
func build(t *testing.T, mem *host.Memory, tag string, attrs map[string]any, children ...*host.Element) *host.Element {
	t.Helper()
	n, err := mem.CreateNode(tag)
	if err != nil {
		t.Fatal(err)
	}
	for k, v := range attrs {
		if err := mem.SetAttribute(n, k, v); err != nil {
			t.Fatal(err)
		}
	}
	for _, c := range children {
		if err := mem.AppendChild(n, c); err != nil {
			t.Fatal(err)
		}
	}
	return n.(*host.Element)
}

func text(t *testing.T, mem *host.Memory, s string) *host.Element {
	t.Helper()
	n, err := mem.CreateText(s)
	if err != nil {
		t.Fatal(err)
	}
	return n.(*host.Element)
}

func TestRenderElement(t *testing.T) {
	mem := host.NewMemory()
	tests := []struct {
		name string
		el   *host.Element
		want string
	}{
		{
			name: "attributes sorted",
			el:   build(t, mem, "div", map[string]any{"id": "x", "class": "a b"}),
			want: `<div class="a b" id="x"></div>`,
		},
		{
			name: "void element",
			el:   build(t, mem, "input", map[string]any{"type": "text"}),
			want: `<input type="text">`,
		},
		{
			name: "boolean attributes",
			el:   build(t, mem, "button", map[string]any{"disabled": true, "hidden": false}),
			want: `<button disabled></button>`,
		},
		{
			name: "escaped text",
			el:   build(t, mem, "p", nil, text(t, mem, "<b>&'\"")),
			want: `<p>&lt;b&gt;&amp;&#39;&quot;</p>`,
		},
		{
			name: "escaped attribute",
			el:   build(t, mem, "a", map[string]any{"title": "a\"b\nc"}),
			want: `<a title="a&quot;b&#10;c"></a>`,
		},
		{
			name: "renamed props",
			el:   build(t, mem, "label", map[string]any{"htmlFor": "f", "className": "c"}),
			want: `<label class="c" for="f"></label>`,
		},
		{
			name: "non-string values",
			el:   build(t, mem, "li", map[string]any{"value": 10, "data-ratio": 0.5}),
			want: `<li data-ratio="0.5" value="10"></li>`,
		},
	}

	r := NewRenderer(RendererConfig{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.RenderToString(tt.el)
			if err != nil {
				t.Fatalf("RenderToString() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("RenderToString() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestRenderNodeIDsAndListeners(t *testing.T) {
	mem := host.NewMemory()
	btn := build(t, mem, "button", nil, text(t, mem, "go"))
	if err := mem.AddListener(btn, "click", func(host.Event) {}); err != nil {
		t.Fatal(err)
	}

	r := NewRenderer(RendererConfig{NodeIDs: true, ListenerMarkers: true})
	got, err := r.RenderToString(btn)
	if err != nil {
		t.Fatal(err)
	}
	want := `<button data-wid="2" data-on-click>go</button>`
	if got != want {
		t.Errorf("RenderToString() = %s, want %s", got, want)
	}
}

func TestRenderPretty(t *testing.T) {
	mem := host.NewMemory()
	ul := build(t, mem, "ul", nil,
		build(t, mem, "li", nil, text(t, mem, "a")),
		build(t, mem, "li", nil, text(t, mem, "b")),
	)
	got, err := NewRenderer(RendererConfig{Pretty: true}).RenderToString(ul)
	if err != nil {
		t.Fatal(err)
	}
	want := "<ul>\n  <li>a</li>\n  <li>b</li>\n</ul>\n"
	if got != want {
		t.Errorf("pretty output = %q, want %q", got, want)
	}
}

func TestHTMLRendersContainerChildren(t *testing.T) {
	mem := host.NewMemory()
	root := mem.NewContainer("body")
	if err := mem.AppendChild(root, build(t, mem, "p", nil, text(t, mem, "x"))); err != nil {
		t.Fatal(err)
	}
	if got := HTML(root); got != "<p>x</p>" {
		t.Errorf("HTML() = %q", got)
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderWriteError(t *testing.T) {
	mem := host.NewMemory()
	el := build(t, mem, "div", nil)
	err := NewRenderer(RendererConfig{}).RenderToWriter(failingWriter{}, el)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Errorf("RenderToWriter() error = %v, want write error", err)
	}
}

func TestRenderPage(t *testing.T) {
	mem := host.NewMemory()
	root := mem.NewContainer("body")
	if err := mem.AppendChild(root, build(t, mem, "h1", nil, text(t, mem, "Hi"))); err != nil {
		t.Fatal(err)
	}

	var b strings.Builder
	err := NewRenderer(RendererConfig{}).RenderPage(&b, PageData{
		Body:    root,
		Title:   "A & B",
		Meta:    []MetaTag{{Name: "description", Content: "demo"}},
		Scripts: []ScriptTag{{Src: "/app.js", Defer: true}},
	})
	if err != nil {
		t.Fatal(err)
	}
	out := b.String()
	for _, want := range []string{
		"<!DOCTYPE html>",
		`<html lang="en">`,
		"<title>A &amp; B</title>",
		`<meta name="description" content="demo">`,
		`<div id="weft-root"><h1>Hi</h1></div>`,
		`<script src="/app.js" defer></script>`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("page missing %q:\n%s", want, out)
		}
	}
}
