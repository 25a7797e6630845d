package weftest

import (
	"strings"
	"testing"

	"github.com/vango-dev/weft/pkg/engine"
	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/render"
	"github.com/vango-dev/weft/pkg/vdom"
)

// Harness mounts a tree on a memory host and drives the engine
// synchronously.
type Harness struct {
	t      testing.TB
	Mem    *host.Memory
	Root   *host.Element
	Engine *engine.Engine
}

// Mount renders node into a fresh container and flushes. Effects are
// cleaned up when the test ends.
//
// Example:
//
//	h := weftest.Mount(t, vdom.CreateElement(Counter, nil))
//	h.Click(h.ByID("inc"))
//	h.ExpectContains("1")
func Mount(t testing.TB, node *vdom.VNode, opts ...engine.Option) *Harness {
	t.Helper()
	mem := host.NewMemory()
	h := &Harness{
		t:      t,
		Mem:    mem,
		Root:   mem.NewContainer("div"),
		Engine: engine.New(mem, opts...),
	}
	h.Render(node)
	t.Cleanup(func() {
		h.Engine.Unmount()
		_ = h.Engine.Flush()
	})
	return h
}

// Render replaces the mounted tree with node and flushes.
func (h *Harness) Render(node *vdom.VNode) {
	h.t.Helper()
	if err := h.Engine.Render(node, h.Root); err != nil {
		h.t.Fatalf("Render() error = %v", err)
	}
	h.Flush()
}

// Flush runs all pending work.
func (h *Harness) Flush() {
	h.t.Helper()
	if err := h.Engine.Flush(); err != nil {
		h.t.Fatalf("Flush() error = %v", err)
	}
}

// HTML returns the serialized contents of the mount container.
func (h *Harness) HTML() string {
	return render.HTML(h.Root)
}

// Ops returns the names of host operations logged since the last Reset.
func (h *Harness) Ops() []string {
	var out []string
	for _, m := range h.Mem.Log() {
		out = append(out, m.Op.String())
	}
	return out
}

// Reset clears the host mutation log.
func (h *Harness) Reset() {
	h.Mem.ResetLog()
}

// ByID returns the element with the given id attribute, failing the test
// when there is none.
func (h *Harness) ByID(id string) *host.Element {
	h.t.Helper()
	el := h.Root.Find(func(e *host.Element) bool { return e.Attr("id") == id })
	if el == nil {
		h.t.Fatalf("no element with id %q in:\n%s", id, truncate(h.HTML(), 500))
	}
	return el
}

// ByText returns the first element whose text content is exactly text.
func (h *Harness) ByText(text string) *host.Element {
	h.t.Helper()
	el := h.Root.Find(func(e *host.Element) bool {
		return !e.IsText() && e != h.Root && e.TextContent() == text
	})
	if el == nil {
		h.t.Fatalf("no element with text %q in:\n%s", text, truncate(h.HTML(), 500))
	}
	return el
}

// All returns every mounted element with the given tag.
func (h *Harness) All(tag string) []*host.Element {
	return h.Root.FindAll(tag)
}

// Dispatch delivers an event to el and flushes the resulting work.
func (h *Harness) Dispatch(el *host.Element, event, value string) {
	h.t.Helper()
	if !h.Mem.Dispatch(el, host.Event{Type: event, Value: value}) {
		h.t.Fatalf("<%s> has no %q listener", el.Tag, event)
	}
	h.Flush()
}

// Click dispatches a click on el.
func (h *Harness) Click(el *host.Element) {
	h.t.Helper()
	h.Dispatch(el, "click", "")
}

// Input dispatches an input event carrying value on el.
func (h *Harness) Input(el *host.Element, value string) {
	h.t.Helper()
	h.Dispatch(el, "input", value)
}

// ExpectContains asserts that the mounted HTML contains expected.
func (h *Harness) ExpectContains(expected string) {
	h.t.Helper()
	html := h.HTML()
	if !strings.Contains(html, expected) {
		h.t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the mounted HTML does not contain
// unexpected.
func (h *Harness) ExpectNotContains(unexpected string) {
	h.t.Helper()
	html := h.HTML()
	if strings.Contains(html, unexpected) {
		h.t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectCount asserts how many elements with tag are mounted.
func (h *Harness) ExpectCount(tag string, n int) {
	h.t.Helper()
	if got := len(h.All(tag)); got != n {
		h.t.Errorf("expected %d <%s> elements, got %d in:\n%s", n, tag, got, truncate(h.HTML(), 500))
	}
}

// RenderToString mounts node on a throwaway host and returns its HTML.
func RenderToString(node *vdom.VNode) (string, error) {
	mem := host.NewMemory()
	root := mem.NewContainer("div")
	eng := engine.New(mem)
	if err := eng.Render(node, root); err != nil {
		return "", err
	}
	if err := eng.Flush(); err != nil {
		return "", err
	}
	html := render.HTML(root)
	eng.Unmount()
	return html, eng.Flush()
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
