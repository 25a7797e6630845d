package render

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/vango-dev/weft/pkg/host"
)

// RendererConfig configures the HTML renderer.
type RendererConfig struct {
	// Pretty enables indented output. Whitespace between block elements
	// becomes significant to the browser, so use it for inspection only.
	Pretty bool

	// Indent is the string used per indentation level in pretty mode.
	// Defaults to two spaces.
	Indent string

	// NodeIDs adds a data-wid attribute carrying each element's host ID,
	// so a remote client can address nodes rendered on the server.
	NodeIDs bool

	// ListenerMarkers adds data-on-<event> attributes for attached
	// listeners.
	ListenerMarkers bool
}

// Renderer serializes trees of the in-memory host to HTML.
type Renderer struct {
	config RendererConfig
}

// NewRenderer creates a Renderer with the given configuration.
func NewRenderer(config RendererConfig) *Renderer {
	if config.Indent == "" {
		config.Indent = "  "
	}
	return &Renderer{config: config}
}

// RenderToString renders el and its subtree.
func (r *Renderer) RenderToString(el *host.Element) (string, error) {
	var buf bytes.Buffer
	if err := r.RenderToWriter(&buf, el); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderToWriter streams el and its subtree to w.
func (r *Renderer) RenderToWriter(w io.Writer, el *host.Element) error {
	ew := &errWriter{w: w}
	r.renderNode(ew, el, 0, r.config.Pretty)
	return ew.err
}

// RenderChildren renders only the children of el, which is how a mount
// container is usually serialized.
func (r *Renderer) RenderChildren(w io.Writer, el *host.Element) error {
	ew := &errWriter{w: w}
	if el != nil {
		for _, c := range el.Children {
			r.renderNode(ew, c, 0, r.config.Pretty)
		}
	}
	return ew.err
}

// HTML renders the children of a container with the default configuration.
func HTML(container *host.Element) string {
	var buf bytes.Buffer
	_ = NewRenderer(RendererConfig{}).RenderChildren(&buf, container)
	return buf.String()
}

// renderNode writes el. pretty is false inside elements whose children
// stay on one line.
func (r *Renderer) renderNode(w *errWriter, el *host.Element, depth int, pretty bool) {
	if el == nil || w.err != nil {
		return
	}
	if el.IsText() {
		r.indent(w, depth, pretty)
		w.writeString(escapeHTML(el.Text))
		r.newline(w, pretty)
		return
	}

	r.indent(w, depth, pretty)
	w.writeString("<")
	w.writeString(el.Tag)
	r.renderAttributes(w, el)
	w.writeString(">")

	if isVoidElement(el.Tag) {
		r.newline(w, pretty)
		return
	}

	if pretty && !isBlockless(el.Tag) && len(el.Children) > 0 {
		w.writeString("\n")
		for _, c := range el.Children {
			r.renderNode(w, c, depth+1, true)
		}
		r.indent(w, depth, true)
	} else {
		for _, c := range el.Children {
			r.renderNode(w, c, 0, false)
		}
	}

	w.writeString("</")
	w.writeString(el.Tag)
	w.writeString(">")
	r.newline(w, pretty)
}

// renderAttributes writes attributes in key order, followed by the
// optional ID and listener markers.
func (r *Renderer) renderAttributes(w *errWriter, el *host.Element) {
	keys := make([]string, 0, len(el.Attrs))
	for k := range el.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		value := el.Attrs[key]
		if value == nil {
			continue
		}
		switch key {
		case "className":
			key = "class"
		case "htmlFor":
			key = "for"
		}

		if b, ok := value.(bool); ok && isBooleanAttr(key) {
			if b {
				w.writeString(" ")
				w.writeString(key)
			}
			continue
		}
		w.writeString(" ")
		w.writeString(key)
		w.writeString(`="`)
		w.writeString(escapeAttr(attrToString(value)))
		w.writeString(`"`)
	}

	if r.config.NodeIDs {
		w.writeString(` data-wid="`)
		w.writeString(strconv.Itoa(el.ID))
		w.writeString(`"`)
	}
	if r.config.ListenerMarkers {
		events := make([]string, 0, len(el.Listeners))
		for ev := range el.Listeners {
			events = append(events, ev)
		}
		sort.Strings(events)
		for _, ev := range events {
			w.writeString(" data-on-")
			w.writeString(ev)
		}
	}
}

func (r *Renderer) indent(w *errWriter, depth int, pretty bool) {
	if !pretty {
		return
	}
	for i := 0; i < depth; i++ {
		w.writeString(r.config.Indent)
	}
}

func (r *Renderer) newline(w *errWriter, pretty bool) {
	if pretty {
		w.writeString("\n")
	}
}

// attrToString converts an attribute value to its text form.
func attrToString(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// errWriter remembers the first write error and drops later writes.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) writeString(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}
