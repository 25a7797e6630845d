package render

import (
	"io"

	"github.com/vango-dev/weft/pkg/host"
)

// DefaultMountID is the id of the element the page body is rendered into.
const DefaultMountID = "weft-root"

// PageData contains everything needed to render a complete HTML page.
type PageData struct {
	// Body is the mount container; its children become the page content.
	Body *host.Element

	// Title is the page title.
	Title string

	// Lang is the html lang attribute. Defaults to "en".
	Lang string

	// MountID is the id of the wrapper element around the body content.
	// Defaults to DefaultMountID.
	MountID string

	// Meta contains meta tags for the head.
	Meta []MetaTag

	// StyleSheets contains paths to external stylesheets.
	StyleSheets []string

	// Styles contains inline CSS.
	Styles []string

	// Scripts are appended to the end of the body.
	Scripts []ScriptTag
}

// MetaTag represents a meta element.
type MetaTag struct {
	Name    string
	Content string
	Charset string
}

// ScriptTag represents a script element. Inline content is written
// verbatim and must be trusted.
type ScriptTag struct {
	Src    string
	Module bool
	Defer  bool
	Inline string
}

// RenderPage writes a complete HTML document.
func (r *Renderer) RenderPage(w io.Writer, page PageData) error {
	ew := &errWriter{w: w}
	lang := page.Lang
	if lang == "" {
		lang = "en"
	}
	mountID := page.MountID
	if mountID == "" {
		mountID = DefaultMountID
	}

	ew.writeString("<!DOCTYPE html>\n")
	ew.writeString(`<html lang="` + escapeAttr(lang) + `">` + "\n")
	r.renderHead(ew, page)

	ew.writeString("<body>\n")
	ew.writeString(`<div id="` + escapeAttr(mountID) + `">`)
	if page.Body != nil {
		for _, c := range page.Body.Children {
			r.renderNode(ew, c, 0, false)
		}
	}
	ew.writeString("</div>\n")
	for _, s := range page.Scripts {
		renderScriptTag(ew, s)
	}
	ew.writeString("</body>\n</html>\n")
	return ew.err
}

func (r *Renderer) renderHead(w *errWriter, page PageData) {
	w.writeString("<head>\n")
	w.writeString(`  <meta charset="utf-8">` + "\n")
	w.writeString(`  <meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	for _, m := range page.Meta {
		renderMetaTag(w, m)
	}
	if page.Title != "" {
		w.writeString("  <title>" + escapeHTML(page.Title) + "</title>\n")
	}
	for _, href := range page.StyleSheets {
		w.writeString(`  <link rel="stylesheet" href="` + escapeAttr(href) + `">` + "\n")
	}
	for _, style := range page.Styles {
		w.writeString("  <style>" + style + "</style>\n")
	}
	w.writeString("</head>\n")
}

func renderMetaTag(w *errWriter, m MetaTag) {
	w.writeString("  <meta")
	if m.Charset != "" {
		w.writeString(` charset="` + escapeAttr(m.Charset) + `"`)
	}
	if m.Name != "" {
		w.writeString(` name="` + escapeAttr(m.Name) + `"`)
	}
	if m.Content != "" {
		w.writeString(` content="` + escapeAttr(m.Content) + `"`)
	}
	w.writeString(">\n")
}

func renderScriptTag(w *errWriter, s ScriptTag) {
	w.writeString("<script")
	if s.Module {
		w.writeString(` type="module"`)
	}
	if s.Src != "" {
		w.writeString(` src="` + escapeAttr(s.Src) + `"`)
	}
	if s.Defer {
		w.writeString(" defer")
	}
	w.writeString(">")
	if s.Src == "" {
		w.writeString(s.Inline)
	}
	w.writeString("</script>\n")
}
