// Package render serializes host trees to HTML.
//
// It works on the in-memory host (host.Memory), so the same tree the
// engine commits can be written out as a snapshot, served as the first
// paint of a live page, or compared in tests:
//
//	mem := host.NewMemory()
//	root := mem.NewContainer("body")
//	e := engine.New(mem)
//	_ = e.Render(app, root)
//	_ = e.Flush()
//	html := render.HTML(root)
//
// Text and attribute values are escaped. Attributes are written in key
// order so output is deterministic. Listeners are not serialized unless
// RendererConfig.ListenerMarkers is set.
package render
