// Package vdom provides the virtual node model for weft.
//
// A VNode is an immutable description of desired UI shape for one render
// pass. The engine diffs freshly produced VNodes against its committed work
// tree; VNodes themselves carry no mutable state.
//
// # Core Types
//
// VNode is the fundamental building block representing elements, text,
// fragments and function components. Props holds attributes and event
// handlers. Attr and EventHandler are used to build Props.
//
// # Element API
//
// Elements can be created with CreateElement:
//
//	CreateElement("ul", Props{"class": "list"},
//	    CreateElement("li", nil, "one"),
//	    CreateElement("li", nil, 2),
//	)
//
// or with the variadic factory functions:
//
//	Div(Class("card"), ID("main"),
//	    H1("Title"),
//	    P(Text("Content")),
//	    OnClick(handler),
//	)
//
// # Components
//
// A Component is a function of a Scope and Props. The Scope is how the
// component declares state and effect slots; see the engine package for
// the typed UseState and UseEffect wrappers.
package vdom
