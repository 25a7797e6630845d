// Package demo holds the small applications the weft command renders,
// serves and benchmarks.
//
// Each app is a root node factory registered under a name:
//
//	app, ok := demo.Lookup("counter")
//
// Apps only use the public engine and vdom APIs.
package demo
