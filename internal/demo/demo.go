package demo

import (
	"sort"

	"github.com/vango-dev/weft/pkg/vdom"
)

// App builds the root node of a demo.
type App func() *vdom.VNode

var apps = map[string]App{
	"counter": func() *vdom.VNode { return vdom.Comp(Counter) },
	"todo":    func() *vdom.VNode { return vdom.Comp(Todo) },
	"list":    func() *vdom.VNode { return vdom.Comp(Rows, vdom.Props{"count": DefaultRows}) },
}

// Lookup returns the app registered under name.
func Lookup(name string) (App, bool) {
	app, ok := apps[name]
	return app, ok
}

// Names returns the registered app names, sorted.
func Names() []string {
	names := make([]string, 0, len(apps))
	for name := range apps {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
