package demo

import (
	"fmt"
	"slices"
	"strings"

	"github.com/vango-dev/weft/pkg/engine"
	"github.com/vango-dev/weft/pkg/vdom"
)

type todoItem struct {
	ID    int
	Title string
	Done  bool
}

// Todo is a list of items with a text field to add more. Items are keyed
// by ID, so with keyed reconciliation removing one leaves the others'
// host nodes alone.
func Todo(s vdom.Scope, _ vdom.Props) *vdom.VNode {
	items, setItems := engine.UseState(s, []todoItem(nil))
	draft, setDraft := engine.UseState(s, "")
	nextID := engine.UseRef(s, 1)

	add := func() {
		title := strings.TrimSpace(draft)
		if title == "" {
			return
		}
		id := nextID.Current
		nextID.Current++
		setItems.Update(func(prev []todoItem) []todoItem {
			return append(slices.Clone(prev), todoItem{ID: id, Title: title})
		})
		setDraft.Set("")
	}

	toggle := func(id int) func() {
		return func() {
			setItems.Update(func(prev []todoItem) []todoItem {
				next := slices.Clone(prev)
				for i := range next {
					if next[i].ID == id {
						next[i].Done = !next[i].Done
					}
				}
				return next
			})
		}
	}

	remove := func(id int) func() {
		return func() {
			setItems.Update(func(prev []todoItem) []todoItem {
				return slices.DeleteFunc(slices.Clone(prev), func(it todoItem) bool { return it.ID == id })
			})
		}
	}

	left := 0
	for _, it := range items {
		if !it.Done {
			left++
		}
	}

	return vdom.Div(vdom.Class("todo"),
		vdom.H1("Todo"),
		vdom.Input(vdom.ID("draft"), vdom.Placeholder("What needs doing?"), vdom.Value(draft),
			vdom.OnInput(func(v string) { setDraft.Set(v) })),
		vdom.Button(vdom.ID("add"), vdom.Disabled(strings.TrimSpace(draft) == ""), vdom.OnClick(add), "Add"),
		vdom.Ul(vdom.ID("items"),
			vdom.Range(items, func(it todoItem, _ int) *vdom.VNode {
				return vdom.Li(vdom.Key(it.ID), vdom.Class(itemClass(it)),
					vdom.Span(vdom.OnClick(toggle(it.ID)), it.Title),
					vdom.Button(vdom.ID(fmt.Sprintf("remove-%d", it.ID)), vdom.OnClick(remove(it.ID)), "x"),
				)
			}),
		),
		vdom.P(vdom.ID("left"), vdom.Textf("%d left", left)),
	)
}

func itemClass(it todoItem) string {
	if it.Done {
		return "item done"
	}
	return "item"
}
