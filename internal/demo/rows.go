package demo

import (
	"fmt"
	"slices"

	"github.com/vango-dev/weft/pkg/engine"
	"github.com/vango-dev/weft/pkg/vdom"
)

// DefaultRows is the row count of the "list" app.
const DefaultRows = 1000

// Rows renders a table of "count" rows that can be reversed or rotated.
// It is large enough to span several slices under a short budget.
func Rows(s vdom.Scope, props vdom.Props) *vdom.VNode {
	n, _ := props["count"].(int)
	order, setOrder := engine.UseStateFunc(s, func() []int {
		ids := make([]int, n)
		for i := range ids {
			ids[i] = i
		}
		return ids
	})

	reverse := func() {
		setOrder.Update(func(prev []int) []int {
			next := slices.Clone(prev)
			slices.Reverse(next)
			return next
		})
	}
	rotate := func() {
		setOrder.Update(func(prev []int) []int {
			if len(prev) < 2 {
				return prev
			}
			return append(slices.Clone(prev[1:]), prev[0])
		})
	}

	return vdom.Div(vdom.Class("rows"),
		vdom.Button(vdom.ID("reverse"), vdom.OnClick(reverse), "Reverse"),
		vdom.Button(vdom.ID("rotate"), vdom.OnClick(rotate), "Rotate"),
		vdom.Table(vdom.Tbody(vdom.ID("body"),
			vdom.Range(order, func(id, i int) *vdom.VNode {
				return vdom.Comp(Row, vdom.Key(id), vdom.Props{"id": id, "index": i})
			}),
		)),
	)
}

// Row is one row of Rows.
func Row(_ vdom.Scope, props vdom.Props) *vdom.VNode {
	id, _ := props["id"].(int)
	index, _ := props["index"].(int)
	return vdom.Tr(
		vdom.Td(index),
		vdom.Td(fmt.Sprintf("row %d", id)),
	)
}
