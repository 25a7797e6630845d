package demo

import (
	"github.com/vango-dev/weft/pkg/engine"
	"github.com/vango-dev/weft/pkg/vdom"
)

// Counter renders a number with buttons to change it.
func Counter(s vdom.Scope, _ vdom.Props) *vdom.VNode {
	count, setCount := engine.UseState(s, 0)

	step := func(d int) func() {
		return func() {
			setCount.Update(func(n int) int { return n + d })
		}
	}

	return vdom.Div(vdom.Class("counter"),
		vdom.H1("Counter"),
		vdom.P(vdom.ID("count"), count),
		vdom.Button(vdom.ID("dec"), vdom.OnClick(step(-1)), "-"),
		vdom.Button(vdom.ID("inc"), vdom.OnClick(step(1)), "+"),
		vdom.Button(vdom.ID("reset"), vdom.Disabled(count == 0), vdom.OnClick(func() { setCount.Set(0) }), "Reset"),
	)
}
