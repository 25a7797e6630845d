package weftest_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/weft/pkg/engine"
	"github.com/vango-dev/weft/pkg/vdom"
	"github.com/vango-dev/weft/pkg/weftest"
)

func counter(s vdom.Scope, _ vdom.Props) *vdom.VNode {
	count, setCount := engine.UseState(s, 0)
	return vdom.Div(
		vdom.Button(vdom.ID("inc"), vdom.OnClick(func() { setCount.Update(func(n int) int { return n + 1 }) }), "+"),
		vdom.Span(vdom.ID("value"), count),
	)
}

func TestMountAndClick(t *testing.T) {
	h := weftest.Mount(t, vdom.CreateElement(counter, nil))
	if got := h.ByID("value").TextContent(); got != "0" {
		t.Fatalf("initial value = %q, want 0", got)
	}

	h.Reset()
	h.Click(h.ByID("inc"))
	h.Click(h.ByText("+"))

	if got := h.ByID("value").TextContent(); got != "2" {
		t.Errorf("value = %q, want 2", got)
	}
	if diff := cmp.Diff([]string{"SetAttr", "SetAttr"}, h.Ops()); diff != "" {
		t.Errorf("ops mismatch (-want +got):\n%s", diff)
	}
}

func echo(s vdom.Scope, _ vdom.Props) *vdom.VNode {
	text, setText := engine.UseState(s, "")
	return vdom.Div(
		vdom.Input(vdom.ID("name"), vdom.OnInput(func(v string) { setText.Set(v) })),
		vdom.P(text),
	)
}

func TestInputCarriesValue(t *testing.T) {
	h := weftest.Mount(t, vdom.CreateElement(echo, nil))
	h.Input(h.ByID("name"), "weft")
	h.ExpectContains("<p>weft</p>")
}

func TestExpectations(t *testing.T) {
	h := weftest.Mount(t, vdom.Ul(vdom.Li("a"), vdom.Li("b")))
	h.ExpectCount("li", 2)
	h.ExpectContains("<li>a</li>")
	h.ExpectNotContains("<li>c</li>")

	h.Render(vdom.Ul(vdom.Li("a")))
	h.ExpectCount("li", 1)
}

func TestCleanupRunsEffects(t *testing.T) {
	var cleaned bool
	comp := func(s vdom.Scope, _ vdom.Props) *vdom.VNode {
		engine.UseEffect(s, func() vdom.Cleanup {
			return func() { cleaned = true }
		})
		return vdom.P("x")
	}

	t.Run("mounted", func(t *testing.T) {
		weftest.Mount(t, vdom.CreateElement(comp, nil))
	})
	if !cleaned {
		t.Error("effect cleanup did not run at test end")
	}
}

func TestRenderToString(t *testing.T) {
	html, err := weftest.RenderToString(vdom.Div(vdom.Class("box"), "hi"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(html, `<div class="box">hi</div>`) {
		t.Errorf("html = %q", html)
	}
}
