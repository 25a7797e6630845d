package engine

import (
	"errors"
	"strconv"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/vdom"
)

func setup(t *testing.T, opts ...Option) (*Engine, *host.Memory, *host.Element) {
	t.Helper()
	mem := host.NewMemory()
	root := mem.NewContainer("root")
	return New(mem, opts...), mem, root
}

func renderFlush(t *testing.T, e *Engine, node *vdom.VNode, root *host.Element) {
	t.Helper()
	if err := e.Render(node, root); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
}

func flush(t *testing.T, e *Engine) {
	t.Helper()
	if err := e.Flush(); err != nil {
		t.Fatalf("Flush() error = %v", err)
	}
}

func ops(m *host.Memory) []string {
	var out []string
	for _, mu := range m.Log() {
		out = append(out, mu.Op.String())
	}
	return out
}

func label(s vdom.Scope, p vdom.Props) *vdom.VNode {
	return vdom.Span(p["text"])
}

func TestRenderMountsTree(t *testing.T) {
	e, _, root := setup(t)
	renderFlush(t, e, vdom.Div(vdom.Class("app"), vdom.H1("Hello"), vdom.P("world", 42)), root)

	if len(root.Children) != 1 {
		t.Fatalf("root has %d children, want 1", len(root.Children))
	}
	div := root.Children[0]
	if div.Tag != "div" || div.Attr("class") != "app" {
		t.Errorf("mounted <%s class=%q>, want <div class=\"app\">", div.Tag, div.Attr("class"))
	}
	if got := div.TextContent(); got != "Helloworld42" {
		t.Errorf("TextContent() = %q, want %q", got, "Helloworld42")
	}
	stats := e.LastCommit()
	if stats.Inserts != 6 || stats.Updates != 0 || stats.Deletes != 0 {
		t.Errorf("stats = %+v, want 6 inserts only", stats)
	}
	if e.Commits() != 1 {
		t.Errorf("Commits() = %d, want 1", e.Commits())
	}
}

func TestRenderNilContainer(t *testing.T) {
	e, _, _ := setup(t)
	if err := e.Render(vdom.Div(), nil); !errors.Is(err, ErrNoContainer) {
		t.Fatalf("Render(nil container) error = %v, want ErrNoContainer", err)
	}
}

func TestIdenticalRerenderOnlyUpdates(t *testing.T) {
	e, mem, root := setup(t)
	build := func() *vdom.VNode {
		return vdom.Div(vdom.ID("x"),
			vdom.Comp(label, vdom.Props{"text": "a"}),
			vdom.Fragment(vdom.Span("b"), "c"),
		)
	}
	renderFlush(t, e, build(), root)
	mem.ResetLog()

	renderFlush(t, e, build(), root)
	stats := e.LastCommit()
	if stats.Inserts != 0 || stats.Deletes != 0 || stats.Moves != 0 {
		t.Errorf("second render stats = %+v, want updates only", stats)
	}
	if stats.Updates == 0 {
		t.Errorf("second render reported no updates")
	}
	if len(mem.Log()) != 0 {
		t.Errorf("second render mutated host: %v", mem.Log())
	}
}

func TestUpdatesFoldInOrder(t *testing.T) {
	e, _, root := setup(t)
	var set Setter[int]
	renders := 0
	comp := func(s vdom.Scope, _ vdom.Props) *vdom.VNode {
		renders++
		v, st := UseState(s, 1)
		set = st
		return vdom.Text(strconv.Itoa(v))
	}
	renderFlush(t, e, vdom.Comp(comp), root)

	set.Update(func(v int) int { return v + 1 })
	set.Set(10)
	set.Update(func(v int) int { return v * 3 })
	set.Update(func(v int) int { return v - 4 })
	flush(t, e)

	if got := root.TextContent(); got != "26" {
		t.Errorf("settled value = %q, want %q", got, "26")
	}
	if renders != 2 {
		t.Errorf("component rendered %d times, want 2", renders)
	}
}

func TestStatePersistsBySlotIndex(t *testing.T) {
	e, _, root := setup(t)
	var setA Setter[string]
	var setN Setter[int]
	comp := func(s vdom.Scope, _ vdom.Props) *vdom.VNode {
		a, sa := UseState(s, "a")
		n, sn := UseState(s, 0)
		setA, setN = sa, sn
		if n%2 == 0 {
			return vdom.Div(a, n)
		}
		return vdom.Span(a, n)
	}
	renderFlush(t, e, vdom.Comp(comp), root)

	setA.Set("b")
	flush(t, e)
	setN.Set(1)
	flush(t, e)

	el := root.Children[0]
	if el.Tag != "span" || el.TextContent() != "b1" {
		t.Errorf("got <%s>%s, want <span>b1", el.Tag, el.TextContent())
	}
}

func TestEffectDependencies(t *testing.T) {
	e, _, root := setup(t)
	once, always := 0, 0
	comp := func(s vdom.Scope, _ vdom.Props) *vdom.VNode {
		UseEffect(s, func() vdom.Cleanup {
			once++
			return nil
		})
		UseEffectAlways(s, func() vdom.Cleanup {
			always++
			return nil
		})
		return vdom.P("x")
	}

	for i := 0; i < 4; i++ {
		renderFlush(t, e, vdom.Div(vdom.Comp(comp)), root)
	}
	if once != 1 || always != 4 {
		t.Fatalf("once = %d, always = %d; want 1, 4", once, always)
	}

	renderFlush(t, e, vdom.Div(), root)
	renderFlush(t, e, vdom.Div(vdom.Comp(comp)), root)
	if once != 2 {
		t.Errorf("once = %d after remount, want 2", once)
	}
}

func TestDeletionCleanupsRunBeforeDetach(t *testing.T) {
	e, _, root := setup(t)
	var log []string
	tracked := func(s vdom.Scope, p vdom.Props) *vdom.VNode {
		name := p["name"].(string)
		UseEffect(s, func() vdom.Cleanup {
			return func() {
				attached := root.Find(func(el *host.Element) bool {
					return el.Attr("data-name") == name
				}) != nil
				log = append(log, name+":"+strconv.FormatBool(attached))
			}
		})
		return vdom.Div(vdom.Data("name", name), p.Children())
	}
	node := func(name string, children ...any) *vdom.VNode {
		return vdom.Comp(tracked, append([]any{vdom.Props{"name": name}}, children...)...)
	}

	renderFlush(t, e, vdom.Div(
		node("a", node("a1", node("a1x")), node("a2")),
		node("b"),
	), root)
	renderFlush(t, e, vdom.Div(), root)

	want := []string{"a:true", "a1:true", "a1x:true", "a2:true", "b:true"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("cleanup order mismatch (-want +got):\n%s", diff)
	}
	if n := len(root.Children[0].Children); n != 0 {
		t.Errorf("div still has %d children", n)
	}

	renderFlush(t, e, vdom.Div(), root)
	if len(log) != len(want) {
		t.Errorf("cleanups ran again: %v", log)
	}
}

func TestShrinkingListUpdatesAndDeletes(t *testing.T) {
	e, mem, root := setup(t)
	list := func(vals ...int) *vdom.VNode {
		items := make([]any, 0, len(vals))
		for _, v := range vals {
			items = append(items, vdom.Li(vdom.Attr{Key: "value", Value: v}))
		}
		return vdom.Ul(items...)
	}
	renderFlush(t, e, list(1, 2, 3), root)
	mem.ResetLog()

	renderFlush(t, e, list(10, 20), root)

	want := []string{"RemoveChild", "SetAttr", "SetAttr"}
	if diff := cmp.Diff(want, ops(mem)); diff != "" {
		t.Errorf("host ops mismatch (-want +got):\n%s", diff)
	}
	ul := root.Children[0]
	var got []string
	for _, li := range ul.Children {
		got = append(got, li.Attr("value"))
	}
	if diff := cmp.Diff([]string{"10", "20"}, got); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}
	if stats := e.LastCommit(); stats.Inserts != 0 || stats.Deletes != 1 {
		t.Errorf("stats = %+v, want 0 inserts and 1 delete", stats)
	}
}

func TestCounterEffectFiresOnNetChange(t *testing.T) {
	e, _, root := setup(t)
	var set Setter[int]
	var seen []int
	comp := func(s vdom.Scope, _ vdom.Props) *vdom.VNode {
		count, st := UseState(s, 0)
		set = st
		UseEffect(s, func() vdom.Cleanup {
			seen = append(seen, count)
			return nil
		}, count)
		return vdom.Text(strconv.Itoa(count))
	}
	renderFlush(t, e, vdom.Comp(comp), root)

	for i := 0; i < 3; i++ {
		set.Update(func(v int) int { return v + 1 })
	}
	flush(t, e)

	if root.TextContent() != "3" {
		t.Errorf("count = %q, want 3", root.TextContent())
	}
	if diff := cmp.Diff([]int{0, 3}, seen); diff != "" {
		t.Errorf("effect runs mismatch (-want +got):\n%s", diff)
	}

	set.Set(3)
	flush(t, e)
	if len(seen) != 2 {
		t.Errorf("effect ran for an unchanged dependency: %v", seen)
	}
}

func TestRecommitIsIdempotent(t *testing.T) {
	e, mem, root := setup(t)
	var first, second int
	app := func(counter *int) *vdom.VNode {
		return vdom.Div(vdom.Class("x"),
			vdom.Button(vdom.OnClick(func() { *counter++ }), "go"),
			vdom.Input(vdom.Type("text"), vdom.OnInput(func(host.Event) {})),
		)
	}
	renderFlush(t, e, app(&first), root)
	mem.ResetLog()

	renderFlush(t, e, app(&second), root)
	if len(mem.Log()) != 0 {
		t.Fatalf("second commit mutated host: %v", mem.Log())
	}

	btn := root.Find(func(el *host.Element) bool { return el.Tag == "button" })
	if !mem.Dispatch(btn, host.Event{Type: "click"}) {
		t.Fatal("click listener not attached")
	}
	if first != 0 || second != 1 {
		t.Errorf("first = %d, second = %d; want the latest handler to run", first, second)
	}
}

func TestAttributeAndListenerRemoval(t *testing.T) {
	e, mem, root := setup(t)
	renderFlush(t, e, vdom.Button(vdom.Class("on"), vdom.OnClick(func() {})), root)
	mem.ResetLog()

	renderFlush(t, e, vdom.Button(), root)
	if diff := cmp.Diff([]string{"RemoveAttr", "RemoveListener"}, ops(mem)); diff != "" {
		t.Errorf("host ops mismatch (-want +got):\n%s", diff)
	}
	btn := root.Children[0]
	if mem.Dispatch(btn, host.Event{Type: "click"}) {
		t.Error("listener still attached")
	}
	if _, ok := btn.Attrs["class"]; ok {
		t.Error("class still set")
	}
}

func TestInsertBeforeMountedSibling(t *testing.T) {
	e, mem, root := setup(t)
	maybe := func(s vdom.Scope, p vdom.Props) *vdom.VNode {
		if p["show"] == true {
			return vdom.Em("b")
		}
		return nil
	}
	view := func(show bool) *vdom.VNode {
		return vdom.Div(vdom.Span("a"), vdom.Comp(maybe, vdom.Props{"show": show}), vdom.Span("c"))
	}
	renderFlush(t, e, view(false), root)
	mem.ResetLog()

	renderFlush(t, e, view(true), root)
	want := []string{"CreateNode", "InsertBefore", "CreateText", "AppendChild"}
	if diff := cmp.Diff(want, ops(mem)); diff != "" {
		t.Errorf("host ops mismatch (-want +got):\n%s", diff)
	}
	if got := root.TextContent(); got != "abc" {
		t.Errorf("TextContent() = %q, want %q", got, "abc")
	}
}

func TestSetterOnDeletedComponentIsIgnored(t *testing.T) {
	e, _, root := setup(t)
	var set Setter[int]
	comp := func(s vdom.Scope, _ vdom.Props) *vdom.VNode {
		_, st := UseState(s, 0)
		set = st
		return nil
	}
	renderFlush(t, e, vdom.Div(vdom.Comp(comp)), root)
	renderFlush(t, e, vdom.Div(), root)

	set.Set(1)
	if e.Pending() {
		t.Error("setter of a deleted component requested a render")
	}
}

func TestUpdateDuringEvaluationRestarts(t *testing.T) {
	e, _, root := setup(t)
	comp := func(s vdom.Scope, _ vdom.Props) *vdom.VNode {
		v, set := UseState(s, 0)
		if v < 3 {
			set.Set(v + 1)
		}
		return vdom.Text(strconv.Itoa(v))
	}
	renderFlush(t, e, vdom.Comp(comp), root)

	if root.TextContent() != "3" {
		t.Errorf("TextContent() = %q, want 3", root.TextContent())
	}
	if e.Commits() != 1 {
		t.Errorf("Commits() = %d, want 1", e.Commits())
	}
}

func TestRenderLoopIsBounded(t *testing.T) {
	e, _, root := setup(t, WithMaxRestarts(5))
	comp := func(s vdom.Scope, _ vdom.Props) *vdom.VNode {
		v, set := UseState(s, 0)
		set.Set(v + 1)
		return nil
	}
	if err := e.Render(vdom.Comp(comp), root); err != nil {
		t.Fatal(err)
	}
	err := e.Flush()
	if !errors.Is(err, ErrRenderLoop) {
		t.Fatalf("Flush() error = %v, want ErrRenderLoop", err)
	}
	if e.Pending() || e.Commits() != 0 {
		t.Errorf("Pending() = %v, Commits() = %d after abort", e.Pending(), e.Commits())
	}
}

func TestUnmountRunsCleanups(t *testing.T) {
	e, _, root := setup(t)
	cleaned := 0
	comp := func(s vdom.Scope, _ vdom.Props) *vdom.VNode {
		UseEffect(s, func() vdom.Cleanup {
			return func() { cleaned++ }
		})
		return vdom.P("x")
	}
	renderFlush(t, e, vdom.Comp(comp), root)

	e.Unmount()
	flush(t, e)
	if cleaned != 1 || len(root.Children) != 0 {
		t.Errorf("cleaned = %d, children = %d; want 1, 0", cleaned, len(root.Children))
	}
}

func TestUseRefDoesNotRender(t *testing.T) {
	e, _, root := setup(t)
	renders := 0
	var ref *Ref[int]
	comp := func(s vdom.Scope, _ vdom.Props) *vdom.VNode {
		renders++
		ref = UseRef(s, 5)
		return vdom.Text(strconv.Itoa(ref.Current))
	}
	renderFlush(t, e, vdom.Comp(comp), root)

	ref.Current = 9
	if e.Pending() {
		t.Fatal("writing a ref requested a render")
	}
	renderFlush(t, e, vdom.Comp(comp), root)
	if root.TextContent() != "9" || renders != 2 {
		t.Errorf("TextContent() = %q, renders = %d", root.TextContent(), renders)
	}
}
