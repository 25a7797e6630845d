package vdom

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func texts(nodes []*VNode) []string {
	var out []string
	for _, n := range nodes {
		if n.Kind == KindText {
			out = append(out, n.Text())
		} else {
			out = append(out, "<"+n.Tag+">")
		}
	}
	return out
}

func TestCreateElementKinds(t *testing.T) {
	comp := func(Scope, Props) *VNode { return nil }

	tests := []struct {
		name string
		kind any
		want Kind
	}{
		{"tag", "div", KindElement},
		{"component", Component(comp), KindComponent},
		{"plain func", comp, KindComponent},
		{"fragment", FragmentKind, KindFragment},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := CreateElement(tt.kind, nil)
			if n.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", n.Kind, tt.want)
			}
		})
	}
}

func TestCreateElementPanicsOnUnknownKind(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for an int kind")
		}
	}()
	CreateElement(42, nil)
}

func TestCreateElementExtractsKey(t *testing.T) {
	n := CreateElement("li", Props{"key": 7, "class": "row"})
	if n.Key != "7" {
		t.Errorf("Key = %q, want %q", n.Key, "7")
	}
	if _, ok := n.Props["key"]; ok {
		t.Error("key should not remain in Props")
	}
	if n.Props["class"] != "row" {
		t.Errorf("class = %v", n.Props["class"])
	}
}

func TestChildrenAreNormalized(t *testing.T) {
	var nilNode *VNode
	n := CreateElement("div", nil,
		"a",
		nil,
		nilNode,
		1,
		int64(2),
		uint(3),
		2.5,
		true,
		[]*VNode{Span(), nil},
		[]any{"x", []any{"y"}},
		struct{}{},
	)
	want := []string{"a", "1", "2", "3", "2.5", "true", "<span>", "x", "y"}
	if diff := cmp.Diff(want, texts(n.Children)); diff != "" {
		t.Errorf("children mismatch (-want +got):\n%s", diff)
	}
}

func TestHelpersApplyArguments(t *testing.T) {
	handler := func() {}
	n := Button(
		ID("go"),
		Class("btn", "primary"),
		nil,
		[]Attr{Disabled(true), {}},
		Props{"data-x": "1"},
		OnClick(handler),
		Key(3),
		"Go",
	)

	if n.Tag != "button" || n.Key != "3" {
		t.Fatalf("tag/key = %q/%q", n.Tag, n.Key)
	}
	for k, want := range map[string]any{"id": "go", "class": "btn primary", "disabled": true, "data-x": "1"} {
		if got := n.Props[k]; got != want {
			t.Errorf("Props[%q] = %v, want %v", k, got, want)
		}
	}
	if _, ok := n.Props["onclick"]; !ok {
		t.Error("onclick listener missing")
	}
	if got := texts(n.Children); !cmp.Equal(got, []string{"Go"}) {
		t.Errorf("children = %v", got)
	}
}

func TestComp(t *testing.T) {
	c := func(Scope, Props) *VNode { return nil }
	n := Comp(c, Key("k"), Props{"n": 1}, Text("child"))
	if n.Kind != KindComponent || n.Key != "k" || n.Props["n"] != 1 {
		t.Errorf("Comp = %+v", n)
	}
	if len(n.Children) != 1 || n.Children[0].Text() != "child" {
		t.Errorf("children = %v", texts(n.Children))
	}
}

func TestConditionals(t *testing.T) {
	a, b := P("a"), P("b")
	if If(false, a) != nil || If(true, a) != a {
		t.Error("If")
	}
	if IfElse(true, a, b) != a || IfElse(false, a, b) != b {
		t.Error("IfElse")
	}
	called := false
	When(false, func() *VNode { called = true; return a })
	if called {
		t.Error("When evaluated its function on false")
	}
	if When(true, func() *VNode { return a }) != a {
		t.Error("When(true)")
	}
}

func TestRangeAndRepeatDropNil(t *testing.T) {
	got := Range([]int{1, 2, 3}, func(v, _ int) *VNode {
		if v == 2 {
			return nil
		}
		return Textf("%d", v)
	})
	if diff := cmp.Diff([]string{"1", "3"}, texts(got)); diff != "" {
		t.Errorf("Range mismatch (-want +got):\n%s", diff)
	}
	if Repeat(0, func(int) *VNode { return Br() }) != nil {
		t.Error("Repeat(0) should be nil")
	}
	if n := len(Repeat(3, func(int) *VNode { return Br() })); n != 3 {
		t.Errorf("Repeat(3) = %d nodes", n)
	}
}

func TestSameKind(t *testing.T) {
	c1 := func(Scope, Props) *VNode { return nil }
	c2 := func(Scope, Props) *VNode { return Div() }

	tests := []struct {
		name string
		a, b *VNode
		want bool
	}{
		{"same tag", Div(), Div(), true},
		{"different tag", Div(), Span(), false},
		{"text", Text("a"), Text("b"), true},
		{"text vs element", Text("a"), Div(), false},
		{"fragments", Fragment(), Fragment(), true},
		{"same component", Comp(c1), Comp(c1), true},
		{"different component", Comp(c1), Comp(c2), false},
		{"nil", nil, Div(), false},
	}
	for _, tt := range tests {
		if got := SameKind(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: SameKind = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestEqual(t *testing.T) {
	s := []int{1}
	m := map[string]int{"a": 1}
	type point struct{ X, Y int }

	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"strings", "a", "a", true},
		{"ints", 1, 2, false},
		{"int vs int64", 1, int64(1), false},
		{"nil nil", nil, nil, true},
		{"nil vs value", nil, 0, false},
		{"value vs nil", 0, nil, false},
		{"same slice", s, s, true},
		{"equal slices, different storage", []int{1}, []int{1}, false},
		{"same map", m, m, true},
		{"structs", point{1, 2}, point{1, 2}, true},
		{"funcs", func() {}, func() {}, false},
	}
	for _, tt := range tests {
		if got := Equal(tt.a, tt.b); got != tt.want {
			t.Errorf("%s: Equal = %v, want %v", tt.name, got, tt.want)
		}
	}

	if !EqualSlices([]any{1, "a"}, []any{1, "a"}) || EqualSlices([]any{1}, []any{1, 2}) {
		t.Error("EqualSlices")
	}
}

func TestEventProps(t *testing.T) {
	for _, key := range []string{"onclick", "onClick", "ONINPUT"} {
		if !IsEventProp(key) {
			t.Errorf("IsEventProp(%q) = false", key)
		}
	}
	for _, key := range []string{"on", "class"} {
		if IsEventProp(key) {
			t.Errorf("IsEventProp(%q) = true", key)
		}
	}
	if got := EventName("onClick"); got != "click" {
		t.Errorf("EventName = %q", got)
	}
	if h := On("custom", nil); h.Event != "oncustom" {
		t.Errorf("On event = %q", h.Event)
	}
}

func TestPropsChildren(t *testing.T) {
	kids := []*VNode{Text("x")}
	if got := (Props{ChildrenProp: kids}).Children(); len(got) != 1 {
		t.Errorf("Children() = %v", got)
	}
	if (Props{}).Children() != nil {
		t.Error("Children() of empty props should be nil")
	}
	if (&VNode{Kind: KindElement}).Text() != "" {
		t.Error("Text() of an element should be empty")
	}
}
