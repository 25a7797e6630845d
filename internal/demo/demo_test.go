package demo

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/vango-dev/weft/pkg/engine"
	"github.com/vango-dev/weft/pkg/host"
	"github.com/vango-dev/weft/pkg/vdom"
	"github.com/vango-dev/weft/pkg/weftest"
)

func TestNamesSorted(t *testing.T) {
	want := []string{"counter", "list", "todo"}
	if diff := cmp.Diff(want, Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	for _, name := range want {
		if _, ok := Lookup(name); !ok {
			t.Errorf("Lookup(%q) not found", name)
		}
	}
	if _, ok := Lookup("nope"); ok {
		t.Error("Lookup(nope) should fail")
	}
}

func TestCounter(t *testing.T) {
	h := weftest.Mount(t, vdom.Comp(Counter))
	h.ExpectContains(`<p id="count">0</p>`)
	h.ExpectContains(`<button disabled id="reset">`)

	h.Click(h.ByID("inc"))
	h.Click(h.ByID("inc"))
	h.Click(h.ByID("dec"))
	h.ExpectContains(`<p id="count">1</p>`)
	h.ExpectNotContains("disabled")

	h.Click(h.ByID("reset"))
	h.ExpectContains(`<p id="count">0</p>`)
}

func TestTodoAddToggleRemove(t *testing.T) {
	for _, keyed := range []bool{false, true} {
		h := weftest.Mount(t, vdom.Comp(Todo), engine.WithKeyedReconciliation(keyed))

		for _, title := range []string{"milk", "eggs", "bread"} {
			h.Input(h.ByID("draft"), title)
			h.Click(h.ByID("add"))
		}
		h.ExpectCount("li", 3)
		h.ExpectContains("3 left")
		if got := h.ByID("draft").Attr("value"); got != "" {
			t.Errorf("keyed=%v: draft = %q after add, want empty", keyed, got)
		}

		h.Click(h.ByText("eggs"))
		h.ExpectContains("2 left")
		h.ExpectContains(`<li class="item done">`)

		h.Click(h.ByID("remove-1"))
		h.ExpectCount("li", 2)
		html := h.HTML()
		if strings.Contains(html, "milk") {
			t.Errorf("keyed=%v: removed item still rendered:\n%s", keyed, html)
		}
		if i, j := strings.Index(html, "eggs"), strings.Index(html, "bread"); i < 0 || j < i {
			t.Errorf("keyed=%v: items out of order:\n%s", keyed, html)
		}
	}
}

func TestTodoIgnoresBlankDraft(t *testing.T) {
	h := weftest.Mount(t, vdom.Comp(Todo))
	h.Input(h.ByID("draft"), "   ")
	h.Click(h.ByID("add"))
	h.ExpectCount("li", 0)
	h.ExpectContains("0 left")
}

func TestRowsReverseKeyedMovesNodes(t *testing.T) {
	h := weftest.Mount(t, vdom.Comp(Rows, vdom.Props{"count": 4}), engine.WithKeyedReconciliation(true))
	h.ExpectCount("tr", 4)
	first := h.All("tr")[0]

	h.Reset()
	h.Click(h.ByID("reverse"))
	rows := h.All("tr")
	if rows[3] != first {
		t.Error("keyed reverse should move the first row's node to the end")
	}
	if got := rows[0].TextContent(); got != "0row 3" {
		t.Errorf("first row = %q, want %q", got, "0row 3")
	}
	if n := h.Mem.Count(host.OpCreateNode); n != 0 {
		t.Errorf("reverse created %d nodes, want 0", n)
	}
}

func TestRowsRotatePositional(t *testing.T) {
	h := weftest.Mount(t, vdom.Comp(Rows, vdom.Props{"count": 3}))
	first := h.All("tr")[0]
	h.Click(h.ByID("rotate"))
	rows := h.All("tr")
	if rows[0] != first {
		t.Error("positional reconciliation should update rows in place")
	}
	want := []string{"0row 1", "1row 2", "2row 0"}
	var got []string
	for _, r := range rows {
		got = append(got, r.TextContent())
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}
