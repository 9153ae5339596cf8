package vdom

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// patchSummary flattens patches into comparable strings.
func patchSummary(patches []Patch) []string {
	out := make([]string, len(patches))
	for i, p := range patches {
		out[i] = p.String()
	}
	return out
}

func TestDiffBothNil(t *testing.T) {
	patches := Diff(nil, nil)
	if len(patches) != 0 {
		t.Errorf("Expected 0 patches, got %d", len(patches))
	}
}

func TestDiffNilPrevReplacesRoot(t *testing.T) {
	next := Div(Text("hi"))
	patches := Diff(nil, next)

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %d", len(patches))
	}
	if patches[0].Op != PatchReplace || !patches[0].Path.IsRoot() || patches[0].Node != next {
		t.Errorf("patch = %v, want Replace(/, next)", patches[0])
	}
}

func TestDiffIdentity(t *testing.T) {
	reg := NewRegistry()
	click := reg.Register(func(Value) {})

	trees := []*Node{
		Text("hello"),
		Div(),
		Div(Class("a"), ID("x"), Text("hi")),
		Ul(Key("list"),
			Li(Key(1), Text("one")),
			Li(Key(2), Text("two"), Button(OnClick(click), Text("x"))),
		),
		Column(Width(120), Row(TextLabel("name"), TextInput(Placeholder("type")))),
		Div(NewAttr("data", map[string]any{"a": 1, "b": []any{true, 2.5, "s"}})),
		Div(NewAttr("opacity", math.NaN()), NewAttr("scale", []any{math.NaN(), 1.0})),
	}

	for i, tree := range trees {
		t.Run(fmt.Sprintf("tree%d", i), func(t *testing.T) {
			if patches := Diff(tree, tree); len(patches) != 0 {
				t.Errorf("Diff(T, T) = %v, want empty", patchSummary(patches))
			}
			if patches := DiffWith(tree, tree, Options{Keyed: true}); len(patches) != 0 {
				t.Errorf("keyed Diff(T, T) = %v, want empty", patchSummary(patches))
			}
			if !Equal(tree, tree) {
				t.Error("Equal(T, T) = false, want true")
			}
		})
	}
}

func TestDiffTextChange(t *testing.T) {
	patches := Diff(Text("Hello"), Text("World"))

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %d", len(patches))
	}
	if patches[0].Op != PatchReplaceText {
		t.Errorf("Op = %v, want ReplaceText", patches[0].Op)
	}
	if patches[0].Text != "World" {
		t.Errorf("Text = %v, want World", patches[0].Text)
	}
	if !patches[0].Path.IsRoot() {
		t.Errorf("Path = %v, want root", patches[0].Path)
	}
}

func TestDiffTextUnchanged(t *testing.T) {
	patches := Diff(Text("Hello"), Text("Hello"))
	if len(patches) != 0 {
		t.Errorf("Expected 0 patches for unchanged text, got %d", len(patches))
	}
}

func TestDiffKindChange(t *testing.T) {
	next := Div(Text("Hello"))
	patches := Diff(Text("Hello"), next)

	want := []Patch{NewReplacePatch(Root, next)}
	if diff := cmp.Diff(patchSummary(want), patchSummary(patches)); diff != "" {
		t.Errorf("patches mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffTagChangeForcesReplace(t *testing.T) {
	prev := Span(Class("same"), Text("a"), Text("b"))
	next := Div(Class("same"), Text("a"), Text("b"))

	patches := Diff(prev, next)

	if len(patches) != 1 {
		t.Fatalf("Expected exactly 1 patch, got %v", patchSummary(patches))
	}
	if patches[0].Op != PatchReplace || !patches[0].Path.IsRoot() {
		t.Errorf("patch = %v, want Replace at root", patches[0])
	}
	if patches[0].Node != next {
		t.Error("Replace should carry the new subtree")
	}
}

func TestDiffAttributeAdded(t *testing.T) {
	patches := Diff(Div(), Div(Class("new")))

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %d", len(patches))
	}
	if patches[0].Op != PatchSetAttr {
		t.Errorf("Op = %v, want SetAttr", patches[0].Op)
	}
	if patches[0].Name != "class" {
		t.Errorf("Name = %v, want class", patches[0].Name)
	}
	if !patches[0].Value.Equal(String("new")) {
		t.Errorf("Value = %#v, want new", patches[0].Value)
	}
}

func TestDiffAttributeRemoved(t *testing.T) {
	patches := Diff(Div(Class("old")), Div())

	if len(patches) != 1 {
		t.Fatalf("Expected 1 patch, got %d", len(patches))
	}
	if patches[0].Op != PatchRemoveAttr {
		t.Errorf("Op = %v, want RemoveAttr", patches[0].Op)
	}
	if patches[0].Name != "class" {
		t.Errorf("Name = %v, want class", patches[0].Name)
	}
}

func TestDiffAttributeMinimality(t *testing.T) {
	tests := []struct {
		name string
		prev *Node
		next *Node
		want Patch
	}{
		{
			name: "value changed",
			prev: Div(ID("x"), Class("a"), TabIndex(1), Text("hi")),
			next: Div(ID("x"), Class("a"), TabIndex(2), Text("hi")),
			want: NewSetAttrPatch(Root, "tabindex", Int(2)),
		},
		{
			name: "type changed int to float",
			prev: Div(NewAttr("w", 1)),
			next: Div(NewAttr("w", 1.0)),
			want: NewSetAttrPatch(Root, "w", Float(1)),
		},
		{
			name: "removed among many",
			prev: Div(ID("x"), Class("a"), Hidden()),
			next: Div(ID("x"), Class("a")),
			want: NewRemoveAttrPatch(Root, "hidden"),
		},
		{
			name: "nested list changed",
			prev: Div(NewAttr("items", []any{1, 2})),
			next: Div(NewAttr("items", []any{1, 3})),
			want: NewSetAttrPatch(Root, "items", List(Int(1), Int(3))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			patches := Diff(tt.prev, tt.next)
			if diff := cmp.Diff(patchSummary([]Patch{tt.want}), patchSummary(patches)); diff != "" {
				t.Errorf("patches mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDiffAttributeOrderIgnored(t *testing.T) {
	prev := Div(ID("x"), Class("a"))
	next := Div(Class("a"), ID("x"))

	if patches := Diff(prev, next); len(patches) != 0 {
		t.Errorf("reordered attributes produced %v", patchSummary(patches))
	}
}

func TestDiffCallbackIdentity(t *testing.T) {
	reg := NewRegistry()
	handler := func(Value) {}
	first := reg.Register(handler)
	second := reg.Register(handler)

	t.Run("same handle", func(t *testing.T) {
		patches := Diff(Button(OnClick(first)), Button(OnClick(first)))
		if len(patches) != 0 {
			t.Errorf("reused handle produced %v", patchSummary(patches))
		}
	})

	t.Run("new handle same behavior", func(t *testing.T) {
		patches := Diff(Button(OnClick(first)), Button(OnClick(second)))
		if len(patches) != 1 {
			t.Fatalf("Expected 1 patch, got %v", patchSummary(patches))
		}
		if patches[0].Op != PatchSetAttr || patches[0].Name != "onclick" {
			t.Errorf("patch = %v, want SetAttr onclick", patches[0])
		}
		if cb, ok := patches[0].Value.AsCallback(); !ok || cb != second {
			t.Errorf("Value = %#v, want %v", patches[0].Value, second)
		}
	})

	t.Run("listener removed", func(t *testing.T) {
		patches := Diff(Button(OnClick(first)), Button())
		want := []Patch{NewRemoveAttrPatch(Root, "onclick")}
		if diff := cmp.Diff(patchSummary(want), patchSummary(patches)); diff != "" {
			t.Errorf("patches mismatch (-want +got):\n%s", diff)
		}
	})
}

func TestDiffChildGrowth(t *testing.T) {
	for _, k := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			var base []*Node
			for i := 0; i < 3; i++ {
				base = append(base, Li(Textf("item %d", i)))
			}
			grown := append([]*Node{}, base...)
			for i := 0; i < k; i++ {
				grown = append(grown, Li(Textf("extra %d", i)))
			}

			patches := Diff(Ul(base), Ul(grown))

			if len(patches) != k {
				t.Fatalf("Expected %d patches, got %v", k, patchSummary(patches))
			}
			for i, p := range patches {
				if p.Op != PatchAppendChild || !p.Path.IsRoot() {
					t.Errorf("patch %d = %v, want AppendChild at root", i, p)
				}
				if p.Node != grown[3+i] {
					t.Errorf("patch %d carries wrong node %v", i, p.Node)
				}
			}
		})
	}
}

func TestDiffChildShrink(t *testing.T) {
	for _, k := range []int{1, 2, 5} {
		t.Run(fmt.Sprintf("k=%d", k), func(t *testing.T) {
			var full []*Node
			for i := 0; i < 3+k; i++ {
				full = append(full, Li(Textf("item %d", i)))
			}

			patches := Diff(Ul(full), Ul(full[:3]))

			if len(patches) != k {
				t.Fatalf("Expected %d patches, got %v", k, patchSummary(patches))
			}
			for i, p := range patches {
				if p.Op != PatchRemoveChild || p.Index != 3+i {
					t.Errorf("patch %d = %v, want RemoveChild(/, %d)", i, p, 3+i)
				}
			}
		})
	}
}

func TestDiffScenarios(t *testing.T) {
	tests := []struct {
		name string
		prev *Node
		next *Node
		want []string
	}{
		{
			name: "class change",
			prev: Element("div", Class("a"), ID("x"), Text("hi")),
			next: Element("div", Class("b"), ID("x"), Text("hi")),
			want: []string{`SetAttr(/, class, "b")`},
		},
		{
			name: "trailing text removed",
			prev: Element("div", Text("a"), Text("b")),
			next: Element("div", Text("a")),
			want: []string{"RemoveChild(/, 1)"},
		},
		{
			name: "span to div",
			prev: Element("span"),
			next: Element("div"),
			want: []string{"Replace(/, Element(div, 0 attrs, 0 children))"},
		},
		{
			name: "nested text change",
			prev: Div(P(Text("a")), P(Text("b"))),
			next: Div(P(Text("a")), P(Text("c"))),
			want: []string{`ReplaceText(/1/0, "c")`},
		},
		{
			name: "moved child is rewritten positionally",
			prev: Ul(Li(Text("a")), Li(Text("b")), Li(Text("c"))),
			next: Ul(Li(Text("c")), Li(Text("a")), Li(Text("b"))),
			want: []string{
				`ReplaceText(/0/0, "c")`,
				`ReplaceText(/1/0, "a")`,
				`ReplaceText(/2/0, "b")`,
			},
		},
		{
			name: "attrs before children, removals before sets",
			prev: Div(ID("x"), Hidden(), Span()),
			next: Div(Class("c"), ID("y"), Span(), Span()),
			want: []string{
				"RemoveAttr(/, hidden)",
				`SetAttr(/, class, "c")`,
				`SetAttr(/, id, "y")`,
				"AppendChild(/, Element(span, 0 attrs, 0 children))",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := patchSummary(Diff(tt.prev, tt.next))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("patches mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDiffDoesNotMutateInputs(t *testing.T) {
	prev := Div(Class("a"), Ul(Li(Text("1")), Li(Text("2"))))
	next := Div(Class("b"), Ul(Li(Text("1"))), P(Text("new")))
	prevCopy := Div(Class("a"), Ul(Li(Text("1")), Li(Text("2"))))
	nextCopy := Div(Class("b"), Ul(Li(Text("1"))), P(Text("new")))

	_ = Diff(prev, next)
	_ = DiffWith(prev, next, Options{Keyed: true})

	if !Equal(prev, prevCopy) || !Equal(next, nextCopy) {
		t.Error("Diff modified its inputs")
	}
}

func TestDiffPathsDoNotAlias(t *testing.T) {
	prev := Div(Div(Text("a"), Text("b")), Div(Text("c"), Text("d")))
	next := Div(Div(Text("A"), Text("B")), Div(Text("C"), Text("D")))

	got := make([]string, 0)
	for _, p := range Diff(prev, next) {
		got = append(got, p.Path.String())
	}
	want := []string{"/0/0", "/0/1", "/1/0", "/1/1"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("paths mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffKeyedMove(t *testing.T) {
	prev := Ul(Li(Key("a"), Text("a")), Li(Key("b"), Text("b")), Li(Key("c"), Text("c")))
	next := Ul(Li(Key("c"), Text("c")), Li(Key("a"), Text("a")), Li(Key("b"), Text("b")))

	got := patchSummary(DiffWith(prev, next, Options{Keyed: true}))
	want := []string{"MoveChild(/, 2, 0)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("patches mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffKeyedInsertRemove(t *testing.T) {
	prev := Ul(Li(Key("a"), Text("a")), Li(Key("b"), Text("b")), Li(Key("c"), Text("c")))
	next := Ul(Li(Key("d"), Text("d")), Li(Key("c"), Text("C")), Li(Key("a"), Text("a")))

	got := patchSummary(DiffWith(prev, next, Options{Keyed: true}))
	want := []string{
		"RemoveChild(/, 1)",
		"InsertChild(/, 0, Element(li, 0 attrs, 1 children))",
		"MoveChild(/, 2, 1)",
		`ReplaceText(/1/0, "C")`,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("patches mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffKeyedFallsBackToPositional(t *testing.T) {
	tests := []struct {
		name string
		prev *Node
		next *Node
	}{
		{
			name: "missing key",
			prev: Ul(Li(Key("a"), Text("a")), Li(Text("b"))),
			next: Ul(Li(Text("b")), Li(Key("a"), Text("a"))),
		},
		{
			name: "duplicate key",
			prev: Ul(Li(Key("a"), Text("a")), Li(Key("a"), Text("b"))),
			next: Ul(Li(Key("a"), Text("b")), Li(Key("a"), Text("a"))),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyed := patchSummary(DiffWith(tt.prev, tt.next, Options{Keyed: true}))
			positional := patchSummary(Diff(tt.prev, tt.next))
			if diff := cmp.Diff(positional, keyed); diff != "" {
				t.Errorf("keyed diff should match positional (-positional +keyed):\n%s", diff)
			}
		})
	}
}

func TestDiffIgnoresKeysByDefault(t *testing.T) {
	prev := Ul(Li(Key("a"), Text("a")), Li(Key("b"), Text("b")))
	next := Ul(Li(Key("b"), Text("b")), Li(Key("a"), Text("a")))

	for _, p := range Diff(prev, next) {
		if p.Op == PatchMoveChild || p.Op == PatchInsertChild {
			t.Errorf("positional diff emitted %v", p)
		}
	}
}
