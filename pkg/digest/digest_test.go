package digest

import "testing"

type point struct {
	X, Y int
	tag  string
}

type node struct {
	Name string
	Next *node
}

func TestOf_StructurallyEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b []any
	}{
		{"scalars", []any{1, "a", true, 2.5}, []any{1, "a", true, 2.5}},
		{"slices", []any{[]int{1, 2, 3}}, []any{[]int{1, 2, 3}}},
		{"maps", []any{map[string]int{"a": 1, "b": 2}}, []any{map[string]int{"b": 2, "a": 1}}},
		{"structs", []any{point{1, 2, "p"}}, []any{point{1, 2, "p"}}},
		{"pointers", []any{&point{1, 2, ""}}, []any{&point{1, 2, ""}}},
		{"nil", []any{nil}, []any{nil}},
		{"empty", nil, []any{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Of(tt.a...) != Of(tt.b...) {
				t.Errorf("Of(%v) != Of(%v)", tt.a, tt.b)
			}
		})
	}
}

func TestOf_Distinguishes(t *testing.T) {
	tests := []struct {
		name string
		a, b []any
	}{
		{"int vs string", []any{1}, []any{"1"}},
		{"int widths", []any{int32(1)}, []any{int64(1)}},
		{"order", []any{1, 2}, []any{2, 1}},
		{"length", []any{1}, []any{1, 1}},
		{"nested", []any{[]any{1, []int{2}}}, []any{[]any{1, []int{3}}}},
		{"unexported field", []any{point{1, 2, "a"}}, []any{point{1, 2, "b"}}},
		{"map value", []any{map[string]int{"a": 1}}, []any{map[string]int{"a": 2}}},
		{"nil vs empty", []any{[]int(nil)}, []any{[]int{}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if Of(tt.a...) == Of(tt.b...) {
				t.Errorf("Of(%v) == Of(%v), want different", tt.a, tt.b)
			}
		})
	}
}

func TestOf_Cycles(t *testing.T) {
	a := &node{Name: "a"}
	b := &node{Name: "b", Next: a}
	a.Next = b

	self := []any{nil}
	self[0] = self

	m := map[string]any{}
	m["self"] = m

	// Must terminate and stay deterministic.
	if Of(a) != Of(a) {
		t.Error("cyclic pointer digest is not deterministic")
	}
	if Of(self) != Of(self) {
		t.Error("cyclic slice digest is not deterministic")
	}
	if Of(m) != Of(m) {
		t.Error("cyclic map digest is not deterministic")
	}
	if Of(a) == Of(b) {
		t.Error("cycles entered at different nodes should differ")
	}
}

func TestOf_DeepNesting(t *testing.T) {
	var v any = 0
	for i := 0; i < MaxDepth*4; i++ {
		v = []any{v}
	}
	if Of(v) != Of(v) {
		t.Error("deeply nested digest is not deterministic")
	}
}

func TestOf_FuncIdentity(t *testing.T) {
	f := func() {}
	g := func() {}
	if Of(f) != Of(f) {
		t.Error("same func should digest the same")
	}
	if Of(f) == Of(g) {
		t.Error("different funcs should digest differently")
	}
}
