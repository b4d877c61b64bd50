package effect

import "testing"

func TestResolver_EmptyDepsStable(t *testing.T) {
	for _, digest := range []bool{true, false} {
		r := &resolver{useDigest: digest}
		first := r.resolve(On())
		for i := 0; i < 5; i++ {
			if got := r.resolve(On()); got != first {
				t.Errorf("digest=%v: empty deps changed generation %d -> %d", digest, first, got)
			}
		}
	}
}

func TestResolver_AlwaysChangesEveryRender(t *testing.T) {
	r := &resolver{useDigest: true}
	seen := map[int64]bool{}
	for i := 0; i < 5; i++ {
		gen := r.resolve(Always)
		if seen[gen] {
			t.Fatalf("Always reused generation %d", gen)
		}
		seen[gen] = true
	}
}

func TestResolver_AlwaysToExplicit(t *testing.T) {
	r := &resolver{useDigest: true}
	a := r.resolve(Always)
	b := r.resolve(On())
	c := r.resolve(On())
	if a == b {
		t.Error("switching from Always must change the generation")
	}
	if b != c {
		t.Error("explicit deps after Always should then be stable")
	}
}

func TestResolver_DigestComparesStructure(t *testing.T) {
	r := &resolver{useDigest: true}
	type props struct {
		Name string
		Tags []string
	}
	a := r.resolve(On(props{"x", []string{"a", "b"}}, 3))
	b := r.resolve(On(props{"x", []string{"a", "b"}}, 3))
	c := r.resolve(On(props{"x", []string{"a", "c"}}, 3))

	if a != b {
		t.Error("structurally equal deps should keep the generation")
	}
	if b == c {
		t.Error("structurally different deps should change the generation")
	}
}

func TestResolver_IdentityMode(t *testing.T) {
	r := &resolver{useDigest: false}
	s := []int{1, 2}
	a := r.resolve(On(s, "k"))
	b := r.resolve(On(s, "k"))
	c := r.resolve(On([]int{1, 2}, "k"))

	if a != b {
		t.Error("same slice should keep the generation")
	}
	if b == c {
		t.Error("a different slice with equal contents should change the generation")
	}

	d := r.resolve(On([]int{1, 2}, "k", 1))
	if c == d {
		t.Error("a longer dependency list should change the generation")
	}
}

func TestSameValue(t *testing.T) {
	f := func() {}
	m := map[string]int{"a": 1}
	p := &struct{ n int }{1}
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"nil nil", nil, nil, true},
		{"nil value", nil, 1, false},
		{"ints", 1, 1, true},
		{"different types", 1, int64(1), false},
		{"strings", "a", "b", false},
		{"same pointer", p, p, true},
		{"other pointer", p, &struct{ n int }{1}, false},
		{"same map", m, m, true},
		{"other map", m, map[string]int{"a": 1}, false},
		{"same func", f, f, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameValue(tt.a, tt.b); got != tt.want {
				t.Errorf("sameValue(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestOptions_Defaults(t *testing.T) {
	o := buildOptions(nil)
	if o.Moment.String() != "effect" || !o.UseDigestProps || !o.Debounce {
		t.Errorf("unexpected defaults %+v", o)
	}

	o = buildOptions([]Option{WithDebounce(false), nil, WithDigestProps(false)})
	if o.Debounce || o.UseDigestProps {
		t.Errorf("options not applied: %+v", o)
	}

	o = buildOptions([]Option{WithDebounce(false), WithOptions(DefaultOptions())})
	if !o.Debounce {
		t.Error("WithOptions should replace earlier options")
	}
}
