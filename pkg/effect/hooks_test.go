package effect_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/lifecycle/pkg/core"
	"github.com/go-drift/lifecycle/pkg/effect"
	lctest "github.com/go-drift/lifecycle/pkg/testing"
)

type mockDisposable struct {
	name     string
	disposed int
}

func (m *mockDisposable) Dispose() {
	m.disposed++
}

// phaseLog records the render phases and effect steps of one component.
type phaseLog struct {
	entries []string
}

func (l *phaseLog) add(s string) {
	l.entries = append(l.entries, s)
}

func mountWithMoment(tester *lctest.Tester, log *phaseLog, moment core.Moment) *core.Component {
	tester.Owner().OnPaint = func() { log.add("paint") }
	return tester.Mount(func(c *core.Component) {
		log.add("render")
		effect.UseCoroutine(c, func(*core.Ref[struct{}]) effect.Coroutine {
			log.add("mount")
			return nil
		}, effect.On(), effect.WithMoment(moment))
		log.add("render-end")
	})
}

func TestUseCoroutine_Moments(t *testing.T) {
	tests := []struct {
		moment core.Moment
		want   []string
	}{
		{core.MomentMemo, []string{"render", "mount", "render-end", "paint"}},
		{core.MomentLayoutEffect, []string{"render", "render-end", "mount", "paint"}},
		{core.MomentEffect, []string{"render", "render-end", "paint", "mount"}},
	}
	for _, tt := range tests {
		t.Run(tt.moment.String(), func(t *testing.T) {
			tester := lctest.NewTesterWithT(t)
			log := &phaseLog{}
			mountWithMoment(tester, log, tt.moment)
			if diff := cmp.Diff(tt.want, log.entries); diff != "" {
				t.Errorf("phase order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUseCoroutine_StrictModeCollapses(t *testing.T) {
	for _, moment := range []core.Moment{core.MomentLayoutEffect, core.MomentEffect} {
		t.Run(moment.String(), func(t *testing.T) {
			tester := lctest.NewTesterWithT(t)
			tester.SetStrictMode(true)
			rec := tester.Recorder()
			res := &mockDisposable{}
			created := 0

			c := tester.Mount(func(c *core.Component) {
				effect.UseDisposable(c, func() *mockDisposable {
					created++
					return res
				}, effect.On(), effect.WithMoment(moment), effect.WithObserver(rec.Observe))
			})

			if c.Builds() != 2 {
				t.Errorf("expected strict mode to render twice, got %d", c.Builds())
			}
			if created != 1 || res.disposed != 0 {
				t.Errorf("expected one acquisition and no release, got created=%d disposed=%d", created, res.disposed)
			}

			tester.Pump()
			if res.disposed != 0 {
				t.Error("collapsed remount must not release at the next tick")
			}

			tester.Unmount(c)
			if res.disposed != 1 {
				t.Errorf("expected release on a real unmount, got %d", res.disposed)
			}
			want := []effect.EventKind{
				effect.EventMount, effect.EventAcquire, effect.EventComplete,
				effect.EventDefer, effect.EventCollapse, effect.EventRelease,
			}
			if diff := cmp.Diff(want, rec.Kinds()); diff != "" {
				t.Errorf("event mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestUseCoroutine_StrictModeHeadless(t *testing.T) {
	tester := lctest.NewHeadlessTesterWithT(t)
	tester.SetStrictMode(true)
	created := 0
	var live []*mockDisposable

	tester.Mount(func(c *core.Component) {
		effect.UseDisposable(c, func() *mockDisposable {
			created++
			d := &mockDisposable{}
			live = append(live, d)
			return d
		}, effect.On())
	})

	if created != 2 {
		t.Errorf("expected strict remount to reacquire without a display, got %d", created)
	}
	if live[0].disposed != 1 || live[1].disposed != 0 {
		t.Error("expected the first acquisition released and the second live")
	}
}

func TestUseCoroutine_DepsChange(t *testing.T) {
	tester := lctest.NewTesterWithT(t)
	rec := tester.Recorder()
	name := "a"
	var made []*mockDisposable
	var ref *core.Ref[*mockDisposable]

	c := tester.Mount(func(c *core.Component) {
		ref = effect.UseDisposable(c, func() *mockDisposable {
			d := &mockDisposable{name: name}
			made = append(made, d)
			return d
		}, effect.On(name), effect.WithObserver(rec.Observe))
	})
	tester.Pump()

	c.SetState(func() { name = "b" })
	tester.Pump()

	if len(made) != 2 {
		t.Fatalf("expected a second acquisition, got %d", len(made))
	}
	if made[0].disposed != 1 || made[1].disposed != 0 {
		t.Error("expected the old generation released and the new one live")
	}
	if ref.Value() != made[1] {
		t.Error("expected ref to hold the newest disposable")
	}

	c.SetState(nil)
	tester.Pump()
	if len(made) != 2 {
		t.Error("rebuild with unchanged deps must not restart")
	}
}

func TestUseCoroutine_MemoDepsChange(t *testing.T) {
	tester := lctest.NewTesterWithT(t)
	n := 0
	var made []*mockDisposable

	c := tester.Mount(func(c *core.Component) {
		effect.UseDisposable(c, func() *mockDisposable {
			d := &mockDisposable{}
			made = append(made, d)
			return d
		}, effect.On(n), effect.WithMoment(core.MomentMemo))
	})
	tester.Pump()
	c.SetState(func() { n++ })
	tester.PumpWithinFrame()

	if len(made) != 2 || made[0].disposed != 1 {
		t.Errorf("expected memo moment to restart within the build, got %d made", len(made))
	}
	tester.Unmount(c)
	tester.Pump()
	if made[1].disposed != 1 {
		t.Error("expected release of the memo generation on unmount")
	}
}

func TestUseCoroutine_Always(t *testing.T) {
	tester := lctest.NewTesterWithT(t)
	starts := 0

	c := tester.Mount(func(c *core.Component) {
		effect.UseCoroutine(c, func(*core.Ref[int]) effect.Coroutine {
			starts++
			return nil
		}, effect.Always)
	})
	for i := 0; i < 3; i++ {
		tester.Pump()
		c.MarkNeedsBuild()
	}
	tester.Pump()

	if starts != 4 {
		t.Errorf("expected a restart on every render, got %d", starts)
	}
}

func TestUseCoroutine_RefSharedAcrossRenders(t *testing.T) {
	tester := lctest.NewTesterWithT(t)
	var refs []*core.Ref[string]

	c := tester.Mount(func(c *core.Component) {
		ref := effect.UseCoroutine(c, func(ref *core.Ref[string]) effect.Coroutine {
			return effect.Sequence(func(any) effect.Step {
				ref.Set("attached")
				return effect.Done()
			})
		}, effect.On())
		refs = append(refs, ref)
	})
	c.MarkNeedsBuild()
	tester.Pump()

	if len(refs) != 2 || refs[0] != refs[1] {
		t.Fatal("expected the same ref on every render")
	}
	if refs[1].Value() != "attached" {
		t.Errorf("expected coroutine to set the ref, got %q", refs[1].Value())
	}
}

func TestUseObservable(t *testing.T) {
	tester := lctest.NewTesterWithT(t)
	obs := core.NewObservable(42)
	var seen []int

	c := tester.Mount(func(c *core.Component) {
		seen = append(seen, effect.UseObservable(c, obs))
	})
	if obs.ListenerCount() != 1 {
		t.Fatalf("expected 1 listener, got %d", obs.ListenerCount())
	}

	obs.Set(100)
	tester.Pump()

	if diff := cmp.Diff([]int{42, 100}, seen); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	tester.Unmount(c)
	tester.Pump()
	if obs.ListenerCount() != 0 {
		t.Errorf("expected 0 listeners after unmount, got %d", obs.ListenerCount())
	}

	// After unmount, setting the observable must not rebuild.
	obs.Set(999)
	tester.Pump()
	if len(seen) != 2 {
		t.Error("unmounted component rebuilt")
	}
}

func TestUseDisposable_DisposedOnUnmount(t *testing.T) {
	tester := lctest.NewTesterWithT(t)
	var ref *core.Ref[*mockDisposable]

	c := tester.Mount(func(c *core.Component) {
		ref = effect.UseDisposable(c, func() *mockDisposable { return &mockDisposable{} }, effect.On())
	})
	d := ref.Value()
	if d == nil {
		t.Fatal("expected disposable after mount")
	}

	tester.Pump()
	tester.Unmount(c)
	tester.Unmount(c)

	if d.disposed != 1 {
		t.Errorf("expected exactly one dispose, got %d", d.disposed)
	}
}
