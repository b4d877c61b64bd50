package core

import (
	"errors"
	"slices"
	"time"

	"github.com/go-drift/lifecycle/pkg/frame"
)

// ErrSettleTimeout is returned when Settle exceeds its timeout.
var ErrSettleTimeout = errors.New("settle timed out: async work did not finish")

// Owner tracks mounted components and drives them through the
// render/commit/paint cycle.
//
// Owner is NOT thread-safe. Flush, Frame and Mount run on the UI thread.
type Owner struct {
	sched *frame.Scheduler

	dirty    []*Component
	dirtySet map[*Component]bool
	nextID   uint64

	layout  []pendingEffect
	passive []pendingEffect
	fresh   []*Component

	// StrictMode double-invokes render functions on first build and, after a
	// component's first commit, runs every layout and passive effect cleanup
	// followed by its setup again, within the same frame.
	StrictMode bool

	// OnPaint is called between commit and the passive effect phase.
	OnPaint func()

	// OnNeedsFrame is called when a component is scheduled for rebuild,
	// signalling that a frame should be produced.
	OnNeedsFrame func()
}

type pendingEffect struct {
	c *Component
	h *effectHook
}

// NewOwner creates an owner whose effects are timed by sched.
// A nil sched selects a headless scheduler.
func NewOwner(sched *frame.Scheduler) *Owner {
	if sched == nil {
		sched = frame.NewHeadless()
	}
	return &Owner{sched: sched}
}

// Scheduler returns the frame scheduler shared by the owner's components.
func (o *Owner) Scheduler() *frame.Scheduler {
	return o.sched
}

// Mount creates a component for render and schedules its first build.
func (o *Owner) Mount(render RenderFunc) *Component {
	o.nextID++
	c := &Component{owner: o, id: o.nextID, render: render}
	o.ScheduleBuild(c)
	return c
}

// Unmount tears c down: effect cleanups run immediately and any queued
// setups for c are dropped.
func (o *Owner) Unmount(c *Component) {
	if c == nil || c.owner != o {
		return
	}
	c.unmount()
}

// ScheduleBuild marks a component as needing rebuild.
func (o *Owner) ScheduleBuild(c *Component) {
	if o.dirtySet[c] {
		return
	}
	if o.dirtySet == nil {
		o.dirtySet = make(map[*Component]bool)
	}
	o.dirtySet[c] = true
	o.dirty = append(o.dirty, c)
	if o.OnNeedsFrame != nil {
		o.OnNeedsFrame()
	}
}

// NeedsWork reports whether a flush would do anything.
func (o *Owner) NeedsWork() bool {
	return len(o.dirty) > 0 || len(o.layout) > 0 || len(o.passive) > 0 || o.sched.HasPosted()
}

// Settle flushes until no async work is in flight and no component needs
// rebuilding. It never advances the frame. It returns ErrSettleTimeout if
// the work does not finish within timeout.
func (o *Owner) Settle(timeout time.Duration) error {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		if o.NeedsWork() {
			o.Flush()
			continue
		}
		if !o.sched.Busy() {
			return nil
		}
		select {
		case <-o.sched.Wake():
		case <-deadline.C:
			return ErrSettleTimeout
		case <-time.After(time.Millisecond):
		}
	}
}

// Frame advances the scheduler to now and flushes.
func (o *Owner) Frame(now time.Duration) {
	o.sched.Tick(now)
	o.Flush()
}

// Flush runs posted callbacks, rebuilds dirty components, commits layout
// effects, calls OnPaint, then runs passive effects. It repeats until no
// component is dirty. Flush never advances the frame.
func (o *Owner) Flush() {
	o.sched.Drain()
	for {
		o.flushBuild()
		o.runEffects(&o.layout)
		if o.OnPaint != nil {
			o.OnPaint()
		}
		o.runEffects(&o.passive)
		o.remountFresh()
		if len(o.dirty) == 0 {
			return
		}
	}
}

// flushBuild rebuilds all dirty components in mount order.
func (o *Owner) flushBuild() {
	for len(o.dirty) > 0 {
		slices.SortFunc(o.dirty, func(a, b *Component) int {
			return int(a.id) - int(b.id)
		})
		dirty := o.dirty
		o.dirty = nil
		clear(o.dirtySet)

		for _, c := range dirty {
			if c.unmounted {
				continue
			}
			first := c.builds == 0
			c.build()
			if first && o.StrictMode && !c.unmounted {
				c.build()
			}
			if first && !c.committed {
				c.committed = true
				if o.StrictMode {
					o.fresh = append(o.fresh, c)
				}
			}
		}
	}
}

func (o *Owner) enqueueEffect(c *Component, h *effectHook) {
	if h.queued {
		return
	}
	h.queued = true
	p := pendingEffect{c: c, h: h}
	if h.moment == MomentLayoutEffect {
		o.layout = append(o.layout, p)
	} else {
		o.passive = append(o.passive, p)
	}
}

// runEffects runs the cleanups of every queued effect, then their setups.
func (o *Owner) runEffects(queue *[]pendingEffect) {
	pending := *queue
	*queue = nil
	live := pending[:0]
	for _, p := range pending {
		if p.c.unmounted || !p.h.queued {
			continue
		}
		live = append(live, p)
	}
	for _, p := range live {
		p.h.runCleanup()
	}
	for _, p := range live {
		if p.c.unmounted || !p.h.queued {
			continue
		}
		p.h.queued = false
		p.h.runSetup()
	}
}

// remountFresh simulates an unmount and remount of every component that
// committed for the first time in this flush.
func (o *Owner) remountFresh() {
	fresh := o.fresh
	o.fresh = nil
	for _, c := range fresh {
		o.Remount(c)
	}
}

// Remount runs the cleanup of every layout and passive effect of c, then
// every setup again, as if c had been unmounted and mounted in place.
// Memo effects are left alone. Strict mode does this after a component's
// first commit.
func (o *Owner) Remount(c *Component) {
	if c == nil || c.owner != o || c.unmounted {
		return
	}
	hooks := append(c.effects(MomentLayoutEffect), c.effects(MomentEffect)...)
	for _, h := range hooks {
		h.runCleanup()
	}
	for _, h := range hooks {
		if !c.unmounted {
			h.runSetup()
		}
	}
}
