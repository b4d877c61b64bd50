package core

import (
	"fmt"

	"github.com/go-drift/lifecycle/pkg/errors"
)

// RenderFunc builds a component. It is called on every rebuild and must
// call the same hooks in the same order each time.
type RenderFunc func(c *Component)

// Component is one mounted render function and its hook state.
//
// Component is NOT thread-safe. Every method must be called on the UI
// thread; background goroutines hand work over with Scheduler.Post.
type Component struct {
	owner  *Owner
	id     uint64
	render RenderFunc

	hooks  []any
	cursor int
	builds int

	committed bool
	unmounted bool
	disposers []func()
}

// effectHook is the slot state of one UseEffect call.
type effectHook struct {
	moment  Moment
	key     any
	fresh   bool
	setup   func() func()
	cleanup func()
	queued  bool
}

// ID returns the component's mount order within its owner.
func (c *Component) ID() uint64 {
	return c.id
}

// Owner returns the owner the component is mounted in.
func (c *Component) Owner() *Owner {
	return c.owner
}

// Builds returns how many times the render function has run.
func (c *Component) Builds() int {
	return c.builds
}

// IsUnmounted reports whether the component has been unmounted.
func (c *Component) IsUnmounted() bool {
	return c.unmounted
}

// SetState executes fn and schedules a rebuild.
// Safe to call even after unmount (becomes a no-op).
func (c *Component) SetState(fn func()) {
	if c.unmounted {
		return
	}
	if fn != nil {
		fn()
	}
	c.MarkNeedsBuild()
}

// MarkNeedsBuild schedules the component for rebuild in the next flush.
func (c *Component) MarkNeedsBuild() {
	if c.unmounted {
		return
	}
	c.owner.ScheduleBuild(c)
}

// OnDispose registers a cleanup function to run when the component is
// unmounted. Disposers run in reverse registration order, after effect
// cleanups. If the component is already unmounted, cleanup runs immediately.
func (c *Component) OnDispose(cleanup func()) {
	if cleanup == nil {
		return
	}
	if c.unmounted {
		cleanup()
		return
	}
	c.disposers = append(c.disposers, cleanup)
}

// UseEffect registers an effect at the given moment. setup runs when key
// differs from the key of the previous build (and on the first build); the
// function it returns, if any, runs before the next setup and on unmount.
// Keys are compared with ==, so they must be comparable.
func (c *Component) UseEffect(moment Moment, key any, setup func() func()) {
	h := c.slot(func() any { return &effectHook{moment: moment, fresh: true} }).(*effectHook)
	if !h.fresh && h.key == key {
		return
	}
	h.fresh = false
	h.key = key
	h.setup = setup

	if moment == MomentMemo {
		h.runCleanup()
		h.runSetup()
		return
	}
	c.owner.enqueueEffect(c, h)
}

// slot returns the hook state at the current cursor, creating it on the
// first build.
func (c *Component) slot(create func() any) any {
	i := c.cursor
	c.cursor++
	if i < len(c.hooks) {
		return c.hooks[i]
	}
	if c.builds > 1 {
		errors.Fatal(&errors.LifecycleError{
			Op:   "core.Component.slot",
			Kind: errors.KindInvalidState,
			Err:  fmt.Errorf("component %d called more hooks than on its first build", c.id),
		})
	}
	h := create()
	c.hooks = append(c.hooks, h)
	return h
}

func (c *Component) build() {
	c.cursor = 0
	c.builds++
	c.render(c)
	if c.cursor != len(c.hooks) {
		errors.Fatal(&errors.LifecycleError{
			Op:   "core.Component.build",
			Kind: errors.KindInvalidState,
			Err:  fmt.Errorf("component %d called %d hooks, previous builds called %d", c.id, c.cursor, len(c.hooks)),
		})
	}
}

// effects returns the component's effect hooks with the given moment, in
// hook order.
func (c *Component) effects(moment Moment) []*effectHook {
	var out []*effectHook
	for _, h := range c.hooks {
		if e, ok := h.(*effectHook); ok && e.moment == moment {
			out = append(out, e)
		}
	}
	return out
}

// unmount runs every effect cleanup (memo, then layout, then passive) and
// then the disposers in reverse order.
func (c *Component) unmount() {
	if c.unmounted {
		return
	}
	c.unmounted = true
	for _, m := range []Moment{MomentMemo, MomentLayoutEffect, MomentEffect} {
		for _, h := range c.effects(m) {
			h.queued = false
			h.runCleanup()
		}
	}
	for i := len(c.disposers) - 1; i >= 0; i-- {
		c.disposers[i]()
	}
	c.disposers = nil
}

func (h *effectHook) runCleanup() {
	if h.cleanup == nil {
		return
	}
	cleanup := h.cleanup
	h.cleanup = nil
	cleanup()
}

func (h *effectHook) runSetup() {
	if h.setup == nil {
		return
	}
	h.cleanup = h.setup()
}
