package effect

import (
	"context"
	"time"

	"github.com/go-drift/lifecycle/pkg/errors"
	"github.com/go-drift/lifecycle/pkg/frame"
)

// Controller binds an Instance to a component's render cycle. The host calls
// Render on every render pass, then Mount and Unmount at the moment selected
// by the options, passing the generation id Render returned.
//
// Controller is NOT thread-safe. All methods run on the UI thread.
type Controller struct {
	opts     Options
	sched    *frame.Scheduler
	start    func() Coroutine
	inst     *Instance
	resolver resolver
}

// NewController creates a controller whose mount step obtains its coroutine
// from start. A nil start, or a start returning nil, manages no resources.
func NewController(sched *frame.Scheduler, start func() Coroutine, opts ...Option) *Controller {
	if sched == nil {
		sched = frame.NewHeadless()
	}
	c := &Controller{
		opts:  buildOptions(opts),
		sched: sched,
		start: start,
	}
	c.resolver.useDigest = c.opts.UseDigestProps
	c.inst = newInstance(sched, c.emit)
	return c
}

// Options returns the controller's options.
func (c *Controller) Options() Options {
	return c.opts
}

// Instance returns the controller's effect instance.
func (c *Controller) Instance() *Instance {
	return c.inst
}

// SetStart replaces the function the next mount step obtains its coroutine
// from. Hosts call it on every render so the newest closure is used.
func (c *Controller) SetStart(start func() Coroutine) {
	c.start = start
}

// debounce reports whether same-frame collapsing applies. Without a display
// the clock never moves, so every effect runs as if debouncing were off.
func (c *Controller) debounce() bool {
	return c.opts.Debounce && c.sched.Interactive()
}

// Render resolves deps into a generation id. When the generation changes, a
// mounted instance is released immediately, bypassing any pending deferral,
// and the mount counter starts over. The returned id is the key the host
// schedules the mount step on.
func (c *Controller) Render(deps Deps) int64 {
	inst := c.inst
	gen := c.resolver.resolve(deps)
	if gen != inst.depsID {
		if inst.mounted {
			inst.Release(ReasonDepsChanged)
		}
		inst.depsID = gen
		inst.mountID = 0
	}
	inst.renderCount++
	return gen
}

// Mount runs the mount step for generation gen. A repeated mount within the
// frame of the previous one is collapsed: the instance leaves the pending
// set and the coroutine is not invoked again. Otherwise the coroutine is
// started and driven until it completes or suspends.
func (c *Controller) Mount(gen int64) {
	inst := c.inst
	if gen != inst.depsID {
		return
	}
	now := c.sched.Now()
	wasMounted := inst.mounted
	prev := inst.mountedAt

	inst.mounted = true
	inst.mountID++
	inst.lastUpdate = now
	inst.mountedAt = now

	if c.debounce() && inst.mountID > 1 && now.Frame == prev.Frame {
		c.sched.Cancel(inst)
		c.emit(Event{Kind: EventCollapse, Instance: inst.id, MountID: inst.mountID, Stamp: now, Count: len(inst.destroyables)})
		return
	}
	if wasMounted {
		// Mounted again outside the collapse window: the old run must not
		// leak into the new one.
		inst.Release(ReasonRemount)
		inst.mounted = true
	}

	c.emit(Event{Kind: EventMount, Instance: inst.id, MountID: inst.mountID, Stamp: now})

	var co Coroutine
	if c.start != nil {
		co = c.start()
	}
	if co == nil {
		c.emit(Event{Kind: EventComplete, Instance: inst.id, MountID: inst.mountID, Stamp: now})
		return
	}
	r := newRun(co, inst.mountID)
	inst.current = r
	c.advance(r, nil)
}

// Unmount runs the unmount step for generation gen. Within the frame of the
// last mount, a first mount is deferred to the next tick, in case the same
// generation is mounted again before then; more than two mounts in one
// frame is a fatal invariant violation. Anything else releases immediately.
func (c *Controller) Unmount(gen int64) {
	inst := c.inst
	if gen != inst.depsID || !inst.mounted {
		return
	}
	now := c.sched.Now()
	if c.debounce() && inst.lastUpdate == now {
		if inst.mountID < 2 {
			c.sched.Defer(inst)
			c.emit(Event{Kind: EventDefer, Instance: inst.id, MountID: inst.mountID, Stamp: now, Count: len(inst.destroyables)})
			return
		}
		if inst.mountID > 2 {
			errors.Fatal(&errors.LifecycleError{
				Op:         "effect.Unmount",
				Kind:       errors.KindInvalidState,
				Err:        errors.ErrUnexpectedRepeatedUnmount,
				InstanceID: inst.id,
				Frame:      now.Frame,
				Timestamp:  time.Now(),
			})
		}
	}
	inst.Release(ReasonUnmount)
}

// Dispose releases the instance immediately, whatever its state.
func (c *Controller) Dispose() {
	c.inst.Release(ReasonUnmount)
}

// advance resumes r with in and processes its steps until the coroutine
// completes, fails, suspends on an async step, or goes stale.
func (c *Controller) advance(r *run, in any) {
	for {
		step := c.resume(r, in)
		next, ok := c.process(r, step)
		if !ok {
			return
		}
		in = next
	}
}

// resume calls the coroutine, turning a panic into a failed step. Lifecycle
// invariant violations keep propagating.
func (c *Controller) resume(r *run, in any) (step Step) {
	defer func() {
		if v := recover(); v != nil {
			if le, ok := v.(*errors.LifecycleError); ok && le.Kind == errors.KindInvalidState {
				panic(le)
			}
			step = Fail(&errors.PanicError{
				Op:         "effect.Resume",
				Value:      v,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()
	return r.co.Resume(in)
}

// process applies one step to the instance. It returns the payload for the
// next resumption and whether stepping continues synchronously.
func (c *Controller) process(r *run, step Step) (any, bool) {
	inst := c.inst
	now := c.sched.Now()
	if !inst.owns(r) {
		// The instance was released or mounted again while this step was in
		// flight. Whatever it acquired is released on the spot instead of
		// joining the instance.
		r.stop()
		for _, d := range step.resources {
			destroy(d)
		}
		c.emit(Event{Kind: EventDiscard, Instance: inst.id, MountID: r.mountID, Stamp: now, Count: len(step.resources)})
		return nil, false
	}

	switch step.kind {
	case stepDone:
		r.stop()
		c.emit(Event{Kind: EventComplete, Instance: inst.id, MountID: r.mountID, Stamp: now})
		return nil, false

	case stepFail:
		r.stop()
		c.fail(r, step.err)
		return nil, false

	case stepAsync:
		c.emit(Event{Kind: EventSuspend, Instance: inst.id, MountID: r.mountID, Stamp: now})
		c.await(r, step.async)
		return nil, false

	default:
		inst.destroyables = append(inst.destroyables, step.resources...)
		if len(step.resources) > 0 {
			c.emit(Event{Kind: EventAcquire, Instance: inst.id, MountID: r.mountID, Stamp: now, Count: len(step.resources)})
		}
		return step.payload(), true
	}
}

// await runs fn on its own goroutine and posts its result back to the UI
// thread, where it is processed like any other step.
func (c *Controller) await(r *run, fn func(ctx context.Context) Step) {
	c.sched.Go(func() func() {
		result := callAsync(r.ctx, fn)
		return func() {
			if next, ok := c.process(r, result); ok {
				c.advance(r, next)
			}
		}
	})
}

func callAsync(ctx context.Context, fn func(ctx context.Context) Step) (step Step) {
	defer func() {
		if v := recover(); v != nil {
			step = Fail(&errors.PanicError{
				Op:         "effect.Async",
				Value:      v,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
		}
	}()
	if fn == nil {
		return Pass()
	}
	return fn(ctx)
}

func (c *Controller) fail(r *run, err error) {
	inst := c.inst
	c.emit(Event{Kind: EventFail, Instance: inst.id, MountID: r.mountID, Stamp: c.sched.Now(), Err: err})
	if pe, ok := err.(*errors.PanicError); ok {
		errors.ReportPanic(pe)
		return
	}
	errors.Report(&errors.LifecycleError{
		Op:         "effect.Coroutine",
		Kind:       errors.KindCoroutine,
		Err:        err,
		InstanceID: inst.id,
		Frame:      c.sched.Now().Frame,
	})
}

func (c *Controller) emit(e Event) {
	logger.Debug("effect "+e.Kind.String(),
		"instance", e.Instance,
		"mount", e.MountID,
		"frame", e.Stamp.Frame,
		"reason", e.Reason,
		"count", e.Count,
	)
	if c.opts.Observer != nil {
		c.opts.Observer(e)
	}
}
