package effect

import "github.com/go-drift/lifecycle/pkg/core"

// UseCoroutine binds a coroutine to c. On every render the dependencies are
// resolved; when they change, the previous run is released and callback is
// invoked again at the configured moment. The returned Ref is handed to
// callback and stays the same across renders, so the component can expose
// a value (such as an attached element) to the running coroutine.
//
// Example:
//
//	func render(c *core.Component) {
//	    conn := effect.UseCoroutine(c, func(ref *core.Ref[*Conn]) effect.Coroutine {
//	        return effect.Go(func(y *effect.Yielder) {
//	            ref.Set(y.Yield(effect.FromDisposable(Dial(addr))).(*Conn))
//	        })
//	    }, effect.On(addr))
//	    ...
//	}
func UseCoroutine[T any](c *core.Component, callback func(ref *core.Ref[T]) Coroutine, deps Deps, opts ...Option) *core.Ref[T] {
	var zero T
	ref := core.UseRef(c, zero)
	holder := core.UseRef[*Controller](c, nil)
	ctl := holder.Value()
	if ctl == nil {
		ctl = NewController(c.Owner().Scheduler(), nil, opts...)
		holder.Set(ctl)
	}
	ctl.SetStart(func() Coroutine {
		if callback == nil {
			return nil
		}
		return callback(ref)
	})

	gen := ctl.Render(deps)
	c.UseEffect(ctl.opts.Moment, gen, func() func() {
		ctl.Mount(gen)
		return func() { ctl.Unmount(gen) }
	})
	return ref
}

// UseObservable subscribes c to obs and rebuilds it when the value changes.
// It returns the current value. The subscription is released with the
// component.
func UseObservable[T any](c *core.Component, obs *core.Observable[T]) T {
	sched := c.Owner().Scheduler()
	UseCoroutine(c, func(*core.Ref[struct{}]) Coroutine {
		return Sequence(func(any) Step {
			unsub := obs.AddListener(func(T) {
				sched.Post(c.MarkNeedsBuild)
			})
			return Yield(Action(unsub))
		})
	}, On(obs), WithDigestProps(false))
	return obs.Value()
}

// UseDisposable creates a disposable with create whenever deps change and
// disposes it when they change again or the component goes away. The
// returned Ref holds the live instance once the mount step has run.
func UseDisposable[D Disposable](c *core.Component, create func() D, deps Deps, opts ...Option) *core.Ref[D] {
	return UseCoroutine(c, func(ref *core.Ref[D]) Coroutine {
		return Sequence(func(any) Step {
			d := create()
			ref.Set(d)
			return Yield(FromDisposable(d))
		})
	}, deps, opts...)
}
