// Package effect manages resources acquired by coroutines bound to
// components.
//
// A [Controller] owns one [Instance] and drives it through the states
// uninitialized, mounted, optionally deferred, and unmounted. Each render
// resolves the component's [Deps] into a generation id; a new generation
// releases the previous one and schedules a fresh mount step at the
// configured [core.Moment].
//
// # Coroutines
//
// A [Coroutine] is resumed repeatedly. Each [Step] yields zero, one or a
// sequence of [Destroyable] resources, completes, fails, or defers to an
// [Async] computation. The payload of a step's resources is passed into the
// next resumption, so later acquisitions can depend on earlier ones:
//
//	effect.Sequence(
//	    func(any) effect.Step {
//	        return effect.Yield(effect.Value(openDB(), closeDB))
//	    },
//	    func(db any) effect.Step {
//	        return effect.Yield(effect.Action(watch(db.(*DB))))
//	    },
//	)
//
// [Go] runs a straight-line body on its own goroutine instead, handing
// control back and forth with the driver.
//
// # Release
//
// Resources are released exactly once per generation, in acquisition
// order. A step that arrives after its run was torn down or replaced is
// discarded, and anything it acquired is released on the spot.
//
// # Debounce
//
// Hosts such as strict developer modes mount, unmount and remount effects
// within one frame. With debouncing enabled, the first unmount of a
// generation in the frame of its mount is deferred to the next
// [frame.Scheduler.Tick]; a remount before then reuses the live resources.
// A third mount/unmount pair in one frame is an invariant violation and
// panics with [errors.ErrUnexpectedRepeatedUnmount].
package effect
