// Package frame provides the per-frame clock that effect lifecycles are
// synchronized to.
//
// # Scheduler
//
// A [Scheduler] holds the current [Stamp] (frame index and frame time), the
// set of effect instances whose teardown was deferred to the next frame,
// and the queue of callbacks posted back to the UI thread by asynchronous
// work. Each call to [Scheduler.Tick] advances the frame and releases every
// deferred instance:
//
//	sched := frame.NewScheduler()
//	sched.Tick(16 * time.Millisecond) // frame 1
//	sched.Tick(33 * time.Millisecond) // frame 2, flushes deferred teardown
//
// A headless scheduler ([NewHeadless]) models an environment without a
// display: its clock never advances and Tick is a no-op, so callers that
// consult [Scheduler.Interactive] run without any frame debouncing.
//
// # Display Links
//
// [DisplayLink] calls a frame callback once per refresh interval until its
// context is cancelled. The goroutine running [DisplayLink.Run] is the UI
// thread: all lifecycle state is touched from it, and other goroutines hand
// work to it with [Scheduler.Post].
package frame
