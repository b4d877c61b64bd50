// Package core provides the component host that effect hooks run inside.
//
// An Owner mounts render functions as Components and drives them through
// the render/commit/paint cycle on the UI thread. Each component keeps its
// hook state in call order, so a render function must call the same hooks
// in the same order on every build.
//
// # Render Cycle
//
// Owner.Flush runs one pass:
//
//  1. Posted callbacks from background goroutines run.
//  2. Dirty components rebuild, in mount order. Memo effects run inline.
//  3. Layout effects run: every queued cleanup, then every queued setup.
//  4. OnPaint is called.
//  5. Passive effects run the same way.
//
// Owner.Frame ticks the frame scheduler before flushing.
//
// # Strict Mode
//
// With Owner.StrictMode set, a component's first build renders twice, and
// after its first commit every layout and passive effect is cleaned up and
// set up again within the same frame. Effects that cannot survive this are
// not idempotent.
//
// # State Management
//
// Managed provides automatic rebuild triggering:
//
//	count := core.UseManaged(c, 0)
//	count.Set(count.Value() + 1) // Schedules a rebuild
//
// Ref holds a value across builds without scheduling anything.
//
// Observable provides thread-safe reactive values:
//
//	counter := core.NewObservable(0)
//	unsub := counter.AddListener(func(v int) { ... })
//
// # Constructor Conventions
//
// Long-lived, mutable objects use NewX() constructors returning pointers:
//
//	owner := core.NewOwner(frame.NewScheduler())
//	obs := core.NewObservable(0)
//
// Hook state is created with UseX(c, ...) helpers, which return the same
// pointer on every build.
package core
