// Package testing drives components and effect controllers frame by frame
// without a display.
//
// # Quick Start
//
// Create a tester, mount a component, and pump frames:
//
//	func TestSubscription(t *testing.T) {
//	    tester := lctest.NewTesterWithT(t)
//	    rec := tester.Recorder()
//
//	    c := tester.Mount(func(c *core.Component) {
//	        effect.UseDisposable(c, newSubscription, effect.On(),
//	            effect.WithObserver(rec.Observe))
//	    })
//	    tester.Unmount(c)
//	    tester.Pump()
//
//	    if rec.Count(effect.EventRelease) != 1 {
//	        t.Error("expected one release")
//	    }
//	}
//
// # Frames
//
// Pump advances the fake clock by one frame interval, ticks the scheduler
// and flushes the owner. PumpWithinFrame flushes without ticking, so
// everything it does shares the previous frame's stamp. Settle waits for
// async steps to land.
//
// # Traces
//
// A Recorder turns observed events into a Trace whose instance ids are
// stable across runs, for comparison against a file:
//
//	rec.Trace().MatchesFile(t, "testdata/subscription.trace.json")
//
// Update trace files with:
//
//	LIFECYCLE_UPDATE_TRACES=1 go test ./...
//
// # Import Alias
//
// Since this package has the same name as the standard library testing
// package, import it with an alias:
//
//	import lctest "github.com/go-drift/lifecycle/pkg/testing"
package testing
