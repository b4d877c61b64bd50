package testing

import (
	"testing"
	"time"

	"github.com/go-drift/lifecycle/pkg/core"
	lcerrors "github.com/go-drift/lifecycle/pkg/errors"
	"github.com/go-drift/lifecycle/pkg/frame"
)

// FrameInterval is how far Pump advances the fake clock.
const FrameInterval = 16 * time.Millisecond

// ErrSettleTimeout is returned when Settle exceeds its timeout.
var ErrSettleTimeout = core.ErrSettleTimeout

// Tester mounts components on an owner and drives frames against a fake
// clock. Reported lifecycle errors are collected instead of logged.
type Tester struct {
	owner       *core.Owner
	sched       *frame.Scheduler
	clock       *FakeClock
	prevClock   frame.Clock
	prevHandler lcerrors.ErrorHandler
	recorder    *Recorder
	errs        *collectingHandler
	mounted     []*core.Component
}

// NewTester creates a tester with an interactive scheduler.
// Call Cleanup() when done, or use NewTesterWithT() instead.
func NewTester() *Tester {
	return newTester(frame.NewScheduler())
}

// NewHeadlessTester creates a tester whose scheduler never advances, as in
// an environment without a display.
func NewHeadlessTester() *Tester {
	return newTester(frame.NewHeadless())
}

func newTester(sched *frame.Scheduler) *Tester {
	clk := NewFakeClock()
	t := &Tester{
		owner:    core.NewOwner(sched),
		sched:    sched,
		clock:    clk,
		recorder: NewRecorder(),
		errs:     &collectingHandler{},
	}
	t.prevClock = frame.SetClock(clk)
	t.prevHandler = lcerrors.SetHandler(t.errs)
	return t
}

// NewTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewTesterWithT(t *testing.T) *Tester {
	tester := NewTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// NewHeadlessTesterWithT is NewHeadlessTester with automatic cleanup.
func NewHeadlessTesterWithT(t *testing.T) *Tester {
	tester := NewHeadlessTester()
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup unmounts every component still mounted and restores the frame
// clock and error handler.
func (t *Tester) Cleanup() {
	for _, c := range t.mounted {
		t.owner.Unmount(c)
	}
	t.mounted = nil
	frame.SetClock(t.prevClock)
	lcerrors.SetHandler(t.prevHandler)
}

// Owner returns the owner components are mounted on.
func (t *Tester) Owner() *core.Owner {
	return t.owner
}

// Scheduler returns the frame scheduler.
func (t *Tester) Scheduler() *frame.Scheduler {
	return t.sched
}

// Clock returns the fake clock.
func (t *Tester) Clock() *FakeClock {
	return t.clock
}

// Recorder returns the tester's event recorder. Pass Recorder().Observe to
// effect.WithObserver to capture a controller's events.
func (t *Tester) Recorder() *Recorder {
	return t.recorder
}

// SetStrictMode toggles the owner's strict mode.
func (t *Tester) SetStrictMode(enabled bool) {
	t.owner.StrictMode = enabled
}

// Errors returns the errors reported since the tester was created.
func (t *Tester) Errors() []error {
	return t.errs.errs
}

// Mount mounts a component and flushes within the current frame.
func (t *Tester) Mount(render core.RenderFunc) *core.Component {
	c := t.owner.Mount(render)
	t.mounted = append(t.mounted, c)
	t.owner.Flush()
	return c
}

// Unmount unmounts c within the current frame.
func (t *Tester) Unmount(c *core.Component) {
	t.owner.Unmount(c)
	for i, m := range t.mounted {
		if m == c {
			t.mounted = append(t.mounted[:i], t.mounted[i+1:]...)
			break
		}
	}
}

// Pump advances the clock by FrameInterval and runs one frame: the
// scheduler ticks, posted callbacks run, and dirty components rebuild.
func (t *Tester) Pump() {
	t.clock.Advance(FrameInterval)
	t.owner.Frame(t.clock.Elapsed())
}

// PumpWithinFrame flushes the owner without ticking the scheduler.
func (t *Tester) PumpWithinFrame() {
	t.owner.Flush()
}

// Settle flushes until no async work is in flight and no component needs
// rebuilding. It does not advance frames. Returns ErrSettleTimeout if
// the work does not finish within timeout.
func (t *Tester) Settle(timeout time.Duration) error {
	return t.owner.Settle(timeout)
}

type collectingHandler struct {
	errs []error
}

func (h *collectingHandler) HandleError(err *lcerrors.LifecycleError) {
	h.errs = append(h.errs, err)
}

func (h *collectingHandler) HandlePanic(err *lcerrors.PanicError) {
	h.errs = append(h.errs, err)
}
