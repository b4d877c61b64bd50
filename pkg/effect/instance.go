package effect

import (
	"context"
	"sync/atomic"

	"github.com/go-drift/lifecycle/pkg/errors"
	"github.com/go-drift/lifecycle/pkg/frame"
)

var instanceIDs atomic.Uint64

// Instance is the bookkeeping for one coroutine binding: its identity,
// mount counters, frame stamps and the resources it holds.
//
// An Instance is owned by the Controller that created it. Its resources are
// non-empty only while it is mounted, and Release drains them exactly once
// per generation.
type Instance struct {
	id          uint64
	mounted     bool
	depsID      int64
	mountID     int
	renderCount int

	created    frame.Stamp
	lastUpdate frame.Stamp
	// mountedAt is the stamp of the most recent mount step.
	mountedAt frame.Stamp

	destroyables []Destroyable
	current      *run

	sched *frame.Scheduler
	emit  func(Event)
}

func newInstance(sched *frame.Scheduler, emit func(Event)) *Instance {
	now := sched.Now()
	return &Instance{
		id:         instanceIDs.Add(1),
		depsID:     -1,
		created:    now,
		lastUpdate: now,
		sched:      sched,
		emit:       emit,
	}
}

// ID returns the process-unique instance id.
func (i *Instance) ID() uint64 {
	return i.id
}

// Mounted reports whether the instance's resources are live.
func (i *Instance) Mounted() bool {
	return i.mounted
}

// MountID returns the number of mount steps in the current generation.
func (i *Instance) MountID() int {
	return i.mountID
}

// DepsID returns the dependency generation the instance is bound to, or -1
// before the first render.
func (i *Instance) DepsID() int64 {
	return i.depsID
}

// Len returns the number of resources currently held.
func (i *Instance) Len() int {
	return len(i.destroyables)
}

// Release marks the instance unmounted and releases its resources in
// acquisition order. Releasing an unmounted instance does nothing.
func (i *Instance) Release(reason string) {
	if !i.mounted {
		return
	}
	i.mounted = false
	if r := i.current; r != nil {
		i.current = nil
		r.stop()
	}

	destroyables := i.destroyables
	i.destroyables = nil
	for _, d := range destroyables {
		destroy(d)
	}
	i.sched.Cancel(i)

	i.emit(Event{
		Kind:     EventRelease,
		Instance: i.id,
		MountID:  i.mountID,
		Stamp:    i.sched.Now(),
		Reason:   reason,
		Count:    len(destroyables),
	})
}

// destroy runs one release action. A panicking action is reported and does
// not prevent the remaining resources from being released.
func destroy(d Destroyable) {
	defer errors.Recover("effect.Release")
	d.Destroy()
}

// owns reports whether r is the live run of a mounted instance and no mount
// step has happened since r started.
func (i *Instance) owns(r *run) bool {
	return i.mounted && i.current == r && i.mountID == r.mountID
}

// Snapshot is a point-in-time copy of an instance's counters.
type Snapshot struct {
	ID          uint64
	Mounted     bool
	DepsID      int64
	MountID     int
	RenderCount int
	Created     frame.Stamp
	LastUpdate  frame.Stamp
	Resources   int
	Pending     bool
}

// Snapshot returns the instance's current counters for diagnostics.
func (i *Instance) Snapshot() Snapshot {
	return Snapshot{
		ID:          i.id,
		Mounted:     i.mounted,
		DepsID:      i.depsID,
		MountID:     i.mountID,
		RenderCount: i.renderCount,
		Created:     i.created,
		LastUpdate:  i.lastUpdate,
		Resources:   len(i.destroyables),
		Pending:     i.sched.IsPending(i),
	}
}

// run is one invocation of a coroutine within a generation.
type run struct {
	co      Coroutine
	mountID int
	ctx     context.Context
	cancel  context.CancelFunc
	stopped bool
}

func newRun(co Coroutine, mountID int) *run {
	ctx, cancel := context.WithCancel(context.Background())
	return &run{co: co, mountID: mountID, ctx: ctx, cancel: cancel}
}

// stop cancels in-flight async work and tells the coroutine it has been
// abandoned.
func (r *run) stop() {
	if r.stopped {
		return
	}
	r.stopped = true
	r.cancel()
	if s, ok := r.co.(Stopper); ok {
		s.Stop()
	}
}
