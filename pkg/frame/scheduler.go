package frame

import (
	"sync"
	"sync/atomic"
	"time"
)

// ReasonDeferredNextFrame is the release reason used when a deferred
// teardown is resolved by a frame tick.
const ReasonDeferredNextFrame = "deferred-next-frame"

// Stamp records the frame index and frame time at which something happened.
type Stamp struct {
	Frame uint64
	Time  time.Duration
}

// Deferred is an effect instance whose teardown waits for the next tick.
type Deferred interface {
	Release(reason string)
}

// Scheduler is the frame clock shared by every effect instance bound to one
// host. The clock and the pending set are only touched from the UI thread;
// Post is the one method safe to call from other goroutines.
type Scheduler struct {
	interactive bool
	now         Stamp

	pending    []Deferred
	pendingSet map[Deferred]struct{}

	postMu   sync.Mutex
	posted   []func()
	wake     chan struct{}
	inflight atomic.Int64
}

// NewScheduler creates a scheduler for an environment with a display.
// Its clock advances on every Tick.
func NewScheduler() *Scheduler {
	return &Scheduler{
		interactive: true,
		pendingSet:  make(map[Deferred]struct{}),
		wake:        make(chan struct{}, 1),
	}
}

// NewHeadless creates a scheduler for an environment without a display.
// Its clock stays at frame zero and Tick does nothing.
func NewHeadless() *Scheduler {
	s := NewScheduler()
	s.interactive = false
	return s
}

// Interactive reports whether the scheduler is driven by display refreshes.
func (s *Scheduler) Interactive() bool {
	return s.interactive
}

// Now returns the current frame stamp.
func (s *Scheduler) Now() Stamp {
	return s.now
}

// Tick advances the clock to now, increments the frame index, then releases
// every deferred instance with ReasonDeferredNextFrame and empties the set.
func (s *Scheduler) Tick(now time.Duration) {
	if !s.interactive {
		return
	}
	s.now.Time = now
	s.now.Frame++

	if len(s.pending) == 0 {
		return
	}
	pending := s.pending
	s.pending = nil
	clear(s.pendingSet)

	for _, d := range pending {
		d.Release(ReasonDeferredNextFrame)
	}
}

// Defer adds d to the pending set. Adding a member twice keeps its
// first position.
func (s *Scheduler) Defer(d Deferred) {
	if _, ok := s.pendingSet[d]; ok {
		return
	}
	s.pendingSet[d] = struct{}{}
	s.pending = append(s.pending, d)
}

// Cancel removes d from the pending set. It reports whether d was a member.
func (s *Scheduler) Cancel(d Deferred) bool {
	if _, ok := s.pendingSet[d]; !ok {
		return false
	}
	delete(s.pendingSet, d)
	for i, p := range s.pending {
		if p == d {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			break
		}
	}
	return true
}

// IsPending reports whether d is waiting for the next tick.
func (s *Scheduler) IsPending(d Deferred) bool {
	_, ok := s.pendingSet[d]
	return ok
}

// PendingCount returns the number of deferred instances.
func (s *Scheduler) PendingCount() int {
	return len(s.pending)
}

// Post queues callback to run on the UI thread during the next Drain.
// Safe to call from any goroutine.
func (s *Scheduler) Post(callback func()) {
	if callback == nil {
		return
	}
	s.postMu.Lock()
	s.posted = append(s.posted, callback)
	s.postMu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Wake returns a channel that receives a value after callbacks are posted.
// Display links and tests use it to avoid polling.
func (s *Scheduler) Wake() <-chan struct{} {
	return s.wake
}

// HasPosted reports whether callbacks are waiting for Drain.
func (s *Scheduler) HasPosted() bool {
	s.postMu.Lock()
	defer s.postMu.Unlock()
	return len(s.posted) > 0
}

// Drain runs the callbacks posted so far and returns how many ran.
// Callbacks posted while draining wait for the next Drain.
func (s *Scheduler) Drain() int {
	s.postMu.Lock()
	callbacks := s.posted
	s.posted = nil
	s.postMu.Unlock()

	for _, callback := range callbacks {
		callback()
	}
	return len(callbacks)
}

// Go runs work on its own goroutine and posts the callback it returns back
// to the UI thread. The scheduler counts the goroutine as in flight until
// the callback is posted.
func (s *Scheduler) Go(work func() func()) {
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Add(-1)
		s.Post(work())
	}()
}

// Busy reports whether work started with Go is still running or callbacks
// are waiting for Drain.
func (s *Scheduler) Busy() bool {
	return s.inflight.Load() > 0 || s.HasPosted()
}
