package frame

import (
	"context"
	"sync"
	"testing"
	"time"
)

type recordingDeferred struct {
	name    string
	log     *[]string
	reasons []string
}

func (r *recordingDeferred) Release(reason string) {
	r.reasons = append(r.reasons, reason)
	*r.log = append(*r.log, r.name)
}

func TestScheduler_TickAdvancesClock(t *testing.T) {
	s := NewScheduler()
	if got := s.Now(); got.Frame != 0 || got.Time != 0 {
		t.Fatalf("fresh scheduler stamp = %+v, want zero", got)
	}

	s.Tick(16 * time.Millisecond)
	s.Tick(33 * time.Millisecond)

	got := s.Now()
	if got.Frame != 2 {
		t.Errorf("Frame = %d, want 2", got.Frame)
	}
	if got.Time != 33*time.Millisecond {
		t.Errorf("Time = %v, want 33ms", got.Time)
	}
}

func TestScheduler_HeadlessNeverTicks(t *testing.T) {
	s := NewHeadless()
	var log []string
	d := &recordingDeferred{name: "a", log: &log}
	s.Defer(d)

	s.Tick(time.Second)

	if s.Interactive() {
		t.Error("headless scheduler should not be interactive")
	}
	if got := s.Now(); got != (Stamp{}) {
		t.Errorf("headless stamp = %+v, want zero", got)
	}
	if len(log) != 0 {
		t.Errorf("headless tick released %v", log)
	}
}

func TestScheduler_TickReleasesPendingInOrder(t *testing.T) {
	s := NewScheduler()
	var log []string
	a := &recordingDeferred{name: "a", log: &log}
	b := &recordingDeferred{name: "b", log: &log}
	c := &recordingDeferred{name: "c", log: &log}

	s.Defer(a)
	s.Defer(b)
	s.Defer(a)
	s.Defer(c)
	if !s.Cancel(b) {
		t.Error("Cancel(b) = false, want true")
	}
	if s.Cancel(b) {
		t.Error("second Cancel(b) = true, want false")
	}

	s.Tick(16 * time.Millisecond)

	if len(log) != 2 || log[0] != "a" || log[1] != "c" {
		t.Errorf("released %v, want [a c]", log)
	}
	if a.reasons[0] != ReasonDeferredNextFrame {
		t.Errorf("reason = %q, want %q", a.reasons[0], ReasonDeferredNextFrame)
	}
	if s.PendingCount() != 0 || s.IsPending(a) {
		t.Error("pending set should be empty after tick")
	}

	s.Tick(33 * time.Millisecond)
	if len(log) != 2 {
		t.Errorf("second tick released again: %v", log)
	}
}

func TestScheduler_PostAndDrain(t *testing.T) {
	s := NewScheduler()
	var ran []int

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Post(func() { ran = append(ran, 1) })
		}()
	}
	wg.Wait()

	select {
	case <-s.Wake():
	default:
		t.Fatal("expected a wake signal after Post")
	}
	if !s.HasPosted() {
		t.Fatal("HasPosted() = false after Post")
	}
	if n := s.Drain(); n != 3 {
		t.Errorf("Drain() = %d, want 3", n)
	}
	if len(ran) != 3 {
		t.Errorf("ran %d callbacks, want 3", len(ran))
	}
	if s.Drain() != 0 {
		t.Error("second Drain should run nothing")
	}
}

func TestDisplayLink_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	frames := 0
	var last time.Duration
	link := NewDisplayLink(1000, func(now time.Duration) {
		if now < last {
			t.Errorf("frame time went backwards: %v < %v", now, last)
		}
		last = now
		frames++
		if frames == 3 {
			cancel()
		}
	})

	if err := link.Run(ctx); err != context.Canceled {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	if frames < 3 {
		t.Errorf("frames = %d, want at least 3", frames)
	}
}

func TestNewDisplayLink_DefaultRate(t *testing.T) {
	link := NewDisplayLink(0, nil)
	if want := time.Second / DefaultRefreshRate; link.Interval != want {
		t.Errorf("Interval = %v, want %v", link.Interval, want)
	}
}

func TestScheduler_DeferAndCancel(t *testing.T) {
	s := NewScheduler()
	var log []string
	a := &recordingDeferred{name: "a", log: &log}
	b := &recordingDeferred{name: "b", log: &log}

	s.Defer(a)
	s.Defer(b)
	s.Defer(a)
	if n := s.PendingCount(); n != 2 {
		t.Fatalf("PendingCount() = %d, want 2", n)
	}
	if !s.Cancel(a) {
		t.Error("Cancel(a) = false, want true")
	}
	if s.Cancel(a) {
		t.Error("second Cancel(a) = true, want false")
	}
	if s.IsPending(a) || !s.IsPending(b) {
		t.Errorf("IsPending(a)=%v IsPending(b)=%v, want false true", s.IsPending(a), s.IsPending(b))
	}

	s.Tick(time.Millisecond)
	if len(log) != 1 || log[0] != "b" {
		t.Errorf("released %v, want [b]", log)
	}
}

func TestScheduler_GoTracksInflight(t *testing.T) {
	s := NewHeadless()
	release := make(chan struct{})
	ran := false

	s.Go(func() func() {
		<-release
		return func() { ran = true }
	})
	if !s.Busy() {
		t.Fatal("Busy() = false while work is in flight")
	}

	close(release)
	deadline := time.After(time.Second)
	for !s.HasPosted() {
		select {
		case <-s.Wake():
		case <-deadline:
			t.Fatal("work never posted its callback")
		case <-time.After(time.Millisecond):
		}
	}
	s.Drain()
	if !ran {
		t.Error("posted callback did not run on Drain")
	}
	// The in-flight count drops right after the post; allow the goroutine
	// to finish.
	for s.Busy() {
		select {
		case <-deadline:
			t.Fatal("Busy() stayed true after Drain")
		case <-time.After(time.Millisecond):
		}
	}
}
