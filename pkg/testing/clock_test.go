package testing

import (
	"testing"
	"time"

	"github.com/go-drift/lifecycle/pkg/frame"
)

func TestFakeClock_Advance(t *testing.T) {
	clk := NewFakeClock()
	start := clk.Now()

	clk.Advance(100 * time.Millisecond)
	elapsed := clk.Now().Sub(start)

	if elapsed != 100*time.Millisecond {
		t.Errorf("expected 100ms elapsed, got %v", elapsed)
	}
	if clk.Elapsed() != 100*time.Millisecond {
		t.Errorf("expected Elapsed 100ms, got %v", clk.Elapsed())
	}
}

func TestFakeClock_Set(t *testing.T) {
	clk := NewFakeClock()
	target := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	clk.Set(target)
	if !clk.Now().Equal(target) {
		t.Errorf("expected %v, got %v", target, clk.Now())
	}
}

func TestTester_InstallsClock(t *testing.T) {
	tester := NewTester()
	if frame.Now() != tester.Clock().Now() {
		t.Fatal("expected frame clock to be the tester's fake clock")
	}

	tester.Clock().Advance(500 * time.Millisecond)
	if frame.Now().Sub(Epoch) != 500*time.Millisecond {
		t.Error("clock advancement not reflected in frame.Now")
	}

	tester.Cleanup()
	if frame.Now().Equal(tester.Clock().Now()) {
		t.Error("expected Cleanup to restore the previous clock")
	}
}
