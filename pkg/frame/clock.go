package frame

import "time"

// Clock is the wall-time source display links measure frame times against.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

var clock Clock = systemClock{}

// SetClock installs c as the source of frame times and returns the clock it
// replaced. A nil c reinstalls the system clock.
func SetClock(c Clock) Clock {
	prev := clock
	if c == nil {
		c = systemClock{}
	}
	clock = c
	return prev
}

// Now returns the time of the installed clock.
func Now() time.Time { return clock.Now() }

// Since returns the frame time elapsed since start on the installed clock.
// It never goes negative, so a clock set backwards cannot rewind a
// scheduler.
func Since(start time.Time) time.Duration {
	if d := Now().Sub(start); d > 0 {
		return d
	}
	return 0
}
