package frame

import (
	"context"
	"time"
)

// DefaultRefreshRate is the refresh rate used when none is configured.
const DefaultRefreshRate = 60

// DisplayLink calls OnFrame once per display refresh.
//
// The callback receives the time elapsed since Run started. Callbacks never
// overlap: the goroutine that calls Run is the UI thread for as long as the
// link is running.
type DisplayLink struct {
	// Interval is the time between refreshes.
	Interval time.Duration
	// OnFrame is called for every refresh.
	OnFrame func(now time.Duration)
}

// NewDisplayLink creates a display link refreshing refreshHz times per second.
// A non-positive rate selects DefaultRefreshRate.
func NewDisplayLink(refreshHz float64, onFrame func(now time.Duration)) *DisplayLink {
	if refreshHz <= 0 {
		refreshHz = DefaultRefreshRate
	}
	return &DisplayLink{
		Interval: time.Duration(float64(time.Second) / refreshHz),
		OnFrame:  onFrame,
	}
}

// Run drives OnFrame until ctx is cancelled and returns ctx.Err().
func (d *DisplayLink) Run(ctx context.Context) error {
	interval := d.Interval
	if interval <= 0 {
		interval = time.Second / DefaultRefreshRate
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if d.OnFrame != nil {
				d.OnFrame(Since(start))
			}
		}
	}
}
