package effect

import (
	"io"
	"log/slog"

	"github.com/go-drift/lifecycle/pkg/frame"
)

// Release reasons.
const (
	ReasonUnmount           = "unmount"
	ReasonDepsChanged       = "deps-changed"
	ReasonRemount           = "remount"
	ReasonDeferredNextFrame = frame.ReasonDeferredNextFrame
)

// EventKind identifies a lifecycle transition.
type EventKind int

const (
	// EventMount is a mount step that starts the coroutine.
	EventMount EventKind = iota
	// EventCollapse is a same-frame remount that reused live resources.
	EventCollapse
	// EventAcquire is a resource appended to the instance.
	EventAcquire
	// EventSuspend is a coroutine waiting on an asynchronous step.
	EventSuspend
	// EventDiscard is a step dropped because its run went stale.
	EventDiscard
	// EventComplete is a coroutine that finished.
	EventComplete
	// EventFail is a coroutine that ended with an error.
	EventFail
	// EventDefer is an unmount deferred to the next frame.
	EventDefer
	// EventRelease is an instance whose resources were released.
	EventRelease
)

func (k EventKind) String() string {
	switch k {
	case EventMount:
		return "mount"
	case EventCollapse:
		return "collapse"
	case EventAcquire:
		return "acquire"
	case EventSuspend:
		return "suspend"
	case EventDiscard:
		return "discard"
	case EventComplete:
		return "complete"
	case EventFail:
		return "fail"
	case EventDefer:
		return "defer"
	case EventRelease:
		return "release"
	default:
		return "unknown"
	}
}

// Event describes one lifecycle transition of an instance.
type Event struct {
	Kind     EventKind
	Instance uint64
	MountID  int
	Stamp    frame.Stamp
	// Reason is set on EventRelease.
	Reason string
	// Count is the number of resources acquired or released.
	Count int
	// Err is set on EventFail.
	Err error
}

// Observer receives lifecycle events on the UI thread.
type Observer func(Event)

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

// SetLogger replaces the logger used for debug-level lifecycle records.
// Returns the previous logger so callers can restore it during cleanup.
func SetLogger(l *slog.Logger) *slog.Logger {
	prev := logger
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	logger = l
	return prev
}
