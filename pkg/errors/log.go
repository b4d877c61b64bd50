package errors

import (
	"log/slog"
	"os"
)

// LogHandler is an ErrorHandler that logs errors through slog.
type LogHandler struct {
	// Verbose enables detailed output including stack traces.
	Verbose bool
	// Logger receives the records. Nil logs to stderr with a text handler.
	Logger *slog.Logger
}

func (h *LogHandler) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stderr, nil))
}

// HandleError logs a LifecycleError.
func (h *LogHandler) HandleError(err *LifecycleError) {
	if err == nil {
		return
	}
	attrs := []any{"op", err.Op, "kind", err.Kind.String(), "error", err.Err}
	if err.InstanceID != 0 {
		attrs = append(attrs, "instance", err.InstanceID, "frame", err.Frame)
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Error("lifecycle error", attrs...)
}

// HandlePanic logs a PanicError.
func (h *LogHandler) HandlePanic(err *PanicError) {
	if err == nil {
		return
	}
	attrs := []any{"value", err.Value}
	if err.Op != "" {
		attrs = append(attrs, "op", err.Op)
	}
	if h.Verbose && err.StackTrace != "" {
		attrs = append(attrs, "stack", err.StackTrace)
	}
	h.logger().Error("lifecycle panic", attrs...)
}
