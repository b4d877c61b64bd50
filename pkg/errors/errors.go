// Package errors provides structured error handling for the lifecycle framework.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindInvalidState indicates a violated lifecycle invariant.
	KindInvalidState
	// KindCoroutine indicates a coroutine that ended with an error.
	KindCoroutine
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindUnsupported indicates an input of an unrecognized kind.
	KindUnsupported
	// KindConfig indicates a configuration or scenario loading error.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidState:
		return "invalid-state"
	case KindCoroutine:
		return "coroutine"
	case KindPanic:
		return "panic"
	case KindUnsupported:
		return "unsupported"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

var (
	// ErrUnexpectedRepeatedUnmount is raised when more than two mount/unmount
	// pairs of one generation collapse into a single frame.
	ErrUnexpectedRepeatedUnmount = errors.New("unexpected repeated unmount")

	// ErrUnknownKind is returned by collaborators handed an input kind they
	// do not recognize.
	ErrUnknownKind = errors.New("unknown kind")
)

// LifecycleError represents a structured error raised by an effect instance
// or one of its collaborators.
type LifecycleError struct {
	// Op is the operation that failed (e.g., "effect.Unmount").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// Err is the underlying error.
	Err error
	// InstanceID identifies the effect instance, zero if not applicable.
	InstanceID uint64
	// Frame is the frame index at the time of the error.
	Frame uint64
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *LifecycleError) Error() string {
	if e.InstanceID != 0 {
		return fmt.Sprintf("%s [%s] instance=%d frame=%d: %v", e.Op, e.Kind, e.InstanceID, e.Frame, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *LifecycleError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "effect.Go").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// Unknown wraps ErrUnknownKind with the offending name and the operation
// that rejected it.
func Unknown(op, what, name string) *LifecycleError {
	return &LifecycleError{
		Op:   op,
		Kind: KindUnsupported,
		Err:  fmt.Errorf("%w %s %q", ErrUnknownKind, what, name),
	}
}

// ErrorHandler receives errors reported by the lifecycle framework.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *LifecycleError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
}

// Is reports whether any error in err's tree matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's tree that matches target.
func As(err error, target any) bool { return errors.As(err, target) }
