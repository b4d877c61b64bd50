package effect

import "context"

type stepKind uint8

const (
	stepYield stepKind = iota
	stepDone
	stepAsync
	stepFail
)

// Step is the result of resuming a coroutine once.
//
// A step either yields resources (none, one, or a sequence), completes the
// coroutine, fails it, or defers to an asynchronous computation whose own
// Step is processed when it arrives.
type Step struct {
	kind      stepKind
	resources []Destroyable
	seq       bool
	async     func(ctx context.Context) Step
	err       error
}

// Yield acquires a single resource. The next resumption receives its
// payload.
func Yield(d Destroyable) Step {
	return Step{kind: stepYield, resources: []Destroyable{d}}
}

// YieldAll acquires a sequence of resources, in order. The next resumption
// receives a []any holding each resource's payload.
func YieldAll(ds ...Destroyable) Step {
	return Step{kind: stepYield, resources: ds, seq: true}
}

// Pass yields nothing. The next resumption receives nil.
func Pass() Step {
	return Step{kind: stepYield}
}

// Done completes the coroutine.
func Done() Step {
	return Step{kind: stepDone}
}

// Fail ends the coroutine with err. Resources acquired by earlier steps
// stay acquired until the instance is released.
func Fail(err error) Step {
	return Step{kind: stepFail, err: err}
}

// Async defers the step to fn, which runs on its own goroutine. The Step it
// returns is processed on the UI thread once it arrives. ctx is cancelled
// when the owning instance is released; a result that arrives after that is
// discarded.
func Async(fn func(ctx context.Context) Step) Step {
	return Step{kind: stepAsync, async: fn}
}

// IsDone reports whether the step completes the coroutine.
func (s Step) IsDone() bool {
	return s.kind == stepDone
}

// Err returns the error of a failing step.
func (s Step) Err() error {
	return s.err
}

// Resources returns the resources the step yields.
func (s Step) Resources() []Destroyable {
	return s.resources
}

// payload returns the value fed into the next resumption.
func (s Step) payload() any {
	if s.seq {
		out := make([]any, len(s.resources))
		for i, d := range s.resources {
			out[i] = d.Payload()
		}
		return out
	}
	if len(s.resources) == 1 {
		return s.resources[0].Payload()
	}
	return nil
}

// Coroutine is a resumable resource acquisition. The driver calls Resume
// with nil first and then with the payload of the previous step, until the
// coroutine returns Done or Fail.
type Coroutine interface {
	Resume(in any) Step
}

// Stopper is implemented by coroutines that hold resources of their own
// (such as a goroutine) and must be told when the driver abandons them.
type Stopper interface {
	Stop()
}

// CoroutineFunc adapts a function to the Coroutine interface. The function
// keeps its own state between calls.
type CoroutineFunc func(in any) Step

// Resume calls f(in).
func (f CoroutineFunc) Resume(in any) Step {
	return f(in)
}

// Sequence returns a coroutine that runs steps in order, one per
// resumption, and completes after the last one.
func Sequence(steps ...func(in any) Step) Coroutine {
	next := 0
	return CoroutineFunc(func(in any) Step {
		if next >= len(steps) {
			return Done()
		}
		s := steps[next]
		next++
		return s(in)
	})
}
