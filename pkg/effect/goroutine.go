package effect

import (
	"runtime"
	"sync"
	"time"

	"github.com/go-drift/lifecycle/pkg/errors"
)

// Yielder is the handle a Go body uses to hand steps to the driver.
type Yielder struct {
	steps  chan Step
	resume chan any
	stop   chan struct{}
}

// Step hands s to the driver and blocks until the next resumption, whose
// input it returns. If the driver abandons the coroutine, Step does not
// return: the body's goroutine exits, running its deferred calls.
func (y *Yielder) Step(s Step) any {
	select {
	case y.steps <- s:
	case <-y.stop:
		runtime.Goexit()
	}
	select {
	case in := <-y.resume:
		return in
	case <-y.stop:
		runtime.Goexit()
	}
	return nil
}

// Yield acquires d and returns its payload.
func (y *Yielder) Yield(d Destroyable) any {
	return y.Step(Yield(d))
}

// YieldAll acquires ds in order and returns their payloads.
func (y *Yielder) YieldAll(ds ...Destroyable) []any {
	in, _ := y.Step(YieldAll(ds...)).([]any)
	return in
}

// goCoroutine runs a straight-line body on its own goroutine. Control is
// handed back and forth over unbuffered channels, so the body and the
// driver never run at the same time.
type goCoroutine struct {
	body     func(y *Yielder)
	y        *Yielder
	started  bool
	finished bool
	stopOnce sync.Once
}

// Go returns a coroutine backed by a goroutine running body. The body must
// not block outside of Yielder calls; blocking work belongs in an Async
// step:
//
//	effect.Go(func(y *effect.Yielder) {
//	    conn := y.Yield(effect.Value(dial(), closeConn))
//	    y.Step(effect.Async(func(ctx context.Context) effect.Step {
//	        return effect.Yield(subscribe(ctx, conn))
//	    }))
//	})
func Go(body func(y *Yielder)) Coroutine {
	return &goCoroutine{body: body}
}

func (g *goCoroutine) Resume(in any) Step {
	if g.finished {
		return Done()
	}
	if !g.started {
		g.started = true
		g.y = &Yielder{
			steps:  make(chan Step),
			resume: make(chan any),
			stop:   make(chan struct{}),
		}
		go g.run()
	} else {
		select {
		case g.y.resume <- in:
		case <-g.y.stop:
			return Done()
		}
	}

	s := <-g.y.steps
	if s.kind == stepDone || s.kind == stepFail {
		g.finished = true
	}
	return s
}

// Stop abandons the body. Its goroutine exits at its next Yielder call.
func (g *goCoroutine) Stop() {
	if !g.started {
		g.finished = true
		return
	}
	g.stopOnce.Do(func() { close(g.y.stop) })
}

func (g *goCoroutine) run() {
	final := Done()
	defer func() {
		if r := recover(); r != nil {
			final = Fail(&errors.PanicError{
				Op:         "effect.Go",
				Value:      r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
		}
		select {
		case g.y.steps <- final:
		case <-g.y.stop:
		}
	}()
	g.body(g.y)
}
