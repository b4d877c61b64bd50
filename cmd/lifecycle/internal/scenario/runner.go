package scenario

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/go-drift/lifecycle/cmd/lifecycle/internal/config"
	"github.com/go-drift/lifecycle/pkg/core"
	"github.com/go-drift/lifecycle/pkg/effect"
	lcerrors "github.com/go-drift/lifecycle/pkg/errors"
	"github.com/go-drift/lifecycle/pkg/frame"
)

// DefaultSettleTimeout bounds a settle action when Options leaves it unset.
const DefaultSettleTimeout = 2 * time.Second

// Options configures a run.
type Options struct {
	// Config supplies effect defaults, the refresh rate and strict mode.
	// Nil uses the built-in defaults.
	Config *config.Resolved
	// RunID overrides the scenario's run id.
	RunID string
	// SettleTimeout bounds each settle action.
	SettleTimeout time.Duration
	// Realtime paces frame actions with a display link instead of
	// advancing a simulated clock.
	Realtime bool
	// Logger receives reported lifecycle errors. Nil discards them.
	Logger *slog.Logger
}

// Entry is one line of a run's trace.
type Entry struct {
	Seq       int    `json:"seq"`
	Frame     uint64 `json:"frame"`
	Component string `json:"component"`
	Event     string `json:"event"`
	Mount     int    `json:"mount,omitempty"`
	Resource  string `json:"resource,omitempty"`
	Reason    string `json:"reason,omitempty"`
	Count     int    `json:"count,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Result is the outcome of a run.
type Result struct {
	RunID    string   `json:"run_id"`
	Scenario string   `json:"scenario"`
	// Project and Module identify the Go module the run was configured
	// from. Module is empty outside a module.
	Project  string   `json:"project"`
	Module   string   `json:"module,omitempty"`
	Frames   uint64   `json:"frames"`
	Trace    []Entry  `json:"trace"`
	Released []string `json:"released"`
	Live     []string `json:"live"`
	Fatal    string   `json:"fatal,omitempty"`
	Failures []string `json:"failures,omitempty"`
}

// Passed reports whether every expectation held.
func (r *Result) Passed() bool {
	return len(r.Failures) == 0
}

// host is one declared component and its binding state.
type host struct {
	decl ComponentSpec
	deps effect.Deps
	opts []effect.Option
	comp *core.Component
}

type runner struct {
	s     *Scenario
	opts  Options
	cfg   *config.Resolved
	sched *frame.Scheduler
	owner *core.Owner
	hosts map[string]*host
	now   time.Duration

	result *Result

	// mu guards acquired, which async steps append to off the UI thread.
	mu       sync.Mutex
	acquired []string
}

// Run executes s and returns its trace. An invalid-state violation stops
// the script and is recorded in Result.Fatal rather than returned. The
// error is non-nil only for failures of the run itself, such as an unknown
// moment name or a cancelled context.
func Run(ctx context.Context, s *Scenario, opts Options) (*Result, error) {
	cfg := opts.Config
	if cfg == nil {
		var err error
		if cfg, err = (&config.Config{}).Resolve(""); err != nil {
			return nil, err
		}
	}
	if opts.SettleTimeout <= 0 {
		opts.SettleTimeout = DefaultSettleTimeout
	}

	runID := opts.RunID
	if runID == "" {
		runID = s.RunID
	}
	if runID == "" {
		runID = uuid.Must(uuid.NewV7()).String()
	}

	r := &runner{
		s:      s,
		opts:   opts,
		cfg:    cfg,
		hosts:  make(map[string]*host, len(s.Components)),
		result: &Result{
			RunID:    runID,
			Scenario: s.Name,
			Project:  cfg.ProjectName,
			Module:   cfg.ModulePath,
		},
	}
	if s.Headless || cfg.Headless {
		r.sched = frame.NewHeadless()
	} else {
		r.sched = frame.NewScheduler()
	}
	r.owner = core.NewOwner(r.sched)
	r.owner.StrictMode = cfg.Strict
	if s.Strict != nil {
		r.owner.StrictMode = *s.Strict
	}

	for _, decl := range s.Components {
		h, err := r.newHost(decl)
		if err != nil {
			return nil, err
		}
		r.hosts[decl.Name] = h
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger = logger.With("project", cfg.ProjectName, "scenario", s.Name, "run", runID)
	prev := lcerrors.SetHandler(&lcerrors.LogHandler{Logger: logger})
	defer lcerrors.SetHandler(prev)

	for i, a := range s.Script {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fatal, err := r.step(ctx, a)
		if err != nil {
			return nil, fmt.Errorf("script[%d]: %w", i, err)
		}
		if fatal != nil {
			r.result.Fatal = fmt.Sprintf("%s: %v", fatal.Kind, fatal.Err)
			break
		}
	}

	r.finish()
	return r.result, nil
}

func (r *runner) newHost(decl ComponentSpec) (*host, error) {
	opts := r.cfg.Effects
	if decl.Moment != "" {
		m, err := core.ParseMoment(decl.Moment)
		if err != nil {
			return nil, fmt.Errorf("component %q: %w", decl.Name, err)
		}
		opts.Moment = m
	}
	if decl.Debounce != nil {
		opts.Debounce = *decl.Debounce
	}
	if decl.UseDigestProps != nil {
		opts.UseDigestProps = *decl.UseDigestProps
	}

	h := &host{decl: decl}
	name := decl.Name
	opts.Observer = func(e effect.Event) { r.observe(name, e) }
	h.opts = []effect.Option{effect.WithOptions(opts)}
	if decl.Always {
		h.deps = effect.Always
	} else {
		h.deps = effect.On(decl.Deps...)
	}
	return h, nil
}

// step runs one action. It returns the invalid-state error that aborted
// the action, if any.
func (r *runner) step(ctx context.Context, a Action) (fatal *lcerrors.LifecycleError, err error) {
	defer func() {
		if v := recover(); v != nil {
			le, ok := v.(*lcerrors.LifecycleError)
			if !ok || le.Kind != lcerrors.KindInvalidState {
				panic(v)
			}
			fatal = le
		}
	}()

	switch {
	case a.Mount != "":
		h := r.hosts[a.Mount]
		if h.comp != nil && !h.comp.IsUnmounted() {
			return nil, fmt.Errorf("component %q is already mounted", a.Mount)
		}
		h.comp = r.owner.Mount(r.render(h))
		r.owner.Flush()

	case a.Unmount != "":
		h := r.hosts[a.Unmount]
		if h.comp == nil {
			return nil, fmt.Errorf("component %q is not mounted", a.Unmount)
		}
		r.owner.Unmount(h.comp)

	case a.Remount != "":
		h := r.hosts[a.Remount]
		if h.comp == nil || h.comp.IsUnmounted() {
			return nil, fmt.Errorf("component %q is not mounted", a.Remount)
		}
		r.owner.Remount(h.comp)

	case a.Render != "":
		h := r.hosts[a.Render]
		if h.comp == nil || h.comp.IsUnmounted() {
			return nil, fmt.Errorf("component %q is not mounted", a.Render)
		}
		if a.Deps != nil {
			h.deps = effect.On(a.Deps...)
		}
		h.comp.MarkNeedsBuild()
		r.owner.Flush()

	case a.Flush:
		r.owner.Flush()

	case a.Frame > 0:
		return nil, r.frames(ctx, a.Frame)

	case a.Settle:
		return nil, r.settle()
	}
	return nil, nil
}

func (r *runner) render(h *host) core.RenderFunc {
	return func(c *core.Component) {
		effect.UseCoroutine(c, func(*core.Ref[struct{}]) effect.Coroutine {
			return r.coroutine(h.decl)
		}, h.deps, h.opts...)
	}
}

func (r *runner) interval() time.Duration {
	return time.Second / time.Duration(r.cfg.RefreshHz)
}

// frames advances n frames, either on a simulated clock or paced by a
// display link.
func (r *runner) frames(ctx context.Context, n int) error {
	if !r.opts.Realtime {
		for i := 0; i < n; i++ {
			r.now += r.interval()
			r.owner.Frame(r.now)
		}
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	base := r.now
	count := 0
	link := frame.NewDisplayLink(float64(r.cfg.RefreshHz), func(now time.Duration) {
		r.now = base + now
		r.owner.Frame(r.now)
		count++
		if count == n {
			cancel()
		}
	})
	if err := link.Run(ctx); err != nil && count < n {
		return err
	}
	return nil
}

// settle flushes until no async step is in flight.
func (r *runner) settle() error {
	if err := r.owner.Settle(r.opts.SettleTimeout); err != nil {
		return fmt.Errorf("settle: %w after %v", err, r.opts.SettleTimeout)
	}
	return nil
}

// coroutine builds the scripted coroutine for one mount step.
func (r *runner) coroutine(decl ComponentSpec) effect.Coroutine {
	steps := make([]func(any) effect.Step, 0, len(decl.Steps))
	for _, st := range decl.Steps {
		switch {
		case st.Yield != nil:
			names := st.Yield
			steps = append(steps, func(any) effect.Step {
				return r.yield(decl.Name, names)
			})
		case st.Async != nil:
			names := st.Async
			steps = append(steps, func(any) effect.Step {
				return effect.Async(func(ctx context.Context) effect.Step {
					return r.yield(decl.Name, names)
				})
			})
		case st.Pass:
			steps = append(steps, func(any) effect.Step { return effect.Pass() })
		case st.Fail != "":
			msg := st.Fail
			steps = append(steps, func(any) effect.Step { return effect.Fail(errors.New(msg)) })
		case st.Panic != "":
			msg := st.Panic
			steps = append(steps, func(any) effect.Step { panic(msg) })
		}
	}
	return effect.Sequence(steps...)
}

func (r *runner) yield(component string, names []string) effect.Step {
	ds := make([]effect.Destroyable, len(names))
	for i, name := range names {
		label := component + "/" + name
		r.mu.Lock()
		r.acquired = append(r.acquired, label)
		r.mu.Unlock()
		ds[i] = effect.Value(label, func() { r.released(component, name, label) })
	}
	if len(ds) == 1 {
		return effect.Yield(ds[0])
	}
	return effect.YieldAll(ds...)
}

func (r *runner) released(component, name, label string) {
	r.result.Released = append(r.result.Released, label)
	r.append(Entry{
		Frame:     r.sched.Now().Frame,
		Component: component,
		Event:     "destroy",
		Resource:  name,
	})
}

func (r *runner) observe(component string, e effect.Event) {
	entry := Entry{
		Frame:     e.Stamp.Frame,
		Component: component,
		Event:     e.Kind.String(),
		Mount:     e.MountID,
		Reason:    e.Reason,
		Count:     e.Count,
	}
	if e.Err != nil {
		entry.Error = e.Err.Error()
	}
	r.append(entry)
}

func (r *runner) append(e Entry) {
	e.Seq = len(r.result.Trace)
	r.result.Trace = append(r.result.Trace, e)
}

// finish computes the live set and checks expectations.
func (r *runner) finish() {
	res := r.result
	res.Frames = r.sched.Now().Frame

	r.mu.Lock()
	acquired := slices.Clone(r.acquired)
	r.mu.Unlock()
	released := make(map[string]int)
	for _, label := range res.Released {
		released[label]++
	}
	res.Live = []string{}
	for _, label := range acquired {
		if released[label] > 0 {
			released[label]--
			continue
		}
		res.Live = append(res.Live, label)
	}
	if res.Released == nil {
		res.Released = []string{}
	}

	exp := r.s.Expect
	if exp == nil {
		return
	}
	if exp.Released != nil && !slices.Equal(exp.Released, res.Released) {
		res.Failures = append(res.Failures, fmt.Sprintf("released: expected %v, got %v", exp.Released, res.Released))
	}
	if exp.Live != nil && !slices.Equal(exp.Live, res.Live) {
		res.Failures = append(res.Failures, fmt.Sprintf("live: expected %v, got %v", exp.Live, res.Live))
	}
	if exp.LiveNone && len(res.Live) > 0 {
		res.Failures = append(res.Failures, fmt.Sprintf("live: expected none, got %v", res.Live))
	}
	if exp.Fatal != (res.Fatal != "") {
		if exp.Fatal {
			res.Failures = append(res.Failures, "fatal: expected an invalid-state abort")
		} else {
			res.Failures = append(res.Failures, "fatal: unexpected abort: "+res.Fatal)
		}
	}
}
