package effect

import "github.com/go-drift/lifecycle/pkg/core"

// Options configures a lifecycle controller.
type Options struct {
	// Moment selects when the mount step runs. Defaults to core.MomentEffect.
	Moment core.Moment
	// UseDigestProps compares dependencies by structural digest. When false,
	// each value is compared by identity.
	UseDigestProps bool
	// Debounce collapses an unmount and remount within one frame into a no-op.
	Debounce bool
	// Observer, if set, receives every lifecycle event.
	Observer Observer
}

// DefaultOptions returns the options used when none are given: the effect
// moment, digested dependencies and debouncing.
func DefaultOptions() Options {
	return Options{
		Moment:         core.MomentEffect,
		UseDigestProps: true,
		Debounce:       true,
	}
}

// Option modifies Options.
type Option func(*Options)

// WithMoment selects the scheduling moment.
func WithMoment(m core.Moment) Option {
	return func(o *Options) { o.Moment = m }
}

// WithDigestProps enables or disables dependency digesting.
func WithDigestProps(enabled bool) Option {
	return func(o *Options) { o.UseDigestProps = enabled }
}

// WithDebounce enables or disables same-frame remount collapsing.
func WithDebounce(enabled bool) Option {
	return func(o *Options) { o.Debounce = enabled }
}

// WithObserver installs an event observer.
func WithObserver(obs Observer) Option {
	return func(o *Options) { o.Observer = obs }
}

// WithOptions replaces every option with opts.
func WithOptions(opts Options) Option {
	return func(o *Options) { *o = opts }
}

func buildOptions(opts []Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
