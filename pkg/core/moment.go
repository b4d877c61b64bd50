package core

import "github.com/go-drift/lifecycle/pkg/errors"

// Moment selects the point of the render/commit/paint cycle at which an
// effect's setup runs.
type Moment int

const (
	// MomentEffect runs setup after the frame has painted. This is the default.
	MomentEffect Moment = iota
	// MomentLayoutEffect runs setup right after commit, before paint.
	MomentLayoutEffect
	// MomentMemo runs setup inline, during the render pass.
	MomentMemo
)

func (m Moment) String() string {
	switch m {
	case MomentMemo:
		return "memo"
	case MomentLayoutEffect:
		return "layoutEffect"
	default:
		return "effect"
	}
}

// ParseMoment converts a configuration name into a Moment.
// The empty string selects MomentEffect.
func ParseMoment(name string) (Moment, error) {
	switch name {
	case "", "effect":
		return MomentEffect, nil
	case "layoutEffect":
		return MomentLayoutEffect, nil
	case "memo":
		return MomentMemo, nil
	default:
		return MomentEffect, errors.Unknown("core.ParseMoment", "moment", name)
	}
}
