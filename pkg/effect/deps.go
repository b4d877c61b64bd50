package effect

import (
	"reflect"

	"github.com/go-drift/lifecycle/pkg/digest"
)

// Deps is the dependency argument of a coroutine binding: either an ordered
// list of values, or Always.
type Deps struct {
	values []any
	always bool
}

// Always restarts the coroutine on every render.
var Always = Deps{always: true}

// On returns an explicit dependency list. On() with no values never
// restarts the coroutine after its first mount.
func On(values ...any) Deps {
	return Deps{values: values}
}

// IsAlways reports whether d is the Always sentinel.
func (d Deps) IsAlways() bool {
	return d.always
}

// Values returns the explicit dependency values.
func (d Deps) Values() []any {
	return d.values
}

// fingerprint is the comparable form of one render's dependencies.
type fingerprint struct {
	always bool
	digest uint64
	values []any
}

// resolver turns each render's Deps into a generation id. The id changes
// exactly when the dependencies are considered changed.
type resolver struct {
	useDigest bool
	seen      bool
	prev      fingerprint
	gen       int64
}

func (r *resolver) resolve(d Deps) int64 {
	next := fingerprint{always: d.always}
	if !d.always && len(d.values) > 0 {
		if r.useDigest {
			next.digest = digest.Of(d.values...)
		} else {
			next.values = append([]any(nil), d.values...)
		}
	}
	if !r.seen || r.changed(next) {
		r.gen++
	}
	r.seen = true
	r.prev = next
	return r.gen
}

func (r *resolver) changed(next fingerprint) bool {
	prev := r.prev
	if next.always || prev.always {
		return true
	}
	if r.useDigest {
		return prev.digest != next.digest
	}
	if len(prev.values) != len(next.values) {
		return true
	}
	for i := range next.values {
		if !sameValue(prev.values[i], next.values[i]) {
			return true
		}
	}
	return false
}

// sameValue compares dependency values by identity: comparable values with
// ==, slices, maps and funcs by the address they refer to.
func sameValue(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return a == b
	}
	switch va.Kind() {
	case reflect.Slice:
		return va.Pointer() == vb.Pointer() && va.Len() == vb.Len()
	case reflect.Map, reflect.Func:
		return va.Pointer() == vb.Pointer()
	default:
		return false
	}
}
