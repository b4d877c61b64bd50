package effect

type destroyableKind uint8

const (
	kindAction destroyableKind = iota
	kindValue
)

// Destroyable is a resource acquired by a coroutine. It is one of two
// shapes: a bare release action (see Action), or a value paired with the
// action that releases it (see Value). The value is handed back to the
// coroutine on its next resumption.
type Destroyable struct {
	kind    destroyableKind
	action  func()
	value   any
	release func()
}

// Disposable is implemented by controllers and services that own resources.
type Disposable interface {
	Dispose()
}

// Action wraps a release action with no payload.
func Action(release func()) Destroyable {
	return Destroyable{kind: kindAction, action: release}
}

// Value wraps a payload and the action that releases it.
func Value(value any, release func()) Destroyable {
	return Destroyable{kind: kindValue, value: value, release: release}
}

// FromDisposable wraps d as a value resource released by d.Dispose.
func FromDisposable[D Disposable](d D) Destroyable {
	return Value(d, d.Dispose)
}

// IsValue reports whether d carries a payload.
func (d Destroyable) IsValue() bool {
	return d.kind == kindValue
}

// Payload returns the wrapped value, or nil for a bare action.
func (d Destroyable) Payload() any {
	if d.kind == kindValue {
		return d.value
	}
	return nil
}

// Destroy runs the release action.
func (d Destroyable) Destroy() {
	switch d.kind {
	case kindValue:
		if d.release != nil {
			d.release()
		}
	default:
		if d.action != nil {
			d.action()
		}
	}
}
