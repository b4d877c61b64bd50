package core

// Ref is a mutable reference cell that survives rebuilds. Unlike Managed
// values, writing a Ref never schedules a rebuild.
//
// Ref is NOT thread-safe. It must only be accessed from the UI thread.
type Ref[T any] struct {
	value T
}

// NewRef creates a reference cell holding initial.
func NewRef[T any](initial T) *Ref[T] {
	return &Ref[T]{value: initial}
}

// Value returns the current value.
func (r *Ref[T]) Value() T {
	return r.value
}

// Set replaces the value.
func (r *Ref[T]) Set(value T) {
	r.value = value
}

// UseRef returns the component's reference cell for this hook position,
// creating it with initial on the first build.
func UseRef[T any](c *Component, initial T) *Ref[T] {
	return c.slot(func() any { return NewRef(initial) }).(*Ref[T])
}

// Managed holds a value and triggers rebuilds when it changes.
// It is tied to the component that created it.
//
// Managed is NOT thread-safe. It must only be accessed from the UI thread.
// To update from a background goroutine, post through the owner's scheduler.
type Managed[T any] struct {
	c     *Component
	value T
}

// UseManaged returns the component's managed value for this hook position,
// creating it with initial on the first build.
func UseManaged[T any](c *Component, initial T) *Managed[T] {
	return c.slot(func() any { return &Managed[T]{c: c, value: initial} }).(*Managed[T])
}

// Value returns the current value.
func (m *Managed[T]) Value() T {
	return m.value
}

// Set updates the value and schedules a rebuild.
func (m *Managed[T]) Set(value T) {
	m.value = value
	m.c.SetState(nil)
}

// Update applies a transformation to the current value and schedules a rebuild.
func (m *Managed[T]) Update(transform func(T) T) {
	m.value = transform(m.value)
	m.c.SetState(nil)
}
