package core

import "sync"

// Observable holds a value and notifies listeners when it changes.
// All methods are safe for concurrent use; listeners run on the goroutine
// that called Set.
type Observable[T any] struct {
	mu        sync.Mutex
	value     T
	equal     func(a, b T) bool
	listeners map[int]func(T)
	nextID    int
}

// NewObservable creates an observable that notifies on every Set.
func NewObservable[T any](initial T) *Observable[T] {
	return &Observable[T]{value: initial, listeners: make(map[int]func(T))}
}

// NewObservableWithEquality creates an observable that skips notification
// when equal reports the new value as unchanged.
func NewObservableWithEquality[T any](initial T, equal func(a, b T) bool) *Observable[T] {
	o := NewObservable(initial)
	o.equal = equal
	return o
}

// Value returns the current value.
func (o *Observable[T]) Value() T {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.value
}

// Set stores value and notifies listeners.
func (o *Observable[T]) Set(value T) {
	o.mu.Lock()
	if o.equal != nil && o.equal(o.value, value) {
		o.mu.Unlock()
		return
	}
	o.value = value
	listeners := make([]func(T), 0, len(o.listeners))
	for id := 0; id < o.nextID; id++ {
		if l, ok := o.listeners[id]; ok {
			listeners = append(listeners, l)
		}
	}
	o.mu.Unlock()

	for _, l := range listeners {
		l(value)
	}
}

// AddListener registers listener and returns a function that removes it.
func (o *Observable[T]) AddListener(listener func(T)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextID
	o.nextID++
	o.listeners[id] = listener
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.listeners, id)
	}
}

// ListenerCount returns the number of registered listeners.
func (o *Observable[T]) ListenerCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.listeners)
}
