package core_test

import (
	"fmt"

	"github.com/go-drift/lifecycle/pkg/core"
)

// This example shows how to create an Observable for reactive state.
// Observable is thread-safe and can be shared across goroutines.
func ExampleObservable() {
	// Create an observable with an initial value
	counter := core.NewObservable(0)

	// Add a listener that fires when the value changes
	unsub := counter.AddListener(func(value int) {
		fmt.Printf("Counter changed to: %d\n", value)
	})

	// Update the value - this triggers all listeners
	counter.Set(5)

	// Read the current value
	current := counter.Value()
	fmt.Printf("Current value: %d\n", current)

	// Clean up when done
	unsub()

	// Output:
	// Counter changed to: 5
	// Current value: 5
}

// This example shows how to use Observable with a custom equality function.
// This is useful when you want to avoid unnecessary updates.
func ExampleNewObservableWithEquality() {
	type User struct {
		ID   int
		Name string
	}

	// Only notify listeners when the user ID changes
	user := core.NewObservableWithEquality(User{ID: 1, Name: "Alice"}, func(a, b User) bool {
		return a.ID == b.ID
	})

	user.AddListener(func(u User) {
		fmt.Printf("User changed: %s\n", u.Name)
	})

	// This won't trigger listeners because ID is the same
	user.Set(User{ID: 1, Name: "Alice Updated"})

	// This will trigger listeners because ID changed
	user.Set(User{ID: 2, Name: "Bob"})

	// Output:
	// User changed: Bob
}

// This example shows an effect registered at each moment of the render
// cycle and the order in which their setups run.
func ExampleComponent_UseEffect() {
	owner := core.NewOwner(nil)
	owner.OnPaint = func() { fmt.Println("paint") }

	owner.Mount(func(c *core.Component) {
		fmt.Println("render")
		c.UseEffect(core.MomentEffect, 0, func() func() {
			fmt.Println("effect")
			return nil
		})
		c.UseEffect(core.MomentLayoutEffect, 0, func() func() {
			fmt.Println("layout effect")
			return nil
		})
		c.UseEffect(core.MomentMemo, 0, func() func() {
			fmt.Println("memo")
			return nil
		})
	})
	owner.Flush()

	// Output:
	// render
	// memo
	// layout effect
	// paint
	// effect
}
