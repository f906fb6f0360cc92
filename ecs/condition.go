package ecs

import "reflect"

// Tick carries the per-tick context handed to run conditions: the tick number,
// the delta time since the previous tick, and read-only storage access.
// Conditions must not mutate storage; this is a documented contract, not
// enforced mechanically.
type Tick struct {
	Number    uint64
	DeltaTime float64
	Storage   *Storage
}

// RunCondition gates whether a system executes in a given tick. All conditions
// attached to a system must return true for it to run. An error from a
// condition means "do not run" for that tick; it is logged by the scheduler
// and never fails the tick.
type RunCondition func(t Tick) (bool, error)

// EveryN returns a condition that passes on every n-th tick.
func EveryN(n uint64) RunCondition {
	return func(t Tick) (bool, error) {
		return n > 0 && t.Number%n == 0, nil
	}
}

// ResourceExists returns a condition that passes while a resource of type T is
// present in storage.
func ResourceExists[T any]() RunCondition {
	return func(t Tick) (bool, error) {
		return t.Storage.hasResource(reflect.TypeFor[T]()), nil
	}
}
