package core

import "time"

// Clock supplies timestamps for lifecycle events. Injecting it keeps event
// times deterministic in tests.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns a Clock backed by time.Now (UTC).
func SystemClock() Clock { return systemClock{} }

// FixedClock always reports the same instant.
type FixedClock struct{ T time.Time }

// Now implements Clock.
func (f FixedClock) Now() time.Time { return f.T }
