// Package pipeline implements the synchronous feature pipeline that
// instruments every step of a strategy graph run. Features install handler
// registrations against lifecycle stages; the executor triggers the matching
// stage at every scope boundary and the pipeline fans the event out to all
// accepting registrations, in registration order, on the caller's goroutine.
//
// The pipeline is an explicit per-run table, not a global registry: build
// one at install time and hand it to the executor by reference.
package pipeline
