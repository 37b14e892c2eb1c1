package pipeline

import (
	"context"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/event"
)

// FeatureKey identifies the feature that owns a handler registration.
type FeatureKey string

// Handler processes one lifecycle event. A handler that returns an error is
// not isolated: the error propagates to the triggering call and aborts the
// run.
type Handler func(ctx context.Context, ev event.Event) error

// AcceptFunc gates a registration. A nil AcceptFunc accepts every event at
// the registered stage.
type AcceptFunc func(ev event.Event) bool

// Registration binds a handler to the feature that installed it, optionally
// gated by an acceptance predicate derived from the feature's configuration.
type Registration struct {
	Feature FeatureKey
	Accepts AcceptFunc
	Handler Handler
}

// Options configures a Pipeline.
type Options struct {
	// Clock stamps triggered events. Defaults to the system clock.
	Clock core.Clock
}

// Pipeline holds, per lifecycle stage, an ordered list of handler
// registrations. Registration is not safe for concurrent use; complete all
// feature installation before the first run. Dispatch is synchronous and
// safe for use from a single run goroutine.
type Pipeline struct {
	clock    core.Clock
	handlers map[event.Stage][]Registration
}

// New creates an empty pipeline.
func New(optFns ...func(o *Options)) *Pipeline {
	opts := Options{Clock: core.SystemClock()}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Pipeline{
		clock:    opts.Clock,
		handlers: make(map[event.Stage][]Registration),
	}
}

// WithClock overrides the clock used to stamp events.
func WithClock(c core.Clock) func(o *Options) {
	return func(o *Options) { o.Clock = c }
}

// Clock returns the clock events are stamped with.
func (p *Pipeline) Clock() core.Clock { return p.clock }

// Intercept appends a registration for the given stage. Registrations fire
// in the order they were appended.
func (p *Pipeline) Intercept(stage event.Stage, reg Registration) {
	p.handlers[stage] = append(p.handlers[stage], reg)
}

// InterceptAll appends the same registration at every known stage.
func (p *Pipeline) InterceptAll(reg Registration) {
	for _, stage := range allStages {
		p.Intercept(stage, reg)
	}
}

// Deprecated: InterceptBefore is a pass-through kept for source
// compatibility; use Intercept with the corresponding *Starting stage.
func (p *Pipeline) InterceptBefore(stage event.Stage, reg Registration) {
	p.Intercept(stage, reg)
}

// Trigger dispatches ev to every registration at its stage whose acceptance
// predicate passes, in registration order, synchronously on the calling
// goroutine. The first handler error aborts dispatch and is returned.
// Events are constructed with Base so they carry a clock-stamped timestamp.
func (p *Pipeline) Trigger(ctx context.Context, ev event.Event) error {
	for _, reg := range p.handlers[ev.Stage()] {
		if reg.Accepts != nil && !reg.Accepts(ev) {
			continue
		}
		if err := reg.Handler(ctx, ev); err != nil {
			return err
		}
	}
	return nil
}

// Deprecated: Dispatch is a pass-through kept for source compatibility; use
// Trigger.
func (p *Pipeline) Dispatch(ctx context.Context, ev event.Event) error {
	return p.Trigger(ctx, ev)
}

// Base builds the common event fields for a scope, stamped with the
// pipeline clock. The executor uses it when constructing events to trigger.
func (p *Pipeline) Base(info core.ExecutionInfo, runID string) event.Base {
	return event.Base{ExecutionInfo: info, Run: runID, Time: p.clock.Now()}
}

// Registrations returns the number of registrations installed at a stage.
// Intended for tests and introspection.
func (p *Pipeline) Registrations(stage event.Stage) int {
	return len(p.handlers[stage])
}

var allStages = []event.Stage{
	event.StageAgentStarting, event.StageAgentCompleted, event.StageAgentFailed,
	event.StageStrategyStarting, event.StageStrategyCompleted, event.StageStrategyFailed,
	event.StageNodeStarting, event.StageNodeCompleted, event.StageNodeFailed,
	event.StageSubgraphStarting, event.StageSubgraphCompleted, event.StageSubgraphFailed,
	event.StageModelCallStarting, event.StageModelCallCompleted,
	event.StageModelStreamingStarting, event.StageModelStreamingFrame,
	event.StageModelStreamingFailed, event.StageModelStreamingCompleted,
	event.StageToolCallStarting, event.StageToolValidationFailed,
	event.StageToolCallFailed, event.StageToolCallCompleted,
}
