// Package eventhandler provides a feature that routes pipeline events to
// user-supplied callbacks, either per stage or for every event. It is the
// lightest way to observe a run without writing a feature type.
package eventhandler

import (
	"context"

	"github.com/hupe1980/graphmesh/event"
	"github.com/hupe1980/graphmesh/pipeline"
)

// Key identifies this feature's registrations in the pipeline.
const Key = pipeline.FeatureKey("event-handler")

// Callback processes one event.
type Callback func(ctx context.Context, ev event.Event) error

// Options configure the event handler feature.
type Options struct {
	// OnEvent, when set, receives every event at every stage.
	OnEvent Callback

	// OnStage routes events of a specific stage to a dedicated callback.
	OnStage map[event.Stage]Callback

	// Filter gates all callbacks of this feature. Nil accepts everything.
	Filter pipeline.AcceptFunc
}

// WithOnEvent installs a catch-all callback.
func WithOnEvent(cb Callback) func(o *Options) {
	return func(o *Options) { o.OnEvent = cb }
}

// WithOnStage installs a callback for one stage. May be repeated.
func WithOnStage(stage event.Stage, cb Callback) func(o *Options) {
	return func(o *Options) {
		if o.OnStage == nil {
			o.OnStage = map[event.Stage]Callback{}
		}
		o.OnStage[stage] = cb
	}
}

// WithFilter gates all callbacks with an acceptance predicate.
func WithFilter(f pipeline.AcceptFunc) func(o *Options) {
	return func(o *Options) { o.Filter = f }
}

// Feature implements pipeline.Feature.
type Feature struct {
	opts Options
}

// New creates the event handler feature.
func New(optFns ...func(o *Options)) *Feature {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Feature{opts: opts}
}

// Key returns the feature key.
func (f *Feature) Key() pipeline.FeatureKey { return Key }

// Install registers the configured callbacks.
func (f *Feature) Install(p *pipeline.Pipeline) error {
	if f.opts.OnEvent != nil {
		p.InterceptAll(pipeline.Registration{
			Feature: Key,
			Accepts: f.opts.Filter,
			Handler: pipeline.Handler(f.opts.OnEvent),
		})
	}
	for stage, cb := range f.opts.OnStage {
		p.Intercept(stage, pipeline.Registration{
			Feature: Key,
			Accepts: f.opts.Filter,
			Handler: pipeline.Handler(cb),
		})
	}
	return nil
}
