// Package tracing provides a feature that logs every pipeline event through
// a logging.Logger, giving a structured trace of a run without any backend.
package tracing

import (
	"context"

	"github.com/hupe1980/graphmesh/event"
	"github.com/hupe1980/graphmesh/logging"
	"github.com/hupe1980/graphmesh/pipeline"
)

// Key identifies this feature's registrations in the pipeline.
const Key = pipeline.FeatureKey("tracing")

// Options configure the tracing feature.
type Options struct {
	// Logger receives the trace lines. Defaults to slog.Default.
	Logger logging.Logger

	// Stages restricts tracing to the listed stages. Empty traces all.
	Stages []event.Stage
}

// WithLogger overrides the trace logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithStages restricts tracing to the listed stages.
func WithStages(stages ...event.Stage) func(o *Options) {
	return func(o *Options) { o.Stages = stages }
}

// Feature implements pipeline.Feature.
type Feature struct {
	logger logging.Logger
	stages map[event.Stage]bool
}

// New creates the tracing feature.
func New(optFns ...func(o *Options)) *Feature {
	opts := Options{Logger: logging.NewDefaultSlogLogger()}
	for _, fn := range optFns {
		fn(&opts)
	}

	var stages map[event.Stage]bool
	if len(opts.Stages) > 0 {
		stages = make(map[event.Stage]bool, len(opts.Stages))
		for _, s := range opts.Stages {
			stages[s] = true
		}
	}

	return &Feature{logger: opts.Logger, stages: stages}
}

// Key returns the feature key.
func (f *Feature) Key() pipeline.FeatureKey { return Key }

// Install registers the trace handler at every stage, gated by the stage
// filter when one was configured.
func (f *Feature) Install(p *pipeline.Pipeline) error {
	var accepts pipeline.AcceptFunc
	if f.stages != nil {
		accepts = func(ev event.Event) bool { return f.stages[ev.Stage()] }
	}

	p.InterceptAll(pipeline.Registration{
		Feature: Key,
		Accepts: accepts,
		Handler: f.handle,
	})
	return nil
}

func (f *Feature) handle(ctx context.Context, ev event.Event) error {
	args := []any{
		"run_id", ev.RunID(),
		"scope", ev.Info().ID,
		"depth", ev.Info().Depth(),
	}

	switch e := ev.(type) {
	case event.NodeStarting:
		args = append(args, "node", e.NodeName)
	case event.NodeCompleted:
		args = append(args, "node", e.NodeName)
	case event.NodeFailed:
		args = append(args, "node", e.NodeName, "error", e.Err)
	case event.SubgraphStarting:
		args = append(args, "subgraph", e.SubgraphName)
	case event.SubgraphCompleted:
		args = append(args, "subgraph", e.SubgraphName)
	case event.SubgraphFailed:
		args = append(args, "subgraph", e.SubgraphName, "error", e.Err)
	case event.StrategyFailed:
		args = append(args, "strategy", e.StrategyName, "error", e.Err)
	case event.AgentFailed:
		args = append(args, "agent", e.AgentName, "error", e.Err)
	case event.ModelCallStarting:
		args = append(args, "model", e.Model, "messages", len(e.Messages))
	case event.ModelCallCompleted:
		args = append(args, "model", e.Model)
	case event.ToolCallStarting:
		args = append(args, "tool", e.ToolName, "call_id", e.CallID)
	case event.ToolCallCompleted:
		args = append(args, "tool", e.ToolName, "call_id", e.CallID)
	case event.ToolValidationFailed:
		args = append(args, "tool", e.ToolName, "error", e.Err)
	case event.ToolCallFailed:
		args = append(args, "tool", e.ToolName, "error", e.Err)
	}

	f.logger.Debug(string(ev.Stage()), args...)
	return nil
}
