// Package agent wires a strategy graph, a model executor, tools and features
// into a runnable unit. One Agent serves many isolated runs: the strategy is
// shared read-only, all per-run state lives inside the run.
package agent

import (
	"context"

	"github.com/google/uuid"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/event"
	"github.com/hupe1980/graphmesh/graph"
	"github.com/hupe1980/graphmesh/logging"
	"github.com/hupe1980/graphmesh/pipeline"
	"github.com/hupe1980/graphmesh/prompt"
	"github.com/hupe1980/graphmesh/tool"
)

// Options configure an Agent.
type Options struct {
	// Name identifies the agent in events and logs. Defaults to the
	// strategy name.
	Name string

	// Model is the default model descriptor for the agent's runs.
	Model prompt.Model

	// Tools is the registry model-requested calls resolve against.
	Tools *tool.Registry

	// Features are installed into the agent's pipeline at construction.
	Features []pipeline.Feature

	// MaxIterations bounds node executions per run.
	MaxIterations int

	// Logger receives agent diagnostics.
	Logger logging.Logger

	// Clock stamps pipeline events. Defaults to the system clock.
	Clock core.Clock
}

// Agent binds a strategy to its collaborators and runs it.
type Agent struct {
	name     string
	strategy *graph.Strategy
	pipeline *pipeline.Pipeline
	executor *graph.Executor
	logger   logging.Logger
}

// New creates an agent for a strategy. Features are installed immediately;
// an installation error fails construction.
func New(strategy *graph.Strategy, promptExec prompt.Executor, optFns ...func(o *Options)) (*Agent, error) {
	opts := Options{
		Name:          strategy.Name(),
		Model:         prompt.Model{Provider: "openai", Name: "gpt-4o-mini", SupportsTools: true},
		MaxIterations: 50,
		Logger:        logging.NewDefaultSlogLogger(),
		Clock:         core.SystemClock(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	pipe := pipeline.New(pipeline.WithClock(opts.Clock))
	for _, f := range opts.Features {
		if err := f.Install(pipe); err != nil {
			return nil, err
		}
	}

	exec := graph.NewExecutor(pipe, promptExec, opts.Model,
		graph.WithMaxIterations(opts.MaxIterations),
		graph.WithLogger(opts.Logger),
		graph.WithTools(opts.Tools),
	)

	return &Agent{
		name:     opts.Name,
		strategy: strategy,
		pipeline: pipe,
		executor: exec,
		logger:   opts.Logger,
	}, nil
}

// WithName sets the agent name.
func WithName(name string) func(o *Options) {
	return func(o *Options) { o.Name = name }
}

// WithModel sets the default model descriptor.
func WithModel(m prompt.Model) func(o *Options) {
	return func(o *Options) { o.Model = m }
}

// WithTools sets the tool registry.
func WithTools(r *tool.Registry) func(o *Options) {
	return func(o *Options) { o.Tools = r }
}

// WithFeatures appends features to install.
func WithFeatures(fs ...pipeline.Feature) func(o *Options) {
	return func(o *Options) { o.Features = append(o.Features, fs...) }
}

// WithMaxIterations bounds node executions per run.
func WithMaxIterations(n int) func(o *Options) {
	return func(o *Options) { o.MaxIterations = n }
}

// WithLogger overrides the agent logger.
func WithLogger(l logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = l }
}

// WithClock overrides the clock stamping pipeline events.
func WithClock(c core.Clock) func(o *Options) {
	return func(o *Options) { o.Clock = c }
}

// Name returns the agent's display name.
func (a *Agent) Name() string { return a.name }

// Pipeline returns the agent's feature pipeline, for late feature
// installation before the first run.
func (a *Agent) Pipeline() *pipeline.Pipeline { return a.pipeline }

// Run executes the agent's strategy once. Each run receives a fresh run id;
// the root execution scope reuses it so every nested path leads back to the
// run. Agent lifecycle events bracket the strategy run.
func (a *Agent) Run(ctx context.Context, input any) (any, error) {
	runID := uuid.NewString()
	rootInfo := core.NewExecutionInfoWithID(runID)

	a.logger.Info("agent run starting", "agent", a.name, "run_id", runID)

	starting := event.AgentStarting{
		Base:      a.pipeline.Base(rootInfo, runID),
		AgentName: a.name,
		Input:     input,
	}
	if err := a.pipeline.Trigger(ctx, starting); err != nil {
		return nil, err
	}

	output, err := a.executor.ExecuteStrategy(ctx, a.strategy, input, rootInfo)
	if err != nil {
		failed := event.AgentFailed{
			Base:      a.pipeline.Base(rootInfo, runID),
			AgentName: a.name,
			Err:       err,
		}
		if terr := a.pipeline.Trigger(ctx, failed); terr != nil {
			a.logger.Error("agent failure handler error", "agent", a.name, "error", terr)
		}
		return nil, err
	}

	completed := event.AgentCompleted{
		Base:      a.pipeline.Base(rootInfo, runID),
		AgentName: a.name,
		Output:    output,
	}
	if err := a.pipeline.Trigger(ctx, completed); err != nil {
		return nil, err
	}

	a.logger.Info("agent run completed", "agent", a.name, "run_id", runID)
	return output, nil
}
