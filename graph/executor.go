package graph

import (
	"context"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/event"
	"github.com/hupe1980/graphmesh/logging"
	"github.com/hupe1980/graphmesh/pipeline"
	"github.com/hupe1980/graphmesh/prompt"
	"github.com/hupe1980/graphmesh/tool"
)

// ExecutorOptions configure an Executor.
type ExecutorOptions struct {
	// MaxIterations bounds node executions per run. Zero disables the bound.
	MaxIterations int

	// Logger receives traversal diagnostics. Defaults to slog.Default.
	Logger logging.Logger

	// Tools is the registry tool-execute nodes resolve against. Optional.
	Tools *tool.Registry
}

// Executor walks strategy graphs. It is stateless between runs and safe to
// share: all per-run mutable state lives in the RunContext and the frame
// stack created inside ExecuteStrategy.
type Executor struct {
	pipeline   *pipeline.Pipeline
	promptExec prompt.Executor
	model      prompt.Model
	opts       ExecutorOptions
}

// NewExecutor creates an executor bound to a feature pipeline, a model
// executor and a default model.
func NewExecutor(p *pipeline.Pipeline, promptExec prompt.Executor, model prompt.Model, optFns ...func(o *ExecutorOptions)) *Executor {
	opts := ExecutorOptions{
		MaxIterations: 50,
		Logger:        logging.NewDefaultSlogLogger(),
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Executor{
		pipeline:   p,
		promptExec: promptExec,
		model:      model,
		opts:       opts,
	}
}

// WithMaxIterations bounds node executions per run.
func WithMaxIterations(n int) func(o *ExecutorOptions) {
	return func(o *ExecutorOptions) { o.MaxIterations = n }
}

// WithLogger overrides the traversal logger.
func WithLogger(l logging.Logger) func(o *ExecutorOptions) {
	return func(o *ExecutorOptions) { o.Logger = l }
}

// WithTools sets the tool registry for the run.
func WithTools(r *tool.Registry) func(o *ExecutorOptions) {
	return func(o *ExecutorOptions) { o.Tools = r }
}

// frame is one level of the explicit traversal stack: a subgraph being
// walked, the node the cursor is on, that node's input, and the scope
// identity of the subgraph run. resume holds a nested subgraph's output
// while the parent picks the next edge.
type frame struct {
	sub    *Subgraph
	nodeID string
	input  any
	info   core.ExecutionInfo
	resume *any
}

// ExecuteStrategy runs a strategy from its start sentinel to its finish
// sentinel and returns the finish node's input as the strategy output.
//
// Traversal is strictly sequential: one node is in flight at a time, and
// nesting is handled with an explicit frame stack rather than recursion, so
// cancellation checks happen at uniform points regardless of depth. Every
// node and subgraph boundary is reported through the pipeline synchronously
// before traversal proceeds. On abort, a terminal Failed event is emitted
// for every still-open scope before the error is returned.
//
// rootInfo is the scope of the run; the strategy scope reuses it so nested
// paths lead back to the run id.
func (e *Executor) ExecuteStrategy(ctx context.Context, s *Strategy, input any, rootInfo core.ExecutionInfo) (any, error) {
	runID := rootInfo.Root()

	rc := &RunContext{
		runID:      runID,
		scope:      rootInfo,
		pipeline:   e.pipeline,
		promptExec: e.promptExec,
		model:      e.model,
		tools:      e.opts.Tools,
		guard:      NewIterationGuard(e.opts.MaxIterations),
	}

	starting := event.StrategyStarting{
		Base:         e.pipeline.Base(rootInfo, runID),
		StrategyName: s.Name(),
		Input:        input,
	}
	if err := e.pipeline.Trigger(ctx, starting); err != nil {
		return nil, err
	}

	e.opts.Logger.Debug("strategy starting", "strategy", s.Name(), "run_id", runID)

	stack := []*frame{{sub: s.Root(), nodeID: StartNodeID, input: input, info: rootInfo}}

	output, err := e.walk(ctx, rc, &stack)
	if err != nil {
		e.failOpenScopes(ctx, rc, stack, s, rootInfo, err)
		e.opts.Logger.Error("strategy failed", "strategy", s.Name(), "run_id", runID, "error", err)
		return nil, err
	}

	completed := event.StrategyCompleted{
		Base:         e.pipeline.Base(rootInfo, runID),
		StrategyName: s.Name(),
		Output:       output,
	}
	if err := e.pipeline.Trigger(ctx, completed); err != nil {
		return nil, err
	}

	e.opts.Logger.Debug("strategy completed", "strategy", s.Name(), "run_id", runID, "nodes", rc.guard.Count())
	return output, nil
}

// walk drives the frame stack until the root subgraph reaches its finish
// sentinel. On error the stack is left as-is so the caller can sweep-close
// the open scopes.
func (e *Executor) walk(ctx context.Context, rc *RunContext, stack *[]*frame) (any, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		fr := (*stack)[len(*stack)-1]
		node, ok := fr.sub.Node(fr.nodeID)
		if !ok {
			return nil, &ConstructionError{Graph: fr.sub.Name(), Message: "cursor on unknown node " + fr.nodeID}
		}

		output, entered, err := e.step(ctx, rc, stack, fr, node)
		if err != nil {
			return nil, err
		}
		if entered {
			continue
		}

		done, result, err := e.transition(ctx, rc, stack, fr, node, output)
		if err != nil {
			return nil, err
		}
		if done {
			return result, nil
		}
	}
}

// step produces the current node's output: pass-through for sentinels, a
// frame push for nested subgraphs (entered=true), or a guarded body
// execution wrapped in Node events.
func (e *Executor) step(ctx context.Context, rc *RunContext, stack *[]*frame, fr *frame, node *Node) (output any, entered bool, err error) {
	if fr.resume != nil {
		output = *fr.resume
		fr.resume = nil
		return output, false, nil
	}

	switch {
	case node.IsSentinel():
		return fr.input, false, nil

	case node.Subgraph() != nil:
		subInfo := fr.info.Child()
		starting := event.SubgraphStarting{
			Base:         e.pipeline.Base(subInfo, rc.runID),
			SubgraphName: node.Name(),
			Input:        fr.input,
		}
		if err := e.pipeline.Trigger(ctx, starting); err != nil {
			return nil, false, err
		}
		*stack = append(*stack, &frame{
			sub:    node.Subgraph(),
			nodeID: StartNodeID,
			input:  fr.input,
			info:   subInfo,
		})
		return nil, true, nil

	default:
		// Sentinels and subgraph entries do not count against the guard;
		// only body executions do.
		if err := rc.guard.Increment(); err != nil {
			return nil, false, err
		}

		nodeInfo := fr.info.Child()
		starting := event.NodeStarting{
			Base:     e.pipeline.Base(nodeInfo, rc.runID),
			NodeName: node.Name(),
			Input:    fr.input,
		}
		if err := e.pipeline.Trigger(ctx, starting); err != nil {
			return nil, false, err
		}

		rc.scope = nodeInfo
		output, err := node.body(ctx, rc, fr.input)
		if err != nil {
			failed := event.NodeFailed{
				Base:     e.pipeline.Base(nodeInfo, rc.runID),
				NodeName: node.Name(),
				Err:      err,
			}
			if terr := e.pipeline.Trigger(ctx, failed); terr != nil {
				return nil, false, terr
			}
			return nil, false, err
		}

		completed := event.NodeCompleted{
			Base:     e.pipeline.Base(nodeInfo, rc.runID),
			NodeName: node.Name(),
			Output:   output,
		}
		if err := e.pipeline.Trigger(ctx, completed); err != nil {
			return nil, false, err
		}
		return output, false, nil
	}
}

// transition selects the first eligible outgoing edge in declaration order,
// applies its transform and moves the cursor. Reaching a finish sentinel
// pops the frame; popping the root frame ends the run (done=true).
func (e *Executor) transition(ctx context.Context, rc *RunContext, stack *[]*frame, fr *frame, node *Node, output any) (done bool, result any, err error) {
	edge, ok := fr.sub.selectEdge(node.ID(), output)
	if !ok {
		return false, nil, &NoTransitionError{Node: node.Name()}
	}

	next := output
	if edge.Transform != nil {
		next, err = edge.Transform(output)
		if err != nil {
			return false, nil, err
		}
	}

	if edge.To != FinishNodeID {
		fr.nodeID = edge.To
		fr.input = next
		return false, nil, nil
	}

	*stack = (*stack)[:len(*stack)-1]
	if len(*stack) == 0 {
		return true, next, nil
	}

	completed := event.SubgraphCompleted{
		Base:         e.pipeline.Base(fr.info, rc.runID),
		SubgraphName: fr.sub.Name(),
		Output:       next,
	}
	if err := e.pipeline.Trigger(ctx, completed); err != nil {
		return false, nil, err
	}

	parent := (*stack)[len(*stack)-1]
	parent.resume = &next
	return false, nil, nil
}

// failOpenScopes emits a Failed event for every subgraph frame still open
// when a run aborts, innermost first, then for the strategy itself, so no
// Starting event is left without a terminal counterpart.
func (e *Executor) failOpenScopes(ctx context.Context, rc *RunContext, stack []*frame, s *Strategy, rootInfo core.ExecutionInfo, cause error) {
	// Events still flow on a canceled context; handlers see the original ctx.
	for i := len(stack) - 1; i >= 1; i-- {
		fr := stack[i]
		failed := event.SubgraphFailed{
			Base:         e.pipeline.Base(fr.info, rc.runID),
			SubgraphName: fr.sub.Name(),
			Err:          cause,
		}
		if err := e.pipeline.Trigger(ctx, failed); err != nil {
			e.opts.Logger.Error("subgraph failure handler error", "subgraph", fr.sub.Name(), "error", err)
		}
	}

	failed := event.StrategyFailed{
		Base:         e.pipeline.Base(rootInfo, rc.runID),
		StrategyName: s.Name(),
		Err:          cause,
	}
	if err := e.pipeline.Trigger(ctx, failed); err != nil {
		e.opts.Logger.Error("strategy failure handler error", "strategy", s.Name(), "error", err)
	}
}
