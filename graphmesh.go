// Package graphmesh provides a high-level façade over the strategy graph
// engine. Most applications interact with this package by:
//  1. Building a strategy by hand (graph.NewBuilder) or compiling one from a
//     declarative flow document (flow.Compile)
//  2. Wrapping it in an agent with a model executor, tools and features
//  3. Calling Run
//
// The façade delegates traversal to graph.Executor while keeping setup
// ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a real model executor and
// a structured logger.
package graphmesh

import (
	"context"

	"github.com/hupe1980/graphmesh/agent"
	"github.com/hupe1980/graphmesh/flow"
	"github.com/hupe1980/graphmesh/graph"
	"github.com/hupe1980/graphmesh/prompt"
	"github.com/hupe1980/graphmesh/tool"
)

// NewToolAgent creates an agent running the canonical tool-call loop: the
// model is called with the registered tools, requested calls are executed
// and returned until the model answers with plain text.
func NewToolAgent(name string, promptExec prompt.Executor, optFns ...func(o *agent.Options)) (*agent.Agent, error) {
	strategy, err := graph.NewBuilder(name).
		Subgraph("tool_loop", graph.NewToolLoopSubgraph("tool loop")).
		EdgeFromStart("tool_loop").
		EdgeToFinish("tool_loop").
		Build(name)
	if err != nil {
		return nil, err
	}

	return agent.New(strategy, promptExec, optFns...)
}

// NewFlowAgent compiles a declarative flow definition and wraps it in an
// agent. The definition's tool list selects the subset of the registry the
// runs may use; a listed tool missing from the registry fails construction.
// The flow's default model becomes the agent model unless overridden by an
// option.
func NewFlowAgent(def flow.Definition, promptExec prompt.Executor, tools *tool.Registry, optFns ...func(o *agent.Options)) (*agent.Agent, error) {
	strategy, err := flow.Compile(def)
	if err != nil {
		return nil, err
	}

	for _, name := range def.Tools {
		if tools == nil {
			return nil, &graph.ToolNotDefinedError{Name: name}
		}
		if _, ok := tools.Resolve(name); !ok {
			return nil, &graph.ToolNotDefinedError{Name: name}
		}
	}

	base := []func(o *agent.Options){
		agent.WithName(def.ID),
		agent.WithModel(prompt.Model{Provider: "openai", Name: def.Model, SupportsTools: true}),
	}
	if tools != nil && len(def.Tools) > 0 {
		base = append(base, agent.WithTools(tools.Subset(def.Tools...)))
	} else if tools != nil {
		base = append(base, agent.WithTools(tools))
	}
	base = append(base, optFns...)

	return agent.New(strategy, promptExec, base...)
}

// RunFlow compiles and executes a flow definition in one call.
func RunFlow(ctx context.Context, def flow.Definition, promptExec prompt.Executor, tools *tool.Registry, input any, optFns ...func(o *agent.Options)) (any, error) {
	a, err := NewFlowAgent(def, promptExec, tools, optFns...)
	if err != nil {
		return nil, err
	}
	return a.Run(ctx, input)
}
