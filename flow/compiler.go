package flow

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/hupe1980/graphmesh/core"
	"github.com/hupe1980/graphmesh/graph"
)

// Compile turns a flow definition into a strategy graph.
//
// An empty agent or transition list compiles to a trivial start-to-finish
// strategy that returns its input unchanged. Otherwise one node is created
// per agent, dispatched by kind; the first agent (the one appearing as a
// transition source but never as a target) is wired to the start sentinel;
// every declared transition becomes an edge, with the reserved target name
// "finish" routing to the finish sentinel; and any agent without an outgoing
// transition is auto-wired unconditionally to finish.
func Compile(def Definition) (*graph.Strategy, error) {
	if len(def.Agents) == 0 || len(def.Transitions) == 0 {
		return trivialStrategy(def)
	}

	b := graph.NewBuilder(def.ID)
	known := map[string]bool{}
	for _, a := range def.Agents {
		if a.Name == FinishTarget {
			return nil, &graph.ConstructionError{Graph: def.ID, Message: `agent name "finish" is reserved`}
		}
		sub, err := agentSubgraph(a, def)
		if err != nil {
			return nil, err
		}
		b.Subgraph(a.Name, sub)
		known[a.Name] = true
	}

	first, err := firstAgent(def)
	if err != nil {
		return nil, err
	}
	b.EdgeFromStart(first)

	hasOutgoing := map[string]bool{}
	for _, tr := range def.Transitions {
		if !known[tr.From] {
			return nil, &NodeNotFoundError{Name: tr.From}
		}

		var optFns []func(o *graph.EdgeOptions)
		if tr.Condition != nil {
			cond := *tr.Condition
			optFns = append(optFns, graph.WithPredicate(func(output any) bool {
				return Evaluate(cond, output)
			}))
		}

		if tr.To == FinishTarget {
			b.EdgeToFinish(tr.From, optFns...)
		} else {
			if !known[tr.To] {
				return nil, &NodeNotFoundError{Name: tr.To}
			}
			b.Edge(tr.From, tr.To, optFns...)
		}
		hasOutgoing[tr.From] = true
	}

	for _, a := range def.Agents {
		if !hasOutgoing[a.Name] {
			b.EdgeToFinish(a.Name)
		}
	}

	return b.Build(def.ID)
}

func trivialStrategy(def Definition) (*graph.Strategy, error) {
	return graph.NewBuilder(def.ID).
		Edge(graph.StartNodeID, graph.FinishNodeID).
		Build(def.ID)
}

// firstAgent resolves the entry agent: the first declared agent that never
// appears as a transition target. When every agent has an incoming
// transition the flow has no entry point.
func firstAgent(def Definition) (string, error) {
	isTarget := map[string]bool{}
	for _, tr := range def.Transitions {
		if tr.To != FinishTarget {
			isTarget[tr.To] = true
		}
	}
	for _, a := range def.Agents {
		if !isTarget[a.Name] {
			return a.Name, nil
		}
	}
	return "", &graph.ConstructionError{Graph: def.ID, Message: "no resolvable first agent"}
}

// agentSubgraph builds the per-kind node structure. Dispatch is exhaustive:
// a kind missing here is rejected, never silently skipped.
func agentSubgraph(a AgentDef, def Definition) (*graph.Subgraph, error) {
	switch a.Kind {
	case KindTask:
		return taskSubgraph(a, def)
	case KindVerify:
		return verifySubgraph(a, def)
	case KindTransform:
		return transformSubgraph(a)
	case KindParallel:
		return nil, &UnsupportedAgentKindError{Kind: a.Kind}
	default:
		return nil, &UnsupportedAgentKindError{Kind: a.Kind}
	}
}

// seedBody applies the agent's system prompt and model selection before its
// first model call, passing the step input through unchanged.
func seedBody(a AgentDef, def Definition) graph.Body {
	model := def.Model
	if a.Model != "" {
		model = a.Model
	}
	return func(ctx context.Context, rc *graph.RunContext, input any) (any, error) {
		rc.OverrideModel(model)
		if a.Prompt != "" {
			rc.AppendMessages(core.NewTextContent(core.RoleSystem, a.Prompt))
		}
		return input, nil
	}
}

// taskSubgraph is a model call with tool access: the standard tool-call loop
// behind a prompt-seeding node.
func taskSubgraph(a AgentDef, def Definition) (*graph.Subgraph, error) {
	// Node ids are prefixed with the agent name so agents of the same kind
	// can coexist in one strategy.
	seed := a.Name + ".seed"
	callModel := a.Name + ".call_model"
	executeTools := a.Name + ".execute_tools"
	sendResults := a.Name + ".send_results"

	return graph.NewBuilder(a.Name).
		Node(seed, "seed prompt", seedBody(a, def)).
		AddNode(graph.NewModelCallNode(callModel, "call model")).
		AddNode(graph.NewToolExecuteNode(executeTools, "execute tools")).
		AddNode(graph.NewSendToolResultNode(sendResults, "send tool results")).
		EdgeFromStart(seed).
		Edge(seed, callModel).
		Edge(callModel, executeTools, graph.WithPredicate(graph.OnToolCall)).
		EdgeToFinish(callModel, graph.WithPredicate(graph.OnAssistantMessage), graph.WithTransform(graph.ExtractText)).
		Edge(executeTools, sendResults).
		Edge(sendResults, executeTools, graph.WithPredicate(graph.OnToolCall)).
		EdgeToFinish(sendResults, graph.WithPredicate(graph.OnAssistantMessage), graph.WithTransform(graph.ExtractText)).
		BuildSubgraph()
}

// verifySubgraph is a single model call followed by a result-reshaping node
// exposing the verdict as structured output for transition conditions.
func verifySubgraph(a AgentDef, def Definition) (*graph.Subgraph, error) {
	seed := a.Name + ".seed"
	callModel := a.Name + ".call_model"

	reshape := graph.NewTransformNode(a.Name+".reshape", "reshape result", func(input any) (any, error) {
		text, ok := input.(string)
		if !ok {
			return nil, fmt.Errorf("expected verification text, got %T", input)
		}
		return map[string]any{
			"result":   text,
			"approved": strings.Contains(strings.ToLower(text), "approved"),
		}, nil
	})

	return graph.NewBuilder(a.Name).
		Node(seed, "seed prompt", seedBody(a, def)).
		AddNode(graph.NewModelCallNode(callModel, "call model")).
		AddNode(reshape).
		EdgeFromStart(seed).
		Edge(seed, callModel).
		Edge(callModel, a.Name+".reshape", graph.WithTransform(graph.ExtractText)).
		EdgeToFinish(a.Name + ".reshape").
		BuildSubgraph()
}

// transformSubgraph is a pure mapping node. When the agent carries a prompt
// it is used as a template with {{input}} substituted; otherwise the input
// passes through unchanged.
func transformSubgraph(a AgentDef) (*graph.Subgraph, error) {
	template := a.Prompt
	id := a.Name + ".map"
	mapping := graph.NewTransformNode(id, "map input", func(input any) (any, error) {
		if template == "" {
			return input, nil
		}
		return strings.ReplaceAll(template, "{{input}}", cast.ToString(input)), nil
	})

	return graph.NewBuilder(a.Name).
		AddNode(mapping).
		EdgeFromStart(id).
		EdgeToFinish(id).
		BuildSubgraph()
}
