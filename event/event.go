package event

import (
	"time"

	"github.com/hupe1980/graphmesh/core"
)

// Stage identifies a lifecycle point in the execution of a strategy graph.
// The pipeline keys its handler registrations by Stage.
type Stage string

const (
	StageAgentStarting  Stage = "agent_starting"
	StageAgentCompleted Stage = "agent_completed"
	StageAgentFailed    Stage = "agent_failed"

	StageStrategyStarting  Stage = "strategy_starting"
	StageStrategyCompleted Stage = "strategy_completed"
	StageStrategyFailed    Stage = "strategy_failed"

	StageNodeStarting  Stage = "node_starting"
	StageNodeCompleted Stage = "node_completed"
	StageNodeFailed    Stage = "node_failed"

	StageSubgraphStarting  Stage = "subgraph_starting"
	StageSubgraphCompleted Stage = "subgraph_completed"
	StageSubgraphFailed    Stage = "subgraph_failed"

	StageModelCallStarting  Stage = "model_call_starting"
	StageModelCallCompleted Stage = "model_call_completed"

	StageModelStreamingStarting  Stage = "model_streaming_starting"
	StageModelStreamingFrame     Stage = "model_streaming_frame"
	StageModelStreamingFailed    Stage = "model_streaming_failed"
	StageModelStreamingCompleted Stage = "model_streaming_completed"

	StageToolCallStarting     Stage = "tool_call_starting"
	StageToolValidationFailed Stage = "tool_validation_failed"
	StageToolCallFailed       Stage = "tool_call_failed"
	StageToolCallCompleted    Stage = "tool_call_completed"
)

// Event is implemented by every lifecycle event variant. The set is closed;
// new variants require a new type in this package.
type Event interface {
	Stage() Stage
	Info() core.ExecutionInfo
	RunID() string
	Timestamp() time.Time

	isEvent()
}

// Base carries the fields common to all events. Embed it in each variant.
type Base struct {
	ExecutionInfo core.ExecutionInfo `json:"execution_info"`
	Run           string             `json:"run_id"`
	Time          time.Time          `json:"timestamp"`
}

// Info returns the scope identity the event belongs to.
func (b Base) Info() core.ExecutionInfo { return b.ExecutionInfo }

// RunID returns the id of the top-level run.
func (b Base) RunID() string { return b.Run }

// Timestamp returns the instant the event was created.
func (b Base) Timestamp() time.Time { return b.Time }

func (Base) isEvent() {}

// Agent lifecycle.

// AgentStarting signals the beginning of a top-level agent run.
type AgentStarting struct {
	Base
	AgentName string
	Input     any
}

func (AgentStarting) Stage() Stage { return StageAgentStarting }

// AgentCompleted signals successful completion of an agent run.
type AgentCompleted struct {
	Base
	AgentName string
	Output    any
}

func (AgentCompleted) Stage() Stage { return StageAgentCompleted }

// AgentFailed signals an agent run aborted with an error.
type AgentFailed struct {
	Base
	AgentName string
	Err       error
}

func (AgentFailed) Stage() Stage { return StageAgentFailed }

// Strategy lifecycle.

type StrategyStarting struct {
	Base
	StrategyName string
	Input        any
}

func (StrategyStarting) Stage() Stage { return StageStrategyStarting }

type StrategyCompleted struct {
	Base
	StrategyName string
	Output       any
}

func (StrategyCompleted) Stage() Stage { return StageStrategyCompleted }

type StrategyFailed struct {
	Base
	StrategyName string
	Err          error
}

func (StrategyFailed) Stage() Stage { return StageStrategyFailed }

// Node lifecycle.

type NodeStarting struct {
	Base
	NodeName string
	Input    any
}

func (NodeStarting) Stage() Stage { return StageNodeStarting }

type NodeCompleted struct {
	Base
	NodeName string
	Output   any
}

func (NodeCompleted) Stage() Stage { return StageNodeCompleted }

type NodeFailed struct {
	Base
	NodeName string
	Err      error
}

func (NodeFailed) Stage() Stage { return StageNodeFailed }

// Subgraph lifecycle.

type SubgraphStarting struct {
	Base
	SubgraphName string
	Input        any
}

func (SubgraphStarting) Stage() Stage { return StageSubgraphStarting }

type SubgraphCompleted struct {
	Base
	SubgraphName string
	Output       any
}

func (SubgraphCompleted) Stage() Stage { return StageSubgraphCompleted }

type SubgraphFailed struct {
	Base
	SubgraphName string
	Err          error
}

func (SubgraphFailed) Stage() Stage { return StageSubgraphFailed }

// Model call lifecycle.

type ModelCallStarting struct {
	Base
	Model    string
	Messages []core.Content
}

func (ModelCallStarting) Stage() Stage { return StageModelCallStarting }

type ModelCallCompleted struct {
	Base
	Model     string
	Responses []core.Content
}

func (ModelCallCompleted) Stage() Stage { return StageModelCallCompleted }

// Model streaming lifecycle.

type ModelStreamingStarting struct {
	Base
	Model    string
	Messages []core.Content
}

func (ModelStreamingStarting) Stage() Stage { return StageModelStreamingStarting }

// ModelStreamingFrame is emitted once per received stream frame, in arrival
// order. Text carries text deltas; ToolCallID/ToolCallName identify the call
// a tool-argument fragment belongs to.
type ModelStreamingFrame struct {
	Base
	Model        string
	Text         string
	ToolCallID   string
	ToolCallName string
}

func (ModelStreamingFrame) Stage() Stage { return StageModelStreamingFrame }

type ModelStreamingFailed struct {
	Base
	Model string
	Err   error
}

func (ModelStreamingFailed) Stage() Stage { return StageModelStreamingFailed }

type ModelStreamingCompleted struct {
	Base
	Model    string
	Response core.Content
}

func (ModelStreamingCompleted) Stage() Stage { return StageModelStreamingCompleted }

// Tool call lifecycle.

type ToolCallStarting struct {
	Base
	ToolName  string
	CallID    string
	Arguments string
}

func (ToolCallStarting) Stage() Stage { return StageToolCallStarting }

// ToolValidationFailed is emitted when a tool rejects its arguments before
// executing. It is kept distinct from ToolCallFailed so handlers can route
// bad arguments separately from tool body failures.
type ToolValidationFailed struct {
	Base
	ToolName  string
	CallID    string
	Arguments string
	Err       error
}

func (ToolValidationFailed) Stage() Stage { return StageToolValidationFailed }

type ToolCallFailed struct {
	Base
	ToolName string
	CallID   string
	Err      error
}

func (ToolCallFailed) Stage() Stage { return StageToolCallFailed }

type ToolCallCompleted struct {
	Base
	ToolName string
	CallID   string
	Result   any
}

func (ToolCallCompleted) Stage() Stage { return StageToolCallCompleted }
