package flow

import (
	"encoding/json"
	"fmt"

	"github.com/mcuadros/go-defaults"
)

// Kind is the closed set of agent kinds a flow may declare. Dispatch over
// kinds is exhaustive: an unknown kind is a compile error, not a no-op.
type Kind string

const (
	// KindTask is a model call with tool access, looping until the model
	// stops requesting tools.
	KindTask Kind = "task"

	// KindVerify is a model call followed by a result-reshaping step.
	KindVerify Kind = "verify"

	// KindTransform is a pure mapping step with no model or tool access.
	KindTransform Kind = "transform"

	// KindParallel is declared but not yet supported; compiling it fails.
	KindParallel Kind = "parallel"
)

// FinishTarget is the reserved transition target name routing to the finish
// sentinel. No agent may carry this name.
const FinishTarget = "finish"

// Definition is the root of a declarative flow document.
type Definition struct {
	ID          string          `json:"id"`
	Agents      []AgentDef      `json:"agents"`
	Transitions []TransitionDef `json:"transitions"`
	Tools       []string        `json:"tools,omitempty"`
	Model       string          `json:"model" default:"gpt-4o-mini"`
}

// AgentDef declares one named processing step.
type AgentDef struct {
	Name   string `json:"name"`
	Kind   Kind   `json:"type"`
	Model  string `json:"model,omitempty"`  // overrides the flow default
	Prompt string `json:"prompt,omitempty"` // system prompt or mapping template
}

// TransitionDef declares a directed transition between agents, optionally
// gated by a condition.
type TransitionDef struct {
	From      string     `json:"from"`
	To        string     `json:"to"`
	Condition *Condition `json:"condition,omitempty"`
}

// Condition is the small declarative expression form gating a transition:
// a variable reference into the structured step output, an operator and a
// literal value.
type Condition struct {
	Variable  string    `json:"variable"`
	Operation Operation `json:"operation"`
	Value     any       `json:"value"`
}

// ParseDefinition decodes a JSON flow document and applies field defaults.
func ParseDefinition(data []byte) (Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return Definition{}, fmt.Errorf("parse flow definition: %w", err)
	}
	defaults.SetDefaults(&def)
	return def, nil
}
