package flow

import "fmt"

// NodeNotFoundError reports a transition referencing an agent name that was
// never declared.
type NodeNotFoundError struct {
	Name string
}

func (e *NodeNotFoundError) Error() string {
	return fmt.Sprintf("flow: node %q not found", e.Name)
}

// UnsupportedAgentKindError reports an agent kind the compiler cannot build.
type UnsupportedAgentKindError struct {
	Kind Kind
}

func (e *UnsupportedAgentKindError) Error() string {
	return fmt.Sprintf("flow: agent kind %q not yet supported", e.Kind)
}
