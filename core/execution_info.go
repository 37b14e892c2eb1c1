package core

import "github.com/google/uuid"

// ExecutionInfo is the correlation identity assigned to a single execution
// scope (agent run, strategy run, node run, subgraph run, model call or tool
// call). Scopes form a tree: every scope is created by its enclosing scope
// via Child, and Path records the ids of all ancestors from the root down.
//
// Invariant: child.Path == append(parent.Path, parent.ID). Ids are unique
// within one top-level run and the tree never contains a cycle.
type ExecutionInfo struct {
	// ID uniquely identifies this scope within the run.
	ID string `json:"id"`

	// ParentID is the id of the enclosing scope, empty for the root.
	ParentID string `json:"parent_id,omitempty"`

	// Path lists ancestor ids ordered from the root scope down to (and
	// including) the direct parent. Empty for the root.
	Path []string `json:"path,omitempty"`
}

// NewExecutionInfo creates a root scope identity for a new top-level run.
func NewExecutionInfo() ExecutionInfo {
	return ExecutionInfo{ID: uuid.NewString()}
}

// NewExecutionInfoWithID creates a root scope identity with a caller-chosen
// id, typically the run id so nested paths lead back to the run.
func NewExecutionInfoWithID(id string) ExecutionInfo {
	return ExecutionInfo{ID: id}
}

// Child derives the identity for a scope nested directly under e. The child
// receives a fresh id and a copy of e's path extended with e's id.
func (e ExecutionInfo) Child() ExecutionInfo {
	path := make([]string, 0, len(e.Path)+1)
	path = append(path, e.Path...)
	path = append(path, e.ID)

	return ExecutionInfo{
		ID:       uuid.NewString(),
		ParentID: e.ID,
		Path:     path,
	}
}

// Depth returns the number of ancestors above this scope.
func (e ExecutionInfo) Depth() int { return len(e.Path) }

// Root returns the id of the top-level scope this scope descends from, or
// its own id when it is the root.
func (e ExecutionInfo) Root() string {
	if len(e.Path) == 0 {
		return e.ID
	}
	return e.Path[0]
}
