// Package core contains the shared primitives of GraphMesh: the
// ExecutionInfo correlation identity threaded through nested execution
// scopes, the role-based content model exchanged with language models and
// tools, and the Clock abstraction used to stamp lifecycle events.
package core
