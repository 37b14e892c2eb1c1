// Package tool implements the tool-calling subsystem: the Tool interface
// exposed to strategy graphs, schema validation of model-supplied arguments,
// and the Registry the executor resolves tool names against.
package tool
