// Package event defines the closed set of lifecycle events emitted by the
// graph executor and dispatched through the feature pipeline. Every event
// carries the ExecutionInfo of the scope it belongs to, the id of the
// top-level run, and a timestamp. Concrete payloads are plain data; all
// interpretation happens in the handlers that receive them.
package event
