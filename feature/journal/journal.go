// Package journal provides a feature that persists a run's lifecycle events
// as an append-only record stream, backed by a pluggable store. The journal
// is the audit trail of a run: what started, what finished, what failed and
// with which payloads.
package journal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hupe1980/graphmesh/event"
	"github.com/hupe1980/graphmesh/pipeline"
)

// Key identifies this feature's registrations in the pipeline.
const Key = pipeline.FeatureKey("journal")

// Record is one persisted lifecycle event.
type Record struct {
	RunID    string          `json:"run_id"`
	Stage    event.Stage     `json:"stage"`
	ScopeID  string          `json:"scope_id"`
	ParentID string          `json:"parent_id,omitempty"`
	Time     time.Time       `json:"time"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Store persists journal records. Implementations must keep per-run append
// order; records of one run are written from a single goroutine.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Records(ctx context.Context, runID string) ([]Record, error)
}

// Options configure the journal feature.
type Options struct {
	// AllStages journals every stage instead of only terminal ones.
	AllStages bool
}

// WithAllStages journals every lifecycle stage, not just terminal ones.
func WithAllStages() func(o *Options) {
	return func(o *Options) { o.AllStages = true }
}

// Feature implements pipeline.Feature.
type Feature struct {
	store Store
	opts  Options
}

// New creates the journal feature over a store. By default only terminal
// stages (completed and failed variants) are journaled.
func New(store Store, optFns ...func(o *Options)) *Feature {
	opts := Options{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Feature{store: store, opts: opts}
}

// Key returns the feature key.
func (f *Feature) Key() pipeline.FeatureKey { return Key }

// Install registers the journal handler. A store failure aborts the run; a
// journal that silently loses records is worse than a failed run.
func (f *Feature) Install(p *pipeline.Pipeline) error {
	var accepts pipeline.AcceptFunc
	if !f.opts.AllStages {
		accepts = func(ev event.Event) bool { return terminalStages[ev.Stage()] }
	}

	p.InterceptAll(pipeline.Registration{
		Feature: Key,
		Accepts: accepts,
		Handler: f.handle,
	})
	return nil
}

func (f *Feature) handle(ctx context.Context, ev event.Event) error {
	// Best effort payload; events may carry unmarshalable values (errors,
	// arbitrary tool results).
	payload, err := json.Marshal(ev)
	if err != nil {
		payload = nil
	}

	return f.store.Append(ctx, Record{
		RunID:    ev.RunID(),
		Stage:    ev.Stage(),
		ScopeID:  ev.Info().ID,
		ParentID: ev.Info().ParentID,
		Time:     ev.Timestamp(),
		Payload:  payload,
	})
}

var terminalStages = map[event.Stage]bool{
	event.StageAgentCompleted:          true,
	event.StageAgentFailed:             true,
	event.StageStrategyCompleted:       true,
	event.StageStrategyFailed:          true,
	event.StageNodeCompleted:           true,
	event.StageNodeFailed:              true,
	event.StageSubgraphCompleted:       true,
	event.StageSubgraphFailed:          true,
	event.StageModelCallCompleted:      true,
	event.StageModelStreamingFailed:    true,
	event.StageModelStreamingCompleted: true,
	event.StageToolValidationFailed:    true,
	event.StageToolCallFailed:          true,
	event.StageToolCallCompleted:       true,
}
