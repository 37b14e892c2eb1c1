package journal

import (
	"context"
	"sync"
)

// InMemoryStore keeps journal records in process memory, grouped by run.
// Intended for tests and single-process setups.
type InMemoryStore struct {
	mu   sync.RWMutex
	runs map[string][]Record
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{runs: map[string][]Record{}}
}

// Append adds a record to its run's stream.
func (s *InMemoryStore) Append(ctx context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs[rec.RunID] = append(s.runs[rec.RunID], rec)
	return nil
}

// Records returns a copy of a run's record stream in append order.
func (s *InMemoryStore) Records(ctx context.Context, runID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.runs[runID]
	out := make([]Record, len(records))
	copy(out, records)
	return out, nil
}
