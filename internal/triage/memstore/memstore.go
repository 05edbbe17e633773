// Package memstore provides an in-memory implementation of triage.Store.
package memstore

import (
	"context"
	"sync"

	"github.com/Balaji1472/Automated-Email-Assistant/internal/triage"
)

// Store holds batch results in memory. Suitable for dev/testing.
type Store struct {
	mu      sync.RWMutex
	batches map[string]*triage.Batch // batch ID -> batch
	latest  string                   // ID of the most recently stored batch
}

// New initializes a new in-memory Store.
func New() *Store {
	return &Store{
		batches: make(map[string]*triage.Batch),
	}
}

// Get retrieves a batch by its ID. Returns a copy.
func (s *Store) Get(_ context.Context, id string) (*triage.Batch, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[id]
	if !ok {
		return nil, false, nil
	}
	return copyBatch(b), true, nil
}

// Latest retrieves the most recently stored batch. Returns a copy.
func (s *Store) Latest(_ context.Context) (*triage.Batch, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.batches[s.latest]
	if !ok {
		return nil, false, nil
	}
	return copyBatch(b), true, nil
}

// Put stores a copy of the batch.
func (s *Store) Put(_ context.Context, b *triage.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batches[b.ID] = copyBatch(b)
	s.latest = b.ID
	return nil
}

func copyBatch(b *triage.Batch) *triage.Batch {
	cp := *b
	cp.Records = make([]triage.Record, len(b.Records))
	copy(cp.Records, b.Records)
	return &cp
}
