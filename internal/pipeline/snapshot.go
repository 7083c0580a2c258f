package pipeline

import (
	"sync"

	"github.com/wonny/stockpick/internal/contracts"
)

// Snapshot holds the latest metric batch in memory for the server.
// Batches are never persisted.
type Snapshot struct {
	mu    sync.RWMutex
	batch *contracts.Batch
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{}
}

// Store replaces the current batch
func (s *Snapshot) Store(batch *contracts.Batch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch = batch
}

// Latest returns the current batch, or nil before the first collection
func (s *Snapshot) Latest() *contracts.Batch {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.batch
}
