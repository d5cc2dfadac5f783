package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
)

// Ensure DFCStore implements the interface.
var _ driven.DFCSource = (*DFCStore)(nil)

// DFCStore is an in-memory implementation of driven.DFCSource.
type DFCStore struct {
	mu    sync.RWMutex
	pairs domain.DFCPairs
}

// NewDFCStore creates a store holding a copy of pairs.
func NewDFCStore(pairs domain.DFCPairs) *DFCStore {
	s := &DFCStore{pairs: make(domain.DFCPairs, len(pairs))}
	for front, back := range pairs {
		s.pairs[front] = back
	}
	return s
}

// Set records a pairing, replacing any previous back for front.
func (s *DFCStore) Set(front, back string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pairs[front] = back
}

// DFCPairs returns a copy of the pairing table.
func (s *DFCStore) DFCPairs(_ context.Context) (domain.DFCPairs, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make(domain.DFCPairs, len(s.pairs))
	for front, back := range s.pairs {
		result[front] = back
	}
	return result, nil
}
