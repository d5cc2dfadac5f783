package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
)

// Ensure SourceRegistry implements the interface.
var _ driven.SourceRegistry = (*SourceRegistry)(nil)

// SourceRegistry is an in-memory implementation of driven.SourceRegistry.
// Sources are listed in the order they were added.
type SourceRegistry struct {
	mu      sync.RWMutex
	order   []string
	sources map[string]domain.SourceDocument
}

// NewSourceRegistry creates a registry holding sources.
// Later duplicates of a key are ignored.
func NewSourceRegistry(sources ...domain.SourceDocument) *SourceRegistry {
	r := &SourceRegistry{sources: make(map[string]domain.SourceDocument)}
	for _, src := range sources {
		_ = r.Add(src)
	}
	return r
}

// Add registers a source.
func (r *SourceRegistry) Add(src domain.SourceDocument) error {
	if src.Key == "" {
		return fmt.Errorf("%w: source has no key", domain.ErrValidation)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sources[src.Key]; ok {
		return fmt.Errorf("source %q: %w", src.Key, domain.ErrAlreadyExists)
	}
	r.order = append(r.order, src.Key)
	r.sources[src.Key] = src
	return nil
}

// ListSources returns every source in registration order.
func (r *SourceRegistry) ListSources(_ context.Context) ([]domain.SourceDocument, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.SourceDocument, 0, len(r.order))
	for _, key := range r.order {
		result = append(result, r.sources[key])
	}
	return result, nil
}
