package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
)

// Ensure CardStore implements the interface.
var _ driven.CardStore = (*CardStore)(nil)

// CardStore is an in-memory implementation of driven.CardStore.
type CardStore struct {
	mu    sync.RWMutex
	cards map[string]domain.CardDocument
}

// NewCardStore creates a new in-memory card store.
func NewCardStore() *CardStore {
	return &CardStore{
		cards: make(map[string]domain.CardDocument),
	}
}

// SaveCards stores or replaces documents by identifier.
func (s *CardStore) SaveCards(_ context.Context, cards []domain.CardDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, card := range cards {
		s.cards[card.Identifier] = card
	}
	return nil
}

// GetCard retrieves a document by identifier.
func (s *CardStore) GetCard(_ context.Context, identifier string) (*domain.CardDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	card, ok := s.cards[identifier]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &card, nil
}

// GetCards retrieves documents in identifier order, skipping unknown ones.
func (s *CardStore) GetCards(_ context.Context, identifiers []string) ([]domain.CardDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.CardDocument, 0, len(identifiers))
	for _, id := range identifiers {
		if card, ok := s.cards[id]; ok {
			result = append(result, card)
		}
	}
	return result, nil
}
