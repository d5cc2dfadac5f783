package driven

import (
	"context"

	"github.com/custodia-labs/cardfill/internal/core/domain"
)

// CardStore caches card documents seen by the resolver so that result
// identifiers can be hydrated for display.
type CardStore interface {
	// SaveCards stores or replaces documents by identifier.
	SaveCards(ctx context.Context, cards []domain.CardDocument) error

	// GetCard retrieves a document by identifier.
	GetCard(ctx context.Context, identifier string) (*domain.CardDocument, error)

	// GetCards retrieves the documents for identifiers, in the same order.
	// Unknown identifiers are skipped.
	GetCards(ctx context.Context, identifiers []string) ([]domain.CardDocument, error)
}
