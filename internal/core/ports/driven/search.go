package driven

import (
	"context"

	"github.com/custodia-labs/cardfill/internal/core/domain"
)

// SearchBackend finds candidate card documents within a single source.
// Implementations return an error wrapping domain.ErrBackend on network or
// protocol failure.
type SearchBackend interface {
	// Search returns documents in Source matching Query for CardType.
	// Result order is not significant; the resolver imposes its own.
	Search(ctx context.Context, req SearchRequest) ([]domain.CardDocument, error)
}

// SearchRequest is one per-source lookup.
type SearchRequest struct {
	// Query is the search text.
	Query string

	// CardType selects the kind of image.
	CardType domain.CardType

	// Source is the source key to search within.
	Source string

	// FuzzySearch enables fuzzy name matching; otherwise names match exactly
	// (case-insensitive).
	FuzzySearch bool
}
