package driving

import (
	"context"

	"github.com/custodia-labs/cardfill/internal/core/domain"
)

// SearchService resolves queries into ordered card identifiers.
type SearchService interface {
	// Resolve merges every enabled source's matches for query.
	Resolve(ctx context.Context, query domain.SearchQuery) (domain.Resolution, error)

	// ResolveAll resolves every distinct query and returns the cached results
	// for their texts.
	ResolveAll(ctx context.Context, queries []domain.SearchQuery) (domain.SearchResults, error)

	// Lookup returns the cached results for a query text.
	Lookup(text string) (domain.SearchResultsForQuery, bool)

	// Settings returns the current settings snapshot.
	Settings() domain.SearchSettings

	// SetSettings replaces the settings snapshot and invalidates the cache.
	SetSettings(settings domain.SearchSettings) error
}
