package services

import (
	"fmt"

	"github.com/custodia-labs/cardfill/internal/core/domain"
)

// RankSources returns the keys of the enabled rows in priority order.
// Disabled rows are dropped without changing the relative order of the rest.
// A duplicate key, or a key missing from known, fails with domain.ErrConfig.
// A nil known skips the registry check.
func RankSources(rows []domain.SourceRow, known map[string]domain.SourceDocument) ([]string, error) {
	seen := make(map[string]bool, len(rows))
	order := make([]string, 0, len(rows))

	for i, row := range rows {
		if row.Key == "" {
			return nil, fmt.Errorf("%w: source row %d has no key", domain.ErrConfig, i)
		}
		if seen[row.Key] {
			return nil, fmt.Errorf("%w: duplicate source %q", domain.ErrConfig, row.Key)
		}
		seen[row.Key] = true

		if known != nil {
			if _, ok := known[row.Key]; !ok {
				return nil, fmt.Errorf("%w: unknown source %q", domain.ErrConfig, row.Key)
			}
		}
		if row.Enabled {
			order = append(order, row.Key)
		}
	}

	return order, nil
}

// indexSources keys source documents by primary key.
func indexSources(sources []domain.SourceDocument) map[string]domain.SourceDocument {
	index := make(map[string]domain.SourceDocument, len(sources))
	for _, src := range sources {
		index[src.Key] = src
	}
	return index
}
