package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
	"github.com/custodia-labs/cardfill/internal/core/ports/driving"
	"github.com/custodia-labs/cardfill/internal/logger"
)

// Ensure SourceService implements the interface.
var _ driving.SourceService = (*SourceService)(nil)

// SourceService exposes the source registry and priority ordering.
type SourceService struct {
	registry driven.SourceRegistry
}

// NewSourceService creates a new source service.
func NewSourceService(registry driven.SourceRegistry) *SourceService {
	return &SourceService{registry: registry}
}

// List returns every registered source.
func (s *SourceService) List(ctx context.Context) ([]domain.SourceDocument, error) {
	if s.registry == nil {
		return nil, domain.ErrNotImplemented
	}
	sources, err := s.registry.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	return sources, nil
}

// Order returns the enabled keys of rows in priority order, checked against
// the registry.
func (s *SourceService) Order(ctx context.Context, rows []domain.SourceRow) ([]string, error) {
	sources, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return RankSources(rows, indexSources(sources))
}

// DefaultRows enables every registered source in registry order.
func (s *SourceService) DefaultRows(ctx context.Context) ([]domain.SourceRow, error) {
	return s.Reconcile(ctx, nil)
}

// Reconcile fits a saved priority list to the current registry. Rows for
// sources that no longer exist are dropped, duplicates keep their first
// position, and newly registered sources are appended enabled.
func (s *SourceService) Reconcile(ctx context.Context, rows []domain.SourceRow) ([]domain.SourceRow, error) {
	sources, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	known := indexSources(sources)

	result := make([]domain.SourceRow, 0, len(sources))
	seen := make(map[string]bool, len(sources))
	for _, row := range rows {
		if _, ok := known[row.Key]; !ok {
			logger.Warn("Dropping unknown source %q from the priority list", row.Key)
			continue
		}
		if seen[row.Key] {
			continue
		}
		seen[row.Key] = true
		result = append(result, row)
	}
	for _, src := range sources {
		if !seen[src.Key] {
			seen[src.Key] = true
			result = append(result, domain.SourceRow{Key: src.Key, Enabled: true})
		}
	}
	return result, nil
}
