package driving

import (
	"context"

	"github.com/custodia-labs/cardfill/internal/core/domain"
)

// SourceService exposes the source registry and priority ordering.
type SourceService interface {
	// List returns every registered source.
	List(ctx context.Context) ([]domain.SourceDocument, error)

	// Order returns the enabled source keys of rows in priority order.
	Order(ctx context.Context, rows []domain.SourceRow) ([]string, error)

	// DefaultRows enables every registered source in registry order.
	DefaultRows(ctx context.Context) ([]domain.SourceRow, error)

	// Reconcile fits a saved priority list to the current registry.
	Reconcile(ctx context.Context, rows []domain.SourceRow) ([]domain.SourceRow, error)
}
