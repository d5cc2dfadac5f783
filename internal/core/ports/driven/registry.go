package driven

import (
	"context"

	"github.com/custodia-labs/cardfill/internal/core/domain"
)

// SourceRegistry lists the known search sources.
// It is loaded once at process start and treated as read-only afterwards.
type SourceRegistry interface {
	// ListSources returns every known source in registry order.
	ListSources(ctx context.Context) ([]domain.SourceDocument, error)
}

// DFCSource supplies the double-faced card pairing table.
type DFCSource interface {
	// DFCPairs returns the front name to back name mapping.
	DFCPairs(ctx context.Context) (domain.DFCPairs, error)
}
