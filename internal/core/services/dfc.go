package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
	"github.com/custodia-labs/cardfill/internal/logger"
)

// DFCResolver finds the paired back face of a double-faced card.
// It is read-only after construction and safe for concurrent use.
type DFCResolver struct {
	pairs domain.DFCPairs
}

// NewDFCResolver creates a resolver over a private copy of pairs.
func NewDFCResolver(pairs domain.DFCPairs) *DFCResolver {
	copied := make(domain.DFCPairs, len(pairs))
	for front, back := range pairs {
		copied[front] = back
	}
	return &DFCResolver{pairs: copied}
}

// LoadDFCResolver reads the pairing table from src once.
// A nil src yields an empty resolver.
func LoadDFCResolver(ctx context.Context, src driven.DFCSource) (*DFCResolver, error) {
	if src == nil {
		logger.Debug("No DFC source configured, backs will not be auto-linked")
		return NewDFCResolver(nil), nil
	}
	pairs, err := src.DFCPairs(ctx)
	if err != nil {
		return nil, fmt.Errorf("load DFC pairs: %w", err)
	}
	logger.Debug("Loaded %d DFC pairs", len(pairs))
	return NewDFCResolver(pairs), nil
}

// BackFor returns the canonical back name paired with front.
// Matching is exact and case-sensitive; there is no fuzzy fallback.
func (r *DFCResolver) BackFor(front string) (string, bool) {
	if r == nil {
		return "", false
	}
	return r.pairs.BackFor(front)
}

// Len returns the number of known pairs.
func (r *DFCResolver) Len() int {
	if r == nil {
		return 0
	}
	return len(r.pairs)
}
