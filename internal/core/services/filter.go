package services

import (
	"strings"

	"github.com/custodia-labs/cardfill/internal/core/domain"
)

const bytesPerMB = 1 << 20

// Accepts reports whether doc satisfies every constraint set in filters.
// It is a pure function and safe for concurrent use.
func Accepts(doc *domain.CardDocument, filters *domain.FilterSettings) bool {
	if filters.MinimumDPI > 0 && doc.DPI < filters.MinimumDPI {
		return false
	}
	if filters.MaximumDPI > 0 && doc.DPI > filters.MaximumDPI {
		return false
	}
	if filters.MaximumSize > 0 && doc.Size > int64(filters.MaximumSize)*bytesPerMB {
		return false
	}
	if len(filters.SourceTypes) > 0 && !containsSourceType(filters.SourceTypes, doc.SourceType) {
		return false
	}
	if len(filters.Languages) > 0 && !containsFold(filters.Languages, doc.Language) {
		return false
	}
	if len(filters.IncludesTags) > 0 && !hasAnyTag(doc, filters.IncludesTags) {
		return false
	}
	if len(filters.ExcludesTags) > 0 && hasAnyTag(doc, filters.ExcludesTags) {
		return false
	}
	if !filters.CreatedAfter.IsZero() && doc.DateCreated.Before(filters.CreatedAfter) {
		return false
	}
	if !filters.CreatedBefore.IsZero() && doc.DateCreated.After(filters.CreatedBefore) {
		return false
	}
	return true
}

func containsSourceType(types []domain.SourceType, t domain.SourceType) bool {
	for _, candidate := range types {
		if candidate == t {
			return true
		}
	}
	return false
}

func containsFold(values []string, v string) bool {
	for _, candidate := range values {
		if strings.EqualFold(candidate, v) {
			return true
		}
	}
	return false
}

func hasAnyTag(doc *domain.CardDocument, tags []string) bool {
	for _, tag := range tags {
		if doc.HasTag(tag) {
			return true
		}
	}
	return false
}
