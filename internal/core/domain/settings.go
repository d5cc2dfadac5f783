package domain

import (
	"fmt"
	"time"
)

// SearchTypeSettings controls how query text is matched.
type SearchTypeSettings struct {
	// FuzzySearch enables fuzzy name matching instead of exact matching.
	FuzzySearch bool

	// FilterCardbacks applies FilterSettings to CARDBACK queries. It is on by
	// default; turning it off orders cardbacks without filtering them.
	FilterCardbacks bool
}

// SourceSettings is the user's source priority list.
type SourceSettings struct {
	// Sources is the priority order; earlier rows rank higher.
	Sources []SourceRow

	// Required lists source keys whose failure fails the whole resolution.
	// All other sources are optional.
	Required []string
}

// IsRequired reports whether key is a mandatory source.
func (s SourceSettings) IsRequired(key string) bool {
	for _, r := range s.Required {
		if r == key {
			return true
		}
	}
	return false
}

// FilterSettings constrains which card documents are acceptable.
// Zero values mean "unset" and impose no constraint.
type FilterSettings struct {
	// MinimumDPI rejects documents below this resolution.
	MinimumDPI int

	// MaximumDPI rejects documents above this resolution.
	MaximumDPI int

	// MaximumSize rejects documents larger than this many megabytes.
	MaximumSize int

	// MaxResultsPerQuery truncates each result set.
	MaxResultsPerQuery int

	// Languages is an allow-list of language codes.
	Languages []string

	// SourceTypes is an allow-list of source types.
	SourceTypes []SourceType

	// IncludesTags requires at least one of these tags when set.
	IncludesTags []string

	// ExcludesTags rejects documents carrying any of these tags.
	ExcludesTags []string

	// CreatedAfter rejects documents created before this instant.
	CreatedAfter time.Time

	// CreatedBefore rejects documents created after this instant.
	CreatedBefore time.Time
}

// SearchSettings is the immutable snapshot consumed by one resolution pass.
type SearchSettings struct {
	// SearchType holds matching settings.
	SearchType SearchTypeSettings

	// Sources holds the priority list.
	Sources SourceSettings

	// Filters holds document constraints.
	Filters FilterSettings
}

// Validate checks the settings for values no resolution could honour.
// Source keys are checked separately against the registry.
func (s *SearchSettings) Validate() error {
	f := s.Filters
	if f.MinimumDPI < 0 || f.MaximumDPI < 0 || f.MaximumSize < 0 || f.MaxResultsPerQuery < 0 {
		return fmt.Errorf("%w: filter values must not be negative", ErrValidation)
	}
	if f.MaximumDPI > 0 && f.MinimumDPI > f.MaximumDPI {
		return fmt.Errorf("%w: minimum DPI %d exceeds maximum DPI %d", ErrValidation, f.MinimumDPI, f.MaximumDPI)
	}
	if !f.CreatedAfter.IsZero() && !f.CreatedBefore.IsZero() && f.CreatedAfter.After(f.CreatedBefore) {
		return fmt.Errorf("%w: empty date window", ErrValidation)
	}
	for _, t := range f.SourceTypes {
		if !t.IsValid() {
			return fmt.Errorf("%w: unknown source type %q", ErrValidation, t)
		}
	}
	return nil
}

// Clone returns a deep copy so snapshots cannot be mutated through shared slices.
func (s SearchSettings) Clone() SearchSettings {
	out := s
	out.Sources.Sources = append([]SourceRow(nil), s.Sources.Sources...)
	out.Sources.Required = append([]string(nil), s.Sources.Required...)
	out.Filters.Languages = append([]string(nil), s.Filters.Languages...)
	out.Filters.SourceTypes = append([]SourceType(nil), s.Filters.SourceTypes...)
	out.Filters.IncludesTags = append([]string(nil), s.Filters.IncludesTags...)
	out.Filters.ExcludesTags = append([]string(nil), s.Filters.ExcludesTags...)
	return out
}

// Default filter values.
const (
	DefaultMinimumDPI  = 0
	DefaultMaximumDPI  = 1500
	DefaultMaximumSize = 30
)

// DefaultSearchSettings returns settings with sensible defaults.
// The source list is left empty; callers enable every registered source
// in registry order until the user reorders them.
func DefaultSearchSettings() SearchSettings {
	return SearchSettings{
		SearchType: SearchTypeSettings{
			FuzzySearch:     false,
			FilterCardbacks: true,
		},
		Filters: FilterSettings{
			MinimumDPI:  DefaultMinimumDPI,
			MaximumDPI:  DefaultMaximumDPI,
			MaximumSize: DefaultMaximumSize,
		},
	}
}
