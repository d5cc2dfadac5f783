package driving

import "github.com/custodia-labs/cardfill/internal/core/domain"

// SettingsService manages persisted search settings.
type SettingsService interface {
	// Get retrieves the current search settings.
	Get() (*domain.SearchSettings, error)

	// Save persists search settings.
	Save(settings *domain.SearchSettings) error

	// SetMinimumDPI updates the minimum DPI filter.
	SetMinimumDPI(dpi int) error

	// SetMaximumSize updates the maximum file size filter in megabytes.
	SetMaximumSize(mb int) error

	// SetFuzzySearch toggles fuzzy name matching.
	SetFuzzySearch(enabled bool) error

	// SetSources replaces the source priority list.
	SetSources(rows []domain.SourceRow) error
}
