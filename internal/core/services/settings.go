package services

import (
	"fmt"
	"time"

	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
	"github.com/custodia-labs/cardfill/internal/core/ports/driving"
	"github.com/custodia-labs/cardfill/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyFuzzySearch     = "search.fuzzy"
	keyFilterCardbacks = "search.filter_cardbacks"
	keySourceOrder     = "sources.order"
	keySourceDisabled  = "sources.disabled"
	keySourceRequired  = "sources.required"
	keyMinimumDPI      = "filters.minimum_dpi"
	keyMaximumDPI      = "filters.maximum_dpi"
	keyMaximumSize     = "filters.maximum_size"
	keyMaxResults      = "filters.max_results"
	keyLanguages       = "filters.languages"
	keySourceTypes     = "filters.source_types"
	keyIncludesTags    = "filters.includes_tags"
	keyExcludesTags    = "filters.excludes_tags"
	keyCreatedAfter    = "filters.created_after"
	keyCreatedBefore   = "filters.created_before"
)

// SettingsService manages persisted search settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves the current search settings.
// Missing or unparseable values fall back to the defaults.
func (s *SettingsService) Get() (*domain.SearchSettings, error) {
	if s.configStore == nil {
		return nil, domain.ErrNotImplemented
	}
	defaults := domain.DefaultSearchSettings()

	settings := &domain.SearchSettings{
		SearchType: domain.SearchTypeSettings{
			FuzzySearch:     s.getBool(keyFuzzySearch, defaults.SearchType.FuzzySearch),
			FilterCardbacks: s.getBool(keyFilterCardbacks, defaults.SearchType.FilterCardbacks),
		},
		Sources: domain.SourceSettings{
			Sources:  s.getSourceRows(),
			Required: s.configStore.GetStringSlice(keySourceRequired),
		},
		Filters: domain.FilterSettings{
			MinimumDPI:         s.getInt(keyMinimumDPI, defaults.Filters.MinimumDPI),
			MaximumDPI:         s.getInt(keyMaximumDPI, defaults.Filters.MaximumDPI),
			MaximumSize:        s.getInt(keyMaximumSize, defaults.Filters.MaximumSize),
			MaxResultsPerQuery: s.getInt(keyMaxResults, defaults.Filters.MaxResultsPerQuery),
			Languages:          s.configStore.GetStringSlice(keyLanguages),
			SourceTypes:        s.getSourceTypes(),
			IncludesTags:       s.configStore.GetStringSlice(keyIncludesTags),
			ExcludesTags:       s.configStore.GetStringSlice(keyExcludesTags),
			CreatedAfter:       s.getTime(keyCreatedAfter),
			CreatedBefore:      s.getTime(keyCreatedBefore),
		},
	}

	return settings, nil
}

// Save validates and persists search settings.
func (s *SettingsService) Save(settings *domain.SearchSettings) error {
	if s.configStore == nil {
		return domain.ErrNotImplemented
	}
	if err := settings.Validate(); err != nil {
		return err
	}

	order := make([]string, 0, len(settings.Sources.Sources))
	disabled := make([]string, 0)
	for _, row := range settings.Sources.Sources {
		order = append(order, row.Key)
		if !row.Enabled {
			disabled = append(disabled, row.Key)
		}
	}
	sourceTypes := make([]string, 0, len(settings.Filters.SourceTypes))
	for _, t := range settings.Filters.SourceTypes {
		sourceTypes = append(sourceTypes, t.String())
	}

	err := s.configStore.Apply(map[string]any{
		keyFuzzySearch:     settings.SearchType.FuzzySearch,
		keyFilterCardbacks: settings.SearchType.FilterCardbacks,
		keySourceOrder:     order,
		keySourceDisabled:  disabled,
		keySourceRequired:  nonNil(settings.Sources.Required),
		keyMinimumDPI:      settings.Filters.MinimumDPI,
		keyMaximumDPI:      settings.Filters.MaximumDPI,
		keyMaximumSize:     settings.Filters.MaximumSize,
		keyMaxResults:      settings.Filters.MaxResultsPerQuery,
		keyLanguages:       nonNil(settings.Filters.Languages),
		keySourceTypes:     sourceTypes,
		keyIncludesTags:    nonNil(settings.Filters.IncludesTags),
		keyExcludesTags:    nonNil(settings.Filters.ExcludesTags),
		keyCreatedAfter:    timeValue(settings.Filters.CreatedAfter),
		keyCreatedBefore:   timeValue(settings.Filters.CreatedBefore),
	})
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SetMinimumDPI updates the minimum DPI filter.
func (s *SettingsService) SetMinimumDPI(dpi int) error {
	return s.update(func(settings *domain.SearchSettings) {
		settings.Filters.MinimumDPI = dpi
	})
}

// SetMaximumSize updates the maximum file size filter in megabytes.
func (s *SettingsService) SetMaximumSize(mb int) error {
	return s.update(func(settings *domain.SearchSettings) {
		settings.Filters.MaximumSize = mb
	})
}

// SetFuzzySearch toggles fuzzy matching.
func (s *SettingsService) SetFuzzySearch(enabled bool) error {
	return s.update(func(settings *domain.SearchSettings) {
		settings.SearchType.FuzzySearch = enabled
	})
}

// SetSources replaces the source priority list.
func (s *SettingsService) SetSources(rows []domain.SourceRow) error {
	if _, err := RankSources(rows, nil); err != nil {
		return err
	}
	return s.update(func(settings *domain.SearchSettings) {
		settings.Sources.Sources = append([]domain.SourceRow(nil), rows...)
	})
}

func (s *SettingsService) update(mutate func(settings *domain.SearchSettings)) error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	mutate(settings)
	return s.Save(settings)
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getSourceRows() []domain.SourceRow {
	order := s.configStore.GetStringSlice(keySourceOrder)
	if len(order) == 0 {
		return nil
	}
	disabled := make(map[string]bool)
	for _, key := range s.configStore.GetStringSlice(keySourceDisabled) {
		disabled[key] = true
	}
	rows := make([]domain.SourceRow, 0, len(order))
	for _, key := range order {
		rows = append(rows, domain.SourceRow{Key: key, Enabled: !disabled[key]})
	}
	return rows
}

func (s *SettingsService) getSourceTypes() []domain.SourceType {
	var types []domain.SourceType
	for _, val := range s.configStore.GetStringSlice(keySourceTypes) {
		t := domain.SourceType(val)
		if !t.IsValid() {
			logger.Warn("Ignoring unknown source type %q in %s", val, keySourceTypes)
			continue
		}
		types = append(types, t)
	}
	return types
}

func (s *SettingsService) getTime(key string) time.Time {
	val := s.configStore.GetString(key)
	if val == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		logger.Warn("Ignoring invalid timestamp %q in %s: %v", val, key, err)
		return time.Time{}
	}
	return t
}

// timeValue encodes t for the config store; the zero time removes the key.
func timeValue(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
