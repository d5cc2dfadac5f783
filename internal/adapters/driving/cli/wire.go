package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardfill/internal/adapters/driven/backend/remote"
	"github.com/custodia-labs/cardfill/internal/adapters/driven/config/file"
	"github.com/custodia-labs/cardfill/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/cardfill/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
	"github.com/custodia-labs/cardfill/internal/core/ports/driving"
	"github.com/custodia-labs/cardfill/internal/core/services"
	"github.com/custodia-labs/cardfill/internal/logger"
)

// catalogImporter loads a catalog snapshot into local storage.
type catalogImporter interface {
	ImportCatalog(ctx context.Context, catalog *sqlite.Catalog) error
}

// Services used by commands. They are nil until setup runs.
var (
	searchService   driving.SearchService
	projectService  driving.ProjectService
	settingsService driving.SettingsService
	sourceService   driving.SourceService
	cardStore       driven.CardStore
	catalogStore    catalogImporter
	fileConfig      *file.ConfigStore

	closers []func() error
)

// wireServices builds the service stack from the persistent flags.
// The catalog comes from the local SQLite store unless --server is set.
// Projects are always kept in the local store.
func wireServices(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var configStore driven.ConfigStore
	fc, err := file.NewConfigStore(configDir)
	if err != nil {
		logger.Warn("Using in-memory settings, config file unavailable: %v", err)
		configStore = memory.NewConfigStore()
	} else {
		fileConfig = fc
		configStore = fc
	}
	settings := services.NewSettingsService(configStore)

	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open data store: %w", err)
	}
	closers = append(closers, store.Close)
	logger.Debug("Opened data store %s", store.Path())

	var (
		backend  driven.SearchBackend
		registry driven.SourceRegistry
		dfcs     driven.DFCSource
		cards    driven.CardStore
	)
	if serverURL != "" {
		client := remote.NewClient(serverURL)
		backend, registry, dfcs = client, client, client
		cards = memory.NewCardStore()
		catalogStore = nil
		logger.Debug("Searching remote server %s", serverURL)
	} else {
		backend, registry, dfcs = store.SearchBackend(), store.SourceRegistry(), store.DFCSource()
		cards = store.CardStore()
		catalogStore = store
	}

	sources := services.NewSourceService(registry)
	snapshot, err := effectiveSettings(ctx, settings, sources)
	if errors.Is(err, domain.ErrValidation) {
		// Keep the settings commands usable so the file can be repaired.
		logger.Error("Ignoring saved settings: %v", err)
		snapshot, err = defaultSettings(ctx, sources)
	}
	if err != nil {
		return err
	}

	search := services.NewSearchService(backend, registry, snapshot)
	search.SetCardStore(cards)

	dfc, err := services.LoadDFCResolver(ctx, dfcs)
	if err != nil {
		logger.Warn("Continuing without DFC pairs: %v", err)
		dfc = services.NewDFCResolver(nil)
	}
	projects := services.NewProjectService(search, dfc)
	projects.SetProjectStore(store.ProjectStore())
	projects.SetCardStore(cards)

	searchService = search
	projectService = projects
	settingsService = settings
	sourceService = sources
	cardStore = cards
	return nil
}

// effectiveSettings reads the saved settings and fits the source list to the
// registry, so an empty list enables every source. Settings that fail
// validation are returned as an ErrValidation error.
func effectiveSettings(
	ctx context.Context, settings driving.SettingsService, sources driving.SourceService,
) (domain.SearchSettings, error) {
	saved, err := settings.Get()
	if err != nil {
		return domain.SearchSettings{}, fmt.Errorf("failed to read settings: %w", err)
	}
	rows, err := sources.Reconcile(ctx, saved.Sources.Sources)
	if err != nil {
		return domain.SearchSettings{}, fmt.Errorf("failed to load sources: %w", err)
	}
	saved.Sources.Sources = rows

	known := make(map[string]bool, len(rows))
	for _, row := range rows {
		known[row.Key] = true
	}
	required := saved.Sources.Required[:0:0]
	for _, key := range saved.Sources.Required {
		if known[key] {
			required = append(required, key)
		}
	}
	saved.Sources.Required = required

	if err := saved.Validate(); err != nil {
		return domain.SearchSettings{}, fmt.Errorf("invalid saved settings: %w", err)
	}
	return *saved, nil
}

// defaultSettings returns the built-in settings with every source enabled.
func defaultSettings(ctx context.Context, sources driving.SourceService) (domain.SearchSettings, error) {
	defaults := domain.DefaultSearchSettings()
	rows, err := sources.Reconcile(ctx, nil)
	if err != nil {
		return domain.SearchSettings{}, fmt.Errorf("failed to load sources: %w", err)
	}
	defaults.Sources.Sources = rows
	return defaults, nil
}

// reloadSettings pushes the saved settings into the search service.
func reloadSettings(ctx context.Context) error {
	snapshot, err := effectiveSettings(ctx, settingsService, sourceService)
	if err != nil {
		return err
	}
	return searchService.SetSettings(snapshot)
}

func closeServices() error {
	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		errs = append(errs, closers[i]())
	}
	closers = nil
	searchService = nil
	projectService = nil
	settingsService = nil
	sourceService = nil
	cardStore = nil
	catalogStore = nil
	fileConfig = nil
	return errors.Join(errs...)
}
