package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardfill/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/services"
	"github.com/custodia-labs/cardfill/internal/logger"
)

// testEnv holds the in-memory adapters behind the test services.
type testEnv struct {
	catalog  *memory.Catalog
	projects *memory.ProjectStore
	config   *memory.ConfigStore
}

// setupTestServices installs services backed by in-memory adapters.
// The previous wiring is restored when the test ends.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	registry := memory.NewSourceRegistry(
		domain.SourceDocument{Key: "alpha", Name: "Alpha Drive", Type: domain.SourceTypeGoogleDrive},
		domain.SourceDocument{Key: "beta", Name: "Beta Files", Type: domain.SourceTypeLocalFile},
	)
	catalog := memory.NewCatalog()
	catalog.Add(
		domain.CardDocument{Identifier: "a-forest", CardType: domain.CardTypeCard, Name: "Forest",
			Source: "alpha", DPI: 800, Size: 2 << 20, Priority: 1},
		domain.CardDocument{Identifier: "b-forest", CardType: domain.CardTypeCard, Name: "Forest",
			Source: "beta", DPI: 300, Size: 1 << 20},
		domain.CardDocument{Identifier: "a-delver", CardType: domain.CardTypeCard, Name: "Delver of Secrets",
			Source: "alpha", DPI: 600},
		domain.CardDocument{Identifier: "a-insectile", CardType: domain.CardTypeCard, Name: "Insectile Aberration",
			Source: "alpha", DPI: 600},
		domain.CardDocument{Identifier: "a-back", CardType: domain.CardTypeCardback, Name: "Classic",
			Source: "alpha", DPI: 600},
	)
	dfc := services.NewDFCResolver(domain.DFCPairs{"Delver of Secrets": "Insectile Aberration"})
	config := memory.NewConfigStore()
	projects := memory.NewProjectStore()

	sources := services.NewSourceService(registry)
	settings := services.NewSettingsService(config)
	snapshot, err := effectiveSettings(context.Background(), settings, sources)
	require.NoError(t, err)

	search := services.NewSearchService(catalog, registry, snapshot)
	cards := memory.NewCardStore()
	search.SetCardStore(cards)
	project := services.NewProjectService(search, dfc)
	project.SetProjectStore(projects)
	project.SetCardStore(cards)

	oldSetup, oldTeardown := setup, teardown
	setup = func(*cobra.Command) error { return nil }
	teardown = func() error { return nil }

	searchService = search
	projectService = project
	settingsService = settings
	sourceService = sources
	cardStore = cards
	catalogStore = nil
	fileConfig = nil

	t.Cleanup(func() {
		setup, teardown = oldSetup, oldTeardown
		searchService = nil
		projectService = nil
		settingsService = nil
		sourceService = nil
		cardStore = nil
	})
	return &testEnv{catalog: catalog, projects: projects, config: config}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		searchType = string(domain.CardTypeCard)
		searchJSON = false
		searchWatch = false
		projectName = ""
		projectSave = false
		projectJSON = false
		projectStock = "S30"
		projectFoil = false
		projectType = string(domain.CardTypeCard)
		editCardback = ""
		sourcesDisable = nil
		verbose = false
		logLevel = "debug"
		logger.SetVerbose(false)
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}
