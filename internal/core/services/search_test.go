package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockBackend implements driven.SearchBackend for testing.
// Documents are returned per source key regardless of query text.
type mockBackend struct {
	mu       sync.Mutex
	docs     map[string][]domain.CardDocument
	errs     map[string]error
	requests []driven.SearchRequest
	onSearch func()
}

func (m *mockBackend) Search(ctx context.Context, req driven.SearchRequest) ([]domain.CardDocument, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	hook := m.onSearch
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := m.errs[req.Source]; err != nil {
		return nil, err
	}
	return m.docs[req.Source], nil
}

func (m *mockBackend) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockBackend) sourcesQueried() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, r := range m.requests {
		out = append(out, r.Source)
	}
	return out
}

// mockRegistry implements driven.SourceRegistry for testing.
type mockRegistry struct {
	mu      sync.Mutex
	sources []domain.SourceDocument
	err     error
	calls   int
}

func (m *mockRegistry) ListSources(_ context.Context) ([]domain.SourceDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.sources, nil
}

// mockCardStore implements driven.CardStore for testing.
type mockCardStore struct {
	mu    sync.Mutex
	saved map[string]domain.CardDocument
}

func (m *mockCardStore) SaveCards(_ context.Context, cards []domain.CardDocument) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saved == nil {
		m.saved = make(map[string]domain.CardDocument)
	}
	for _, c := range cards {
		m.saved[c.Identifier] = c
	}
	return nil
}

func (m *mockCardStore) GetCard(_ context.Context, id string) (*domain.CardDocument, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.saved[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &c, nil
}

func (m *mockCardStore) GetCards(ctx context.Context, ids []string) ([]domain.CardDocument, error) {
	var out []domain.CardDocument
	for _, id := range ids {
		c, err := m.GetCard(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, *c)
	}
	return out, nil
}

// --- Helpers ---

func testRegistry() *mockRegistry {
	return &mockRegistry{sources: []domain.SourceDocument{
		{Key: "alpha", Name: "Alpha", Type: domain.SourceTypeGoogleDrive},
		{Key: "beta", Name: "Beta", Type: domain.SourceTypeLocalFile},
		{Key: "gamma", Name: "Gamma", Type: domain.SourceTypeAWSS3},
	}}
}

func card(id string, priority, dpi int) domain.CardDocument {
	return domain.CardDocument{
		Identifier: id,
		CardType:   domain.CardTypeCard,
		Name:       id,
		Priority:   priority,
		DPI:        dpi,
		Size:       1 << 20,
	}
}

func testSettings(rows ...domain.SourceRow) domain.SearchSettings {
	s := domain.DefaultSearchSettings()
	s.Sources.Sources = rows
	return s
}

func enabled(keys ...string) []domain.SourceRow {
	rows := make([]domain.SourceRow, 0, len(keys))
	for _, k := range keys {
		rows = append(rows, domain.SourceRow{Key: k, Enabled: true})
	}
	return rows
}

var forest = domain.SearchQuery{Query: "Forest", CardType: domain.CardTypeCard}

// --- Tests ---

func TestSearchService_Resolve_MergesInSourceOrder(t *testing.T) {
	backend := &mockBackend{docs: map[string][]domain.CardDocument{
		"alpha": {card("a2", 2, 600), card("a1", 1, 600)},
		"beta":  {card("a1", 0, 600), card("b0", 0, 600)},
	}}
	service := NewSearchService(backend, testRegistry(), testSettings(enabled("alpha", "beta")...))

	res, err := service.Resolve(context.Background(), forest)

	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2", "b0"}, res.Identifiers)
	assert.True(t, res.Complete())
}

func TestSearchService_Resolve_RankMonotonicity(t *testing.T) {
	backend := &mockBackend{docs: map[string][]domain.CardDocument{
		"alpha": {card("a1", 5, 600), card("a2", 9, 600)},
		"beta":  {card("b1", 0, 600)},
		"gamma": {card("g1", 0, 600), card("g2", 1, 600)},
	}}
	orders := [][]string{
		{"alpha", "beta", "gamma"},
		{"gamma", "alpha", "beta"},
		{"beta", "gamma", "alpha"},
	}

	sourceOf := map[byte]string{'a': "alpha", 'b': "beta", 'g': "gamma"}

	for _, order := range orders {
		service := NewSearchService(backend, testRegistry(), testSettings(enabled(order...)...))
		res, err := service.Resolve(context.Background(), forest)
		require.NoError(t, err)

		rank := make(map[string]int)
		for i, key := range order {
			rank[key] = i
		}
		last := -1
		for _, id := range res.Identifiers {
			r := rank[sourceOf[id[0]]]
			assert.GreaterOrEqual(t, r, last, "order %v, id %s", order, id)
			last = r
		}
	}
}

func TestSearchService_Resolve_TieBreakByIdentifier(t *testing.T) {
	backend := &mockBackend{docs: map[string][]domain.CardDocument{
		"alpha": {card("zz", 1, 600), card("mm", 1, 600), card("aa", 1, 600)},
	}}
	service := NewSearchService(backend, testRegistry(), testSettings(enabled("alpha")...))

	res, err := service.Resolve(context.Background(), forest)

	require.NoError(t, err)
	assert.Equal(t, []string{"aa", "mm", "zz"}, res.Identifiers)
}

func TestSearchService_Resolve_SkipsDisabledSources(t *testing.T) {
	backend := &mockBackend{docs: map[string][]domain.CardDocument{
		"alpha": {card("a1", 0, 600)},
		"beta":  {card("b1", 0, 600)},
	}}
	settings := testSettings(
		domain.SourceRow{Key: "alpha", Enabled: false},
		domain.SourceRow{Key: "beta", Enabled: true},
	)
	service := NewSearchService(backend, testRegistry(), settings)

	res, err := service.Resolve(context.Background(), forest)

	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, res.Identifiers)
	assert.Equal(t, []string{"beta"}, backend.sourcesQueried())
}

func TestSearchService_Resolve_FilteredDocumentsNeverReturned(t *testing.T) {
	backend := &mockBackend{docs: map[string][]domain.CardDocument{
		"alpha": {card("low", 0, 150)},
	}}
	settings := testSettings(enabled("alpha")...)
	settings.Filters.MinimumDPI = 300
	service := NewSearchService(backend, testRegistry(), settings)

	res, err := service.Resolve(context.Background(), forest)

	require.NoError(t, err)
	assert.Empty(t, res.Identifiers)
}

func TestSearchService_Resolve_FiltersByRegistrySourceType(t *testing.T) {
	backend := &mockBackend{docs: map[string][]domain.CardDocument{
		"alpha": {card("a1", 0, 600)},
		"beta":  {card("b1", 0, 600)},
	}}
	settings := testSettings(enabled("alpha", "beta")...)
	settings.Filters.SourceTypes = []domain.SourceType{domain.SourceTypeLocalFile}
	service := NewSearchService(backend, testRegistry(), settings)

	res, err := service.Resolve(context.Background(), forest)

	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, res.Identifiers)
}

func TestSearchService_Resolve_IgnoresOtherCardTypes(t *testing.T) {
	token := card("t1", 0, 600)
	token.CardType = domain.CardTypeToken
	backend := &mockBackend{docs: map[string][]domain.CardDocument{
		"alpha": {token, card("c1", 0, 600)},
	}}
	service := NewSearchService(backend, testRegistry(), testSettings(enabled("alpha")...))

	res, err := service.Resolve(context.Background(), forest)

	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, res.Identifiers)
}

func TestSearchService_Resolve_CardbacksFilteredByDefault(t *testing.T) {
	back := card("back", 0, 100)
	back.CardType = domain.CardTypeCardback
	backend := &mockBackend{docs: map[string][]domain.CardDocument{"alpha": {back}}}
	settings := testSettings(enabled("alpha")...)
	settings.Filters.MinimumDPI = 300
	query := domain.SearchQuery{Query: "Classic", CardType: domain.CardTypeCardback}

	service := NewSearchService(backend, testRegistry(), settings)
	res, err := service.Resolve(context.Background(), query)
	require.NoError(t, err)
	assert.Empty(t, res.Identifiers)

	settings.SearchType.FilterCardbacks = false
	require.NoError(t, service.SetSettings(settings))
	res, err = service.Resolve(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, []string{"back"}, res.Identifiers)
}

func TestSearchService_Resolve_Truncates(t *testing.T) {
	backend := &mockBackend{docs: map[string][]domain.CardDocument{
		"alpha": {card("a1", 0, 600), card("a2", 1, 600), card("a3", 2, 600)},
	}}
	settings := testSettings(enabled("alpha")...)
	settings.Filters.MaxResultsPerQuery = 2
	service := NewSearchService(backend, testRegistry(), settings)

	res, err := service.Resolve(context.Background(), forest)

	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, res.Identifiers)
}

func TestSearchService_Resolve_NoDuplicates(t *testing.T) {
	backend := &mockBackend{docs: map[string][]domain.CardDocument{
		"alpha": {card("x", 0, 600), card("y", 1, 600), card("x", 2, 600)},
		"beta":  {card("y", 0, 600), card("z", 0, 600)},
		"gamma": {card("x", 0, 600), card("z", 1, 600)},
	}}
	service := NewSearchService(backend, testRegistry(), testSettings(enabled("gamma", "beta", "alpha")...))

	res, err := service.Resolve(context.Background(), forest)

	require.NoError(t, err)
	seen := make(map[string]bool)
	for _, id := range res.Identifiers {
		assert.False(t, seen[id], "duplicate %s", id)
		seen[id] = true
	}
	assert.Equal(t, []string{"x", "z", "y"}, res.Identifiers)
}

func TestSearchService_Resolve_EmptyQuery(t *testing.T) {
	backend := &mockBackend{}
	registry := testRegistry()
	service := NewSearchService(backend, registry, testSettings(enabled("alpha")...))

	res, err := service.Resolve(context.Background(), domain.SearchQuery{CardType: domain.CardTypeCard})

	require.NoError(t, err)
	assert.NotNil(t, res.Identifiers)
	assert.Empty(t, res.Identifiers)
	assert.Equal(t, 0, backend.calls())
	assert.Equal(t, 0, registry.calls)
}

func TestSearchService_Resolve_InvalidCardType(t *testing.T) {
	backend := &mockBackend{}
	service := NewSearchService(backend, testRegistry(), testSettings(enabled("alpha")...))

	_, err := service.Resolve(context.Background(), domain.SearchQuery{Query: "Forest", CardType: "EMBLEM"})

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, backend.calls())
}

func TestSearchService_Resolve_UnknownSource(t *testing.T) {
	service := NewSearchService(&mockBackend{}, testRegistry(), testSettings(enabled("alpha", "delta")...))

	_, err := service.Resolve(context.Background(), forest)

	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestSearchService_Resolve_DuplicateSource(t *testing.T) {
	service := NewSearchService(&mockBackend{}, testRegistry(), testSettings(enabled("alpha", "alpha")...))

	_, err := service.Resolve(context.Background(), forest)

	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestSearchService_Resolve_Idempotent(t *testing.T) {
	backend := &mockBackend{docs: map[string][]domain.CardDocument{
		"alpha": {card("a2", 2, 600), card("a1", 1, 600)},
		"beta":  {card("b0", 0, 600)},
	}}
	service := NewSearchService(backend, testRegistry(), testSettings(enabled("alpha", "beta")...))
	ctx := context.Background()

	first, err := service.Resolve(ctx, forest)
	require.NoError(t, err)
	calls := backend.calls()

	second, err := service.Resolve(ctx, forest)
	require.NoError(t, err)

	assert.Equal(t, first.Identifiers, second.Identifiers)
	assert.Equal(t, calls, backend.calls(), "second resolve should be served from cache")
}

func TestSearchService_Resolve_RegistryLoadedOnce(t *testing.T) {
	registry := testRegistry()
	service := NewSearchService(&mockBackend{}, registry, testSettings(enabled("alpha")...))
	ctx := context.Background()

	_, err := service.Resolve(ctx, forest)
	require.NoError(t, err)
	_, err = service.Resolve(ctx, domain.SearchQuery{Query: "Island", CardType: domain.CardTypeCard})
	require.NoError(t, err)

	assert.Equal(t, 1, registry.calls)
}

func TestSearchService_Resolve_RegistryError(t *testing.T) {
	registry := &mockRegistry{err: errors.New("registry down")}
	service := NewSearchService(&mockBackend{}, registry, testSettings(enabled("alpha")...))

	_, err := service.Resolve(context.Background(), forest)
	require.Error(t, err)

	registry.err = nil
	registry.sources = testRegistry().sources
	_, err = service.Resolve(context.Background(), forest)
	assert.NoError(t, err, "registry failures are not cached")
}

func TestSearchService_Resolve_NoBackend(t *testing.T) {
	service := NewSearchService(nil, testRegistry(), testSettings(enabled("alpha")...))

	_, err := service.Resolve(context.Background(), forest)

	assert.ErrorIs(t, err, domain.ErrNotImplemented)
}

func TestSearchService_Resolve_OptionalSourceFailure(t *testing.T) {
	backend := &mockBackend{
		docs: map[string][]domain.CardDocument{"alpha": {card("a1", 0, 600)}},
		errs: map[string]error{"beta": errors.New("connection refused")},
	}
	service := NewSearchService(backend, testRegistry(), testSettings(enabled("alpha", "beta")...))
	ctx := context.Background()

	res, err := service.Resolve(ctx, forest)

	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, res.Identifiers)
	assert.Equal(t, []string{"beta"}, res.FailedSources)
	assert.False(t, res.Complete())

	_, found := service.Lookup("Forest")
	assert.False(t, found, "incomplete resolutions are not memoised")
}

func TestSearchService_Resolve_RequiredSourceFailure(t *testing.T) {
	backend := &mockBackend{
		docs: map[string][]domain.CardDocument{"alpha": {card("a1", 0, 600)}},
		errs: map[string]error{"beta": errors.New("connection refused")},
	}
	settings := testSettings(enabled("alpha", "beta")...)
	settings.Sources.Required = []string{"beta"}
	service := NewSearchService(backend, testRegistry(), settings)

	_, err := service.Resolve(context.Background(), forest)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrBackend)
	var backendErr *domain.BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, "beta", backendErr.Source)

	_, found := service.Lookup("Forest")
	assert.False(t, found)
}

func TestSearchService_Resolve_CancelledWritesNothing(t *testing.T) {
	backend := &mockBackend{docs: map[string][]domain.CardDocument{"alpha": {card("a1", 0, 600)}}}
	service := NewSearchService(backend, testRegistry(), testSettings(enabled("alpha")...))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.Resolve(ctx, forest)

	assert.ErrorIs(t, err, context.Canceled)
	_, found := service.Lookup("Forest")
	assert.False(t, found)
}

func TestSearchService_Resolve_StaleGenerationWritesNothing(t *testing.T) {
	backend := &mockBackend{docs: map[string][]domain.CardDocument{"alpha": {card("a1", 0, 600)}}}
	settings := testSettings(enabled("alpha")...)
	service := NewSearchService(backend, testRegistry(), settings)

	var once sync.Once
	backend.onSearch = func() {
		once.Do(func() {
			assert.NoError(t, service.SetSettings(settings))
		})
	}

	res, err := service.Resolve(context.Background(), forest)

	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, res.Identifiers)
	_, found := service.Lookup("Forest")
	assert.False(t, found, "resolution started under old settings must not be cached")
}

func TestSearchService_SetSettings_InvalidatesCache(t *testing.T) {
	backend := &mockBackend{docs: map[string][]domain.CardDocument{"alpha": {card("a1", 0, 600)}}}
	settings := testSettings(enabled("alpha")...)
	service := NewSearchService(backend, testRegistry(), settings)
	ctx := context.Background()

	_, err := service.Resolve(ctx, forest)
	require.NoError(t, err)
	_, found := service.Lookup("Forest")
	require.True(t, found)

	settings.Filters.MinimumDPI = 900
	require.NoError(t, service.SetSettings(settings))

	_, found = service.Lookup("Forest")
	assert.False(t, found)

	res, err := service.Resolve(ctx, forest)
	require.NoError(t, err)
	assert.Empty(t, res.Identifiers)
	assert.Equal(t, 2, backend.calls())
}

func TestSearchService_SetSettings_RejectsInvalid(t *testing.T) {
	service := NewSearchService(&mockBackend{}, testRegistry(), testSettings(enabled("alpha")...))
	settings := service.Settings()
	settings.Filters.MinimumDPI = -1

	err := service.SetSettings(settings)

	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, 0, service.Settings().Filters.MinimumDPI)
}

func TestSearchService_Settings_ReturnsCopy(t *testing.T) {
	service := NewSearchService(&mockBackend{}, testRegistry(), testSettings(enabled("alpha")...))

	settings := service.Settings()
	settings.Sources.Sources[0].Enabled = false

	assert.True(t, service.Settings().Sources.Sources[0].Enabled)
}

func TestSearchService_Resolve_PassesFuzzyMode(t *testing.T) {
	backend := &mockBackend{}
	settings := testSettings(enabled("alpha")...)
	settings.SearchType.FuzzySearch = true
	service := NewSearchService(backend, testRegistry(), settings)

	_, err := service.Resolve(context.Background(), forest)

	require.NoError(t, err)
	require.Len(t, backend.requests, 1)
	assert.True(t, backend.requests[0].FuzzySearch)
	assert.Equal(t, "Forest", backend.requests[0].Query)
	assert.Equal(t, domain.CardTypeCard, backend.requests[0].CardType)
}

func TestSearchService_ResolveAll(t *testing.T) {
	cb := card("cb1", 0, 600)
	cb.CardType = domain.CardTypeCardback
	backend := &mockBackend{docs: map[string][]domain.CardDocument{
		"alpha": {card("c1", 0, 600), cb},
	}}
	service := NewSearchService(backend, testRegistry(), testSettings(enabled("alpha")...))

	results, err := service.ResolveAll(context.Background(), []domain.SearchQuery{
		forest,
		forest,
		{Query: "Forest", CardType: domain.CardTypeCardback},
		{CardType: domain.CardTypeCard},
	})

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"c1"}, results["Forest"].Card)
	assert.Equal(t, []string{"cb1"}, results["Forest"].Cardback)
	assert.Nil(t, results["Forest"].Token)
	assert.Equal(t, 2, backend.calls(), "duplicate queries resolve once")

	cached, found := service.Lookup("Forest")
	require.True(t, found)
	assert.Equal(t, results["Forest"], cached)
}

func TestSearchService_ResolveAll_PropagatesErrors(t *testing.T) {
	service := NewSearchService(&mockBackend{}, testRegistry(), testSettings(enabled("alpha")...))

	_, err := service.ResolveAll(context.Background(), []domain.SearchQuery{
		forest,
		{Query: "Island", CardType: "EMBLEM"},
	})

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestSearchService_Resolve_RecordsCards(t *testing.T) {
	backend := &mockBackend{docs: map[string][]domain.CardDocument{
		"alpha": {card("a1", 0, 600), card("low", 1, 10)},
	}}
	settings := testSettings(enabled("alpha")...)
	settings.Filters.MinimumDPI = 300
	store := &mockCardStore{}
	service := NewSearchService(backend, testRegistry(), settings)
	service.SetCardStore(store)

	_, err := service.Resolve(context.Background(), forest)
	require.NoError(t, err)

	got, err := store.GetCard(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "alpha", got.Source)
	assert.Equal(t, "Alpha", got.SourceName)
	assert.Equal(t, domain.SourceTypeGoogleDrive, got.SourceType)

	_, err = store.GetCard(context.Background(), "low")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSearchService_ConcurrentResolve(t *testing.T) {
	backend := &mockBackend{docs: map[string][]domain.CardDocument{
		"alpha": {card("a1", 0, 600)},
		"beta":  {card("b1", 0, 600)},
	}}
	service := NewSearchService(backend, testRegistry(), testSettings(enabled("alpha", "beta")...))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := service.Resolve(context.Background(), forest)
			assert.NoError(t, err)
			assert.Equal(t, []string{"a1", "b1"}, res.Identifiers)
		}()
	}
	wg.Wait()
}
