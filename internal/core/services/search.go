package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
	"github.com/custodia-labs/cardfill/internal/core/ports/driving"
	"github.com/custodia-labs/cardfill/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// maxConcurrentQueries bounds ResolveAll's query fan-out. Each query fans out
// again per source.
const maxConcurrentQueries = 8

// candidate is a filtered document awaiting merge.
type candidate struct {
	rank int
	doc  domain.CardDocument
}

// SearchService resolves queries against every enabled source and memoises
// the merged results by query text.
type SearchService struct {
	backend   driven.SearchBackend
	registry  driven.SourceRegistry
	cardStore driven.CardStore

	sourcesMu sync.Mutex
	sources   map[string]domain.SourceDocument

	mu         sync.RWMutex
	settings   domain.SearchSettings
	generation uint64
	cache      map[domain.SearchQuery][]string
}

// NewSearchService creates a new search service with the given settings.
// The registry is read on first use and then kept for the process lifetime.
func NewSearchService(
	backend driven.SearchBackend,
	registry driven.SourceRegistry,
	settings domain.SearchSettings,
) *SearchService {
	return &SearchService{
		backend:  backend,
		registry: registry,
		settings: settings.Clone(),
		cache:    make(map[domain.SearchQuery][]string),
	}
}

// SetCardStore sets the store that receives every accepted document.
func (s *SearchService) SetCardStore(store driven.CardStore) {
	s.cardStore = store
}

// Settings returns the current settings snapshot.
func (s *SearchService) Settings() domain.SearchSettings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone()
}

// SetSettings validates and installs a new settings snapshot.
// The whole cache is invalidated, and resolutions still in flight under the
// previous snapshot will not write their results.
func (s *SearchService) SetSettings(settings domain.SearchSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings.Clone()
	s.generation++
	s.cache = make(map[domain.SearchQuery][]string)
	logger.Debug("Search settings replaced, cache invalidated (generation %d)", s.generation)
	return nil
}

// Lookup returns the memoised results for a query text.
func (s *SearchService) Lookup(text string) (domain.SearchResultsForQuery, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out domain.SearchResultsForQuery
	found := false
	for _, ct := range domain.AllCardTypes() {
		ids, ok := s.cache[domain.SearchQuery{Query: text, CardType: ct}]
		if !ok {
			continue
		}
		found = true
		out.Set(ct, append([]string{}, ids...))
	}
	return out, found
}

// Resolve returns the merged identifiers for query.
//
// Every enabled source is searched concurrently. Each source's candidates are
// filtered, then all candidates are ordered by (source rank, priority,
// identifier) and deduplicated keeping the first occurrence, so the highest
// ranked source wins. A failing optional source is logged and listed in
// FailedSources; a failing required source fails the resolution.
func (s *SearchService) Resolve(ctx context.Context, query domain.SearchQuery) (domain.Resolution, error) {
	res := domain.Resolution{Query: query}

	if err := query.Validate(); err != nil {
		return res, err
	}
	if query.IsEmpty() {
		res.Identifiers = []string{}
		return res, nil
	}

	settings, generation := s.snapshot()
	if ids, ok := s.cached(query, generation); ok {
		logger.Debug("Cache hit for %s %q", query.CardType, query.Query)
		res.Identifiers = ids
		return res, nil
	}

	logger.Section("Resolve")
	logger.Debug("Query: %q, card type: %s, fuzzy: %t", query.Query, query.CardType, settings.SearchType.FuzzySearch)

	if s.backend == nil {
		return res, fmt.Errorf("resolve %q: search backend: %w", query.Query, domain.ErrNotImplemented)
	}

	known, err := s.sourceIndex(ctx)
	if err != nil {
		return res, fmt.Errorf("resolve %q: %w", query.Query, err)
	}
	order, err := RankSources(settings.Sources.Sources, known)
	if err != nil {
		return res, err
	}
	logger.Debug("Source order: %v", order)

	perSource, failed, err := s.searchSources(ctx, query, order, &settings)
	if err != nil {
		return res, fmt.Errorf("resolve %q: %w", query.Query, err)
	}

	accepted := mergeCandidates(query.CardType, order, perSource, known, &settings)
	res.Identifiers = make([]string, len(accepted))
	for i := range accepted {
		res.Identifiers[i] = accepted[i].Identifier
	}
	res.FailedSources = failed
	logger.Info("Resolved %s %q: %d results from %d sources", query.CardType, query.Query, len(res.Identifiers), len(order))

	// A cancelled resolution writes nothing.
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if res.Complete() {
		s.store(query, res.Identifiers, generation)
	} else {
		logger.Warn("Resolution of %q incomplete, failed sources: %v", query.Query, failed)
	}
	s.saveCards(ctx, accepted)

	return res, nil
}

// ResolveAll resolves every distinct query concurrently and returns their
// results keyed by query text.
func (s *SearchService) ResolveAll(ctx context.Context, queries []domain.SearchQuery) (domain.SearchResults, error) {
	distinct := make([]domain.SearchQuery, 0, len(queries))
	seen := make(map[domain.SearchQuery]bool, len(queries))
	for _, q := range queries {
		if seen[q] {
			continue
		}
		seen[q] = true
		distinct = append(distinct, q)
	}

	resolutions := make([]domain.Resolution, len(distinct))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentQueries)
	for i, q := range distinct {
		g.Go(func() error {
			res, err := s.Resolve(gctx, q)
			if err != nil {
				return err
			}
			resolutions[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	results := make(domain.SearchResults, len(distinct))
	for _, res := range resolutions {
		if res.Query.IsEmpty() {
			continue
		}
		entry := results[res.Query.Query]
		entry.Set(res.Query.CardType, res.Identifiers)
		results[res.Query.Query] = entry
	}
	return results, nil
}

// searchSources issues one lookup per source and joins them.
// The returned slices are indexed like order.
func (s *SearchService) searchSources(
	ctx context.Context, query domain.SearchQuery, order []string, settings *domain.SearchSettings,
) ([][]domain.CardDocument, []string, error) {
	perSource := make([][]domain.CardDocument, len(order))
	sourceFailed := make([]bool, len(order))

	g, gctx := errgroup.WithContext(ctx)
	for i, key := range order {
		g.Go(func() error {
			docs, err := s.backend.Search(gctx, driven.SearchRequest{
				Query:       query.Query,
				CardType:    query.CardType,
				Source:      key,
				FuzzySearch: settings.SearchType.FuzzySearch,
			})
			if err == nil {
				perSource[i] = docs
				logger.Debug("Source %s: %d candidates", key, len(docs))
				return nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if settings.Sources.IsRequired(key) {
				return &domain.BackendError{Source: key, Err: err}
			}
			logger.Warn("Source %s failed, continuing without it: %v", key, err)
			sourceFailed[i] = true
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var failed []string
	for i, f := range sourceFailed {
		if f {
			failed = append(failed, order[i])
		}
	}
	return perSource, failed, nil
}

// mergeCandidates filters, orders and deduplicates the per-source results.
func mergeCandidates(
	cardType domain.CardType,
	order []string,
	perSource [][]domain.CardDocument,
	known map[string]domain.SourceDocument,
	settings *domain.SearchSettings,
) []domain.CardDocument {
	applyFilters := cardType != domain.CardTypeCardback || settings.SearchType.FilterCardbacks

	var candidates []candidate
	for rank, docs := range perSource {
		src := known[order[rank]]
		for _, doc := range docs {
			if doc.CardType != cardType {
				continue
			}
			if doc.Source == "" {
				doc.Source = src.Key
			}
			if doc.SourceType == "" {
				doc.SourceType = src.Type
			}
			if doc.SourceName == "" {
				doc.SourceName = src.Name
			}
			if applyFilters && !Accepts(&doc, &settings.Filters) {
				continue
			}
			candidates = append(candidates, candidate{rank: rank, doc: doc})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if a.doc.Priority != b.doc.Priority {
			return a.doc.Priority < b.doc.Priority
		}
		return a.doc.Identifier < b.doc.Identifier
	})

	seen := make(map[string]bool, len(candidates))
	merged := make([]domain.CardDocument, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.doc.Identifier] {
			continue
		}
		seen[c.doc.Identifier] = true
		merged = append(merged, c.doc)
	}

	if limit := settings.Filters.MaxResultsPerQuery; limit > 0 && len(merged) > limit {
		merged = merged[:limit]
	}
	return merged
}

func (s *SearchService) snapshot() (domain.SearchSettings, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings.Clone(), s.generation
}

func (s *SearchService) cached(query domain.SearchQuery, generation uint64) ([]string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if generation != s.generation {
		return nil, false
	}
	ids, ok := s.cache[query]
	if !ok {
		return nil, false
	}
	return append([]string{}, ids...), true
}

// store memoises ids unless the settings changed since generation.
func (s *SearchService) store(query domain.SearchQuery, ids []string, generation uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		logger.Debug("Discarding stale resolution of %q", query.Query)
		return
	}
	s.cache[query] = append([]string{}, ids...)
}

// sourceIndex loads the registry once. Failures are not cached.
func (s *SearchService) sourceIndex(ctx context.Context) (map[string]domain.SourceDocument, error) {
	s.sourcesMu.Lock()
	defer s.sourcesMu.Unlock()

	if s.sources != nil {
		return s.sources, nil
	}
	if s.registry == nil {
		return nil, errors.New("source registry unavailable")
	}
	sources, err := s.registry.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}
	s.sources = indexSources(sources)
	logger.Debug("Source registry loaded: %d sources", len(s.sources))
	return s.sources, nil
}

func (s *SearchService) saveCards(ctx context.Context, cards []domain.CardDocument) {
	if s.cardStore == nil || len(cards) == 0 {
		return
	}
	if err := s.cardStore.SaveCards(ctx, cards); err != nil {
		logger.Warn("Failed to cache %d card documents: %v", len(cards), err)
	}
}
