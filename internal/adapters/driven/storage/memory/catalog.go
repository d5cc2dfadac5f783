package memory

import (
	"context"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/custodia-labs/cardfill/internal/core/domain"
	"github.com/custodia-labs/cardfill/internal/core/ports/driven"
)

// Ensure Catalog implements the interface.
var _ driven.SearchBackend = (*Catalog)(nil)

// Catalog is an in-memory implementation of driven.SearchBackend over a
// fixed set of card documents.
//
// Exact search compares searchable names. Fuzzy search accepts a document
// when the query's characters appear in order in its name.
type Catalog struct {
	mu       sync.RWMutex
	bySource map[string][]domain.CardDocument
	failures map[string]error
}

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		bySource: make(map[string][]domain.CardDocument),
		failures: make(map[string]error),
	}
}

// Add indexes documents under their Source key.
func (c *Catalog) Add(docs ...domain.CardDocument) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, doc := range docs {
		c.bySource[doc.Source] = append(c.bySource[doc.Source], doc)
	}
}

// SetFailure makes every search of source fail with err.
// A nil err clears the failure.
func (c *Catalog) SetFailure(source string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err == nil {
		delete(c.failures, source)
		return
	}
	c.failures[source] = err
}

// Search returns the source's documents of the requested type whose name
// matches the query.
func (c *Catalog) Search(ctx context.Context, req driven.SearchRequest) ([]domain.CardDocument, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if err := c.failures[req.Source]; err != nil {
		return nil, err
	}

	query := domain.SearchableName(req.Query)
	var result []domain.CardDocument
	for _, doc := range c.bySource[req.Source] {
		if doc.CardType != req.CardType {
			continue
		}
		if matchName(query, doc.Name, req.FuzzySearch) {
			result = append(result, doc)
		}
	}
	return result, nil
}

// matchName reports whether a searchable query matches a card name.
func matchName(query, name string, fuzzySearch bool) bool {
	target := domain.SearchableName(name)
	if fuzzySearch {
		return fuzzy.MatchNormalizedFold(query, target)
	}
	return query == target
}
